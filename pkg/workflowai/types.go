package workflowai

import "encoding/json"

// RegisterRequest declares an agent and its input/output JSON schemas
type RegisterRequest struct {
	ID           string          `json:"id"`
	InputSchema  json.RawMessage `json:"input_schema"`
	OutputSchema json.RawMessage `json:"output_schema"`
}

// RegisterResponse identifies the schema version the service assigned
type RegisterResponse struct {
	ID        string `json:"id"`
	SchemaID  int    `json:"schema_id"`
	VariantID string `json:"variant_id,omitempty"`
}

// VersionProperties selects how the agent runs
type VersionProperties struct {
	Model        string   `json:"model"`
	Instructions string   `json:"instructions,omitempty"`
	Temperature  *float64 `json:"temperature,omitempty"`
}

// RunRequest is the body of a run call
type RunRequest struct {
	TaskInput json.RawMessage   `json:"task_input"`
	Version   VersionProperties `json:"version"`
	Stream    bool              `json:"stream"`
	UseCache  string            `json:"use_cache,omitempty"`
	Metadata  map[string]any    `json:"metadata,omitempty"`
}

// RunVersion is the version the service actually used
type RunVersion struct {
	ID         string            `json:"id,omitempty"`
	Properties VersionProperties `json:"properties"`
}

// RunResponse is the result of a run call
type RunResponse struct {
	ID              string          `json:"id"`
	TaskOutput      json.RawMessage `json:"task_output"`
	DurationSeconds float64         `json:"duration_seconds"`
	CostUSD         float64         `json:"cost_usd"`
	Version         *RunVersion     `json:"version,omitempty"`
}

// APIError is the error payload returned with non-2xx responses
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code,omitempty"`
}

type errorEnvelope struct {
	Error *APIError `json:"error"`
}

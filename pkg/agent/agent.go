package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"flight-extractor/pkg/logger"
	"flight-extractor/pkg/workflowai"
)

// Client is the remote agent service
type Client interface {
	RegisterAgent(ctx context.Context, req *workflowai.RegisterRequest) (*workflowai.RegisterResponse, error)
	RunAgent(ctx context.Context, agentID string, schemaID int, req *workflowai.RunRequest) (*workflowai.RunResponse, error)
	RunURL(agentID, runID string) string
}

// Config represents general agent configuration
type Config struct {
	// agentID names the remote agent
	agentID string
	// model selects the inference model used by the remote agent
	model string
	// instructions is the agent prompt
	instructions string
	// temperature is left to the service default when nil
	temperature *float64
	// schemaID skips registration when non-zero
	schemaID int
	// useCache is the service cache policy
	useCache string
	logger   logger.Logger
}

// RunInfo is out-of-band metadata about a run. It is informational and not
// part of the extracted record.
type RunInfo struct {
	ID       string
	AgentID  string
	SchemaID int
	Model    string
	CostUSD  float64
	Latency  time.Duration
	URL      string
}

// Summary formats cost, latency and link on three lines
func (r RunInfo) Summary() string {
	return fmt.Sprintf("Cost: $ %.5f\nLatency: %.2fs\nURL: %s", r.CostUSD, r.Latency.Seconds(), r.URL)
}

// Run is a validated agent result
type Run[O any] struct {
	RunInfo
	Output O
}

// Agent maps a typed input to a typed output through one remote agent call.
// It is safe for concurrent use.
type Agent[I any, O any] struct {
	Config
	client       Client
	validate     *validator.Validate
	inputSchema  json.RawMessage
	outputSchema json.RawMessage
	compiled     *jsonschema.Schema

	mu sync.Mutex
}

// New builds an agent for the given input and output record types
func New[I any, O any](client Client, options ...Option) (*Agent[I, O], error) {
	if client == nil {
		return nil, errors.New("agent: nil client")
	}

	a := &Agent[I, O]{
		client:   client,
		validate: newValidator(),
	}
	a.logger = logger.Nop()
	for _, opt := range options {
		opt(&a.Config)
	}
	if a.agentID == "" {
		return nil, errors.New("agent: agent id is required")
	}
	if a.model == "" {
		return nil, errors.New("agent: model is required")
	}

	var err error
	if a.inputSchema, err = reflectSchema[I](); err != nil {
		return nil, err
	}
	if a.outputSchema, err = reflectSchema[O](); err != nil {
		return nil, err
	}
	if a.compiled, err = compileSchema(a.outputSchema); err != nil {
		return nil, err
	}
	return a, nil
}

// Name returns the remote agent id
func (a *Agent[I, O]) Name() string {
	return a.agentID
}

// Model returns the configured model
func (a *Agent[I, O]) Model() string {
	return a.model
}

// InputSchema returns the JSON schema sent for the input record
func (a *Agent[I, O]) InputSchema() json.RawMessage {
	return a.inputSchema
}

// OutputSchema returns the JSON schema the output is validated against
func (a *Agent[I, O]) OutputSchema() json.RawMessage {
	return a.outputSchema
}

// Run validates input, performs the remote call and validates the output
func (a *Agent[I, O]) Run(ctx context.Context, input I) (*Run[O], error) {
	if err := a.validate.Struct(input); err != nil {
		return nil, fromStructError(StageInput, err)
	}

	taskInput, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal input: %w", err)
	}

	schemaID, err := a.ensureSchemaID(ctx)
	if err != nil {
		return nil, err
	}

	req := &workflowai.RunRequest{
		TaskInput: taskInput,
		Version: workflowai.VersionProperties{
			Model:        a.model,
			Instructions: a.instructions,
			Temperature:  a.temperature,
		},
		UseCache: a.useCache,
	}

	started := time.Now()
	resp, err := a.client.RunAgent(ctx, a.agentID, schemaID, req)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(started)

	output, err := a.decodeOutput(resp.TaskOutput)
	if err != nil {
		a.logger.Warn("Agent output rejected",
			"agentId", a.agentID,
			"runId", resp.ID,
			"error", err)
		return nil, err
	}

	run := &Run[O]{
		RunInfo: RunInfo{
			ID:       resp.ID,
			AgentID:  a.agentID,
			SchemaID: schemaID,
			Model:    a.model,
			CostUSD:  resp.CostUSD,
			Latency:  time.Duration(resp.DurationSeconds * float64(time.Second)),
			URL:      a.client.RunURL(a.agentID, resp.ID),
		},
		Output: *output,
	}
	if resp.Version != nil && resp.Version.Properties.Model != "" {
		run.Model = resp.Version.Properties.Model
	}
	if run.Latency <= 0 {
		run.Latency = elapsed
	}
	return run, nil
}

// ensureSchemaID registers the agent schemas once and caches the result
func (a *Agent[I, O]) ensureSchemaID(ctx context.Context) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.schemaID != 0 {
		return a.schemaID, nil
	}

	resp, err := a.client.RegisterAgent(ctx, &workflowai.RegisterRequest{
		ID:           a.agentID,
		InputSchema:  a.inputSchema,
		OutputSchema: a.outputSchema,
	})
	if err != nil {
		return 0, err
	}
	a.schemaID = resp.SchemaID
	a.logger.Info("Agent schema registered", "agentId", a.agentID, "schemaId", a.schemaID)
	return a.schemaID, nil
}

// decodeOutput checks the payload against the output schema then decodes it
func (a *Agent[I, O]) decodeOutput(raw json.RawMessage) (*O, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, &ValidationError{Stage: StageOutput, Reason: "response has no task_output"}
	}
	if err := validateDocument(a.compiled, raw); err != nil {
		return nil, fromSchemaError(StageOutput, err)
	}

	output := new(O)
	if err := json.Unmarshal(raw, output); err != nil {
		return nil, &ValidationError{Stage: StageOutput, Reason: err.Error(), Err: err}
	}
	if err := a.validate.Struct(output); err != nil {
		return nil, fromStructError(StageOutput, err)
	}
	return output, nil
}

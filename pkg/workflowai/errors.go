package workflowai

import (
	"fmt"
	"net/http"
)

// ConfigError reports a setting that must be present before calling the service
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Key, e.Reason)
}

// TransportError reports a call that could not be completed: network
// failure, authentication failure, non-success status or an undecodable
// response envelope.
type TransportError struct {
	Op         string
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Code != "":
		return fmt.Sprintf("workflowai %s: status %d: %s (code: %s)", e.Op, e.StatusCode, e.Message, e.Code)
	case e.StatusCode != 0:
		return fmt.Sprintf("workflowai %s: status %d: %s", e.Op, e.StatusCode, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("workflowai %s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("workflowai %s: %s", e.Op, e.Message)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Unauthorized reports whether the service rejected the credentials
func (e *TransportError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

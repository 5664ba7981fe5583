package agent

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Validation stages
const (
	StageInput  = "input"
	StageOutput = "output"
)

// ValidationError reports a record that does not conform to its schema
type ValidationError struct {
	Stage  string
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s validation failed at %s: %s", e.Stage, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s validation failed: %s", e.Stage, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// fromSchemaError converts the deepest cause of a schema validation failure
func fromSchemaError(stage string, err error) *ValidationError {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &ValidationError{Stage: stage, Reason: err.Error(), Err: err}
	}
	leaf := ve
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}
	return &ValidationError{
		Stage:  stage,
		Field:  pointerToField(leaf.InstanceLocation),
		Reason: leaf.Message,
		Err:    err,
	}
}

// fromStructError converts go-playground/validator failures
func fromStructError(stage string, err error) *ValidationError {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return &ValidationError{Stage: stage, Reason: err.Error(), Err: err}
	}
	fe := errs[0]
	reason := fmt.Sprintf("failed on the '%s' rule", fe.Tag())
	if fe.Param() != "" {
		reason = fmt.Sprintf("failed on the '%s=%s' rule", fe.Tag(), fe.Param())
	}
	return &ValidationError{
		Stage:  stage,
		Field:  fe.Field(),
		Reason: reason,
		Err:    err,
	}
}

func pointerToField(location string) string {
	return strings.ReplaceAll(strings.TrimPrefix(location, "/"), "/", ".")
}

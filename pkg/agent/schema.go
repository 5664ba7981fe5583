package agent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	invopop "github.com/invopop/jsonschema"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const outputSchemaURL = "output.json"

// reflectSchema builds the JSON schema of T with every type inlined
func reflectSchema[T any]() (json.RawMessage, error) {
	r := &invopop.Reflector{
		Anonymous:      true,
		DoNotReference: true,
		ExpandedStruct: true,
	}
	s := r.Reflect(new(T))
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema for %T: %w", *new(T), err)
	}
	return raw, nil
}

func compileSchema(raw json.RawMessage) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(outputSchemaURL, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("failed to load output schema: %w", err)
	}
	schema, err := compiler.Compile(outputSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile output schema: %w", err)
	}
	return schema, nil
}

// validateDocument checks raw JSON against a compiled schema
func validateDocument(schema *jsonschema.Schema, raw json.RawMessage) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("payload is not valid JSON: %w", err)
	}
	return schema.Validate(doc)
}

// newValidator returns a struct validator that reports json field names
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

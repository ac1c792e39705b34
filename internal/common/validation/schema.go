// internal/common/validation/schema.go
package validation

import (
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// JSONSchema is a JSON Schema document in Go map form. The same value is
// handed to the completion backends as a structured output schema.
type JSONSchema = map[string]interface{}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Validator holds a compiled schema. Compilation happens once, on first use.
type Validator struct {
	raw      JSONSchema
	once     sync.Once
	compiled *gojsonschema.Schema
	err      error
}

func NewValidator(schema JSONSchema) *Validator {
	return &Validator{raw: schema}
}

func (v *Validator) Schema() JSONSchema {
	return v.raw
}

func (v *Validator) compile() (*gojsonschema.Schema, error) {
	v.once.Do(func() {
		v.compiled, v.err = gojsonschema.NewSchema(gojsonschema.NewGoLoader(v.raw))
	})
	return v.compiled, v.err
}

// Validate checks a decoded Go value (map, slice, struct) against the schema.
func (v *Validator) Validate(document interface{}) (*ValidationResult, error) {
	schema, err := v.compile()
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return toResult(schema.Validate(gojsonschema.NewGoLoader(document)))
}

// ValidateBytes checks a raw JSON document against the schema.
func (v *Validator) ValidateBytes(document []byte) (*ValidationResult, error) {
	schema, err := v.compile()
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return toResult(schema.Validate(gojsonschema.NewBytesLoader(document)))
}

// ValidateInput validates job variables against a schema without keeping a
// compiled copy around.
func ValidateInput(input map[string]interface{}, schema JSONSchema) *ValidationResult {
	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewGoLoader(input))
	if err != nil {
		return &ValidationResult{
			Errors: []ValidationError{{Field: "(root)", Message: err.Error(), Code: "SCHEMA_ERROR"}},
		}
	}
	out, _ := toResult(result, nil)
	return out
}

func toResult(result *gojsonschema.Result, err error) (*ValidationResult, error) {
	if err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    desc.Type(),
		})
	}
	return out, nil
}

func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, 0, len(vr.Errors))
	for _, err := range vr.Errors {
		messages = append(messages, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return messages
}

func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

package protocol

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"
)

// Validator is a black-box JSON-Schema validation capability. Schemas are
// loaded once from disk and reused across calls; Validate and ValidateRaw
// report every violation in one combined error.
type Validator struct {
	schema *gojsonschema.Schema
}

// LoadValidator compiles the schema at path into a reusable Validator.
func LoadValidator(path string) (*Validator, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", path, err)
	}
	loader := gojsonschema.NewBytesLoader(raw)
	schema, err := gojsonschema.NewSchema(loader)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", path, err)
	}
	return &Validator{schema: schema}, nil
}

// Validate checks an arbitrary JSON-marshalable value against the schema.
// On failure it returns a single combined error describing every violation.
func (v *Validator) Validate(doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("validate document: %w", err)
	}
	if result.Valid() {
		return nil
	}
	msg := "schema validation failed:"
	for _, e := range result.Errors() {
		msg += " " + e.String() + ";"
	}
	return fmt.Errorf("%s", msg)
}

// ValidateRaw checks an already-marshaled JSON document against the schema.
func (v *Validator) ValidateRaw(raw []byte) error {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("validate document: %w", err)
	}
	if result.Valid() {
		return nil
	}
	msg := "schema validation failed:"
	for _, e := range result.Errors() {
		msg += " " + e.String() + ";"
	}
	return fmt.Errorf("%s", msg)
}

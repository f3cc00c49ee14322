package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	jschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// Validator checks YAML documents against a compiled JSON schema.
type Validator struct {
	schema *jschema.Schema
}

// NewValidator compiles a schema produced by GenerateSchema.
func NewValidator(schemaJSON []byte) (*Validator, error) {
	doc, err := jschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema JSON: %w", err)
	}

	c := jschema.NewCompiler()
	if err := c.AddResource("schema.json", doc); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}
	sch, err := c.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return &Validator{schema: sch}, nil
}

// ForType generates the schema for v and compiles it.
func ForType(v any) (*Validator, error) {
	data, err := GenerateSchema(v)
	if err != nil {
		return nil, err
	}
	return NewValidator(data)
}

// ValidateYAML validates a YAML document.
func (v *Validator) ValidateYAML(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("document is empty")
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("invalid YAML: %w", err)
	}
	return v.validate(doc)
}

// validate round-trips doc through JSON so numbers reach the validator as
// json.Number, the representation it expects.
func (v *Validator) validate(doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("document is not JSON-compatible: %w", err)
	}
	inst, err := jschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("document is not JSON-compatible: %w", err)
	}
	if err := v.schema.Validate(inst); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

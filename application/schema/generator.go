// Package schema generates JSON schemas for the SDK's YAML documents and
// validates documents against them.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Option configures schema generation.
type Option func(*jsonschema.Reflector, *jsonschema.Schema)

// WithTitle sets the schema title.
func WithTitle(title string) Option {
	return func(_ *jsonschema.Reflector, s *jsonschema.Schema) {
		s.Title = title
	}
}

// WithDescription sets the schema description.
func WithDescription(desc string) Option {
	return func(_ *jsonschema.Reflector, s *jsonschema.Schema) {
		s.Description = desc
	}
}

// WithID sets the schema $id.
func WithID(id string) Option {
	return func(_ *jsonschema.Reflector, s *jsonschema.Schema) {
		s.ID = jsonschema.ID(id)
	}
}

// GenerateSchema creates a JSON schema (Draft 2020-12) from a Go struct.
// Field names come from yaml tags, since every document the SDK reads is
// YAML; jsonschema tags add constraints.
func GenerateSchema(v any, opts ...Option) ([]byte, error) {
	reflector := &jsonschema.Reflector{
		ExpandedStruct: true,
		DoNotReference: true,
		FieldNameTag:   "yaml",
	}
	schema := reflector.Reflect(v)
	for _, opt := range opts {
		opt(reflector, schema)
	}

	jsonBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	return jsonBytes, nil
}

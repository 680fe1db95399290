package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Schema validates JSON artifacts against a JSON Schema document.
type Schema struct {
	schema *jsonschema.Schema
}

// LoadSchema compiles the JSON Schema at path.
func LoadSchema(path string) (*Schema, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read json schema: %w", err)
	}
	return CompileSchema(path, raw)
}

// CompileSchema compiles a JSON Schema document. name identifies the
// resource in error messages.
func CompileSchema(name string, raw []byte) (*Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("failed to load json schema: %w", err)
	}
	s, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to compile json schema: %w", err)
	}
	return &Schema{schema: s}, nil
}

// Validate checks a JSON document against the schema.
func (s *Schema) Validate(doc json.RawMessage) error {
	var v any
	if err := json.Unmarshal(doc, &v); err != nil {
		return fmt.Errorf("failed to decode json for validation: %w", err)
	}
	if err := s.schema.Validate(v); err != nil {
		return fmt.Errorf("artifact does not match schema: %w", err)
	}
	return nil
}

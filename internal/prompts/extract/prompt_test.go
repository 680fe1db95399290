package extract

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jackzampolin/pdf2kg/internal/normalize"
	"github.com/jackzampolin/pdf2kg/internal/ontology"
	"github.com/jackzampolin/pdf2kg/internal/prompts"
)

func newResolver(t *testing.T, dir string) *prompts.Resolver {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := prompts.NewResolver(prompts.NewStore(dir, logger), logger)
	RegisterPrompts(r)
	return r
}

func TestBuilder_Build(t *testing.T) {
	formats := []normalize.Format{normalize.FormatTurtle, normalize.FormatJSON}
	b, err := NewBuilder(newResolver(t, ""), formats)
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}

	schema := &ontology.Schema{
		Classes:    []string{"http://example.org/d2kg#Company"},
		Properties: []string{"http://example.org/d2kg#founded", "http://example.org/d2kg#name"},
	}
	text := "Acme Corp was founded in 1975.\n{{ not a template }}\n"

	tests := []struct {
		format    normalize.Format
		key       string
		directive string
	}{
		{format: normalize.FormatTurtle, key: TurtlePromptKey, directive: "Provide the output in Turtle (TTL) format:"},
		{format: normalize.FormatJSON, key: JSONPromptKey, directive: "Provide the output in JSON format:"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			p, err := b.Build(text, schema, tt.format)
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if p.Key != tt.key {
				t.Errorf("Key = %q, want %q", p.Key, tt.key)
			}
			if !strings.Contains(p.Text, "Ontology classes: ['http://example.org/d2kg#Company']") {
				t.Errorf("classes missing from prompt:\n%s", p.Text)
			}
			if !strings.Contains(p.Text, "Ontology properties: ['http://example.org/d2kg#founded', 'http://example.org/d2kg#name']") {
				t.Errorf("properties missing from prompt:\n%s", p.Text)
			}
			if !strings.Contains(p.Text, text) {
				t.Errorf("document text not embedded verbatim:\n%s", p.Text)
			}
			if !strings.HasSuffix(strings.TrimSpace(p.Text), tt.directive) {
				t.Errorf("prompt should end with %q:\n%s", tt.directive, p.Text)
			}
			if p.Hash == "" {
				t.Error("Hash should be set")
			}
		})
	}
}

func TestBuilder_NilSchema(t *testing.T) {
	b, err := NewBuilder(newResolver(t, ""), []normalize.Format{normalize.FormatJSON})
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}
	p, err := b.Build("text", nil, normalize.FormatJSON)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if !strings.Contains(p.Text, "Ontology classes: []") {
		t.Errorf("expected empty class list:\n%s", p.Text)
	}
}

func TestBuilder_UnconfiguredFormat(t *testing.T) {
	b, err := NewBuilder(newResolver(t, ""), []normalize.Format{normalize.FormatJSON})
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}
	if _, err := b.Build("text", nil, normalize.FormatTurtle); err == nil {
		t.Error("expected error for format without a template")
	}
}

func TestBuilder_Override(t *testing.T) {
	dir := t.TempDir()
	override := "Extract {{ .FormatName }} from:\n{{ .Text }}"
	if err := os.WriteFile(filepath.Join(dir, JSONPromptKey+".tmpl"), []byte(override), 0o644); err != nil {
		t.Fatal(err)
	}

	b, err := NewBuilder(newResolver(t, dir), []normalize.Format{normalize.FormatJSON})
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}
	p, err := b.Build("doc", nil, normalize.FormatJSON)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if p.Text != "Extract JSON from:\ndoc" {
		t.Errorf("Text = %q", p.Text)
	}
	if p.Hash != prompts.HashText(override) {
		t.Errorf("Hash should be the override's hash")
	}
}

func TestBuilder_BrokenOverride(t *testing.T) {
	tests := map[string]string{
		"parse error":   "{{ .Text ",
		"unknown field": "{{ .Book.Title }}",
	}
	for name, text := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, TurtlePromptKey+".tmpl"), []byte(text), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := NewBuilder(newResolver(t, dir), []normalize.Format{normalize.FormatTurtle}); err == nil {
				t.Error("expected error for broken override")
			}
		})
	}
}

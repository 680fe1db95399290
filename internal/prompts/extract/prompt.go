// Package extract holds the per-format extraction prompts.
package extract

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"

	"github.com/jackzampolin/pdf2kg/internal/normalize"
	"github.com/jackzampolin/pdf2kg/internal/ontology"
	"github.com/jackzampolin/pdf2kg/internal/prompts"
)

//go:embed turtle.tmpl
var turtlePrompt string

//go:embed json.tmpl
var jsonPrompt string

// Prompt keys
const (
	TurtlePromptKey = "extract.turtle"
	JSONPromptKey   = "extract.json"
)

// Key returns the prompt key for a format.
func Key(f normalize.Format) string {
	if f == normalize.FormatJSON {
		return JSONPromptKey
	}
	return TurtlePromptKey
}

// RegisterPrompts registers the extraction prompts with the resolver.
func RegisterPrompts(r *prompts.Resolver) {
	r.Register(prompts.EmbeddedPrompt{
		Key:         TurtlePromptKey,
		Text:        turtlePrompt,
		Description: "Extraction prompt requesting Turtle output",
	})
	r.Register(prompts.EmbeddedPrompt{
		Key:         JSONPromptKey,
		Text:        jsonPrompt,
		Description: "Extraction prompt requesting a JSON object",
	})
}

// Data is what extraction templates are executed with.
type Data struct {
	Classes    []string
	Properties []string
	Text       string
	FormatName string
}

// Prompt is a built prompt and the template it came from.
type Prompt struct {
	Key  string
	Text string
	Hash string // hash of the template, not of the rendered text
}

// Builder renders extraction prompts. Templates are resolved and parsed
// once; the document text is embedded whole.
type Builder struct {
	templates map[normalize.Format]*template.Template
	resolved  map[normalize.Format]*prompts.ResolvedPrompt
}

// NewBuilder resolves and parses the template for each format. Each
// template is dry-run against sample data so a broken override fails here.
func NewBuilder(r *prompts.Resolver, formats []normalize.Format) (*Builder, error) {
	b := &Builder{
		templates: make(map[normalize.Format]*template.Template, len(formats)),
		resolved:  make(map[normalize.Format]*prompts.ResolvedPrompt, len(formats)),
	}
	for _, f := range formats {
		resolved, err := r.Resolve(Key(f))
		if err != nil {
			return nil, err
		}
		tmpl, err := prompts.Parse(resolved)
		if err != nil {
			return nil, err
		}
		if err := tmpl.Execute(&bytes.Buffer{}, Data{FormatName: f.DisplayName()}); err != nil {
			return nil, fmt.Errorf("prompt %s (%s) does not render: %w", resolved.Key, resolved.Source, err)
		}
		b.templates[f] = tmpl
		b.resolved[f] = resolved
	}
	return b, nil
}

// Build renders the prompt for one document and format.
func (b *Builder) Build(text string, schema *ontology.Schema, f normalize.Format) (*Prompt, error) {
	tmpl, ok := b.templates[f]
	if !ok {
		return nil, fmt.Errorf("no prompt for format %q", f)
	}

	data := Data{Text: text, FormatName: f.DisplayName()}
	if schema != nil {
		data.Classes = schema.Classes
		data.Properties = schema.Properties
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render prompt %s: %w", b.resolved[f].Key, err)
	}
	return &Prompt{
		Key:  b.resolved[f].Key,
		Text: buf.String(),
		Hash: b.resolved[f].Hash,
	}, nil
}

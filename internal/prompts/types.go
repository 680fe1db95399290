// Package prompts provides prompt management with embedded defaults and
// file-based overrides.
//
// Embedded .tmpl files are the source of truth for defaults. A prompts
// directory may hold <key>.tmpl files that replace a default wholesale.
//
// Resolution order:
//  1. Override file in the prompts directory (if it exists)
//  2. Embedded default
package prompts

// EmbeddedPrompt represents a prompt loaded from an embedded .tmpl file.
type EmbeddedPrompt struct {
	Key         string   // Hierarchical key: extract.turtle
	Text        string   // The prompt text (Go template)
	Description string   // Human-readable description
	Variables   []string // Extracted template variables
	Hash        string   // SHA256 hash of the text for change detection
}

// ResolvedPrompt is the result of resolving a prompt key.
type ResolvedPrompt struct {
	Key        string   `json:"key" yaml:"key"`
	Text       string   `json:"text" yaml:"text"`
	Variables  []string `json:"variables,omitempty" yaml:"variables,omitempty"`
	IsOverride bool     `json:"is_override" yaml:"is_override"`
	Source     string   `json:"source" yaml:"source"` // override path or "embedded"
	Hash       string   `json:"hash" yaml:"hash"`
}

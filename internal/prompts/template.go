package prompts

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"text/template"
)

// variablePattern matches Go template variable references like {{.VarName}} or {{ .VarName }}
// Also matches nested fields like {{.Schema.Classes}}
var variablePattern = regexp.MustCompile(`\{\{\s*\.([a-zA-Z_][a-zA-Z0-9_.]*)\s*\}\}`)

// ExtractVariables extracts template variable names from a Go template string.
// For example, "Hello {{.Name}}, you have {{.Count}} items" returns ["Count", "Name"].
// Nested fields like {{.Schema.Classes}} return "Schema.Classes".
func ExtractVariables(text string) []string {
	matches := variablePattern.FindAllStringSubmatch(text, -1)
	seen := make(map[string]bool)
	var vars []string

	for _, match := range matches {
		if len(match) > 1 {
			varName := match[1]
			if !seen[varName] {
				seen[varName] = true
				vars = append(vars, varName)
			}
		}
	}

	// Sort for consistent ordering
	sort.Strings(vars)
	return vars
}

// HashText returns a SHA256 hash of the text for change detection.
func HashText(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}

// funcs are available to every prompt template.
var funcs = template.FuncMap{
	// quoted renders a list as ['a', 'b'].
	"quoted": func(items []string) string {
		if len(items) == 0 {
			return "[]"
		}
		var b strings.Builder
		b.WriteByte('[')
		for i, item := range items {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteByte('\'')
			b.WriteString(item)
			b.WriteByte('\'')
		}
		b.WriteByte(']')
		return b.String()
	},
}

// Parse compiles a resolved prompt as a text/template.
func Parse(p *ResolvedPrompt) (*template.Template, error) {
	tmpl, err := template.New(p.Key).Funcs(funcs).Parse(p.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse prompt %s (%s): %w", p.Key, p.Source, err)
	}
	return tmpl, nil
}

package normalize

import (
	"testing"

	"github.com/jackzampolin/pdf2kg/internal/providers"
)

func TestJSONNormalizer_EmptyResponses(t *testing.T) {
	s := "   \n\t"
	responses := map[string]*providers.Response{
		"nil":             nil,
		"no candidates":   {},
		"nil candidate":   {Candidates: []*providers.Candidate{nil}},
		"no content":      {Candidates: []*providers.Candidate{{}}},
		"no parts":        {Candidates: []*providers.Candidate{{Content: &providers.Content{}}}},
		"no text":         {Candidates: []*providers.Candidate{{Content: &providers.Content{Parts: []*providers.Part{{}}}}}},
		"whitespace text": {Candidates: []*providers.Candidate{{Content: &providers.Content{Parts: []*providers.Part{{Text: &s}}}}}},
	}

	n := &JSONNormalizer{}
	for name, resp := range responses {
		t.Run(name, func(t *testing.T) {
			res := n.Normalize(resp)
			if string(res.Artifact.JSON) != "{}" {
				t.Errorf("JSON = %s, want {}", res.Artifact.JSON)
			}
			if !res.Artifact.Empty() {
				t.Error("artifact should be empty")
			}
			if !res.Has(CodeEmptyResponse) {
				t.Errorf("diagnostics = %+v, want %s", res.Diagnostics, CodeEmptyResponse)
			}
			for _, d := range res.Diagnostics {
				if d.Warn {
					t.Errorf("empty response should not warn: %+v", d)
				}
			}
		})
	}
}

func TestJSONNormalizer_NormalizeText(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		want      string
		wantCodes []Code
		notCodes  []Code
	}{
		{
			name:      "fenced object",
			text:      "```json\n{\"name\": \"Acme Corp\", \"founded\": 1975}\n```",
			want:      `{"name": "Acme Corp", "founded": 1975}`,
			wantCodes: []Code{CodeFenceStripped},
			notCodes:  []Code{CodeStrictParseFailed},
		},
		{
			name:     "bare object",
			text:     `  {"a": [1, 2]}  `,
			want:     `{"a": [1, 2]}`,
			notCodes: []Code{CodeFenceStripped, CodeStrictParseFailed},
		},
		{
			name:      "prose around object",
			text:      "Here is the data: {\"name\": \"Acme\"} Let me know!",
			want:      `{"name": "Acme"}`,
			wantCodes: []Code{CodeStrictParseFailed, CodeRecoveredBraceSpan},
		},
		{
			name:      "fence in the middle recovers span",
			text:      "Result:\n```json\n{\"a\": 1}\n```\nDone.",
			want:      `{"a": 1}`,
			wantCodes: []Code{CodeStrictParseFailed, CodeRecoveredBraceSpan},
			notCodes:  []Code{CodeFenceStripped},
		},
		{
			name:      "two objects fail recovery",
			text:      `first {"a": 1} second {"b": 2}`,
			want:      `{}`,
			wantCodes: []Code{CodeStrictParseFailed, CodeRecoveryFailed},
		},
		{
			name:      "no braces",
			text:      "I could not find anything relevant.",
			want:      `{}`,
			wantCodes: []Code{CodeStrictParseFailed, CodeNoBraceSpan},
		},
		{
			name:      "array is not an object",
			text:      `[1, 2, 3]`,
			want:      `{}`,
			wantCodes: []Code{CodeStrictParseFailed, CodeNoBraceSpan},
		},
		{
			name:      "null is not an object",
			text:      `null`,
			want:      `{}`,
			wantCodes: []Code{CodeStrictParseFailed, CodeNoBraceSpan},
		},
		{
			name: "non-ascii preserved",
			text: "```json\n{\"city\": \"Zürich\"}\n```",
			want: `{"city": "Zürich"}`,
		},
	}

	n := &JSONNormalizer{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := n.NormalizeText(tt.text)
			if got := string(res.Artifact.JSON); got != tt.want {
				t.Errorf("JSON = %s, want %s", got, tt.want)
			}
			if res.Artifact.Format != FormatJSON {
				t.Errorf("Format = %q", res.Artifact.Format)
			}
			for _, c := range tt.wantCodes {
				if !res.Has(c) {
					t.Errorf("missing diagnostic %s in %+v", c, res.Diagnostics)
				}
			}
			for _, c := range tt.notCodes {
				if res.Has(c) {
					t.Errorf("unexpected diagnostic %s in %+v", c, res.Diagnostics)
				}
			}
		})
	}
}

func TestJSONNormalizer_Schema(t *testing.T) {
	schema, err := CompileSchema("record.json", []byte(`{
		"type": "object",
		"required": ["name"],
		"properties": {"name": {"type": "string"}}
	}`))
	if err != nil {
		t.Fatalf("CompileSchema() error = %v", err)
	}
	n := &JSONNormalizer{Schema: schema}

	t.Run("match", func(t *testing.T) {
		res := n.NormalizeText(`{"name": "Acme"}`)
		if res.Has(CodeSchemaMismatch) {
			t.Errorf("unexpected mismatch: %+v", res.Diagnostics)
		}
	})

	t.Run("mismatch keeps artifact", func(t *testing.T) {
		res := n.NormalizeText(`{"founded": 1975}`)
		if !res.Has(CodeSchemaMismatch) {
			t.Fatalf("expected schema mismatch, got %+v", res.Diagnostics)
		}
		if string(res.Artifact.JSON) != `{"founded": 1975}` {
			t.Errorf("artifact dropped: %s", res.Artifact.JSON)
		}
	})

	t.Run("empty artifact is not validated", func(t *testing.T) {
		res := n.NormalizeText("")
		if res.Has(CodeSchemaMismatch) {
			t.Error("empty artifact should skip validation")
		}
	})
}

func TestArtifactEmpty(t *testing.T) {
	tests := []struct {
		name string
		a    Artifact
		want bool
	}{
		{name: "empty json", a: EmptyArtifact(FormatJSON), want: true},
		{name: "json with key", a: Artifact{Format: FormatJSON, JSON: []byte(`{"a":1}`)}, want: false},
		{name: "json spaced braces", a: Artifact{Format: FormatJSON, JSON: []byte(`{ }`)}, want: true},
		{name: "empty turtle", a: EmptyArtifact(FormatTurtle), want: true},
		{name: "whitespace turtle", a: Artifact{Format: FormatTurtle, Turtle: " \n"}, want: true},
		{name: "turtle text", a: Artifact{Format: FormatTurtle, Turtle: "ex:a a ex:B ."}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Empty(); got != tt.want {
				t.Errorf("Empty() = %v, want %v", got, tt.want)
			}
		})
	}
}

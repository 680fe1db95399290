package normalize

import (
	"bytes"
	"encoding/json"
)

// Artifact is the normalized output for one response. Exactly one of JSON or
// Turtle carries the payload, selected by Format.
type Artifact struct {
	Format Format
	JSON   json.RawMessage
	Turtle string
}

// EmptyArtifact returns the format's empty value: {} for JSON, "" for Turtle.
func EmptyArtifact(f Format) Artifact {
	a := Artifact{Format: f}
	if f == FormatJSON {
		a.JSON = json.RawMessage(`{}`)
	}
	return a
}

// Empty reports whether the artifact holds nothing worth writing.
func (a Artifact) Empty() bool {
	switch a.Format {
	case FormatJSON:
		return isEmptyObject(a.JSON)
	case FormatTurtle:
		return len(bytes.TrimSpace([]byte(a.Turtle))) == 0
	}
	return true
}

func isEmptyObject(raw json.RawMessage) bool {
	if len(bytes.TrimSpace(raw)) == 0 {
		return true
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return true
	}
	return len(m) == 0
}

// Code identifies a normalization outcome worth logging.
type Code string

const (
	CodeEmptyResponse      Code = "empty_response"
	CodeFenceStripped      Code = "fence_stripped"
	CodeStrictParseFailed  Code = "strict_parse_failed"
	CodeRecoveredBraceSpan Code = "recovered_brace_span"
	CodeRecoveryFailed     Code = "recovery_failed"
	CodeNoBraceSpan        Code = "no_brace_span"
	CodeSchemaMismatch     Code = "schema_mismatch"
	CodeTurtleSyntax       Code = "turtle_syntax"
)

// Diagnostic records one step of normalization. Warn marks outcomes a caller
// should surface at warning level; none of them are fatal.
type Diagnostic struct {
	Code    Code   `json:"code" yaml:"code"`
	Warn    bool   `json:"warn,omitempty" yaml:"warn,omitempty"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// Result is the output of a Normalizer.
type Result struct {
	Artifact    Artifact
	Diagnostics []Diagnostic
}

// Has reports whether a diagnostic with the code was recorded.
func (r Result) Has(code Code) bool {
	for _, d := range r.Diagnostics {
		if d.Code == code {
			return true
		}
	}
	return false
}

func (r *Result) add(code Code, warn bool, msg string) {
	r.Diagnostics = append(r.Diagnostics, Diagnostic{Code: code, Warn: warn, Message: msg})
}

// Package normalize turns raw model responses into artifacts that are safe to
// persist. A JSON artifact is always a parseable JSON object; a Turtle
// artifact is the model's text with any ```ttl fence removed.
//
// Normalization never fails: unusable input yields the format's empty
// artifact, and every decision along the way is recorded as a Diagnostic so
// callers can log it.
package normalize

import (
	"fmt"

	"github.com/jackzampolin/pdf2kg/internal/providers"
)

// Normalizer converts a model response into an artifact of one format.
type Normalizer interface {
	Format() Format
	Normalize(resp *providers.Response) Result
}

// Options configures the normalizers returned by New.
type Options struct {
	// JSONSchema, if set, validates JSON artifacts. A mismatch is reported
	// as a warning and the artifact is kept.
	JSONSchema *Schema

	// CheckTurtle runs a syntax check over Turtle artifacts. Failures are
	// reported as warnings and the artifact is kept.
	CheckTurtle bool
}

// New returns the normalizer for a format.
func New(f Format, opts Options) (Normalizer, error) {
	switch f {
	case FormatJSON:
		return &JSONNormalizer{Schema: opts.JSONSchema}, nil
	case FormatTurtle:
		return &TurtleNormalizer{CheckSyntax: opts.CheckTurtle}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// NewSet returns one normalizer per format, keyed by format.
func NewSet(formats []Format, opts Options) (map[Format]Normalizer, error) {
	set := make(map[Format]Normalizer, len(formats))
	for _, f := range formats {
		n, err := New(f, opts)
		if err != nil {
			return nil, err
		}
		set[f] = n
	}
	return set, nil
}

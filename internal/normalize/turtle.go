package normalize

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/knakk/rdf"

	"github.com/jackzampolin/pdf2kg/internal/providers"
)

// TurtleNormalizer passes model output through as Turtle. It does not refuse
// syntactically invalid text; CheckSyntax only adds a warning.
type TurtleNormalizer struct {
	CheckSyntax bool
}

// Format implements Normalizer.
func (n *TurtleNormalizer) Format() Format { return FormatTurtle }

// Normalize implements Normalizer.
func (n *TurtleNormalizer) Normalize(resp *providers.Response) Result {
	return n.NormalizeText(resp.Text())
}

// NormalizeText strips a ```ttl fence and returns the rest verbatim.
func (n *TurtleNormalizer) NormalizeText(text string) Result {
	var res Result
	if strings.TrimSpace(text) == "" {
		res.Artifact = EmptyArtifact(FormatTurtle)
		res.add(CodeEmptyResponse, false, "model returned no text")
		return res
	}

	payload, stripped := StripFence(text, FormatTurtle.FenceOpener())
	if stripped {
		res.add(CodeFenceStripped, false, "")
	}
	res.Artifact = Artifact{Format: FormatTurtle, Turtle: payload}

	if n.CheckSyntax && !res.Artifact.Empty() {
		if err := CheckTurtle(payload); err != nil {
			res.add(CodeTurtleSyntax, true, err.Error())
		}
	}
	return res
}

// CheckTurtle decodes every triple in s and returns the first syntax error.
func CheckTurtle(s string) error {
	dec := rdf.NewTripleDecoder(strings.NewReader(s), rdf.Turtle)
	for n := 0; ; n++ {
		_, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("turtle syntax error after %d triples: %w", n, err)
		}
	}
}

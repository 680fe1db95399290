package normalize

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackzampolin/pdf2kg/internal/providers"
)

// JSONNormalizer extracts a JSON object from model output.
type JSONNormalizer struct {
	Schema *Schema
}

// Format implements Normalizer.
func (n *JSONNormalizer) Format() Format { return FormatJSON }

// Normalize implements Normalizer.
func (n *JSONNormalizer) Normalize(resp *providers.Response) Result {
	return n.NormalizeText(resp.Text())
}

// NormalizeText parses text as a JSON object. It tries, in order, the whole
// (fence-stripped) payload and the greedy brace span inside it.
func (n *JSONNormalizer) NormalizeText(text string) Result {
	var res Result
	if strings.TrimSpace(text) == "" {
		res.Artifact = EmptyArtifact(FormatJSON)
		res.add(CodeEmptyResponse, false, "model returned no text")
		return res
	}

	payload, stripped := StripFence(text, FormatJSON.FenceOpener())
	if stripped {
		res.add(CodeFenceStripped, false, "")
	}
	payload = strings.TrimSpace(payload)

	obj, err := parseObject(payload)
	if err == nil {
		res.Artifact = Artifact{Format: FormatJSON, JSON: obj}
		n.validate(&res)
		return res
	}
	res.add(CodeStrictParseFailed, true, err.Error())

	span := BraceSpan(payload)
	if span == "" {
		res.Artifact = EmptyArtifact(FormatJSON)
		res.add(CodeNoBraceSpan, true, "no {...} span in response")
		return res
	}

	obj, err = parseObject(span)
	if err != nil {
		res.Artifact = EmptyArtifact(FormatJSON)
		res.add(CodeRecoveryFailed, true, err.Error())
		return res
	}

	res.Artifact = Artifact{Format: FormatJSON, JSON: obj}
	res.add(CodeRecoveredBraceSpan, true, fmt.Sprintf("recovered %d of %d bytes", len(span), len(payload)))
	n.validate(&res)
	return res
}

func (n *JSONNormalizer) validate(res *Result) {
	if n.Schema == nil || res.Artifact.Empty() {
		return
	}
	if err := n.Schema.Validate(res.Artifact.JSON); err != nil {
		res.add(CodeSchemaMismatch, true, err.Error())
	}
}

// parseObject strictly parses s as a single JSON object.
func parseObject(s string) (json.RawMessage, error) {
	if s == "" {
		return nil, fmt.Errorf("empty payload")
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, fmt.Errorf("invalid JSON object: %w", err)
	}
	if obj == nil {
		return nil, fmt.Errorf("invalid JSON object: null")
	}
	return json.RawMessage(s), nil
}

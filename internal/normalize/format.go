package normalize

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownFormat is returned for an output format name that is not supported.
var ErrUnknownFormat = errors.New("unknown output format")

// Format is a target artifact syntax.
type Format string

const (
	FormatTurtle Format = "turtle"
	FormatJSON   Format = "json"
)

// closingFence terminates a markdown code block.
const closingFence = "```"

// ParseFormat maps a user-facing name ("ttl", "turtle", "json") to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ttl", "turtle":
		return FormatTurtle, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// ParseFormats parses names into an ordered set; duplicates are dropped.
func ParseFormats(names []string) ([]Format, error) {
	seen := make(map[Format]bool, len(names))
	formats := make([]Format, 0, len(names))
	for _, name := range names {
		f, err := ParseFormat(name)
		if err != nil {
			return nil, err
		}
		if seen[f] {
			continue
		}
		seen[f] = true
		formats = append(formats, f)
	}
	return formats, nil
}

// Extension returns the output file extension without the dot.
func (f Format) Extension() string {
	switch f {
	case FormatTurtle:
		return "ttl"
	case FormatJSON:
		return "json"
	}
	return string(f)
}

// FenceOpener is the only code-fence opener stripped for this format.
func (f Format) FenceOpener() string {
	return "```" + f.Extension()
}

// DisplayName is the syntax name used in prompts and logs.
func (f Format) DisplayName() string {
	switch f {
	case FormatTurtle:
		return "Turtle (TTL)"
	case FormatJSON:
		return "JSON"
	}
	return string(f)
}

// Package api renders command results for the terminal in a structured format.
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// OutputFormat defines the output format for CLI commands.
type OutputFormat string

const (
	OutputFormatYAML OutputFormat = "yaml"
	OutputFormatJSON OutputFormat = "json"
)

// ParseOutputFormat maps a --output flag value to an OutputFormat.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case OutputFormatYAML, "":
		return OutputFormatYAML, nil
	case OutputFormatJSON:
		return OutputFormatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format: %q (want yaml or json)", s)
	}
}

// Printer writes command results to a writer.
type Printer struct {
	w      io.Writer
	format OutputFormat
}

// NewPrinter returns a Printer writing to stdout.
func NewPrinter(format OutputFormat) *Printer {
	return &Printer{w: os.Stdout, format: format}
}

// NewPrinterTo returns a Printer writing to w.
func NewPrinterTo(w io.Writer, format OutputFormat) *Printer {
	return &Printer{w: w, format: format}
}

// Print encodes data in the printer's format.
func (p *Printer) Print(data any) error {
	return OutputTo(p.w, p.format, data)
}

// OutputTo writes data to the given writer in the specified format.
func OutputTo(w io.Writer, format OutputFormat, data any) error {
	switch format {
	case OutputFormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(data)
	case OutputFormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(data)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

package api

import (
	"bytes"
	"strings"
	"testing"
)

type sample struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"yaml", OutputFormatYAML, false},
		{"", OutputFormatYAML, false},
		{"json", OutputFormatJSON, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOutputFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOutputFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseOutputFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPrinter(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := NewPrinterTo(&buf, OutputFormatJSON).Print(sample{Name: "a<b", Count: 2}); err != nil {
			t.Fatalf("Print() error = %v", err)
		}
		want := "{\n  \"name\": \"a<b\",\n  \"count\": 2\n}\n"
		if buf.String() != want {
			t.Errorf("got %q, want %q", buf.String(), want)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		if err := NewPrinterTo(&buf, OutputFormatYAML).Print(sample{Name: "report", Count: 1}); err != nil {
			t.Fatalf("Print() error = %v", err)
		}
		if !strings.Contains(buf.String(), "name: report") || !strings.Contains(buf.String(), "count: 1") {
			t.Errorf("unexpected yaml: %q", buf.String())
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		if err := OutputTo(&bytes.Buffer{}, "xml", sample{}); err == nil {
			t.Error("expected error for unknown format")
		}
	})
}

package normalize

import (
	"errors"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "ttl", want: FormatTurtle},
		{in: "Turtle", want: FormatTurtle},
		{in: " json ", want: FormatJSON},
		{in: "xml", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownFormat) {
					t.Fatalf("ParseFormat(%q) error = %v, want ErrUnknownFormat", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFormat(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseFormats(t *testing.T) {
	got, err := ParseFormats([]string{"json", "ttl", "turtle", "JSON"})
	if err != nil {
		t.Fatalf("ParseFormats() error = %v", err)
	}
	if len(got) != 2 || got[0] != FormatJSON || got[1] != FormatTurtle {
		t.Errorf("ParseFormats() = %v, want [json turtle]", got)
	}

	if _, err := ParseFormats([]string{"json", "csv"}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestFormatNames(t *testing.T) {
	if FormatTurtle.Extension() != "ttl" || FormatJSON.Extension() != "json" {
		t.Errorf("unexpected extensions: %s %s", FormatTurtle.Extension(), FormatJSON.Extension())
	}
	if FormatTurtle.FenceOpener() != "```ttl" || FormatJSON.FenceOpener() != "```json" {
		t.Errorf("unexpected fence openers: %s %s", FormatTurtle.FenceOpener(), FormatJSON.FenceOpener())
	}
}

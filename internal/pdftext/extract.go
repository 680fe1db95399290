// Package pdftext extracts plain text from PDF files.
package pdftext

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Extractor returns the text of a PDF.
type Extractor interface {
	Extract(ctx context.Context, path string) (*Document, error)
}

// Document is the extracted text of one PDF.
type Document struct {
	Path  string
	Text  string
	Pages int

	// EmptyPages counts pages that yielded no text.
	EmptyPages int
}

// Empty reports whether no page yielded any text.
func (d *Document) Empty() bool {
	return d == nil || strings.TrimSpace(d.Text) == ""
}

// Config configures a PDFExtractor.
type Config struct {
	// VerifyPageCount cross-checks the page count with pdfcpu and logs a
	// warning on mismatch.
	VerifyPageCount bool
	Logger          *slog.Logger
}

// PDFExtractor extracts text with ledongthuc/pdf.
type PDFExtractor struct {
	verify bool
	logger *slog.Logger
}

// New creates a PDFExtractor.
func New(cfg Config) *PDFExtractor {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &PDFExtractor{verify: cfg.VerifyPageCount, logger: cfg.Logger}
}

// Extract concatenates the text of every page in order, each followed by a
// newline. A page without extractable text contributes only its newline.
func (e *PDFExtractor) Extract(ctx context.Context, path string) (*Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	doc := &Document{Path: path, Pages: r.NumPage()}

	var buf strings.Builder
	for i := 1; i <= doc.Pages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := pageText(r, i)
		if err != nil {
			e.logger.Warn("failed to extract page text", "path", path, "page", i, "error", err)
		}
		if strings.TrimSpace(text) == "" {
			doc.EmptyPages++
		}
		buf.WriteString(text)
		buf.WriteString("\n")
	}
	doc.Text = buf.String()

	if e.verify {
		e.verifyPageCount(path, doc.Pages)
	}

	e.logger.Debug("extracted PDF text",
		"path", path,
		"pages", doc.Pages,
		"empty_pages", doc.EmptyPages,
		"chars", len(doc.Text),
	)
	return doc, nil
}

// pageText returns "" for a null page. The reader panics on some malformed
// content streams; that is reported as an error for the page.
func pageText(r *pdf.Reader, i int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("panic reading page: %v", rec)
		}
	}()

	p := r.Page(i)
	if p.V.IsNull() {
		return "", nil
	}
	return p.GetPlainText(nil)
}

func (e *PDFExtractor) verifyPageCount(path string, pages int) {
	n, err := PageCount(path)
	if err != nil {
		e.logger.Warn("pdfcpu could not count pages", "path", path, "error", err)
		return
	}
	if n != pages {
		e.logger.Warn("page count mismatch", "path", path, "extracted", pages, "pdfcpu", n)
	}
}

// PageCount returns the number of pages according to pdfcpu.
func PageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	n, err := api.PageCount(f, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get page count: %w", err)
	}
	return n, nil
}

// Verify interface
var _ Extractor = (*PDFExtractor)(nil)

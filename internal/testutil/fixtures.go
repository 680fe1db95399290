// Package testutil holds fixtures shared by package tests: generated PDFs,
// small OWL ontologies and a discarding logger.
package testutil

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// TestingT is the subset of testing.T the fixtures need.
type TestingT interface {
	Helper()
	Fatalf(format string, args ...any)
}

// QuietLogger discards everything.
func QuietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// WritePDF renders one page per entry into dir/name. An empty entry makes a
// blank page. Streams are left uncompressed so extracted text is predictable.
func WritePDF(t TestingT, dir, name string, pages ...string) string {
	t.Helper()

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetCompression(false)
	for _, text := range pages {
		doc.AddPage()
		doc.SetFont("Helvetica", "", 12)
		if text != "" {
			doc.Cell(40, 10, text)
		}
	}

	path := filepath.Join(dir, name)
	if err := doc.OutputFileAndClose(path); err != nil {
		t.Fatalf("failed to write PDF: %v", err)
	}
	return path
}

// WriteFile writes content to dir/name and returns the path.
func WriteFile(t TestingT, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// OWLDocument returns an RDF/XML ontology under http://example.org/<name>
// declaring the class #Thing, the object property #relatesTo and the
// datatype property #label, plus an owl:imports per entry.
func OWLDocument(name string, imports ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?>
<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"
         xmlns:rdfs="http://www.w3.org/2000/01/rdf-schema#"
         xmlns:owl="http://www.w3.org/2002/07/owl#">
`)
	fmt.Fprintf(&b, "  <owl:Ontology rdf:about=\"http://example.org/%s\">\n", name)
	for _, imp := range imports {
		fmt.Fprintf(&b, "    <owl:imports rdf:resource=\"%s\"/>\n", imp)
	}
	b.WriteString("  </owl:Ontology>\n")
	fmt.Fprintf(&b, "  <owl:Class rdf:about=\"http://example.org/%s#Thing\"/>\n", name)
	fmt.Fprintf(&b, "  <owl:ObjectProperty rdf:about=\"http://example.org/%s#relatesTo\"/>\n", name)
	fmt.Fprintf(&b, "  <owl:DatatypeProperty rdf:about=\"http://example.org/%s#label\"/>\n", name)
	b.WriteString("</rdf:RDF>\n")
	return b.String()
}

// FileURL turns a local path into a file:// URL.
func FileURL(path string) string {
	return "file://" + filepath.ToSlash(path)
}

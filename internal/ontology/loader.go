package ontology

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/knakk/rdf"
)

// Config configures a Loader.
type Config struct {
	// FollowImports loads owl:imports targets recursively.
	FollowImports bool

	// Timeout bounds each remote fetch (default 30s).
	Timeout time.Duration

	// Attempts is the number of tries per remote fetch (default 3).
	Attempts int

	// RetryDelay is the base backoff between remote attempts (default 500ms).
	RetryDelay time.Duration

	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Loader builds a Schema from an RDF/XML ontology document.
type Loader struct {
	followImports bool
	timeout       time.Duration
	attempts      int
	retryDelay    time.Duration
	client        *http.Client
	logger        *slog.Logger
}

// NewLoader creates a Loader.
func NewLoader(cfg Config) *Loader {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 500 * time.Millisecond
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Loader{
		followImports: cfg.FollowImports,
		timeout:       cfg.Timeout,
		attempts:      cfg.Attempts,
		retryDelay:    cfg.RetryDelay,
		client:        cfg.HTTPClient,
		logger:        cfg.Logger,
	}
}

// Load parses the ontology at location, a file path or file/http(s) URL.
// A failure to read or parse the main document is returned as an error.
// Import failures are logged, recorded in Schema.FailedImports, and skipped.
func (l *Loader) Load(ctx context.Context, location string) (*Schema, error) {
	schema := &Schema{
		Classes:    []string{},
		Properties: []string{},
	}

	doc, err := l.loadDocument(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to load ontology %s: %w", location, err)
	}
	visited := map[string]bool{canonical(location): true}
	schema.merge(location, doc)

	if l.followImports {
		l.loadImports(ctx, location, doc.imports, schema, visited)
	}

	l.logger.Info("ontology loaded",
		"location", location,
		"classes", len(schema.Classes),
		"properties", len(schema.Properties),
		"documents", len(schema.Sources),
		"failed_imports", len(schema.FailedImports),
	)
	return schema, nil
}

// loadImports walks imports depth-first. visited guards against cycles and
// repeated imports.
func (l *Loader) loadImports(ctx context.Context, base string, imports []string, schema *Schema, visited map[string]bool) {
	for _, ref := range imports {
		if ctx.Err() != nil {
			return
		}

		location, err := resolve(base, ref)
		if err != nil {
			l.importFailed(schema, ref, err)
			continue
		}
		key := canonical(location)
		if visited[key] {
			l.logger.Debug("ontology import already loaded", "location", location)
			continue
		}
		visited[key] = true

		doc, err := l.loadDocument(ctx, location)
		if err != nil {
			l.importFailed(schema, location, err)
			continue
		}
		schema.merge(location, doc)
		l.logger.Debug("ontology import loaded",
			"location", location,
			"classes", len(doc.classes),
			"properties", len(doc.properties),
		)

		l.loadImports(ctx, location, doc.imports, schema, visited)
	}
}

func (l *Loader) importFailed(schema *Schema, location string, err error) {
	l.logger.Warn("failed to load ontology import", "location", location, "error", err)
	schema.FailedImports = append(schema.FailedImports, ImportFailure{
		Location: location,
		Error:    err.Error(),
	})
}

func (l *Loader) loadDocument(ctx context.Context, location string) (*document, error) {
	raw, err := l.fetch(ctx, location)
	if err != nil {
		return nil, err
	}
	return parseDocument(bytes.NewReader(raw))
}

func (s *Schema) merge(location string, doc *document) {
	s.Classes = append(s.Classes, doc.classes...)
	s.Properties = append(s.Properties, doc.properties...)
	s.Sources = append(s.Sources, location)
}

// parseDocument decodes RDF/XML and collects named classes, object and
// datatype properties, and import targets. Blank-node subjects (anonymous
// class expressions) are skipped. A document without triples is an error.
func parseDocument(r io.Reader) (*document, error) {
	dec := rdf.NewTripleDecoder(r, rdf.RDFXML)

	doc := &document{}
	seenClass := make(map[string]bool)
	seenProp := make(map[string]bool)
	seenImport := make(map[string]bool)

	triples := 0
	for {
		t, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse RDF/XML: %w", err)
		}
		triples++

		pred, ok := t.Pred.(rdf.IRI)
		if !ok {
			continue
		}

		switch pred.String() {
		case rdfType:
			subj, ok := t.Subj.(rdf.IRI)
			if !ok {
				continue
			}
			obj, ok := t.Obj.(rdf.IRI)
			if !ok {
				continue
			}
			name := subj.String()
			switch obj.String() {
			case owlClass:
				if !seenClass[name] {
					seenClass[name] = true
					doc.classes = append(doc.classes, name)
				}
			case owlObjectProperty, owlDatatypeProperty:
				if !seenProp[name] {
					seenProp[name] = true
					doc.properties = append(doc.properties, name)
				}
			}
		case owlImports:
			obj, ok := t.Obj.(rdf.IRI)
			if !ok {
				continue
			}
			ref := obj.String()
			if !seenImport[ref] {
				seenImport[ref] = true
				doc.imports = append(doc.imports, ref)
			}
		}
	}
	if triples == 0 {
		return nil, errors.New("no RDF/XML triples found")
	}
	return doc, nil
}

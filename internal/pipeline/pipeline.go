// Package pipeline runs PDFs through extraction, prompting, the model,
// normalization and writing.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jackzampolin/pdf2kg/internal/llmcall"
	"github.com/jackzampolin/pdf2kg/internal/normalize"
	"github.com/jackzampolin/pdf2kg/internal/ontology"
	"github.com/jackzampolin/pdf2kg/internal/output"
	"github.com/jackzampolin/pdf2kg/internal/pdftext"
	"github.com/jackzampolin/pdf2kg/internal/prompts/extract"
	"github.com/jackzampolin/pdf2kg/internal/providers"
)

// PromptBuilder renders the prompt for one document and format.
type PromptBuilder interface {
	Build(text string, schema *ontology.Schema, f normalize.Format) (*extract.Prompt, error)
}

// Config wires a Pipeline.
type Config struct {
	Schema      *ontology.Schema
	Formats     []normalize.Format
	Extractor   pdftext.Extractor
	Prompts     PromptBuilder
	Client      providers.Client
	Model       string // Empty uses the client default
	Normalizers map[normalize.Format]normalize.Normalizer
	Writer      *output.Writer

	// Workers is the number of files processed at once (default 1).
	Workers int

	// SkipExisting leaves a (file, format) alone when its artifact exists.
	SkipExisting bool

	// Calls, if set, records every model query.
	Calls *llmcall.Recorder

	Logger *slog.Logger
}

// Pipeline processes PDFs. The schema is shared read-only across files.
type Pipeline struct {
	schema       *ontology.Schema
	formats      []normalize.Format
	extractor    pdftext.Extractor
	prompts      PromptBuilder
	client       providers.Client
	model        string
	normalizers  map[normalize.Format]normalize.Normalizer
	writer       *output.Writer
	workers      int
	skipExisting bool
	calls        *llmcall.Recorder
	logger       *slog.Logger
}

// New validates cfg and creates a Pipeline.
func New(cfg Config) (*Pipeline, error) {
	switch {
	case cfg.Extractor == nil:
		return nil, errors.New("pipeline: extractor is required")
	case cfg.Prompts == nil:
		return nil, errors.New("pipeline: prompt builder is required")
	case cfg.Client == nil:
		return nil, errors.New("pipeline: model client is required")
	case cfg.Writer == nil:
		return nil, errors.New("pipeline: writer is required")
	case len(cfg.Formats) == 0:
		return nil, errors.New("pipeline: at least one format is required")
	}
	for _, f := range cfg.Formats {
		if _, ok := cfg.Normalizers[f]; !ok {
			return nil, fmt.Errorf("pipeline: no normalizer for format %q", f)
		}
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Pipeline{
		schema:       cfg.Schema,
		formats:      cfg.Formats,
		extractor:    cfg.Extractor,
		prompts:      cfg.Prompts,
		client:       cfg.Client,
		model:        cfg.Model,
		normalizers:  cfg.Normalizers,
		writer:       cfg.Writer,
		workers:      cfg.Workers,
		skipExisting: cfg.SkipExisting,
		calls:        cfg.Calls,
		logger:       cfg.Logger,
	}, nil
}

// Run processes every PDF in dir. Per-file failures are recorded in the
// report and never stop the run. On cancellation no new files are started
// and the partial report is returned with the context error.
func (p *Pipeline) Run(ctx context.Context, dir string) (*Report, error) {
	paths, err := ListPDFs(dir)
	if err != nil {
		return nil, err
	}

	report := &Report{
		RunID:     uuid.New().String(),
		Dir:       dir,
		Provider:  p.client.Name(),
		StartedAt: time.Now(),
	}
	logger := p.logger.With("run_id", report.RunID)
	logger.Info("starting run", "dir", dir, "files", len(paths), "formats", p.formats, "workers", p.workers)

	results := make([]*FileReport, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, path := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			fr := p.processFile(gctx, logger, report.RunID, path)
			results[i] = &fr
			return nil
		})
	}
	_ = g.Wait()

	for _, fr := range results {
		if fr != nil {
			report.Files = append(report.Files, *fr)
		}
	}
	report.FinishedAt = time.Now()
	report.tally()

	logger.Info("run finished",
		"files", len(report.Files),
		"written", report.Counts[OutcomeWritten],
		"skipped", report.Counts[OutcomeSkippedEmpty]+report.Counts[OutcomeSkippedExisting],
		"failed", report.Counts[OutcomeExtractFailed]+report.Counts[OutcomeWriteFailed]+report.Counts[OutcomePromptFailed],
		"query_failed", report.Counts[OutcomeQueryFailed],
		"duration", report.FinishedAt.Sub(report.StartedAt),
	)

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

// ProcessFile runs one PDF through every configured format.
func (p *Pipeline) ProcessFile(ctx context.Context, path string) FileReport {
	return p.processFile(ctx, p.logger, "", path)
}

// processFile extracts text once and then handles each format in order on
// the calling goroutine.
func (p *Pipeline) processFile(ctx context.Context, logger *slog.Logger, runID, path string) FileReport {
	start := time.Now()
	logger = logger.With("file", filepath.Base(path))
	fr := FileReport{File: path}

	pending := make([]normalize.Format, 0, len(p.formats))
	for _, f := range p.formats {
		if p.skipExisting && p.writer.Exists(path, f) {
			logger.Info("artifact exists, skipping", "format", f, "path", p.writer.Path(path, f))
			fr.Formats = append(fr.Formats, FormatReport{
				Format:  f,
				Outcome: OutcomeSkippedExisting,
				Path:    p.writer.Path(path, f),
			})
			continue
		}
		pending = append(pending, f)
	}
	if len(pending) == 0 {
		fr.Duration = time.Since(start)
		return fr
	}

	logger.Info("processing")
	doc, err := p.extractor.Extract(ctx, path)
	if err != nil {
		logger.Error("text extraction failed", "error", err)
		for _, f := range pending {
			fr.Formats = append(fr.Formats, FormatReport{Format: f, Outcome: OutcomeExtractFailed, Error: err.Error()})
		}
		fr.Duration = time.Since(start)
		return fr
	}
	fr.Pages = doc.Pages
	if doc.Empty() {
		logger.Warn("no extractable text", "pages", doc.Pages)
	}

	for _, f := range pending {
		if ctx.Err() != nil {
			break
		}
		fr.Formats = append(fr.Formats, p.processFormat(ctx, logger.With("format", f), runID, path, doc.Text, f))
	}
	fr.Duration = time.Since(start)
	return fr
}

func (p *Pipeline) processFormat(ctx context.Context, logger *slog.Logger, runID, path, text string, f normalize.Format) FormatReport {
	start := time.Now()
	rep := FormatReport{Format: f}

	prompt, err := p.prompts.Build(text, p.schema, f)
	if err != nil {
		logger.Error("failed to build prompt", "error", err)
		rep.Outcome = OutcomePromptFailed
		rep.Error = err.Error()
		rep.Duration = time.Since(start)
		return rep
	}
	rep.PromptHash = prompt.Hash

	queryStart := time.Now()
	resp, err := p.client.Generate(ctx, &providers.GenerateRequest{
		Prompt: prompt.Text,
		Model:  p.model,
	})
	p.calls.Record(llmcall.FromResponse(resp, llmcall.RecordOptions{
		RunID:      runID,
		File:       path,
		Format:     string(f),
		PromptKey:  prompt.Key,
		PromptHash: prompt.Hash,
		Provider:   p.client.Name(),
		Latency:    time.Since(queryStart),
		Err:        err,
	}))
	if err != nil {
		// A failed query is treated as a response with no text.
		logger.Error("model query failed", "provider", p.client.Name(), "error", err)
		resp = nil
		rep.Error = err.Error()
	} else {
		logger.Debug("model responded",
			"provider", resp.Provider,
			"request_id", resp.RequestID,
			"model", resp.ModelVersion,
			"prompt_key", prompt.Key,
			"prompt_hash", prompt.Hash,
		)
	}

	res := p.normalizers[f].Normalize(resp)
	rep.Diagnostics = res.Diagnostics
	for _, d := range res.Diagnostics {
		if d.Warn {
			logger.Warn("normalization", "code", d.Code, "detail", d.Message)
		} else {
			logger.Debug("normalization", "code", d.Code, "detail", d.Message)
		}
	}

	if res.Artifact.Empty() {
		if rep.Error != "" {
			rep.Outcome = OutcomeQueryFailed
		} else {
			rep.Outcome = OutcomeSkippedEmpty
		}
		logger.Info(fmt.Sprintf("no %s data extracted, skipping", f.DisplayName()))
		rep.Duration = time.Since(start)
		return rep
	}

	out, err := p.writer.Write(path, res.Artifact)
	if err != nil {
		logger.Error("failed to write artifact", "error", err)
		rep.Outcome = OutcomeWriteFailed
		rep.Error = err.Error()
		rep.Duration = time.Since(start)
		return rep
	}

	logger.Info(fmt.Sprintf("%s data saved", f.DisplayName()), "path", out)
	rep.Outcome = OutcomeWritten
	rep.Path = out
	rep.Duration = time.Since(start)
	return rep
}

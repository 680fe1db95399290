package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/pdf2kg/internal/config"
	"github.com/jackzampolin/pdf2kg/internal/llmcall"
	"github.com/jackzampolin/pdf2kg/internal/normalize"
	"github.com/jackzampolin/pdf2kg/internal/ontology"
	"github.com/jackzampolin/pdf2kg/internal/output"
	"github.com/jackzampolin/pdf2kg/internal/pdftext"
	"github.com/jackzampolin/pdf2kg/internal/pipeline"
	"github.com/jackzampolin/pdf2kg/internal/prompts"
	"github.com/jackzampolin/pdf2kg/internal/prompts/extract"
	"github.com/jackzampolin/pdf2kg/internal/providers"
)

// Flags shared by run and watch. Config-backed flags are read back through
// viper when set; only model has no config key.
var modelOverride string

func addPipelineFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("ontology", "", "path or URL of the RDF/XML ontology")
	f.Bool("follow-imports", true, "load owl:imports transitively")
	f.StringSlice("formats", nil, "output formats: turtle, json (default from config)")
	f.Int("workers", 1, "number of PDFs processed at once")
	f.String("output-dir", "", "write artifacts here instead of next to each PDF")
	f.String("provider", "", "provider entry from config (default from config)")
	f.StringVar(&modelOverride, "model", "", "model name, overrides the provider's configured model")
	f.String("json-schema", "", "JSON Schema file checked against JSON artifacts")
	f.Bool("check-turtle", true, "syntax-check Turtle artifacts and warn on errors")
	f.Bool("skip-existing", false, "skip formats whose artifact already exists")
	f.String("prompts-dir", "", "directory of prompt overrides (default: <home>/prompts)")
	f.String("call-log", "", "append a JSON line per model call to this file")
}

// newOntologyLoader maps the import_fetch settings onto a Loader.
func newOntologyLoader(cfg *config.Config, logger *slog.Logger) *ontology.Loader {
	return ontology.NewLoader(ontology.Config{
		FollowImports: cfg.FollowImports,
		Timeout:       time.Duration(cfg.ImportFetch.TimeoutSeconds) * time.Second,
		Attempts:      cfg.ImportFetch.Attempts,
		Logger:        logger,
	})
}

// newResolver builds the prompt resolver over the configured overrides dir.
func newResolver(cfg *config.Config, logger *slog.Logger) (*prompts.Resolver, error) {
	dir := cfg.PromptsDir
	if dir == "" {
		h, err := getHome()
		if err != nil {
			return nil, err
		}
		dir = h.PromptsPath()
	}
	resolver := prompts.NewResolver(prompts.NewStore(dir, logger), logger)
	extract.RegisterPrompts(resolver)
	return resolver, nil
}

// buildPipeline wires every stage from configuration. The ontology is loaded
// once here and shared by all files. The returned closer flushes the call log.
func buildPipeline(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pipeline.Pipeline, io.Closer, error) {
	p, calls, err := newPipeline(ctx, cfg, logger)
	if err != nil {
		_ = calls.Close()
		return nil, nil, err
	}
	return p, calls, nil
}

func newPipeline(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pipeline.Pipeline, *llmcall.Recorder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	formats, err := normalize.ParseFormats(cfg.Formats)
	if err != nil {
		return nil, nil, err
	}

	clientCfg, err := cfg.ToClientConfig(cfg.Provider)
	if err != nil {
		return nil, nil, err
	}
	clientCfg.Logger = logger
	client, err := providers.NewClient(clientCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("provider %s: %w", cfg.Provider, err)
	}

	resolver, err := newResolver(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	builder, err := extract.NewBuilder(resolver, formats)
	if err != nil {
		return nil, nil, err
	}

	opts := normalize.Options{CheckTurtle: cfg.CheckTurtle}
	if cfg.JSONSchema != "" {
		schema, err := normalize.LoadSchema(cfg.JSONSchema)
		if err != nil {
			return nil, nil, err
		}
		opts.JSONSchema = schema
	}
	normalizers, err := normalize.NewSet(formats, opts)
	if err != nil {
		return nil, nil, err
	}

	schema, err := newOntologyLoader(cfg, logger).Load(ctx, cfg.Ontology)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("ontology loaded",
		"classes", len(schema.Classes),
		"properties", len(schema.Properties),
		"sources", len(schema.Sources),
		"failed_imports", len(schema.FailedImports),
	)
	if schema.Empty() {
		logger.Warn("ontology declares no classes or properties", "ontology", cfg.Ontology)
	}

	var calls *llmcall.Recorder
	if cfg.CallLog != "" {
		calls, err = llmcall.OpenFile(cfg.CallLog, logger)
		if err != nil {
			return nil, nil, err
		}
	}

	p, err := pipeline.New(pipeline.Config{
		Schema:  schema,
		Formats: formats,
		Extractor: pdftext.New(pdftext.Config{
			VerifyPageCount: true,
			Logger:          logger,
		}),
		Prompts:      builder,
		Client:       client,
		Model:        modelOverride,
		Normalizers:  normalizers,
		Writer:       output.NewWriter(output.Config{Dir: cfg.OutputDir, Logger: logger}),
		Workers:      cfg.Workers,
		SkipExisting: cfg.SkipExisting,
		Calls:        calls,
		Logger:       logger,
	})
	return p, calls, err
}

// pdfDir picks the positional directory over the configured one.
func pdfDir(cfg *config.Config, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.PDFDir
}

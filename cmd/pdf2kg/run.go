package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/pdf2kg/internal/api"
	"github.com/jackzampolin/pdf2kg/internal/pipeline"
)

var reportPath string

var runCmd = &cobra.Command{
	Use:   "run [pdf-dir]",
	Short: "Convert every PDF in a directory",
	Long: `Convert every PDF in a directory into the configured formats.

The ontology is loaded once. Each PDF is read, then prompted once per
format. Empty responses are skipped without writing a file. A file that
cannot be read or written is reported and the run continues; the exit
status is non-zero if any file failed.

Examples:
  pdf2kg run ./papers --ontology ontology.owl
  pdf2kg run ./papers --formats json --output-dir ./out
  pdf2kg run --provider openrouter --model anthropic/claude-3.5-sonnet
  pdf2kg run ./papers --report report.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		mgr, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cfg := mgr.Get()

		p, calls, err := buildPipeline(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer calls.Close()

		report, err := p.Run(ctx, pdfDir(cfg, args))
		if report != nil {
			if perr := printReport(report); perr != nil {
				return perr
			}
		}
		if err != nil {
			return err
		}
		if report.Failed() {
			return errRunFailed
		}
		return nil
	},
}

func init() {
	addPipelineFlags(runCmd)
	runCmd.Flags().StringVar(&reportPath, "report", "", "also write the run report to this file (.json or .yaml)")
	rootCmd.AddCommand(runCmd)
}

func printReport(report *pipeline.Report) error {
	if err := printer.Print(report); err != nil {
		return err
	}
	if reportPath == "" {
		return nil
	}

	format := api.OutputFormatYAML
	if strings.EqualFold(filepath.Ext(reportPath), ".json") {
		format = api.OutputFormatJSON
	}
	f, err := os.Create(reportPath)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	defer f.Close()
	return api.OutputTo(f, format, report)
}

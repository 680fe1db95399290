package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/pdf2kg/internal/config"
	"github.com/jackzampolin/pdf2kg/internal/watch"
)

var (
	watchDebounce  time.Duration
	watchNoInitial bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [pdf-dir]",
	Short: "Convert PDFs as they appear in a directory",
	Long: `Process the directory once, then keep watching it and convert each
new or rewritten PDF after it has been quiet for the debounce interval.

Changes to log_level in the config file are applied without a restart.
Other settings are read once at startup.

Examples:
  pdf2kg watch ./inbox
  pdf2kg watch ./inbox --skip-existing --debounce 5s`,
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

		mgr.OnChange(func(c *config.Config) {
			levelVar.Set(parseLevel(c.LogLevel))
			logger.Info("config reloaded", "log_level", levelVar.Level())
		})
		if mgr.ConfigFileUsed() != "" {
			mgr.WatchConfig()
		}

		dir := pdfDir(cfg, args)
		if !watchNoInitial {
			report, err := p.Run(ctx, dir)
			if report != nil {
				if perr := printer.Print(report); perr != nil {
					return perr
				}
			}
			if err != nil {
				return err
			}
		}

		logger.Info("watching for PDFs", "dir", dir, "debounce", watchDebounce)
		w := watch.New(watch.Config{Debounce: watchDebounce, Logger: logger},
			func(ctx context.Context, path string) {
				fr := p.ProcessFile(ctx, path)
				if err := printer.Print(fr); err != nil {
					logger.Error("failed to print file report", "file", path, "error", err)
				}
			})
		return w.Run(ctx, dir)
	},
}

func init() {
	addPipelineFlags(watchCmd)
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 2*time.Second, "quiet period before a new PDF is processed")
	watchCmd.Flags().BoolVar(&watchNoInitial, "no-initial", false, "skip the initial pass over existing PDFs")
	rootCmd.AddCommand(watchCmd)
}

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/pdf2kg/internal/api"
	"github.com/jackzampolin/pdf2kg/internal/config"
	"github.com/jackzampolin/pdf2kg/internal/home"
	"github.com/jackzampolin/pdf2kg/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
	logLevel     string
	logFormat    string

	printer  *api.Printer
	levelVar = new(slog.LevelVar)
)

// errRunFailed makes the process exit non-zero after a report is printed.
var errRunFailed = errors.New("one or more files failed")

var rootCmd = &cobra.Command{
	Use:   "pdf2kg",
	Short: "Extract ontology-shaped knowledge from PDFs with an LLM",
	Long: `pdf2kg converts a directory of PDF documents into Turtle and/or JSON
artifacts that follow the classes and properties of an OWL ontology.

For each PDF it:
  - extracts the page text
  - prompts a generative model once per requested format
  - cleans the response (code fences, surrounding prose)
  - writes <name>.ttl and/or <name>.json next to the PDF`,
	Version:      version.GitRelease,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.pdf2kg/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "pdf2kg home directory (default: ~/.pdf2kg)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "", "log level: debug, info, warn, error (default from config)",
	)
	rootCmd.PersistentFlags().StringVar(
		&logFormat, "log-format", "", "log format: text or json (default from config)",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		format, err := api.ParseOutputFormat(outputFormat)
		if err != nil {
			return err
		}
		printer = api.NewPrinter(format)
		return nil
	}

	rootCmd.AddCommand(versionCmd)
}

// getHome returns the home directory, creating it if needed.
func getHome() (*home.Dir, error) {
	h, err := home.New(homeDir)
	if err != nil {
		return nil, err
	}
	if err := h.EnsureExists(); err != nil {
		return nil, fmt.Errorf("failed to create home directory: %w", err)
	}
	return h, nil
}

// loadConfig reads configuration with the command's explicitly set flags
// layered on top, and installs the configured logger as the default.
func loadConfig(cmd *cobra.Command) (*config.Manager, *slog.Logger, error) {
	path := cfgFile
	if path == "" && homeDir != "" {
		h, err := getHome()
		if err != nil {
			return nil, nil, err
		}
		if h.ConfigExists() {
			path = h.ConfigPath()
		}
	}

	mgr, err := config.NewManager(path, cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	logger := newLogger(mgr.Get())
	if used := mgr.ConfigFileUsed(); used != "" {
		logger.Debug("loaded config", "path", used)
	}
	return mgr, logger, nil
}

// newLogger builds the process logger. The level lives in levelVar so a
// config reload can change it.
func newLogger(cfg *config.Config) *slog.Logger {
	levelVar.Set(parseLevel(cfg.LogLevel))
	opts := &slog.HandlerOptions{Level: levelVar}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

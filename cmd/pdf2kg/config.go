package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/pdf2kg/internal/config"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long: `Write the default configuration to --config, or to config.yaml in the
home directory. API keys are written as ${ENV_VAR} references.

Examples:
  pdf2kg config init
  pdf2kg config init --config ./config.yaml --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			h, err := getHome()
			if err != nil {
				return err
			}
			path = h.ConfigPath()
		}

		if _, err := os.Stat(path); err == nil && !configForce {
			return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration after defaults, the config file, PDF2KG_*
environment variables and flags are merged. Literal API keys are masked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cfg := *mgr.Get()

		providers := make(map[string]config.ProviderCfg, len(cfg.Providers))
		for name, p := range cfg.Providers {
			p.APIKey = maskKey(p.APIKey)
			providers[name] = p
		}
		cfg.Providers = providers
		return printer.Print(cfg)
	},
}

// maskKey hides literal keys. ${ENV_VAR} references are shown as written.
func maskKey(key string) string {
	if key == "" || strings.HasPrefix(key, "${") {
		return key
	}
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing config file")
	configCmd.AddCommand(configInitCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}

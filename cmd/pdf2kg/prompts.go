package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var promptsForce bool

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Inspect and export extraction prompts",
	Long: `Extraction prompts are Go templates embedded in the binary. A file
named <key>.tmpl in the prompts directory replaces the embedded default for
that key.`,
}

type promptInfo struct {
	Key         string   `json:"key" yaml:"key"`
	Description string   `json:"description" yaml:"description"`
	Variables   []string `json:"variables" yaml:"variables"`
	Source      string   `json:"source" yaml:"source"`
	Hash        string   `json:"hash" yaml:"hash"`
}

var promptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List prompts and where each resolves from",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		resolver, err := newResolver(mgr.Get(), logger)
		if err != nil {
			return err
		}

		var infos []promptInfo
		for _, p := range resolver.AllEmbedded() {
			resolved, err := resolver.Resolve(p.Key)
			if err != nil {
				return err
			}
			infos = append(infos, promptInfo{
				Key:         p.Key,
				Description: p.Description,
				Variables:   resolved.Variables,
				Source:      resolved.Source,
				Hash:        resolved.Hash,
			})
		}
		return printer.Print(infos)
	},
}

var promptsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the embedded prompts to the prompts directory",
	Long: `Write every embedded prompt to the prompts directory so it can be
edited. Existing files are kept unless --force is given.

Examples:
  pdf2kg prompts export
  pdf2kg prompts export --prompts-dir ./prompts --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		resolver, err := newResolver(mgr.Get(), logger)
		if err != nil {
			return err
		}
		written, err := resolver.ExportAll(promptsForce)
		if err != nil {
			return err
		}
		for _, key := range written {
			fmt.Println(key)
		}
		return nil
	},
}

func init() {
	promptsCmd.PersistentFlags().String("prompts-dir", "", "directory of prompt overrides (default: <home>/prompts)")
	promptsExportCmd.Flags().BoolVar(&promptsForce, "force", false, "overwrite existing override files")
	promptsCmd.AddCommand(promptsListCmd, promptsExportCmd)
	rootCmd.AddCommand(promptsCmd)
}

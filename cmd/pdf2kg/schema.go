package main

import (
	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema [ontology]",
	Short: "Show the classes and properties an ontology declares",
	Long: `Load an ontology the same way a run does and print the schema that
is offered to the model: class IRIs, property IRIs, the documents they came
from and any imports that could not be loaded.

Examples:
  pdf2kg schema ontology.owl
  pdf2kg schema https://example.org/onto.owl --follow-imports=false -o json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cfg := mgr.Get()

		location := cfg.Ontology
		if len(args) > 0 {
			location = args[0]
		}
		schema, err := newOntologyLoader(cfg, logger).Load(cmd.Context(), location)
		if err != nil {
			return err
		}
		return printer.Print(schema)
	},
}

func init() {
	schemaCmd.Flags().Bool("follow-imports", true, "load owl:imports transitively")
	rootCmd.AddCommand(schemaCmd)
}

package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/validate-docs/internal/report"
)

var rulesFormat string

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the validation rules",
	Long: `List every rule with its category, default severity and a one-line
description. Rule identifiers are what exceptions reference in skip_rules.

Examples:
  validate-docs rules
  validate-docs rules --format json`,
	RunE: runRules,
}

func init() {
	rootCmd.AddCommand(rulesCmd)

	rulesCmd.Flags().StringVarP(&rulesFormat, "format", "f", report.FormatText, "Output format (text, json)")
}

func runRules(cmd *cobra.Command, args []string) error {
	catalog := report.Catalog()

	switch rulesFormat {
	case report.FormatJSON:
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(catalog)
	case report.FormatText:
		report.RenderCatalog(cmd.OutOrStdout(), catalog)
		return nil
	default:
		return fmt.Errorf("unsupported format: %s (supported: text, json)", rulesFormat)
	}
}

// Package cmd provides the command-line interface for validate-docs.
//
// This package implements the CLI using the Cobra framework. The root command
// validates component reference pages; subcommands cover continuous
// validation and introspection.
//
// # Available Commands
//
//   - (root): Validate the given files and directories once
//   - watch: Validate, then re-validate pages as they change
//   - rules: List every rule with its category and severity
//   - version: Show build information
//
// # Command Examples
//
//	// Validate every page below a directory
//	validate-docs docs/sources/reference/components
//
//	// Fail on warnings and hints too, with machine-readable output
//	validate-docs --strict --format json docs/sources/reference/components
//
//	// Skip drafts as well as index pages (--exclude replaces the default)
//	validate-docs --exclude '*.draft.md' --exclude _index.md docs
//
//	// Keep validating while editing
//	validate-docs watch docs/sources/reference/components
//
// # Exit Codes
//
// 0 when no page fails, 1 when a page has failing violations, 2 when a page
// could not be read or parsed (or the configuration is invalid).
package cmd

// Package internal contains the implementation packages for validate-docs.
//
// This package follows Go's internal package convention, so none of these
// packages can be imported by other modules.
//
// # Package Organization
//
//   - page: line-oriented markdown parser producing a Document model
//   - rules: per-page rule checks, table schemas, fallback templates and
//     the exceptions allow-list
//   - report: violations, rule catalog, exit codes and text/JSON rendering
//   - scanner: file discovery and bounded parallel validation
//   - watcher: fsnotify monitoring with debouncing for watch mode
//   - config: viper-backed configuration loading and validation
//   - logging: structured logging on top of log/slog
//   - errors: typed errors for parse, I/O and configuration failures
//   - version: build information
//
// # Data Flow
//
// The scanner discovers pages and hands each one to the rules validator,
// which parses it with page.Parse and returns a report.Report. Reports are
// collected in input order and rendered by the report package. In watch
// mode the watcher feeds changed paths back to the scanner, which skips
// pages whose content has not changed since the last run.
//
// Validation of one page never stops the batch: parse failures, read
// failures and panics are all recorded on that page's report.
package internal

package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/conneroisu/validate-docs/internal/report"
	"github.com/conneroisu/validate-docs/internal/scanner"
	"github.com/conneroisu/validate-docs/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir...]",
	Short: "Validate pages, then re-validate them as they change",
	Long: `Validate every page once, then keep watching the directories and
re-validate each page that is created or modified. Saves that leave a page's
content unchanged are ignored.

Examples:
  validate-docs watch                                   # Watch the current directory
  validate-docs watch docs/sources/reference/components
  validate-docs watch --format json docs`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringP("format", "f", report.FormatText, "output format (text, json)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	format := changedOr(cmd.Flags(), "format", s.cfg.Validation.Format)

	ctx, stop := signalContext(cmd)
	defer stop()

	if len(args) == 0 {
		args = []string{"."}
	}

	fileWatcher, err := watcher.NewFileWatcher(s.cfg.Watch.Debounce, s.logger)
	if err != nil {
		return err
	}
	defer fileWatcher.Stop()

	roots := make([]string, 0, len(args))
	for _, root := range args {
		roots = append(roots, filepath.Clean(root))
		if err := fileWatcher.AddRecursive(root); err != nil {
			return fmt.Errorf("watching %s: %w", root, err)
		}
	}

	fileWatcher.AddFilter(watcher.MarkdownFilter)
	fileWatcher.AddFilter(watcher.NoHiddenFilter)
	fileWatcher.AddFilter(func(path string) bool {
		return s.scanner.Matches(relativeToRoots(roots, path))
	})
	fileWatcher.AddHandler(pageChangeHandler(s.scanner, cmd, format))

	interrupted, err := initialPass(ctx, s, cmd, format, args)
	if err != nil || interrupted {
		return err
	}

	fileWatcher.Start(ctx)
	s.logger.Info(ctx, "Watching for changes", "roots", strings.Join(roots, ","))

	<-ctx.Done()
	return nil
}

// initialPass validates every page once and prints the reports, including
// the partial set when ctx is cancelled midway. It reports whether the pass
// was interrupted.
func initialPass(ctx context.Context, s *session, cmd *cobra.Command, format string, args []string) (bool, error) {
	files, err := s.scanner.Discover(ctx, args...)
	if err != nil {
		return false, err
	}
	reports, runErr := s.scanner.ValidateAll(ctx, files)
	if err := report.Render(cmd.OutOrStdout(), format, reports); err != nil {
		return false, err
	}
	return runErr != nil, nil
}

// pageChangeHandler re-validates changed pages and prints their reports.
func pageChangeHandler(s *scanner.PageScanner, cmd *cobra.Command, format string) watcher.ChangeHandler {
	return func(ctx context.Context, events []watcher.ChangeEvent) error {
		var reports []*report.Report
		for _, event := range events {
			if event.Gone() {
				s.Forget(event.Path)
				continue
			}
			if r, ran := s.ScanIfChanged(ctx, event.Path); ran {
				reports = append(reports, r)
			}
		}
		if len(reports) == 0 {
			return nil
		}
		return report.Render(cmd.OutOrStdout(), format, reports)
	}
}

// relativeToRoots returns path relative to the first watched root that
// contains it.
func relativeToRoots(roots []string, path string) string {
	for _, root := range roots {
		rel, err := filepath.Rel(root, path)
		if err == nil && !strings.HasPrefix(rel, "..") {
			return rel
		}
	}
	return filepath.Base(path)
}

// changedOr returns the named flag's value when it was set on the command
// line, and fallback otherwise.
func changedOr(flags *pflag.FlagSet, name, fallback string) string {
	if f := flags.Lookup(name); f != nil && f.Changed {
		return f.Value.String()
	}
	return fallback
}

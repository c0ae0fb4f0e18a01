// Package scanner discovers documentation pages and validates them in
// parallel.
//
// The scanner walks the given roots for markdown pages, applies include and
// exclude patterns, and runs every page through a Validator on a bounded
// errgroup. Results come back in input order so that output is stable no
// matter how the work was scheduled. The scanner also remembers a CRC32 of
// each page it has read, which watch mode uses to skip saves that did not
// change the content.
package scanner

import (
	"context"
	"fmt"
	"hash/crc32"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	docerrors "github.com/conneroisu/validate-docs/internal/errors"
	"github.com/conneroisu/validate-docs/internal/logging"
	"github.com/conneroisu/validate-docs/internal/report"
)

// Validator checks the text of one page.
type Validator interface {
	ValidateText(path, text string) *report.Report
}

// Options configure a PageScanner.
type Options struct {
	// Include patterns are matched against file names found while walking a
	// directory. Files named explicitly are always included.
	Include []string
	// Exclude patterns are matched against the file name and the path
	// relative to the walked root.
	Exclude []string
	Workers int
	Logger  logging.Logger
}

// PageScanner discovers and validates documentation pages.
type PageScanner struct {
	validator Validator
	include   []string
	exclude   []string
	workers   int
	logger    logging.Logger

	// mu protects hashes
	mu     sync.Mutex
	hashes map[string]uint32
}

// NewPageScanner creates a scanner around validator.
func NewPageScanner(validator Validator, opts Options) *PageScanner {
	workers := opts.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	include := opts.Include
	if len(include) == 0 {
		include = []string{"*.md"}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	return &PageScanner{
		validator: validator,
		include:   include,
		exclude:   opts.Exclude,
		workers:   workers,
		logger:    logger.WithComponent("scanner"),
		hashes:    make(map[string]uint32),
	}
}

// Discover expands paths into the list of pages to validate. Directories are
// walked recursively, skipping hidden directories. A path that does not
// exist is kept so that validating it reports the page as unreadable.
func (s *PageScanner) Discover(ctx context.Context, paths ...string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		path = filepath.Clean(path)
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			add(root)
			continue
		}

		var found []string
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == root {
					return err
				}
				s.logger.Warn(ctx, err, "Skipping unreadable path", "path", path)
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}

			if d.IsDir() {
				if path != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}

			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				rel = path
			}
			if s.Matches(rel) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, docerrors.WrapIO(err, docerrors.ErrCodeUnreadableInput,
				fmt.Sprintf("walking %s", root))
		}

		sort.Strings(found)
		for _, f := range found {
			add(f)
		}
	}

	s.logger.Debug(ctx, "Discovered pages", "count", len(files))
	return files, nil
}

// Matches reports whether a path relative to a walked root is a page to
// validate.
func (s *PageScanner) Matches(rel string) bool {
	name := filepath.Base(rel)
	slashed := filepath.ToSlash(rel)

	for _, pattern := range s.exclude {
		if ok, _ := filepath.Match(pattern, name); ok {
			return false
		}
		if ok, _ := filepath.Match(pattern, slashed); ok {
			return false
		}
	}
	for _, pattern := range s.include {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// ValidateAll validates files on at most Workers goroutines. Reports are
// returned in the order of files. When ctx is cancelled no new file is
// started; the reports finished so far are returned along with ctx's error.
func (s *PageScanner) ValidateAll(ctx context.Context, files []string) ([]*report.Report, error) {
	reports := make([]*report.Report, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, file := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			reports[i] = s.ScanFile(gctx, file)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		done := make([]*report.Report, 0, len(reports))
		for _, r := range reports {
			if r != nil {
				done = append(done, r)
			}
		}
		s.logger.Warn(ctx, err, "Validation interrupted", "completed", len(done), "total", len(files))
		return done, err
	}

	return reports, nil
}

// ScanFile reads and validates one page. It always returns a report: read
// failures and validator panics are reported on the page itself.
func (s *PageScanner) ScanFile(ctx context.Context, path string) (r *report.Report) {
	defer func() {
		if rec := recover(); rec != nil {
			err := &docerrors.DocError{
				Type:    docerrors.ErrorTypeInternal,
				Message: fmt.Sprintf("validator panicked: %v", rec),
				Path:    path,
			}
			s.logger.Error(ctx, err, "Validation failed", "path", path)
			r = report.FromError(path, err)
		}
	}()

	content, err := os.ReadFile(path)
	if err != nil {
		s.logger.Warn(ctx, err, "Cannot read page", "path", path)
		return report.FromError(path, docerrors.NewIOError(docerrors.ErrCodeUnreadableInput,
			"reading page", err))
	}

	s.remember(path, content)

	r = s.validator.ValidateText(path, string(content))
	s.logger.Debug(ctx, "Validated page", "path", path, "violations", len(r.Violations))
	return r
}

// ScanIfChanged validates path unless its content is the same as the last
// time the scanner read it. The boolean reports whether validation ran.
func (s *PageScanner) ScanIfChanged(ctx context.Context, path string) (*report.Report, bool) {
	content, err := os.ReadFile(path)
	if err == nil {
		s.mu.Lock()
		previous, known := s.hashes[path]
		s.mu.Unlock()
		if known && previous == crc32.ChecksumIEEE(content) {
			return nil, false
		}
	}
	return s.ScanFile(ctx, path), true
}

// Forget drops the remembered hash of a removed page.
func (s *PageScanner) Forget(path string) {
	s.mu.Lock()
	delete(s.hashes, path)
	s.mu.Unlock()
}

func (s *PageScanner) remember(path string, content []byte) {
	sum := crc32.ChecksumIEEE(content)
	s.mu.Lock()
	s.hashes[path] = sum
	s.mu.Unlock()
}

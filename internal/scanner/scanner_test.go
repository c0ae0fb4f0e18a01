package scanner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/validate-docs/internal/report"
)

// stubValidator reports one violation per line containing "BAD".
type stubValidator struct {
	calls atomic.Int32
}

func (v *stubValidator) ValidateText(path, text string) *report.Report {
	v.calls.Add(1)
	r := report.NewReport(path)
	for i, line := range strings.Split(text, "\n") {
		if strings.Contains(line, "BAD") {
			r.Add(report.New(report.UnknownType, "", i+1, "bad line"))
		}
	}
	return r
}

type panickingValidator struct{}

func (panickingValidator) ValidateText(path, text string) *report.Report {
	panic("boom")
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "loki", "loki.echo.md"), "ok")
	writeFile(t, filepath.Join(root, "loki", "_index.md"), "index")
	writeFile(t, filepath.Join(root, "otelcol", "otelcol.receiver.otlp.md"), "ok")
	writeFile(t, filepath.Join(root, "otelcol", "notes.txt"), "not a page")
	writeFile(t, filepath.Join(root, ".hidden", "secret.md"), "hidden")
	writeFile(t, filepath.Join(root, "drafts", "wip.md"), "draft")

	s := NewPageScanner(&stubValidator{}, Options{
		Exclude: []string{"_index.md", "drafts/*"},
	})

	files, err := s.Discover(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "loki", "loki.echo.md"),
		filepath.Join(root, "otelcol", "otelcol.receiver.otlp.md"),
	}, files)
}

func TestDiscoverExplicitFiles(t *testing.T) {
	root := t.TempDir()
	page := filepath.Join(root, "page.md")
	writeFile(t, page, "ok")
	missing := filepath.Join(root, "missing.md")

	s := NewPageScanner(&stubValidator{}, Options{})
	files, err := s.Discover(context.Background(), page, missing, page)
	require.NoError(t, err)
	assert.Equal(t, []string{page, missing}, files)
}

func TestMatches(t *testing.T) {
	s := NewPageScanner(&stubValidator{}, Options{
		Include: []string{"*.md"},
		Exclude: []string{"_index.md", "shared/*"},
	})

	assert.True(t, s.Matches("loki.echo.md"))
	assert.True(t, s.Matches(filepath.Join("loki", "loki.echo.md")))
	assert.False(t, s.Matches(filepath.Join("loki", "_index.md")))
	assert.False(t, s.Matches(filepath.Join("shared", "deprecated.md")))
	assert.False(t, s.Matches("image.png"))
}

func TestValidateAllKeepsInputOrder(t *testing.T) {
	root := t.TempDir()
	var files []string
	for _, name := range []string{"a.md", "b.md", "c.md", "d.md", "e.md"} {
		path := filepath.Join(root, name)
		content := "fine"
		if name == "c.md" {
			content = "fine\nBAD\n"
		}
		writeFile(t, path, content)
		files = append(files, path)
	}

	validator := &stubValidator{}
	s := NewPageScanner(validator, Options{Workers: 2})

	reports, err := s.ValidateAll(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, reports, len(files))
	for i, r := range reports {
		assert.Equal(t, files[i], r.File)
	}
	assert.Len(t, reports[2].Violations, 1)
	assert.Equal(t, 2, reports[2].Violations[0].Line)
	assert.Equal(t, int32(len(files)), validator.calls.Load())
	assert.Equal(t, report.ExitViolations, report.ExitCode(reports, false))
}

func TestValidateAllUnreadableFile(t *testing.T) {
	root := t.TempDir()
	good := filepath.Join(root, "good.md")
	writeFile(t, good, "fine")
	missing := filepath.Join(root, "missing.md")

	s := NewPageScanner(&stubValidator{}, Options{Workers: 1})
	reports, err := s.ValidateAll(context.Background(), []string{missing, good})
	require.NoError(t, err)
	require.Len(t, reports, 2)

	require.NotNil(t, reports[0].ParseError)
	assert.Equal(t, report.UnreadableInput, reports[0].ParseError.Rule)
	assert.True(t, reports[1].Clean())
	assert.Equal(t, report.ExitParseError, report.ExitCode(reports, false))
}

func TestValidateAllCancelled(t *testing.T) {
	root := t.TempDir()
	page := filepath.Join(root, "page.md")
	writeFile(t, page, "fine")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	validator := &stubValidator{}
	s := NewPageScanner(validator, Options{Workers: 1})
	reports, err := s.ValidateAll(ctx, []string{page, page, page})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, reports)
	assert.Equal(t, int32(0), validator.calls.Load())
}

func TestScanFileRecoversFromPanic(t *testing.T) {
	root := t.TempDir()
	page := filepath.Join(root, "page.md")
	writeFile(t, page, "fine")

	s := NewPageScanner(panickingValidator{}, Options{})
	r := s.ScanFile(context.Background(), page)

	require.NotNil(t, r.ParseError)
	assert.Contains(t, r.ParseError.Message, "boom")
}

func TestScanIfChanged(t *testing.T) {
	root := t.TempDir()
	page := filepath.Join(root, "page.md")
	writeFile(t, page, "fine")

	validator := &stubValidator{}
	s := NewPageScanner(validator, Options{})

	r, ran := s.ScanIfChanged(context.Background(), page)
	assert.True(t, ran)
	assert.NotNil(t, r)

	r, ran = s.ScanIfChanged(context.Background(), page)
	assert.False(t, ran)
	assert.Nil(t, r)

	writeFile(t, page, "BAD")
	r, ran = s.ScanIfChanged(context.Background(), page)
	assert.True(t, ran)
	assert.Len(t, r.Violations, 1)

	s.Forget(page)
	_, ran = s.ScanIfChanged(context.Background(), page)
	assert.True(t, ran)
	assert.Equal(t, int32(3), validator.calls.Load())
}

package rules

import (
	"regexp"
	"strings"

	"github.com/conneroisu/validate-docs/internal/page"
	"github.com/conneroisu/validate-docs/internal/report"
)

var (
	placeholderPattern = regexp.MustCompile(`<[A-Z][A-Z0-9_]*>`)
	sentenceBoundary   = regexp.MustCompile(`[.!?:]\s+`)
)

func checkPlaceholders(ctx *pageContext) []report.Violation {
	var out []report.Violation

	for _, s := range ctx.sections {
		if isExampleSection(s.Name) {
			out = append(out, checkExamplePlaceholders(s)...)
		}
	}

	for _, b := range ctx.doc.Blocks {
		p, ok := b.(*page.Paragraph)
		if !ok {
			continue
		}
		out = append(out, checkPlaceholderMarkup(sectionOf(ctx, p), p)...)
	}

	return out
}

// checkExamplePlaceholders requires every placeholder used in the section's
// code blocks to be explained by a "Replace ..." sentence or the paragraphs
// directly following it.
func checkExamplePlaceholders(s *page.Section) []report.Violation {
	documented := make(map[string]bool)
	document := func(text string) {
		for _, name := range placeholderPattern.FindAllString(text, -1) {
			documented[name] = true
		}
	}

	inReplace := false
	for _, b := range s.Blocks {
		p, ok := b.(*page.Paragraph)
		if !ok {
			inReplace = false
			continue
		}
		if clause := replaceClause(p.Flat()); clause != "" {
			inReplace = true
			document(clause)
			continue
		}
		if inReplace {
			document(p.Text)
		}
	}

	var out []report.Violation
	reported := make(map[string]bool)
	for _, code := range s.CodeBlocks() {
		for _, name := range placeholderPattern.FindAllString(code.Content, -1) {
			if documented[name] || reported[name] {
				continue
			}
			reported[name] = true
			out = append(out, report.New(report.UndocumentedPlaceholder, s.Name, code.Line,
				"placeholder %s is not explained by a \"Replace ...\" sentence", name))
		}
	}
	return out
}

// replaceClause returns text from its first sentence starting with
// "Replace", or "" when no sentence does.
func replaceClause(text string) string {
	starts := []int{0}
	for _, loc := range sentenceBoundary.FindAllStringIndex(text, -1) {
		starts = append(starts, loc[1])
	}
	for _, start := range starts {
		if strings.HasPrefix(text[start:], "Replace ") {
			return text[start:]
		}
	}
	return ""
}

// checkPlaceholderMarkup requires prose placeholders to be written as
// _`<NAME>`_ (or *`<NAME>`*). Placeholders inside a longer code span are
// code, not prose.
func checkPlaceholderMarkup(section string, p *page.Paragraph) []report.Violation {
	text := p.Text
	spans := codeSpans(text)

	var out []report.Violation
	for _, loc := range placeholderPattern.FindAllStringIndex(text, -1) {
		name := text[loc[0]:loc[1]]
		span, inCode := spanAt(spans, loc[0])
		if inCode {
			if strings.TrimSpace(text[span.contentStart:span.contentEnd]) != name || emphasized(text, span) {
				continue
			}
		}
		out = append(out, report.New(report.MalformedPlaceholderMarkup, section, p.Line+lineOffset(text, loc[0]),
			"placeholder %s must be written as _`%s`_", name, name))
	}
	return out
}

type codeSpan struct {
	start, end               int
	contentStart, contentEnd int
}

// codeSpans finds inline code spans: a run of n backticks closed by the next
// run of exactly n backticks.
func codeSpans(text string) []codeSpan {
	var spans []codeSpan
	i := 0
	for i < len(text) {
		if text[i] != '`' {
			i++
			continue
		}
		n := runLength(text, i)
		closeAt := -1
		for j := i + n; j < len(text); {
			if text[j] != '`' {
				j++
				continue
			}
			m := runLength(text, j)
			if m == n {
				closeAt = j
				break
			}
			j += m
		}
		if closeAt < 0 {
			i += n
			continue
		}
		spans = append(spans, codeSpan{
			start:        i,
			end:          closeAt + n,
			contentStart: i + n,
			contentEnd:   closeAt,
		})
		i = closeAt + n
	}
	return spans
}

func runLength(text string, i int) int {
	n := 0
	for i+n < len(text) && text[i+n] == '`' {
		n++
	}
	return n
}

func spanAt(spans []codeSpan, pos int) (codeSpan, bool) {
	for _, s := range spans {
		if pos >= s.contentStart && pos < s.contentEnd {
			return s, true
		}
	}
	return codeSpan{}, false
}

func emphasized(text string, s codeSpan) bool {
	if s.start == 0 || s.end >= len(text) {
		return false
	}
	before, after := text[s.start-1], text[s.end]
	return before == after && (before == '_' || before == '*')
}

func lineOffset(text string, pos int) int {
	return strings.Count(text[:pos], "\n")
}

// sectionOf names the h2 section containing a block, or "" before the first.
func sectionOf(ctx *pageContext, b page.Block) string {
	name := ""
	for _, s := range ctx.sections {
		if s.Heading.Line > b.StartLine() {
			break
		}
		name = s.Name
	}
	return name
}

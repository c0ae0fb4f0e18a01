package rules

import (
	"strings"

	"github.com/conneroisu/validate-docs/internal/page"
	"github.com/conneroisu/validate-docs/internal/report"
)

// proseFallbackMarkers identify a paragraph that is trying to be the
// fallback sentence of a section without a table.
var proseFallbackMarkers = []string{"doesn't", "does not", "only reported"}

// checkProseFallbacks checks the sections that carry prose rather than a
// table. A lone paragraph that reads like the fallback sentence must be the
// fallback sentence exactly.
func checkProseFallbacks(ctx *pageContext) []report.Violation {
	var out []report.Violation

	for _, s := range ctx.sections {
		if _, tableBearing := TableSpecFor(s.Name); tableBearing {
			continue
		}
		sentence, ok := FallbackSentence(s.Name, ctx.component)
		if !ok {
			continue
		}

		p := loneParagraph(s)
		if p == nil {
			continue
		}
		text := p.Flat()
		if text == sentence || !readsAsFallback(text, ctx.component) {
			continue
		}

		out = append(out, report.New(report.FallbackSentenceMismatch, s.Name, p.Line,
			"expected the sentence %q, got %q", sentence, text))
	}

	return out
}

// loneParagraph returns the section's only block if it is a paragraph.
func loneParagraph(s *page.Section) *page.Paragraph {
	if len(s.Blocks) != 1 {
		return nil
	}
	p, _ := s.Blocks[0].(*page.Paragraph)
	return p
}

func readsAsFallback(text, component string) bool {
	if component != "" && !strings.Contains(text, component) {
		return false
	}
	for _, marker := range proseFallbackMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

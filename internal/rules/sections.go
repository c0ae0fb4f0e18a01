package rules

import (
	"github.com/conneroisu/validate-docs/internal/page"
	"github.com/conneroisu/validate-docs/internal/report"
)

func checkSections(ctx *pageContext) []report.Violation {
	var out []report.Violation

	titles := ctx.doc.Headings(1)
	switch {
	case len(titles) == 0:
		out = append(out, report.New(report.MissingTitle, "", ctx.doc.BodyLine,
			"page has no h1 title"))
	case len(titles) > 1:
		for _, h := range titles[1:] {
			out = append(out, report.New(report.DuplicateTitle, "", h.Line,
				"extra h1 %q; a page has exactly one title", h.Text))
		}
	}

	first := make(map[int]*page.Section)
	var present []*page.Section

	for _, s := range ctx.sections {
		slot, ok := slotOf(s.Name)
		if !ok {
			if !ctx.exception.AllowsSection(s.Name) {
				out = append(out, report.New(report.UnexpectedSection, s.Name, s.Heading.Line,
					"section %q is not part of the component page structure", s.Name))
			}
			continue
		}

		if prev, seen := first[slot]; seen {
			if prev.Name != s.Name {
				out = append(out, report.New(report.DuplicateSection, s.Name, s.Heading.Line,
					"sections %q and %q are mutually exclusive", prev.Name, s.Name))
			} else {
				out = append(out, report.New(report.DuplicateSection, s.Name, s.Heading.Line,
					"section %q appears more than once", s.Name))
			}
			continue
		}

		first[slot] = s
		present = append(present, s)
	}

	for slot, name := range canonicalSections {
		if _, ok := first[slot]; ok {
			continue
		}
		if slot == len(canonicalSections)-1 {
			out = append(out, report.New(report.MissingSection, "", 0,
				"section %q or %q is missing", SectionExample, SectionExamples))
			continue
		}
		out = append(out, report.New(report.MissingSection, "", 0,
			"section %q is missing", name))
	}

	for i := 0; i+1 < len(present); i++ {
		a, b := present[i], present[i+1]
		slotA, _ := slotOf(a.Name)
		slotB, _ := slotOf(b.Name)
		if slotA > slotB {
			out = append(out, report.New(report.OutOfOrderSection, a.Name, a.Heading.Line,
				"section %q appears before %q", a.Name, b.Name))
		}
	}

	if example, ok := first[len(canonicalSections)-1]; ok {
		count := len(example.Subheadings(3))
		if count == 0 {
			count = 1
		}
		want := SectionExample
		if count > 1 {
			want = SectionExamples
		}
		if example.Name != want {
			out = append(out, report.New(report.ExampleHeadingCardinalityMismatch, example.Name, example.Heading.Line,
				"section has %d example(s) and must be titled %q", count, want))
		}
	}

	return out
}

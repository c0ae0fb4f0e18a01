package rules

import (
	"github.com/conneroisu/validate-docs/internal/page"
	"github.com/conneroisu/validate-docs/internal/report"
)

// Options tune a Validator.
type Options struct {
	Exceptions *Exceptions
	// ExtraTypes are type names accepted in Type columns on top of the
	// built-in syntax types.
	ExtraTypes []string
}

// Validator runs every check against a document. It holds no per-run state
// and is safe for concurrent use.
type Validator struct {
	exceptions *Exceptions
	types      map[string]bool
}

// NewValidator creates a validator.
func NewValidator(opts Options) *Validator {
	exceptions := opts.Exceptions
	if exceptions == nil {
		exceptions = NewExceptions()
	}
	types := make(map[string]bool, len(syntaxTypes)+len(opts.ExtraTypes))
	for t := range syntaxTypes {
		types[t] = true
	}
	for _, t := range opts.ExtraTypes {
		types[t] = true
	}
	return &Validator{exceptions: exceptions, types: types}
}

// pageContext is what the checkers see of one document.
type pageContext struct {
	doc       *page.Document
	component string
	sections  []*page.Section
	exception Exception
	types     map[string]bool
}

// ValidateText parses and validates one page. Parse failures come back as a
// report with ParseError set.
func (v *Validator) ValidateText(path, text string) *report.Report {
	doc, err := page.Parse(path, text)
	if err != nil {
		return report.FromError(path, err)
	}
	return v.Validate(doc)
}

// Validate checks a parsed document.
func (v *Validator) Validate(doc *page.Document) *report.Report {
	ctx := &pageContext{
		doc:       doc,
		component: doc.ComponentName(),
		sections:  doc.Sections(),
		types:     v.types,
	}
	ctx.exception = v.exceptions.For(ctx.component)

	r := report.NewReport(doc.Path)
	r.Component = ctx.component

	r.Add(checkFrontMatter(ctx)...)
	r.Add(checkSections(ctx)...)
	r.Add(checkTables(ctx)...)
	r.Add(checkProseFallbacks(ctx)...)
	r.Add(checkPlaceholders(ctx)...)

	r.Filter(func(viol report.Violation) bool {
		return !ctx.exception.Skips(viol.Rule)
	})
	r.Sort()

	return r
}

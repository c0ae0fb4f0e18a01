package report

import (
	"errors"
	"fmt"
	"sort"

	docerrors "github.com/conneroisu/validate-docs/internal/errors"
)

// Exit codes of a validation run.
const (
	ExitOK         = 0
	ExitViolations = 1
	ExitParseError = 2
)

// Violation is one rule failure.
type Violation struct {
	Rule     RuleID   `json:"rule_id"`
	Section  string   `json:"section"`
	Severity Severity `json:"severity"`
	Category Category `json:"category"`
	Message  string   `json:"message"`
	Line     int      `json:"line,omitempty"`
}

// String formats the violation on one line.
func (v Violation) String() string {
	return fmt.Sprintf("%d: %s [%s] %s", v.Line, v.Severity, v.Rule, v.Message)
}

// New builds a violation with the catalog's severity and category.
func New(rule RuleID, section string, line int, format string, args ...interface{}) Violation {
	info, ok := Lookup(rule)
	if !ok {
		info = RuleInfo{ID: rule, Category: CategoryContent, Severity: SeverityError}
	}
	return Violation{
		Rule:     rule,
		Section:  section,
		Severity: info.Severity,
		Category: info.Category,
		Message:  fmt.Sprintf(format, args...),
		Line:     line,
	}
}

// Report holds every finding for one document.
type Report struct {
	File       string      `json:"file"`
	Component  string      `json:"component,omitempty"`
	Violations []Violation `json:"violations"`
	// ParseError is set when the document could not be read or parsed; no
	// other checks ran in that case.
	ParseError *Violation `json:"parse_error,omitempty"`
}

// NewReport creates an empty report for file.
func NewReport(file string) *Report {
	return &Report{File: file, Violations: []Violation{}}
}

// FromError turns a read or parse failure into a report.
func FromError(file string, err error) *Report {
	r := NewReport(file)
	rule := UnreadableInput
	line := 0
	if docerrors.IsParseError(err) {
		switch docerrors.Code(err) {
		case docerrors.ErrCodeMalformedFrontMatter:
			rule = MalformedFrontMatter
		case docerrors.ErrCodeMalformedTable:
			rule = MalformedTable
		}
	}
	var de *docerrors.DocError
	if errors.As(err, &de) {
		line = de.Line
	}
	v := New(rule, "", line, "%v", err)
	r.ParseError = &v
	return r
}

// Add appends violations.
func (r *Report) Add(vs ...Violation) {
	r.Violations = append(r.Violations, vs...)
}

// Sort orders violations by line, then rule id, then message.
func (r *Report) Sort() {
	sort.SliceStable(r.Violations, func(i, j int) bool {
		a, b := r.Violations[i], r.Violations[j]
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Rule != b.Rule {
			return a.Rule < b.Rule
		}
		return a.Message < b.Message
	})
}

// Filter drops violations for which keep returns false.
func (r *Report) Filter(keep func(Violation) bool) {
	out := r.Violations[:0]
	for _, v := range r.Violations {
		if keep(v) {
			out = append(out, v)
		}
	}
	r.Violations = out
}

// Count returns the number of violations with the given severity.
func (r *Report) Count(sev Severity) int {
	n := 0
	for _, v := range r.Violations {
		if v.Severity == sev {
			n++
		}
	}
	return n
}

// Failed reports whether the document fails validation. Errors always fail;
// in strict mode warnings and hints fail too.
func (r *Report) Failed(strict bool) bool {
	if r.ParseError != nil {
		return true
	}
	if strict {
		return len(r.Violations) > 0
	}
	return r.Count(SeverityError) > 0
}

// Clean reports whether there is nothing to report.
func (r *Report) Clean() bool {
	return r.ParseError == nil && len(r.Violations) == 0
}

// ExitCode returns the process exit code for a batch of reports: parse
// failures win over violations.
func ExitCode(reports []*Report, strict bool) int {
	code := ExitOK
	for _, r := range reports {
		if r == nil {
			continue
		}
		if r.ParseError != nil {
			return ExitParseError
		}
		if r.Failed(strict) {
			code = ExitViolations
		}
	}
	return code
}

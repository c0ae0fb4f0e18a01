package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

const pageLevelSection = "(page)"

// Render writes reports in the given format.
func Render(w io.Writer, format string, reports []*Report) error {
	switch format {
	case FormatJSON:
		return RenderJSON(w, reports)
	case FormatText, "":
		return RenderText(w, reports)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// RenderJSON writes reports as an indented JSON array.
func RenderJSON(w io.Writer, reports []*Report) error {
	if reports == nil {
		reports = []*Report{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(reports)
}

// RenderText writes one table per file with violations grouped by section,
// followed by a summary line. Clean files are only counted.
func RenderText(w io.Writer, reports []*Report) error {
	var errs, warnings, hints, parseFailures int

	for _, r := range reports {
		if r == nil {
			continue
		}
		errs += r.Count(SeverityError)
		warnings += r.Count(SeverityWarning)
		hints += r.Count(SeverityHint)

		if r.Clean() {
			continue
		}

		title := r.File
		if r.Component != "" {
			title = fmt.Sprintf("%s (%s)", r.File, r.Component)
		}
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}

		if r.ParseError != nil {
			parseFailures++
			if _, err := fmt.Fprintf(w, "  %s: %s\n\n", r.ParseError.Rule, r.ParseError.Message); err != nil {
				return err
			}
			continue
		}

		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.AppendHeader(table.Row{"Section", "Line", "Severity", "Rule", "Message"})
		for _, v := range groupBySection(r.Violations) {
			section := v.Section
			if section == "" {
				section = pageLevelSection
			}
			line := ""
			if v.Line > 0 {
				line = strconv.Itoa(v.Line)
			}
			t.AppendRow(table.Row{section, line, v.Severity, v.Rule, v.Message})
		}
		t.SetColumnConfigs([]table.ColumnConfig{
			{Number: 1, AutoMerge: true},
		})
		style := table.StyleLight
		style.Options.DrawBorder = false
		t.SetStyle(style)
		t.Render()

		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "%d file(s) checked: %d error(s), %d warning(s), %d hint(s), %d parse failure(s)\n",
		countReports(reports), errs, warnings, hints, parseFailures)
	return err
}

// RenderCatalog writes the rule catalog as a table.
func RenderCatalog(w io.Writer, rules []RuleInfo) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Rule", "Category", "Severity", "Description"})
	for _, info := range rules {
		t.AppendRow(table.Row{info.ID, info.Category, info.Severity, info.Description})
	}
	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	t.Render()
}

// groupBySection orders violations by the line of their section's first
// violation, keeping line order inside a section.
func groupBySection(vs []Violation) []Violation {
	first := make(map[string]int)
	for _, v := range vs {
		if line, ok := first[v.Section]; !ok || v.Line < line {
			first[v.Section] = v.Line
		}
	}
	out := make([]Violation, len(vs))
	copy(out, vs)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Section != b.Section {
			if first[a.Section] != first[b.Section] {
				return first[a.Section] < first[b.Section]
			}
			return a.Section < b.Section
		}
		return a.Line < b.Line
	})
	return out
}

func countReports(reports []*Report) int {
	n := 0
	for _, r := range reports {
		if r != nil {
			n++
		}
	}
	return n
}

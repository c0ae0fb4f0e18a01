package rules

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"

	"github.com/conneroisu/validate-docs/internal/page"
	"github.com/conneroisu/validate-docs/internal/report"
)

var (
	backticked      = regexp.MustCompile("^`([^`]+)`$")
	linkedBackticks = regexp.MustCompile("^\\[`([^`]+)`\\](?:\\[[^\\]]*\\]|\\([^)]*\\))$")
	capsuleTarget   = regexp.MustCompile(`^[A-Za-z0-9_.\[\]*]+$`)
	qualifiedName   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*)+$`)
)

// checkTables validates the table-bearing sections: each has either its
// table or its fallback sentence.
func checkTables(ctx *pageContext) []report.Violation {
	var out []report.Violation

	for _, s := range ctx.sections {
		spec, ok := TableSpecFor(s.Name)
		if !ok {
			continue
		}
		sentence, _ := FallbackSentence(s.Name, ctx.component)

		tables := s.Tables()
		fallback := findParagraph(s, sentence)

		switch {
		case len(tables) > 0 && fallback != nil:
			out = append(out, report.New(report.ConflictingTableAndFallback, s.Name, fallback.Line,
				"section has a table and the fallback sentence; keep one"))
		case len(tables) > 0:
			out = append(out, checkTable(ctx, spec, tables[0])...)
		case fallback != nil:
		case len(s.Paragraphs()) == 0:
			out = append(out, report.New(report.MissingTableOrFallback, s.Name, s.Heading.Line,
				"section has neither a table nor the sentence %q", sentence))
		default:
			out = append(out, report.New(report.FallbackSentenceMismatch, s.Name, s.Paragraphs()[0].Line,
				"section has no table; expected the sentence %q", sentence))
		}
	}

	return out
}

func findParagraph(s *page.Section, sentence string) *page.Paragraph {
	for _, p := range s.Paragraphs() {
		if p.Flat() == sentence {
			return p
		}
	}
	return nil
}

func checkTable(ctx *pageContext, spec TableSpec, table *page.Table) []report.Violation {
	if v, ok := checkColumns(spec, table); !ok {
		return []report.Violation{v}
	}

	var out []report.Violation
	requiredCol := spec.columnIndex(CellRequired)

	for _, row := range table.Rows {
		for i, col := range spec.Columns {
			cell := row.Cells[i]
			switch col.Rule {
			case CellName:
				if !backticked.MatchString(cell) {
					out = append(out, report.New(report.UnbackedName, spec.Section, row.Line,
						"%s %q must be wrapped in a single pair of backticks", col.Name, cell))
				}
			case CellBlockPath:
				if !isBlockPath(cell) {
					out = append(out, report.New(report.UnbackedName, spec.Section, row.Line,
						"block %q must be backticked names separated by >", cell))
				}
			case CellType:
				if !ctx.isKnownTypeCell(cell) {
					out = append(out, report.New(report.UnknownType, spec.Section, row.Line,
						"type %q is not a backticked known type", cell))
				}
			case CellMetricType:
				if m := backticked.FindStringSubmatch(cell); m == nil || !metricTypes[m[1]] {
					out = append(out, report.New(report.UnknownType, spec.Section, row.Line,
						"metric type %q must be one of `counter`, `gauge`, `histogram`, `summary`", cell))
				}
			case CellRequired:
				if cell != "yes" && cell != "no" {
					out = append(out, report.New(report.InvalidRequiredValue, spec.Section, row.Line,
						"required %q must be yes or no", cell))
				}
			case CellDefault:
				if requiredCol >= 0 && row.Cells[requiredCol] == "yes" && cell != "" {
					out = append(out, report.New(report.DefaultOnRequiredField, spec.Section, row.Line,
						"required row %s has default %q", row.Cells[0], cell))
				}
			}
		}
	}

	if spec.OrderRows {
		if v, ok := checkRowOrder(spec, table); !ok {
			out = append(out, v)
		}
	}

	return out
}

// checkColumns compares the header with the schema, ignoring case.
func checkColumns(spec TableSpec, table *page.Table) (report.Violation, bool) {
	fold := cases.Fold()
	want := spec.columnNames()

	matches := len(want) == len(table.Header)
	for i := 0; matches && i < len(want); i++ {
		matches = fold.String(want[i]) == fold.String(table.Header[i])
	}
	if matches {
		return report.Violation{}, true
	}

	have := make(map[string]bool, len(table.Header))
	for _, h := range table.Header {
		have[fold.String(h)] = true
	}
	expected := make(map[string]bool, len(want))
	var missing, unexpected []string
	for _, w := range want {
		expected[fold.String(w)] = true
		if !have[fold.String(w)] {
			missing = append(missing, w)
		}
	}
	for _, h := range table.Header {
		if !expected[fold.String(h)] {
			unexpected = append(unexpected, h)
		}
	}

	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "missing "+quoteAll(missing))
	}
	if len(unexpected) > 0 {
		parts = append(parts, "unexpected "+quoteAll(unexpected))
	}
	if len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("columns out of order: got %s", quoteAll(table.Header)))
	}

	return report.New(report.ColumnMismatch, spec.Section, table.Line,
		"table columns must be %s; %s", quoteAll(want), strings.Join(parts, ", ")), false
}

func quoteAll(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = fmt.Sprintf("%q", n)
	}
	return strings.Join(quoted, ", ")
}

func isBlockPath(cell string) bool {
	if cell == "" {
		return false
	}
	for _, segment := range strings.Split(cell, ">") {
		segment = strings.TrimSpace(segment)
		if !backticked.MatchString(segment) && !linkedBackticks.MatchString(segment) {
			return false
		}
	}
	return true
}

func (ctx *pageContext) isKnownTypeCell(cell string) bool {
	m := backticked.FindStringSubmatch(cell)
	if m == nil {
		return false
	}
	return ctx.isKnownType(m[1])
}

// isKnownType accepts syntax types, list(T) and map(T) over known types, and
// capsule(X) or a qualified Go-style name for capsule values.
func (ctx *pageContext) isKnownType(t string) bool {
	t = strings.TrimSpace(t)
	if ctx.types[t] || qualifiedName.MatchString(t) {
		return true
	}
	for _, wrapper := range []string{"list", "map"} {
		if inner, ok := unwrap(t, wrapper); ok {
			return ctx.isKnownType(inner)
		}
	}
	if inner, ok := unwrap(t, "capsule"); ok {
		return capsuleTarget.MatchString(strings.TrimSpace(inner))
	}
	return false
}

func unwrap(t, wrapper string) (string, bool) {
	if strings.HasPrefix(t, wrapper+"(") && strings.HasSuffix(t, ")") {
		return t[len(wrapper)+1 : len(t)-1], true
	}
	return "", false
}

// checkRowOrder reports the first row that breaks required-first,
// alphabetical-by-name ordering.
func checkRowOrder(spec TableSpec, table *page.Table) (report.Violation, bool) {
	requiredCol := spec.columnIndex(CellRequired)

	for i := 1; i < len(table.Rows); i++ {
		prev, cur := table.Rows[i-1], table.Rows[i]
		prevReq := requiredCol >= 0 && prev.Cells[requiredCol] == "yes"
		curReq := requiredCol >= 0 && cur.Cells[requiredCol] == "yes"

		outOfOrder := false
		switch {
		case !prevReq && curReq:
			outOfOrder = true
		case prevReq == curReq:
			outOfOrder = sortKey(prev.Cells[0]) > sortKey(cur.Cells[0])
		}
		if outOfOrder {
			hint := "sort rows alphabetically by name"
			if requiredCol >= 0 {
				hint = "list required rows first, then sort each group alphabetically by name"
			}
			return report.New(report.RowOrderingHint, spec.Section, cur.Line,
				"%s; %s is out of place", hint, cur.Cells[0]), false
		}
	}
	return report.Violation{}, true
}

func sortKey(cell string) string {
	return strings.Trim(cell, "` ")
}

package page

import (
	"fmt"
	"regexp"
	"strings"

	docerrors "github.com/conneroisu/validate-docs/internal/errors"
)

var delimiterCell = regexp.MustCompile(`^:?-+:?$`)

// Parse parses page text into a Document. It fails with a MalformedFrontMatter
// or MalformedTable parse error; any other text parses.
func Parse(path, text string) (*Document, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")

	fm, bodyStart, err := parseFrontMatter(lines)
	if err != nil {
		return nil, locate(err, path)
	}

	blocks, err := parseBlocks(lines, bodyStart)
	if err != nil {
		return nil, locate(err, path)
	}

	return &Document{
		Path:        path,
		Raw:         text,
		FrontMatter: fm,
		Blocks:      blocks,
		BodyLine:    bodyStart + 1,
	}, nil
}

func locate(err error, path string) error {
	if de, ok := err.(*docerrors.DocError); ok {
		return de.WithLocation(path, de.Line)
	}
	return err
}

func parseBlocks(lines []string, start int) ([]Block, error) {
	var blocks []Block

	i := start
	for i < len(lines) {
		trimmed := strings.TrimSpace(lines[i])

		switch {
		case trimmed == "":
			i++

		case fenceMarker(lines[i]) != "":
			block, next := parseFence(lines, i)
			blocks = append(blocks, block)
			i = next

		case isHeading(lines[i]):
			blocks = append(blocks, parseHeading(lines[i], i+1))
			i++

		case isTableLine(lines[i]):
			table, next, err := parseTable(lines, i)
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, table)
			i = next

		default:
			para, next := parseParagraph(lines, i)
			blocks = append(blocks, para)
			i = next
		}
	}

	return blocks, nil
}

// fenceMarker returns the opening fence (``` or ~~~, possibly longer) of a
// line, or "" if the line does not open a fence.
func fenceMarker(line string) string {
	indent := len(line) - len(strings.TrimLeft(line, " "))
	if indent > 3 {
		return ""
	}
	s := line[indent:]
	for _, ch := range []byte{'`', '~'} {
		n := 0
		for n < len(s) && s[n] == ch {
			n++
		}
		if n >= 3 {
			return s[:n]
		}
	}
	return ""
}

func parseFence(lines []string, i int) (*CodeBlock, int) {
	open := fenceMarker(lines[i])
	info := strings.TrimSpace(strings.TrimLeft(lines[i], " ")[len(open):])
	language := ""
	if fields := strings.Fields(info); len(fields) > 0 {
		language = fields[0]
	}

	block := &CodeBlock{Line: i + 1, Language: language}
	var content []string

	j := i + 1
	for ; j < len(lines); j++ {
		closing := strings.TrimSpace(lines[j])
		if strings.HasPrefix(closing, open) && strings.Trim(closing, open[:1]) == "" {
			j++
			break
		}
		content = append(content, lines[j])
	}

	block.Content = strings.Join(content, "\n")
	return block, j
}

func isHeading(line string) bool {
	indent := len(line) - len(strings.TrimLeft(line, " "))
	if indent > 3 {
		return false
	}
	s := line[indent:]
	n := 0
	for n < len(s) && s[n] == '#' {
		n++
	}
	if n == 0 || n > 6 {
		return false
	}
	return n == len(s) || s[n] == ' ' || s[n] == '\t'
}

func parseHeading(line string, lineNo int) *Heading {
	s := strings.TrimSpace(line)
	level := 0
	for level < len(s) && s[level] == '#' {
		level++
	}
	text := strings.TrimSpace(s[level:])

	// Closing sequence: trailing #s separated by a space.
	if stripped := strings.TrimRight(text, "#"); stripped != text {
		if stripped == "" || strings.HasSuffix(stripped, " ") || strings.HasSuffix(stripped, "\t") {
			text = strings.TrimSpace(stripped)
		}
	}

	return &Heading{Line: lineNo, Level: level, Text: text}
}

func isTableLine(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "|")
}

func parseTable(lines []string, i int) (*Table, int, error) {
	table := &Table{Line: i + 1, Header: splitRow(lines[i])}

	j := i + 1
	if j >= len(lines) || !isTableLine(lines[j]) {
		return nil, 0, docerrors.NewParseError(docerrors.ErrCodeMalformedTable,
			"table has no delimiter row", i+1)
	}

	delimiter := splitRow(lines[j])
	if len(delimiter) != len(table.Header) {
		return nil, 0, docerrors.NewParseError(docerrors.ErrCodeMalformedTable,
			fmt.Sprintf("delimiter row has %d cells, header has %d", len(delimiter), len(table.Header)), j+1)
	}
	for _, cell := range delimiter {
		if !delimiterCell.MatchString(strings.ReplaceAll(cell, " ", "")) {
			return nil, 0, docerrors.NewParseError(docerrors.ErrCodeMalformedTable,
				fmt.Sprintf("invalid delimiter cell %q", cell), j+1)
		}
	}

	for j++; j < len(lines) && isTableLine(lines[j]); j++ {
		cells := splitRow(lines[j])
		if len(cells) != len(table.Header) {
			return nil, 0, docerrors.NewParseError(docerrors.ErrCodeMalformedTable,
				fmt.Sprintf("row has %d cells, header has %d", len(cells), len(table.Header)), j+1)
		}
		table.Rows = append(table.Rows, Row{Line: j + 1, Cells: cells})
	}

	return table, j, nil
}

// splitRow splits a table line on unescaped pipes. The outer pipes are
// dropped, cells are trimmed and `\|` becomes `|`.
func splitRow(line string) []string {
	s := strings.TrimSpace(line)
	s = strings.TrimPrefix(s, "|")
	if strings.HasSuffix(s, "|") && !strings.HasSuffix(s, `\|`) {
		s = s[:len(s)-1]
	}

	var (
		cells []string
		cell  strings.Builder
	)
	for k := 0; k < len(s); k++ {
		switch {
		case s[k] == '\\' && k+1 < len(s) && s[k+1] == '|':
			cell.WriteByte('|')
			k++
		case s[k] == '|':
			cells = append(cells, strings.TrimSpace(cell.String()))
			cell.Reset()
		default:
			cell.WriteByte(s[k])
		}
	}
	cells = append(cells, strings.TrimSpace(cell.String()))

	return cells
}

func parseParagraph(lines []string, i int) (*Paragraph, int) {
	para := &Paragraph{Line: i + 1}
	var text []string

	j := i
	for ; j < len(lines); j++ {
		line := lines[j]
		if strings.TrimSpace(line) == "" {
			break
		}
		if j > i && (isHeading(line) || fenceMarker(line) != "" || isTableLine(line)) {
			break
		}
		text = append(text, strings.TrimSpace(line))
	}

	para.Text = strings.Join(text, "\n")
	return para, j
}

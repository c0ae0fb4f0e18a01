// Package page parses component reference pages into typed blocks.
//
// A page is a markdown file with optional YAML front matter. The parser splits
// the body into headings, fenced code blocks, pipe tables and paragraphs, and
// records the line each block starts on so that rule violations can point
// back into the source. Parsing is a pure function of the input text.
package page

import (
	"strings"
)

// Block is one typed unit of a page body.
type Block interface {
	// StartLine is the 1-based line the block starts on.
	StartLine() int
}

// Heading is an ATX heading (`#` through `######`).
type Heading struct {
	Line  int
	Level int
	Text  string
}

// Paragraph is a run of non-blank lines that is not a heading, fence or table.
// Lines are trimmed and joined with "\n".
type Paragraph struct {
	Line int
	Text string
}

// CodeBlock is a fenced code block.
type CodeBlock struct {
	Line     int
	Language string
	Content  string
}

// Table is a pipe table. The delimiter row is not kept.
type Table struct {
	Line   int
	Header []string
	Rows   []Row
}

// Row is one data row of a table.
type Row struct {
	Line  int
	Cells []string
}

func (h *Heading) StartLine() int   { return h.Line }
func (p *Paragraph) StartLine() int { return p.Line }
func (c *CodeBlock) StartLine() int { return c.Line }
func (t *Table) StartLine() int     { return t.Line }

// Flat returns the paragraph text with all whitespace runs collapsed to a
// single space.
func (p *Paragraph) Flat() string {
	return strings.Join(strings.Fields(p.Text), " ")
}

// Document is a parsed page.
type Document struct {
	Path        string
	Raw         string
	FrontMatter FrontMatter
	Blocks      []Block
	// BodyLine is the first line after the front matter.
	BodyLine int
}

// Section is the region of a document between an h2 heading and the next h2.
type Section struct {
	Name    string
	Heading *Heading
	Blocks  []Block
}

// Headings returns all headings of the given level in document order.
func (d *Document) Headings(level int) []*Heading {
	var out []*Heading
	for _, b := range d.Blocks {
		if h, ok := b.(*Heading); ok && h.Level == level {
			out = append(out, h)
		}
	}
	return out
}

// Title returns the first h1 heading, or nil.
func (d *Document) Title() *Heading {
	h1 := d.Headings(1)
	if len(h1) == 0 {
		return nil
	}
	return h1[0]
}

// ComponentName is the name the page documents: the h1 text without inline
// code markers, falling back to the front matter title.
func (d *Document) ComponentName() string {
	if h := d.Title(); h != nil {
		if name := strings.Trim(strings.TrimSpace(h.Text), "`"); name != "" {
			return name
		}
	}
	return d.FrontMatter.String("title")
}

// Sections splits the body into h2-delimited sections. Content before the
// first h2 is not part of any section.
func (d *Document) Sections() []*Section {
	var (
		sections []*Section
		current  *Section
	)
	for _, b := range d.Blocks {
		if h, ok := b.(*Heading); ok && h.Level <= 2 {
			current = nil
			if h.Level == 2 {
				current = &Section{Name: strings.TrimSpace(h.Text), Heading: h}
				sections = append(sections, current)
			}
			continue
		}
		if current != nil {
			current.Blocks = append(current.Blocks, b)
		}
	}
	return sections
}

// Tables returns the section's tables in order.
func (s *Section) Tables() []*Table {
	var out []*Table
	for _, b := range s.Blocks {
		if t, ok := b.(*Table); ok {
			out = append(out, t)
		}
	}
	return out
}

// Paragraphs returns the section's paragraphs in order.
func (s *Section) Paragraphs() []*Paragraph {
	var out []*Paragraph
	for _, b := range s.Blocks {
		if p, ok := b.(*Paragraph); ok {
			out = append(out, p)
		}
	}
	return out
}

// CodeBlocks returns the section's fenced code blocks in order.
func (s *Section) CodeBlocks() []*CodeBlock {
	var out []*CodeBlock
	for _, b := range s.Blocks {
		if c, ok := b.(*CodeBlock); ok {
			out = append(out, c)
		}
	}
	return out
}

// Subheadings returns the headings of the given level inside the section.
func (s *Section) Subheadings(level int) []*Heading {
	var out []*Heading
	for _, b := range s.Blocks {
		if h, ok := b.(*Heading); ok && h.Level == level {
			out = append(out, h)
		}
	}
	return out
}

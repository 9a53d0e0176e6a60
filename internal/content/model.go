// Package content defines the structured document handed to the layout
// engine. It describes what a report says, not how it looks: the renderer
// decides fonts, margins and page flow.
package content

// Kind identifies a block type.
type Kind string

// Block kinds.
const (
	KindHeading   Kind = "heading"
	KindParagraph Kind = "paragraph"
	KindTable     Kind = "table"
	KindKeyValues Kind = "key_values"
	KindPageBreak Kind = "page_break"
	KindMark      Kind = "mark"
	KindSpacer    Kind = "spacer"
)

// Block is one node of a document. Only the fields relevant to Kind are set.
type Block struct {
	Kind  Kind
	Text  string
	Level int // heading level, 1 is largest
	Table *Table
	Pairs []Pair
	Name  string // mark name
}

// Table is a simple grid with a header row. Widths are relative weights; when
// nil the renderer distributes columns evenly.
type Table struct {
	Columns []string
	Rows    [][]string
	Widths  []float64
}

// Pair is a label/value line such as "Job reference: J-1001".
type Pair struct {
	Label string
	Value string
}

// Document is an ordered list of blocks with a title used for metadata.
type Document struct {
	Title  string
	Blocks []Block
}

// Len returns the number of blocks.
func (d Document) Len() int { return len(d.Blocks) }

// Empty reports whether d has no visible content. Marks do not count.
func (d Document) Empty() bool {
	for _, b := range d.Blocks {
		if b.Kind != KindMark {
			return false
		}
	}
	return true
}

// Marks returns the names of mark blocks in order.
func (d Document) Marks() []string {
	var out []string
	for _, b := range d.Blocks {
		if b.Kind == KindMark {
			out = append(out, b.Name)
		}
	}
	return out
}

// Clone returns a deep copy so callers can extend a document without
// aliasing the original's blocks.
func (d Document) Clone() Document {
	out := Document{Title: d.Title, Blocks: make([]Block, len(d.Blocks))}
	for i, b := range d.Blocks {
		if b.Table != nil {
			t := *b.Table
			t.Columns = append([]string(nil), b.Table.Columns...)
			t.Widths = append([]float64(nil), b.Table.Widths...)
			t.Rows = make([][]string, len(b.Table.Rows))
			for j, row := range b.Table.Rows {
				t.Rows[j] = append([]string(nil), row...)
			}
			b.Table = &t
		}
		if b.Pairs != nil {
			b.Pairs = append([]Pair(nil), b.Pairs...)
		}
		out.Blocks[i] = b
	}
	return out
}

// Concat joins documents in order. The first non-empty title wins.
func Concat(docs ...Document) Document {
	var out Document
	for _, d := range docs {
		if out.Title == "" {
			out.Title = d.Title
		}
		out.Blocks = append(out.Blocks, d.Clone().Blocks...)
	}
	return out
}

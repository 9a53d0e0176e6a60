package content

// Builder assembles a Document fluently.
type Builder struct {
	doc Document
}

// NewBuilder starts a document with the given title.
func NewBuilder(title string) *Builder {
	return &Builder{doc: Document{Title: title}}
}

// Heading appends a heading at level (clamped to 1..3).
func (b *Builder) Heading(level int, text string) *Builder {
	if level < 1 {
		level = 1
	}
	if level > 3 {
		level = 3
	}
	return b.add(Block{Kind: KindHeading, Level: level, Text: text})
}

// Paragraph appends wrapped body text.
func (b *Builder) Paragraph(text string) *Builder {
	return b.add(Block{Kind: KindParagraph, Text: text})
}

// KeyValues appends label/value lines.
func (b *Builder) KeyValues(pairs ...Pair) *Builder {
	return b.add(Block{Kind: KindKeyValues, Pairs: append([]Pair(nil), pairs...)})
}

// Table appends a table.
func (b *Builder) Table(t Table) *Builder {
	tc := t
	return b.add(Block{Kind: KindTable, Table: &tc})
}

// Spacer appends vertical whitespace.
func (b *Builder) Spacer() *Builder { return b.add(Block{Kind: KindSpacer}) }

// PageBreak forces the following content onto a new page.
func (b *Builder) PageBreak() *Builder { return b.add(Block{Kind: KindPageBreak}) }

// Mark records a named position whose page number the renderer reports.
func (b *Builder) Mark(name string) *Builder { return b.add(Block{Kind: KindMark, Name: name}) }

// Append copies every block of d onto the builder.
func (b *Builder) Append(d Document) *Builder {
	b.doc.Blocks = append(b.doc.Blocks, d.Clone().Blocks...)
	return b
}

// Document returns a copy of the built document.
func (b *Builder) Document() Document { return b.doc.Clone() }

func (b *Builder) add(block Block) *Builder {
	b.doc.Blocks = append(b.doc.Blocks, block)
	return b
}

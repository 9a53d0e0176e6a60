package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"labcert/internal/content"
)

const (
	marginLeft   = 18.0
	marginTop    = 18.0
	marginRight  = 18.0
	marginBottom = 22.0
	lineHeight   = 5.0
	cellPadding  = 1.0
	fontFamily   = "Helvetica"
)

var headingSizes = map[int]float64{1: 16, 2: 13, 3: 11}

// PDF renders documents with fpdf. It holds no per-document state and is safe
// for concurrent use.
type PDF struct {
	opts Options
}

// New constructs a PDF renderer.
func New(opts Options) *PDF {
	return &PDF{opts: opts.withDefaults()}
}

// Render lays out doc, calling footer for every page.
func (p *PDF) Render(ctx context.Context, doc content.Document, footer FooterFunc) (Rendered, error) {
	if footer == nil {
		footer = NoFooter
	}
	l := newLayout(p.opts, footer)
	l.pdf.SetTitle(l.text(doc.Title), false)
	l.pdf.AddPage()
	for i, block := range doc.Blocks {
		if err := ctx.Err(); err != nil {
			return Rendered{}, err
		}
		l.block(block)
		if l.pdf.Err() {
			return Rendered{}, fmt.Errorf("render block %d (%s): %w", i, block.Kind, l.pdf.Error())
		}
	}
	pages := l.pdf.PageCount()
	var buf bytes.Buffer
	if err := l.pdf.Output(&buf); err != nil {
		return Rendered{}, fmt.Errorf("write pdf: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return Rendered{}, err
	}
	return Rendered{Bytes: buf.Bytes(), PageCount: pages, Marks: l.marks}, nil
}

type layout struct {
	pdf   *fpdf.Fpdf
	enc   *encoding.Encoder
	marks map[string]int
	fresh bool // current page has no visible content yet
	width float64
}

func newLayout(opts Options, footer FooterFunc) *layout {
	pdf := fpdf.New(opts.Orientation, "mm", opts.PageSize, "")
	pdf.SetCompression(opts.Compress)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(opts.CreationDate)
	pdf.SetModificationDate(opts.CreationDate)
	pdf.SetMargins(marginLeft, marginTop, marginRight)
	pdf.SetAutoPageBreak(true, marginBottom)
	pdf.SetDrawColor(120, 120, 120)
	pdf.SetFillColor(230, 230, 230)

	l := &layout{
		pdf:   pdf,
		enc:   encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder()),
		marks: make(map[string]int),
	}
	pdf.SetAuthor(l.text(opts.Author), false)
	pdf.SetCreator(l.text(opts.Creator), false)
	pageW, _ := pdf.GetPageSize()
	l.width = pageW - marginLeft - marginRight

	pdf.SetFooterFunc(func() {
		f := footer(pdf.PageNo())
		if f.Left == "" && f.Right == "" {
			return
		}
		pdf.SetFont(fontFamily, "I", 8)
		pdf.SetXY(marginLeft, -14)
		pdf.CellFormat(l.width, 6, l.text(f.Left), "", 0, "L", false, 0, "")
		pdf.SetXY(marginLeft, -14)
		pdf.CellFormat(l.width, 6, l.text(f.Right), "", 0, "R", false, 0, "")
	})
	pdf.SetHeaderFunc(func() { l.fresh = true })
	return l
}

// text converts UTF-8 to the Windows-1252 bytes the core fonts expect.
func (l *layout) text(s string) string {
	out, err := l.enc.String(s)
	if err != nil {
		return s
	}
	return out
}

func (l *layout) block(b content.Block) {
	switch b.Kind {
	case content.KindHeading:
		l.heading(b.Level, b.Text)
	case content.KindParagraph:
		l.pdf.SetFont(fontFamily, "", 10)
		l.pdf.MultiCell(0, lineHeight, l.text(b.Text), "", "L", false)
		l.pdf.Ln(2)
		l.fresh = false
	case content.KindKeyValues:
		l.keyValues(b.Pairs)
	case content.KindTable:
		if b.Table != nil {
			l.table(*b.Table)
		}
	case content.KindSpacer:
		l.pdf.Ln(lineHeight)
	case content.KindPageBreak:
		if !l.fresh {
			l.pdf.AddPage()
		}
	case content.KindMark:
		if _, ok := l.marks[b.Name]; !ok {
			l.marks[b.Name] = l.pdf.PageNo()
		}
	default:
		l.pdf.SetError(fmt.Errorf("unknown block kind %q", b.Kind))
	}
}

func (l *layout) heading(level int, text string) {
	size, ok := headingSizes[level]
	if !ok {
		size = headingSizes[3]
	}
	l.pdf.SetFont(fontFamily, "B", size)
	l.pdf.MultiCell(0, size*0.5, l.text(text), "", "L", false)
	l.pdf.Ln(2)
	l.fresh = false
}

func (l *layout) keyValues(pairs []content.Pair) {
	const labelWidth = 55.0
	for _, p := range pairs {
		l.pdf.SetFont(fontFamily, "B", 10)
		l.pdf.CellFormat(labelWidth, lineHeight, l.text(p.Label), "", 0, "L", false, 0, "")
		l.pdf.SetFont(fontFamily, "", 10)
		l.pdf.MultiCell(0, lineHeight, l.text(p.Value), "", "L", false)
	}
	l.pdf.Ln(2)
	l.fresh = false
}

func (l *layout) columnWidths(t content.Table) []float64 {
	n := len(t.Columns)
	widths := make([]float64, n)
	total := 0.0
	if len(t.Widths) == n {
		for _, w := range t.Widths {
			if w > 0 {
				total += w
			}
		}
	}
	for i := range widths {
		if total > 0 && t.Widths[i] > 0 {
			widths[i] = l.width * t.Widths[i] / total
		} else {
			widths[i] = l.width / float64(n)
		}
	}
	return widths
}

func (l *layout) table(t content.Table) {
	if len(t.Columns) == 0 {
		return
	}
	widths := l.columnWidths(t)
	l.row(t.Columns, widths, true)
	for _, r := range t.Rows {
		cells := make([]string, len(t.Columns))
		copy(cells, r)
		if l.rowHeight(cells, widths, false)+l.pdf.GetY() > l.pageBreakAt() {
			l.pdf.AddPage()
			l.row(t.Columns, widths, true)
		}
		l.row(cells, widths, false)
	}
	l.pdf.Ln(3)
	l.fresh = false
}

func (l *layout) pageBreakAt() float64 {
	_, pageH := l.pdf.GetPageSize()
	return pageH - marginBottom
}

func (l *layout) setRowFont(header bool) {
	if header {
		l.pdf.SetFont(fontFamily, "B", 9)
		return
	}
	l.pdf.SetFont(fontFamily, "", 9)
}

func (l *layout) rowHeight(cells []string, widths []float64, header bool) float64 {
	l.setRowFont(header)
	lines := 1
	for i, c := range cells {
		n := len(l.pdf.SplitLines([]byte(l.text(c)), widths[i]-2*cellPadding))
		if n > lines {
			lines = n
		}
	}
	return float64(lines)*lineHeight + cellPadding
}

func (l *layout) row(cells []string, widths []float64, header bool) {
	h := l.rowHeight(cells, widths, header)
	if l.pdf.GetY()+h > l.pageBreakAt() {
		l.pdf.AddPage()
	}
	l.setRowFont(header)
	x, y := marginLeft, l.pdf.GetY()
	for i, c := range cells {
		style := "D"
		if header {
			style = "FD"
		}
		l.pdf.Rect(x, y, widths[i], h, style)
		l.pdf.SetXY(x+cellPadding, y+cellPadding/2)
		l.pdf.MultiCell(widths[i]-2*cellPadding, lineHeight, l.text(c), "", "L", false)
		x += widths[i]
	}
	l.pdf.SetXY(marginLeft, y+h)
	l.fresh = false
}

// Package render lays out content documents as PDF using fpdf's core fonts.
//
// Output is reproducible: identical documents and options produce identical
// bytes. The certificate paginator depends on that to count pages in one pass
// and print the count in the next.
package render

import (
	"context"
	"time"

	"labcert/internal/content"
)

// Footer is the text printed at the bottom of one page.
type Footer struct {
	Left  string
	Right string
}

// FooterFunc returns the footer for a 1-based page number. It is called once
// per page while that page is being finished.
type FooterFunc func(page int) Footer

// NoFooter prints nothing.
func NoFooter(int) Footer { return Footer{} }

// Rendered is the result of laying out one document.
type Rendered struct {
	Bytes     []byte
	PageCount int
	// Marks maps each content.Mark name to the page it landed on.
	Marks map[string]int
}

// Renderer is the layout engine consumed by the certificate paginator.
type Renderer interface {
	Render(ctx context.Context, doc content.Document, footer FooterFunc) (Rendered, error)
}

// DefaultCreationDate is stamped into document metadata unless overridden so
// that output does not vary with wall-clock time.
var DefaultCreationDate = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Options configures page geometry and metadata.
type Options struct {
	PageSize     string // fpdf size name, default A4
	Orientation  string // "P" or "L", default P
	Compress     bool
	Author       string
	Creator      string
	CreationDate time.Time
}

func (o Options) withDefaults() Options {
	if o.PageSize == "" {
		o.PageSize = "A4"
	}
	if o.Orientation == "" {
		o.Orientation = "P"
	}
	if o.Creator == "" {
		o.Creator = "labcert"
	}
	if o.CreationDate.IsZero() {
		o.CreationDate = DefaultCreationDate
	}
	return o
}

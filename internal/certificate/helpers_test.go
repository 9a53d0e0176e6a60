package certificate

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/require"

	"labcert/internal/content"
	"labcert/internal/render"
)

// pagesDoc renders one paragraph per page separated by page breaks.
func pagesDoc(label string, n int) content.Document {
	b := content.NewBuilder(label)
	for i := 1; i <= n; i++ {
		if i > 1 {
			b.PageBreak()
		}
		b.Paragraph(fmt.Sprintf("%s-PAGE-%d", label, i))
	}
	return b.Document()
}

// pdfWithPages returns an uncompressed PDF with n pages.
func pdfWithPages(t *testing.T, label string, n int) []byte {
	t.Helper()
	out, err := render.New(render.Options{}).Render(context.Background(), pagesDoc(label, n), render.NoFooter)
	require.NoError(t, err)
	require.Equal(t, n, out.PageCount)
	return out.Bytes
}

// pageContents returns the decoded content stream of every page in order.
func pageContents(t *testing.T, pdf []byte) []string {
	t.Helper()
	ctx, err := api.ReadContext(bytes.NewReader(pdf), newConfig())
	require.NoError(t, err)
	require.NoError(t, api.ValidateContext(ctx))
	pages := make([]string, 0, ctx.PageCount)
	for i := 1; i <= ctx.PageCount; i++ {
		d, _, _, err := ctx.PageDict(i, false)
		require.NoError(t, err)
		c, err := ctx.PageContent(d)
		require.NoError(t, err)
		pages = append(pages, string(c))
	}
	return pages
}

// fakeRenderer reports fixed page counts and records every footer it was asked for.
type fakeRenderer struct {
	// pages returns the page count and appendix mark page for a call index.
	pages   func(call int, doc content.Document) (int, map[string]int)
	calls   int
	footers [][]render.Footer
	err     error
}

func (f *fakeRenderer) Render(ctx context.Context, doc content.Document, footer render.FooterFunc) (render.Rendered, error) {
	f.calls++
	if err := ctx.Err(); err != nil {
		return render.Rendered{}, err
	}
	if f.err != nil {
		return render.Rendered{}, f.err
	}
	n, marks := f.pages(f.calls, doc)
	var got []render.Footer
	for p := 1; p <= n; p++ {
		got = append(got, footer(p))
	}
	f.footers = append(f.footers, got)
	return render.Rendered{Bytes: []byte("%PDF-fake"), PageCount: n, Marks: marks}, nil
}

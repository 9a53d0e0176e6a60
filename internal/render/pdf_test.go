package render

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labcert/internal/content"
)

func longDocument(paragraphs int) content.Document {
	b := content.NewBuilder("Long")
	b.Heading(1, "Airborne fibre monitoring")
	for i := 0; i < paragraphs; i++ {
		b.Paragraph(fmt.Sprintf("Paragraph %d. Sampling was carried out in accordance with the membrane filter method; results are reported in mg/m³ at 20 °C.", i))
	}
	return b.Document()
}

func TestRenderSinglePage(t *testing.T) {
	r := New(Options{})
	doc := content.NewBuilder("One").Heading(1, "Title").Paragraph("hello").Document()
	out, err := r.Render(context.Background(), doc, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, out.PageCount)
	assert.True(t, bytes.HasPrefix(out.Bytes, []byte("%PDF-")))
}

func TestRenderFooterCalledOncePerPage(t *testing.T) {
	r := New(Options{})
	var pages []int
	out, err := r.Render(context.Background(), longDocument(120), func(page int) Footer {
		pages = append(pages, page)
		return Footer{Right: fmt.Sprintf("Page %d", page)}
	})
	require.NoError(t, err)
	require.Greater(t, out.PageCount, 1)
	require.Len(t, pages, out.PageCount)
	for i, p := range pages {
		assert.Equal(t, i+1, p)
	}
}

func TestRenderFooterTextInUncompressedOutput(t *testing.T) {
	r := New(Options{Compress: false})
	out, err := r.Render(context.Background(), content.NewBuilder("x").Paragraph("body").Document(), func(page int) Footer {
		return Footer{Left: "J-100", Right: fmt.Sprintf("Page %d of %d", page, 1)}
	})
	require.NoError(t, err)
	assert.Contains(t, string(out.Bytes), "(Page 1 of 1)")
	assert.Contains(t, string(out.Bytes), "(J-100)")
}

func TestRenderIsDeterministic(t *testing.T) {
	r := New(Options{Compress: true, Author: "Lab"})
	doc := longDocument(60)
	a, err := r.Render(context.Background(), doc, NoFooter)
	require.NoError(t, err)
	b, err := r.Render(context.Background(), doc, NoFooter)
	require.NoError(t, err)
	assert.Equal(t, a.PageCount, b.PageCount)
	assert.True(t, bytes.Equal(a.Bytes, b.Bytes), "identical input must render identical bytes")
}

func TestRenderMarksAndPageBreaks(t *testing.T) {
	doc := content.NewBuilder("m").
		PageBreak(). // leading break on a fresh page is ignored
		Mark("start").
		Paragraph("first").
		PageBreak().
		Mark("second").
		Paragraph("more").
		PageBreak().
		PageBreak().
		Mark("third").
		Document()
	out, err := New(Options{}).Render(context.Background(), doc, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"start": 1, "second": 2, "third": 3}, out.Marks)
	assert.Equal(t, 3, out.PageCount)
}

func TestRenderTableSpansPages(t *testing.T) {
	rows := make([][]string, 150)
	for i := range rows {
		rows[i] = []string{fmt.Sprintf("S-%03d", i), "Boiler room, level 2 plant area adjacent to riser", "<0.0100"}
	}
	doc := content.NewBuilder("t").Table(content.Table{Columns: []string{"Sample", "Location", "Result"}, Rows: rows, Widths: []float64{1, 3, 1}}).Document()
	out, err := New(Options{}).Render(context.Background(), doc, nil)
	require.NoError(t, err)
	assert.Greater(t, out.PageCount, 2)
}

func TestRenderRejectsUnknownBlock(t *testing.T) {
	doc := content.Document{Blocks: []content.Block{{Kind: "bogus"}}}
	_, err := New(Options{}).Render(context.Background(), doc, nil)
	require.Error(t, err)
}

func TestRenderHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out, err := New(Options{}).Render(ctx, longDocument(3), nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, out.Bytes)
}

func TestOptionsDefaults(t *testing.T) {
	o := Options{}.withDefaults()
	assert.Equal(t, "A4", o.PageSize)
	assert.Equal(t, "P", o.Orientation)
	assert.Equal(t, DefaultCreationDate, o.CreationDate)
	custom := Options{CreationDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}.withDefaults()
	assert.Equal(t, 2024, custom.CreationDate.Year())
}

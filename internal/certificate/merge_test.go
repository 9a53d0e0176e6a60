package certificate

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeAppendsEveryExternalPage(t *testing.T) {
	primary := pdfWithPages(t, "MAIN", 2)
	external := pdfWithPages(t, "EXTERNAL", 3)

	res, err := NewMerger().MergeCounted(context.Background(), primary, external)
	require.NoError(t, err)
	assert.Equal(t, 2, res.PrimaryPages)
	assert.Equal(t, 3, res.ExternalPages)
	assert.True(t, bytes.HasPrefix(res.Bytes, []byte("%PDF-")))

	total, err := PageCount(res.Bytes)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
}

func TestMergeMissingAttachment(t *testing.T) {
	primary := pdfWithPages(t, "MAIN", 1)
	for name, external := range map[string][]byte{"nil": nil, "empty": {}} {
		t.Run(name, func(t *testing.T) {
			out, err := NewMerger().Merge(context.Background(), primary, external)
			assert.Nil(t, out)
			require.ErrorIs(t, err, ErrMissingAttachment)
			assert.Contains(t, err.Error(), "attach the lab analysis certificate PDF before generating the report")
			assert.Equal(t, "missing_attachment", Kind(err))
		})
	}
}

func TestMergeCorruptAttachment(t *testing.T) {
	primary := pdfWithPages(t, "MAIN", 1)
	out, err := NewMerger().Merge(context.Background(), primary, []byte("this is not a pdf"))
	assert.Nil(t, out)
	require.ErrorIs(t, err, ErrCorruptAttachment)
	assert.Equal(t, "corrupt_attachment", Kind(err))
}

func TestMergeInvalidPrimary(t *testing.T) {
	external := pdfWithPages(t, "EXT", 1)
	out, err := NewMerger().Merge(context.Background(), []byte("%PDF-garbage"), external)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, ErrLayoutEngine)
}

func TestMergeHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out, err := NewMerger().Merge(ctx, pdfWithPages(t, "MAIN", 1), pdfWithPages(t, "EXT", 1))
	assert.Nil(t, out)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCheckAttachment(t *testing.T) {
	pages, err := CheckAttachment(pdfWithPages(t, "EXT", 2))
	require.NoError(t, err)
	assert.Equal(t, 2, pages)
	_, err = CheckAttachment(nil)
	assert.ErrorIs(t, err, ErrMissingAttachment)
}

func TestMergeKeepsExternalPagesIntact(t *testing.T) {
	primary := pdfWithPages(t, "MAIN", 2)
	external := pdfWithPages(t, "EXTERNAL", 3)

	res, err := NewMerger().MergeCounted(context.Background(), primary, external)
	require.NoError(t, err)

	before := pageContents(t, external)
	after := pageContents(t, res.Bytes)
	require.Len(t, after, 5)
	assert.Equal(t, before, after[2:], "external pages must be copied unchanged")
}

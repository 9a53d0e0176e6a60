package certificate

import (
	"bytes"
	"context"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func init() {
	// pdfcpu otherwise creates a per-user config directory on first use.
	api.DisableConfigDir()
}

// Merged is a merged document with its page accounting.
type Merged struct {
	Bytes         []byte
	PrimaryPages  int
	ExternalPages int
}

// Merger appends the externally supplied lab certificate to a rendered report.
// Pages are copied structurally; the external document's content streams are
// not rewritten.
type Merger struct{}

// NewMerger constructs a Merger.
func NewMerger() *Merger { return &Merger{} }

// Merge returns primary followed by every page of external. It fails with
// ErrMissingAttachment when external is nil or empty and with
// ErrCorruptAttachment when it cannot be read as a PDF. On failure no bytes
// are returned.
func (m *Merger) Merge(ctx context.Context, primary, external []byte) ([]byte, error) {
	res, err := m.MergeCounted(ctx, primary, external)
	if err != nil {
		return nil, err
	}
	return res.Bytes, nil
}

// MergeCounted is Merge that also reports the page counts of each part.
func (m *Merger) MergeCounted(ctx context.Context, primary, external []byte) (Merged, error) {
	extPages, err := CheckAttachment(external)
	if err != nil {
		return Merged{}, err
	}
	primaryPages, err := pageCount(primary)
	if err != nil {
		return Merged{}, wrap(ErrLayoutEngine, "merge", "rendered report is not a readable PDF", err)
	}
	if err := ctx.Err(); err != nil {
		return Merged{}, err
	}

	var out bytes.Buffer
	sources := []io.ReadSeeker{bytes.NewReader(primary), bytes.NewReader(external)}
	if err := api.MergeRaw(sources, &out, false, newConfig()); err != nil {
		return Merged{}, wrap(ErrCorruptAttachment, "merge", "append lab certificate", err)
	}
	total, err := pageCount(out.Bytes())
	if err != nil {
		return Merged{}, wrap(ErrLayoutEngine, "merge", "merged output is not readable", err)
	}
	if total != primaryPages+extPages {
		return Merged{}, wrap(ErrLayoutEngine, "merge", "merged page count does not add up", nil)
	}
	if err := ctx.Err(); err != nil {
		return Merged{}, err
	}
	return Merged{Bytes: out.Bytes(), PrimaryPages: primaryPages, ExternalPages: extPages}, nil
}

// CheckAttachment verifies that external is a readable PDF with at least one
// page and returns its page count. Failures match ErrMissingAttachment or
// ErrCorruptAttachment.
func CheckAttachment(external []byte) (int, error) {
	if external == nil {
		return 0, wrap(ErrMissingAttachment, "merge", "no lab certificate attached; "+attachHint, nil)
	}
	if len(external) == 0 {
		return 0, wrap(ErrMissingAttachment, "merge", "lab certificate is empty; "+attachHint, nil)
	}
	pages, err := pageCount(external)
	if err != nil {
		return 0, wrap(ErrCorruptAttachment, "merge", "lab certificate is not a readable PDF", err)
	}
	if pages == 0 {
		return 0, wrap(ErrCorruptAttachment, "merge", "lab certificate has no pages", nil)
	}
	return pages, nil
}

// PageCount reads and validates a PDF and returns its number of pages.
func PageCount(pdf []byte) (int, error) { return pageCount(pdf) }

// newConfig returns a fresh configuration per call; pdfcpu records the
// running command on it, so it must not be shared between merges.
func newConfig() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

func pageCount(pdf []byte) (int, error) {
	ctx, err := api.ReadContext(bytes.NewReader(pdf), newConfig())
	if err != nil {
		return 0, err
	}
	if err := api.ValidateContext(ctx); err != nil {
		return 0, err
	}
	return ctx.PageCount, nil
}

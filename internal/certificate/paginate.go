package certificate

import (
	"context"
	"fmt"
	"log/slog"

	"labcert/internal/content"
	"labcert/internal/logging"
	"labcert/internal/render"
)

// AppendixMark names the position where the appendix cover starts.
const AppendixMark = "appendix"

// Pagination is the pre-merge document plus the page counts derived from it.
type Pagination struct {
	Bytes         []byte
	MainPages     int
	AppendixPages int
}

// TotalPages is MainPages plus AppendixPages.
func (p Pagination) TotalPages() int { return p.MainPages + p.AppendixPages }

// Paginator renders a report twice: once to learn how many pages the primary
// section occupies and once more with footers that quote that count.
type Paginator struct {
	renderer render.Renderer
	logger   *slog.Logger
}

// NewPaginator constructs a paginator over the given layout engine.
func NewPaginator(r render.Renderer, logger *slog.Logger) *Paginator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Paginator{renderer: r, logger: logger}
}

// Paginate produces the primary section followed by the appendix cover.
// Footers on primary pages read "Page X of N" where N is the primary page
// count; appendix pages carry no counter.
func (p *Paginator) Paginate(ctx context.Context, primary, appendix content.Document, footer FooterTemplate) (Pagination, error) {
	if p.renderer == nil {
		return Pagination{}, wrap(ErrLayoutEngine, "paginate", "no renderer configured", nil)
	}
	if err := footer.Validate(); err != nil {
		return Pagination{}, wrap(ErrLayoutEngine, "paginate", "", err)
	}
	primary = trimTrailingBlank(primary)
	if primary.Empty() {
		return Pagination{}, wrap(ErrLayoutEngine, "paginate", "primary section is empty", nil)
	}

	first, err := p.renderer.Render(ctx, primary, render.NoFooter)
	if err != nil {
		return Pagination{}, renderErr("first pass", err)
	}
	mainPages := first.PageCount
	if mainPages < 1 {
		return Pagination{}, wrap(ErrLayoutEngine, "first pass", "renderer reported no pages", nil)
	}
	p.logger.Debug("primary section measured", slog.Int("main_pages", mainPages))

	b := content.NewBuilder(primary.Title).Append(primary)
	withAppendix := !appendix.Empty()
	if withAppendix {
		b.PageBreak().Mark(AppendixMark).Append(appendix)
	}
	second, err := p.renderer.Render(ctx, b.Document(), footer.footerFor(mainPages))
	if err != nil {
		return Pagination{}, renderErr("second pass", err)
	}

	if withAppendix {
		at, ok := second.Marks[AppendixMark]
		if !ok || at != mainPages+1 {
			return Pagination{}, fmt.Errorf("%w: %w: appendix starts on page %d, expected %d", ErrLayoutEngine, ErrPaginationDrift, at, mainPages+1)
		}
	} else if second.PageCount != mainPages {
		return Pagination{}, fmt.Errorf("%w: %w: second pass has %d pages, expected %d", ErrLayoutEngine, ErrPaginationDrift, second.PageCount, mainPages)
	}

	out := Pagination{Bytes: second.Bytes, MainPages: mainPages, AppendixPages: second.PageCount - mainPages}
	p.logger.Debug("report paginated",
		slog.Int("main_pages", out.MainPages),
		slog.Int("appendix_pages", out.AppendixPages),
	)
	return out, nil
}

func renderErr(pass string, err error) error {
	if isContextErr(err) {
		return err
	}
	return wrap(ErrLayoutEngine, pass, "", err)
}

// trimTrailingBlank drops trailing blocks that draw nothing. A trailing break
// would otherwise open a page that the appendix break then reuses.
func trimTrailingBlank(d content.Document) content.Document {
	n := len(d.Blocks)
	for n > 0 {
		switch d.Blocks[n-1].Kind {
		case content.KindPageBreak, content.KindSpacer, content.KindMark:
			n--
			continue
		}
		break
	}
	if n == len(d.Blocks) {
		return d
	}
	return content.Document{Title: d.Title, Blocks: d.Blocks[:n]}
}

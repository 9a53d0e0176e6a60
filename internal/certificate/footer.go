package certificate

import (
	"fmt"
	"strings"

	"labcert/internal/render"
)

// DefaultPageFormat renders the primary-section page counter.
const DefaultPageFormat = "Page %d of %d"

// FooterTemplate describes the certificate footer. Left is printed on every
// primary and appendix page; the page counter only on primary pages.
type FooterTemplate struct {
	Left       string
	PageFormat string
}

// Validate checks that PageFormat takes exactly the page and total numbers.
func (t FooterTemplate) Validate() error {
	if t.PageFormat == "" {
		return nil
	}
	if strings.Count(t.PageFormat, "%d") != 2 || strings.Count(t.PageFormat, "%") != 2 {
		return fmt.Errorf("footer page format %q must contain exactly two %%d verbs", t.PageFormat)
	}
	return nil
}

// PageText formats the counter for page of total.
func (t FooterTemplate) PageText(page, total int) string {
	format := t.PageFormat
	if format == "" {
		format = DefaultPageFormat
	}
	return fmt.Sprintf(format, page, total)
}

// footerFor returns the pass-two footer: counted on pages up to mainPages,
// static text only after that.
func (t FooterTemplate) footerFor(mainPages int) render.FooterFunc {
	return func(page int) render.Footer {
		if page <= mainPages {
			return render.Footer{Left: t.Left, Right: t.PageText(page, mainPages)}
		}
		return render.Footer{Left: t.Left}
	}
}

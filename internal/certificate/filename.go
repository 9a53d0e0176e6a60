package certificate

import (
	"strings"
	"time"
)

// DefaultReportType is used when an assembly names no report type.
const DefaultReportType = "Report"

var unsafeFilenameChars = strings.NewReplacer("/", "-", "\\", "-", ":", "-", "\x00", "")

// FileName builds "{ReportType} - {Reference} (YYYYMMDD).pdf". The date part
// is omitted for a zero date. Path separators are replaced so the result is
// always a single path element.
func FileName(reportType, reference string, date time.Time) string {
	rt := strings.TrimSpace(unsafeFilenameChars.Replace(reportType))
	if rt == "" {
		rt = DefaultReportType
	}
	name := rt + " - " + strings.TrimSpace(unsafeFilenameChars.Replace(reference))
	if !date.IsZero() {
		name += " (" + date.Format("20060102") + ")"
	}
	return name + ".pdf"
}

package certificate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"labcert/internal/measure"
)

// Error markers. Wrapped errors carry one of these so callers can classify a
// failure with errors.Is.
var (
	// ErrMissingAttachment means the external lab certificate is absent or empty.
	ErrMissingAttachment = errors.New("missing attachment")
	// ErrCorruptAttachment means the external lab certificate is not a readable PDF.
	ErrCorruptAttachment = errors.New("corrupt attachment")
	// ErrLayoutEngine covers rendering failures; no fallback page is produced.
	ErrLayoutEngine = errors.New("layout engine failure")
	// ErrPaginationDrift means the second pass did not reproduce the first
	// pass's page count. It also matches ErrLayoutEngine.
	ErrPaginationDrift = errors.New("pagination drift")
)

// attachHint is appended to missing attachment errors.
const attachHint = "attach the lab analysis certificate PDF before generating the report"

func wrap(marker error, operation, message string, err error) error {
	detail := buildDetail(operation, message)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(operation, message string) string {
	parts := make([]string, 0, 2)
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "certificate failure"
	}
	return strings.Join(parts, ": ")
}

// Kind maps an error to a stable label for logs and metrics.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrMissingAttachment):
		return "missing_attachment"
	case errors.Is(err, ErrCorruptAttachment):
		return "corrupt_attachment"
	case errors.Is(err, ErrPaginationDrift):
		return "pagination_drift"
	case errors.Is(err, ErrLayoutEngine):
		return "layout_engine"
	case errors.Is(err, measure.ErrInvalidMeasurement):
		return "invalid_measurement"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

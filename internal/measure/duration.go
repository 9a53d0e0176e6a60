package measure

import (
	"fmt"
	"math"
	"strings"
	"time"
)

var clockLayouts = []string{"15:04", "15:04:05"}

// Interval is a sampling period derived from two same-day clock times.
type Interval struct {
	Start     time.Time
	End       time.Time
	Minutes   int
	Overnight bool // end preceded start and 24h was added
}

// Span derives the sampling interval between start and end. When end is
// earlier than start the period is taken to cross midnight and 24h is added.
// This wraparound is unconditional, so a mistyped end time also reads as an
// overnight run; Overnight lets callers surface that case for review.
func Span(start, end time.Time) Interval {
	d := end.Sub(start)
	overnight := false
	if d < 0 {
		d += 24 * time.Hour
		overnight = true
	}
	return Interval{
		Start:     start,
		End:       end,
		Minutes:   int(math.Round(float64(d) / float64(time.Minute))),
		Overnight: overnight,
	}
}

// DurationMinutes is Span(start, end).Minutes.
func DurationMinutes(start, end time.Time) int {
	return Span(start, end).Minutes
}

// ParseClock reads a "HH:MM" or "HH:MM:SS" clock time.
func ParseClock(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: clock time %q", ErrInvalidMeasurement, raw)
}

// SpanClock parses two clock strings and returns their interval.
func SpanClock(start, end string) (Interval, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Interval{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Interval{}, err
	}
	return Span(s, e), nil
}

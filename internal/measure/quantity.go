// Package measure implements censored-value arithmetic for field sampling
// results: parsing "<X" style laboratory quantities and deriving airborne
// concentrations from them.
package measure

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultPrecision is the number of decimals used by Quantity.String.
const DefaultPrecision = 4

// ErrInvalidMeasurement marks unparseable or out-of-range numeric input.
var ErrInvalidMeasurement = errors.New("invalid measurement")

// Quantity is a measured magnitude that may be left-censored, meaning the true
// value is only known to be at most Magnitude (reported as "<X"). The zero
// value is the invalid quantity.
type Quantity struct {
	magnitude float64
	censored  bool
	valid     bool
}

// Invalid returns the distinguished invalid quantity.
func Invalid() Quantity { return Quantity{} }

// New builds a quantity from a magnitude. Negative or non-finite magnitudes
// yield the invalid quantity.
func New(magnitude float64, censored bool) Quantity {
	if math.IsNaN(magnitude) || math.IsInf(magnitude, 0) || magnitude < 0 {
		return Invalid()
	}
	if magnitude == 0 {
		magnitude = 0 // drop negative zero
	}
	return Quantity{magnitude: magnitude, censored: censored, valid: true}
}

// Parse reads a raw laboratory value such as "12.5" or "<0.02". Any failure
// produces the invalid quantity; use ParseStrict when the reason matters.
func Parse(raw string) Quantity {
	q, err := ParseStrict(raw)
	if err != nil {
		return Invalid()
	}
	return q
}

// ParseStrict is Parse with an error describing why the input was rejected.
// Errors wrap ErrInvalidMeasurement.
func ParseStrict(raw string) (Quantity, error) {
	s := strings.TrimSpace(raw)
	censored := false
	if strings.HasPrefix(s, "<") {
		censored = true
		s = strings.TrimSpace(s[1:])
	}
	if s == "" {
		return Invalid(), fmt.Errorf("%w: empty value %q", ErrInvalidMeasurement, raw)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Invalid(), fmt.Errorf("%w: %q is not numeric", ErrInvalidMeasurement, raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Invalid(), fmt.Errorf("%w: %q is not finite", ErrInvalidMeasurement, raw)
	}
	if v < 0 {
		return Invalid(), fmt.Errorf("%w: %q is negative", ErrInvalidMeasurement, raw)
	}
	return New(v, censored), nil
}

// Valid reports whether q holds a usable magnitude.
func (q Quantity) Valid() bool { return q.valid }

// Magnitude returns the numeric part; zero for invalid quantities.
func (q Quantity) Magnitude() float64 { return q.magnitude }

// Censored reports whether the true value is only bounded above by Magnitude.
func (q Quantity) Censored() bool { return q.censored }

// Format renders q in fixed-point notation with precision decimals, prefixed
// with "<" when censored. Invalid quantities format as "". A negative
// precision selects DefaultPrecision.
func (q Quantity) Format(precision int) string {
	if !q.valid {
		return ""
	}
	if precision < 0 {
		precision = DefaultPrecision
	}
	s := strconv.FormatFloat(q.magnitude, 'f', precision, 64)
	if q.censored {
		return "<" + s
	}
	return s
}

func (q Quantity) String() string { return q.Format(DefaultPrecision) }

// MarshalText encodes q losslessly so job files round-trip.
func (q Quantity) MarshalText() ([]byte, error) {
	if !q.valid {
		return []byte{}, nil
	}
	s := strconv.FormatFloat(q.magnitude, 'f', -1, 64)
	if q.censored {
		s = "<" + s
	}
	return []byte(s), nil
}

// UnmarshalText accepts the same syntax as Parse. Empty text decodes to the
// invalid quantity without error so optional fields can be left blank.
func (q *Quantity) UnmarshalText(text []byte) error {
	if strings.TrimSpace(string(text)) == "" {
		*q = Invalid()
		return nil
	}
	parsed, err := ParseStrict(string(text))
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

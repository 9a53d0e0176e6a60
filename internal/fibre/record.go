package fibre

import (
	"errors"
	"fmt"
	"strings"
)

// MaxObservations caps the fibre types recorded per sample.
const MaxObservations = 4

// ErrTooManyObservations is returned by Normalize when the cap is exceeded.
var ErrTooManyObservations = errors.New("too many fibre observations")

// Sizing selects how the analysed sub-sample was measured.
type Sizing string

// Supported sizing modes.
const (
	SizingMass       Sizing = "mass"
	SizingDimensions Sizing = "dimensions"
)

// Ashing captures the optional ashing step before microscopy.
type Ashing struct {
	Performed   bool   `toml:"performed" json:"performed"`
	Temperature string `toml:"temperature" json:"temperature,omitempty"`
	Duration    string `toml:"duration" json:"duration,omitempty"`
}

// Record is the microscopy analysis for one sample.
type Record struct {
	SampleID         string        `toml:"sample_id" json:"sample_id"`
	MicroscopeID     string        `toml:"microscope_id" json:"microscope_id"`
	Sizing           Sizing        `toml:"sizing" json:"sizing"`
	Mass             string        `toml:"mass" json:"mass,omitempty"`
	DimensionX       string        `toml:"dimension_x" json:"dimension_x,omitempty"`
	DimensionY       string        `toml:"dimension_y" json:"dimension_y,omitempty"`
	DimensionZ       string        `toml:"dimension_z" json:"dimension_z,omitempty"`
	Ashing           Ashing        `toml:"ashing" json:"ashing"`
	Observations     []Observation `toml:"observations" json:"observations"`
	NoFibresDetected bool          `toml:"no_fibres_detected" json:"no_fibres_detected"`
	FinalResult      string        `toml:"final_result" json:"final_result,omitempty"`
	Started          bool          `toml:"started" json:"started"`
}

// IsComplete reports whether the record is ready for issue. It is derived
// from the current field values on every call.
func (r Record) IsComplete() bool { return IsComplete(r) }

// IsComplete checks sizing first: a record without its sizing value is never
// complete, whatever the fibre state. With sizing present, a record flagged
// as having no fibres is complete; otherwise every observation needs a result
// and there must be at least one.
func IsComplete(r Record) bool {
	if !hasSizing(r) {
		return false
	}
	if r.NoFibresDetected {
		return true
	}
	if len(r.Observations) == 0 {
		return false
	}
	for _, obs := range r.Observations {
		if blank(obs.Result) {
			return false
		}
	}
	return true
}

func hasSizing(r Record) bool {
	switch r.Sizing {
	case SizingMass:
		return !blank(r.Mass)
	case SizingDimensions:
		return !blank(r.DimensionX) || !blank(r.DimensionY) || !blank(r.DimensionZ)
	default:
		return false
	}
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// Normalize returns a copy with a blank placeholder observation when an
// analysis has started with none, and rejects more than MaxObservations.
func (r Record) Normalize() (Record, error) {
	if len(r.Observations) > MaxObservations {
		return r, fmt.Errorf("%w: sample %s has %d, limit %d", ErrTooManyObservations, r.SampleID, len(r.Observations), MaxObservations)
	}
	obs := make([]Observation, len(r.Observations), MaxObservations)
	copy(obs, r.Observations)
	if r.Started && len(obs) == 0 {
		obs = append(obs, Observation{})
	}
	r.Observations = obs
	return r, nil
}

// DerivedFinalResult returns FinalResult when the operator set one, otherwise
// a summary built from the observations in first-seen order.
func (r Record) DerivedFinalResult() string {
	if !blank(r.FinalResult) {
		return strings.TrimSpace(r.FinalResult)
	}
	if r.NoFibresDetected {
		return ResultNoFibres
	}
	seen := make(map[string]struct{}, len(r.Observations))
	parts := make([]string, 0, len(r.Observations))
	for _, obs := range r.Observations {
		res := strings.TrimSpace(obs.Result)
		if res == "" {
			continue
		}
		if _, dup := seen[res]; dup {
			continue
		}
		seen[res] = struct{}{}
		parts = append(parts, res)
	}
	return strings.Join(parts, ", ")
}

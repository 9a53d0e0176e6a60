package measure

import "math"

// InsufficientData is shown in place of a concentration that cannot be derived.
const InsufficientData = "Insufficient data"

// Concentration derives an airborne concentration in mg/m³ from the fibre or
// dust content collected on a filter (µg), the pump flow rate (L/min) and the
// sampling duration (minutes):
//
//	(content µg / 1000) / (flow L/min × duration min / 1000)
//
// The censored flag of content carries through unchanged. ok is false when
// the inputs cannot support a result: invalid or negative content,
// non-positive flow, or non-positive duration.
func Concentration(content Quantity, flowRateLpm float64, durationMinutes int) (Quantity, bool) {
	if !content.Valid() || content.Magnitude() < 0 {
		return Invalid(), false
	}
	if math.IsNaN(flowRateLpm) || math.IsInf(flowRateLpm, 0) || flowRateLpm <= 0 {
		return Invalid(), false
	}
	if durationMinutes <= 0 {
		return Invalid(), false
	}
	c := New(content.Magnitude()/(flowRateLpm*float64(durationMinutes)), content.Censored())
	return c, c.Valid()
}

// SampleVolumeLitres is the air volume drawn through the filter. It returns
// zero when either input is non-positive.
func SampleVolumeLitres(flowRateLpm float64, durationMinutes int) float64 {
	if math.IsNaN(flowRateLpm) || flowRateLpm <= 0 || durationMinutes <= 0 {
		return 0
	}
	return flowRateLpm * float64(durationMinutes)
}

// Sample is one air sample as recorded in the field.
type Sample struct {
	ID              string
	Location        string
	Content         Quantity
	FlowRate        float64
	DurationMinutes int
}

// Concentration computes the sample's concentration; see Concentration.
func (s Sample) Concentration() (Quantity, bool) {
	return Concentration(s.Content, s.FlowRate, s.DurationMinutes)
}

// VolumeLitres returns the sampled air volume.
func (s Sample) VolumeLitres() float64 {
	return SampleVolumeLitres(s.FlowRate, s.DurationMinutes)
}

// ConcentrationText formats the concentration at precision decimals, or
// InsufficientData when it cannot be derived.
func (s Sample) ConcentrationText(precision int) string {
	c, ok := s.Concentration()
	if !ok {
		return InsufficientData
	}
	return c.Format(precision)
}

// Reading is the reportable outcome for one sample.
type Reading struct {
	VolumeLitres  float64
	Concentration Quantity
	// OK is false when the concentration could not be derived.
	OK bool
	// Text is the formatted concentration or InsufficientData.
	Text string
}

// Result derives the sample's reading at DefaultPrecision.
func (s Sample) Result() Reading {
	c, ok := s.Concentration()
	r := Reading{VolumeLitres: s.VolumeLitres(), Concentration: c, OK: ok, Text: InsufficientData}
	if ok {
		r.Text = c.Format(DefaultPrecision)
	}
	return r
}

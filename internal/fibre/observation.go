// Package fibre classifies fibre-identification observations made under the
// polarised light microscope and decides when a sample analysis is complete.
//
// Everything here is a pure function of its inputs. Whether a result was set
// automatically or overridden by an operator is the caller's concern; callers
// that want to keep an override pass Edit.KeepResult.
package fibre

// Morphology is the observed fibre shape.
type Morphology string

// Recognised morphologies.
const (
	MorphologyUnset    Morphology = ""
	MorphologyCurly    Morphology = "curly"
	MorphologyStraight Morphology = "straight"
)

// Disintegration records whether fibres disintegrated on ashing.
type Disintegration string

// Recognised disintegration outcomes.
const (
	DisintegratesUnset Disintegration = ""
	DisintegratesYes   Disintegration = "yes"
	DisintegratesNo    Disintegration = "no"
)

// Determination labels.
const (
	ResultOrganic     = "Organic fibres"
	ResultSMF         = "Synthetic mineral fibre (SMF)"
	ResultChrysotile  = "Chrysotile"
	ResultAmosite     = "Amosite"
	ResultCrocidolite = "Crocidolite"
	ResultNoAsbestos  = "No asbestos detected"
	ResultNoFibres    = "No fibres detected"
)

// ManualResults is the fixed set an operator chooses from when no automatic
// determination applies.
var ManualResults = []string{
	ResultChrysotile,
	ResultAmosite,
	ResultCrocidolite,
	ResultNoAsbestos,
	ResultOrganic,
	ResultSMF,
}

// Observation is a single fibre type identified in a sample.
type Observation struct {
	Morphology          Morphology     `toml:"morphology" json:"morphology"`
	Disintegrates       Disintegration `toml:"disintegrates" json:"disintegrates"`
	Colour              string         `toml:"colour" json:"colour"`
	Birefringence       string         `toml:"birefringence" json:"birefringence"`
	Extinction          string         `toml:"extinction" json:"extinction"`
	SignOfElongation    string         `toml:"sign_of_elongation" json:"sign_of_elongation"`
	ParallelColour      string         `toml:"parallel_colour" json:"parallel_colour"`
	PerpendicularColour string         `toml:"perpendicular_colour" json:"perpendicular_colour"`
	Result              string         `toml:"result" json:"result"`
}

// Classify maps morphology and disintegration to an automatic determination.
// ok is false when the operator must choose from ManualResults instead.
func Classify(m Morphology, d Disintegration) (result string, ok bool) {
	if d != DisintegratesYes {
		return "", false
	}
	switch m {
	case MorphologyCurly:
		return ResultOrganic, true
	case MorphologyStraight:
		return ResultSMF, true
	default:
		return "", false
	}
}

// Reclassify clears obs.Result and recomputes it from the current morphology
// and disintegration, so an edited input never keeps a stale determination.
func Reclassify(obs Observation) Observation {
	obs.Result = ""
	if r, ok := Classify(obs.Morphology, obs.Disintegrates); ok {
		obs.Result = r
	}
	return obs
}

// Edit describes an operator change to the classification inputs. Nil fields
// are left untouched.
type Edit struct {
	Morphology    *Morphology
	Disintegrates *Disintegration
	// KeepResult skips reclassification, preserving a manual override.
	KeepResult bool
}

// Apply returns obs with the edit applied. When either input actually changes
// the result is reclassified unless KeepResult is set.
func (e Edit) Apply(obs Observation) Observation {
	changed := false
	if e.Morphology != nil && *e.Morphology != obs.Morphology {
		obs.Morphology = *e.Morphology
		changed = true
	}
	if e.Disintegrates != nil && *e.Disintegrates != obs.Disintegrates {
		obs.Disintegrates = *e.Disintegrates
		changed = true
	}
	if !changed || e.KeepResult {
		return obs
	}
	return Reclassify(obs)
}

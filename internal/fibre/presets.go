package fibre

// Reference optical properties for the regulated amphibole and serpentine
// asbestos minerals, as observed with dispersion staining.
var presets = map[string]Observation{
	ResultChrysotile: {
		Morphology:          MorphologyCurly,
		Disintegrates:       DisintegratesNo,
		Colour:              "Colourless",
		Birefringence:       "Low",
		Extinction:          "Parallel",
		SignOfElongation:    "Positive",
		ParallelColour:      "Magenta",
		PerpendicularColour: "Blue",
		Result:              ResultChrysotile,
	},
	ResultAmosite: {
		Morphology:          MorphologyStraight,
		Disintegrates:       DisintegratesNo,
		Colour:              "Colourless to brown",
		Birefringence:       "Medium",
		Extinction:          "Parallel",
		SignOfElongation:    "Positive",
		ParallelColour:      "Yellow",
		PerpendicularColour: "Blue",
		Result:              ResultAmosite,
	},
	ResultCrocidolite: {
		Morphology:          MorphologyStraight,
		Disintegrates:       DisintegratesNo,
		Colour:              "Blue",
		Birefringence:       "Low",
		Extinction:          "Parallel",
		SignOfElongation:    "Negative",
		ParallelColour:      "Blue",
		PerpendicularColour: "Yellow",
		Result:              ResultCrocidolite,
	},
}

var presetOrder = []string{ResultChrysotile, ResultAmosite, ResultCrocidolite}

// PresetNames lists the available presets in display order.
func PresetNames() []string {
	out := make([]string, len(presetOrder))
	copy(out, presetOrder)
	return out
}

// ApplyPreset overwrites every classification field of obs with the named
// reference mineral. Unknown names return obs unchanged.
func ApplyPreset(obs Observation, name string) Observation {
	p, ok := presets[name]
	if !ok {
		return obs
	}
	return p
}

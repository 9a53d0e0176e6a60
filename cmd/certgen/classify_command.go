package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"labcert/internal/fibre"
)

type classifyResult struct {
	Result    string   `json:"result,omitempty"`
	Automatic bool     `json:"automatic"`
	Choices   []string `json:"choices,omitempty"`
}

func newClassifyCommand() *cobra.Command {
	var (
		morphology    string
		disintegrates string
		preset        string
		listPresets   bool
		jsonOutput    bool
	)

	cmd := &cobra.Command{
		Use:         "classify",
		Short:       "Classify a fibre observation or show a reference preset",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch {
			case listPresets:
				if jsonOutput {
					return writeJSON(cmd, fibre.PresetNames())
				}
				for _, name := range fibre.PresetNames() {
					fmt.Fprintln(out, name)
				}
				return nil
			case preset != "":
				obs := fibre.ApplyPreset(fibre.Observation{}, preset)
				if obs.Result == "" {
					return fmt.Errorf("unknown preset %q (available: %s)", preset, strings.Join(fibre.PresetNames(), ", "))
				}
				if jsonOutput {
					return writeJSON(cmd, obs)
				}
				fmt.Fprintln(out, renderPairs(preset, observationPairs(obs)))
				return nil
			}

			if morphology == "" && disintegrates == "" {
				return errors.New("provide --morphology and --disintegrates, --preset, or --list-presets")
			}
			m, err := parseMorphology(morphology)
			if err != nil {
				return err
			}
			d, err := parseDisintegration(disintegrates)
			if err != nil {
				return err
			}
			res := classifyResult{}
			if r, ok := fibre.Classify(m, d); ok {
				res.Result = r
				res.Automatic = true
			} else {
				res.Choices = append([]string(nil), fibre.ManualResults...)
			}
			if jsonOutput {
				return writeJSON(cmd, res)
			}
			if res.Automatic {
				fmt.Fprintf(out, "Result: %s\n", res.Result)
				return nil
			}
			fmt.Fprintln(out, "No automatic determination; choose one of:")
			for _, c := range res.Choices {
				fmt.Fprintf(out, "  - %s\n", c)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&morphology, "morphology", "", "Fibre morphology: curly or straight")
	cmd.Flags().StringVar(&disintegrates, "disintegrates", "", "Whether fibres disintegrated on ashing: yes or no")
	cmd.Flags().StringVar(&preset, "preset", "", "Show the reference properties of a mineral preset")
	cmd.Flags().BoolVar(&listPresets, "list-presets", false, "List available presets")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print output as JSON")
	return cmd
}

func parseMorphology(s string) (fibre.Morphology, error) {
	switch m := fibre.Morphology(strings.ToLower(strings.TrimSpace(s))); m {
	case fibre.MorphologyUnset, fibre.MorphologyCurly, fibre.MorphologyStraight:
		return m, nil
	default:
		return "", fmt.Errorf("unknown morphology %q (curly, straight)", s)
	}
}

func parseDisintegration(s string) (fibre.Disintegration, error) {
	switch d := fibre.Disintegration(strings.ToLower(strings.TrimSpace(s))); d {
	case fibre.DisintegratesUnset, fibre.DisintegratesYes, fibre.DisintegratesNo:
		return d, nil
	default:
		return "", fmt.Errorf("unknown disintegration %q (yes, no)", s)
	}
}

func observationPairs(obs fibre.Observation) [][2]string {
	return [][2]string{
		{"Morphology", string(obs.Morphology)},
		{"Disintegrates", string(obs.Disintegrates)},
		{"Colour", obs.Colour},
		{"Birefringence", obs.Birefringence},
		{"Extinction", obs.Extinction},
		{"Sign of elongation", obs.SignOfElongation},
		{"Parallel colour", obs.ParallelColour},
		{"Perpendicular colour", obs.PerpendicularColour},
		{"Result", obs.Result},
	}
}

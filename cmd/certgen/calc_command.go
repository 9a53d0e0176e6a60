package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"labcert/internal/compose"
	"labcert/internal/measure"
)

type calcRow struct {
	Sample        string  `json:"sample"`
	Location      string  `json:"location,omitempty"`
	FlowRate      float64 `json:"flow_rate_lpm"`
	Minutes       int     `json:"duration_minutes"`
	Overnight     bool    `json:"overnight"`
	VolumeLitres  float64 `json:"volume_litres"`
	Concentration string  `json:"concentration"`
}

func newCalcCommand() *cobra.Command {
	var (
		content    string
		flow       float64
		start      string
		end        string
		minutes    int
		precision  int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "calc [job.toml]",
		Short: "Compute sample volumes and concentrations",
		Long: "With a job file, print the sampling table for every sample. Without one, compute a single " +
			"sample from --content, --flow and either --start/--end or --minutes.",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var rows []compose.SampleRow
			if len(args) == 1 {
				job, err := compose.LoadJob(args[0])
				if err != nil {
					return err
				}
				if rows, err = compose.Rows(job); err != nil {
					return err
				}
			} else {
				if content == "" {
					return errors.New("--content is required without a job file")
				}
				in := compose.SampleInput{ID: "-", FlowRate: flow, Start: start, End: end, DurationMinutes: minutes}
				q, err := measure.ParseStrict(content)
				if err != nil {
					return err
				}
				in.Content = q
				job := compose.Job{Reference: "-", Samples: []compose.SampleInput{in}}
				if rows, err = compose.Rows(job); err != nil {
					return err
				}
			}

			out := make([]calcRow, 0, len(rows))
			for _, r := range rows {
				text := r.Reading.Text
				if r.Reading.OK {
					text = r.Reading.Concentration.Format(precision)
				}
				out = append(out, calcRow{
					Sample:        r.Sample.ID,
					Location:      r.Sample.Location,
					FlowRate:      r.Sample.FlowRate,
					Minutes:       r.Sample.DurationMinutes,
					Overnight:     r.Interval.Overnight,
					VolumeLitres:  r.Reading.VolumeLitres,
					Concentration: text,
				})
			}
			if jsonOutput {
				return writeJSON(cmd, out)
			}
			table := make([][]string, 0, len(out))
			for i, r := range out {
				table = append(table, []string{
					r.Sample,
					r.Location,
					strconv.FormatFloat(r.FlowRate, 'f', 2, 64),
					rows[i].DurationText(),
					rows[i].VolumeText(),
					r.Concentration,
				})
			}
			cols := []column{
				textCol("Sample"), textCol("Location"), numCol("Flow (L/min)"),
				numCol("Duration"), numCol("Volume (L)"), numCol("Concentration (mg/m³)"),
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(cols, table))
			return nil
		},
	}

	cmd.Flags().StringVar(&content, "content", "", "Fibre content, e.g. 12.5 or <50 for a censored value")
	cmd.Flags().Float64Var(&flow, "flow", 0, "Pump flow rate in L/min")
	cmd.Flags().StringVar(&start, "start", "", "Sampling start time (HH:MM)")
	cmd.Flags().StringVar(&end, "end", "", "Sampling end time (HH:MM); earlier than start means overnight")
	cmd.Flags().IntVar(&minutes, "minutes", 0, "Sampling duration in minutes when no clock times are given")
	cmd.Flags().IntVar(&precision, "precision", measure.DefaultPrecision, "Decimal places for concentrations")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print rows as JSON")
	return cmd
}

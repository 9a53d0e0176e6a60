// Package compose turns a monitoring job into the content documents the
// certificate assembler lays out: the primary results section and the cover
// page that introduces the appended laboratory certificate.
package compose

import (
	"fmt"
	"strconv"
	"strings"

	"labcert/internal/content"
	"labcert/internal/fibre"
	"labcert/internal/measure"
)

// DefaultTitle heads reports whose job names no report type.
const DefaultTitle = "Airborne Fibre Monitoring Report"

const dateLayout = "2 January 2006"

// SampleRow is one computed line of the sampling table.
type SampleRow struct {
	Sample   measure.Sample
	Interval measure.Interval
	// Timed is true when the duration came from start and end clock times.
	Timed   bool
	Reading measure.Reading
}

// DurationText is the sampling time for display; periods that wrapped past
// midnight are flagged.
func (r SampleRow) DurationText() string {
	if r.Sample.DurationMinutes <= 0 {
		return "-"
	}
	s := strconv.Itoa(r.Sample.DurationMinutes) + " min"
	if r.Interval.Overnight {
		s += " (overnight)"
	}
	return s
}

// PeriodText is "HH:MM-HH:MM" for timed samples.
func (r SampleRow) PeriodText() string {
	if !r.Timed {
		return ""
	}
	return r.Interval.Start.Format("15:04") + "-" + r.Interval.End.Format("15:04")
}

// VolumeText formats the air volume in litres.
func (r SampleRow) VolumeText() string {
	if r.Reading.VolumeLitres <= 0 {
		return "-"
	}
	return strconv.FormatFloat(r.Reading.VolumeLitres, 'f', 1, 64)
}

// FibreRow is one analysed sample with its completeness findings.
type FibreRow struct {
	Record   fibre.Record
	Result   string
	Findings fibre.Result
}

// Complete reports whether the analysis is ready for issue.
func (r FibreRow) Complete() bool { return r.Findings.Complete() }

// SizingText describes how the sub-sample was measured.
func (r FibreRow) SizingText() string { return sizingText(r.Record) }

// ObservationsText lists each observation on its own line.
func (r FibreRow) ObservationsText() string { return fibresText(r.Record) }

// Composition is everything derived from a job.
type Composition struct {
	Job           Job
	Samples       []SampleRow
	Fibres        []FibreRow
	Primary       content.Document
	AppendixCover content.Document
}

// Complete reports whether every fibre analysis is ready for issue.
func (c Composition) Complete() bool {
	for _, f := range c.Fibres {
		if !f.Complete() {
			return false
		}
	}
	return true
}

// Overnight lists the IDs of samples whose period crossed midnight.
func (c Composition) Overnight() []string {
	var ids []string
	for _, r := range c.Samples {
		if r.Interval.Overnight {
			ids = append(ids, r.Sample.ID)
		}
	}
	return ids
}

// Title is the report heading for the job.
func (j Job) Title() string {
	if j.ReportType != "" {
		return j.ReportType
	}
	return DefaultTitle
}

// Rows computes the sampling table for the job.
func Rows(job Job) ([]SampleRow, error) {
	rows := make([]SampleRow, 0, len(job.Samples))
	for _, in := range job.Samples {
		s, iv, err := in.Sample()
		if err != nil {
			return nil, fmt.Errorf("sample %s: %w", in.ID, err)
		}
		rows = append(rows, SampleRow{
			Sample:   s,
			Interval: iv,
			Timed:    in.Start != "" || in.End != "",
			Reading:  s.Result(),
		})
	}
	return rows, nil
}

// FibreRows normalises and assesses every fibre record of the job.
func FibreRows(job Job) ([]FibreRow, error) {
	rows := make([]FibreRow, 0, len(job.Fibres))
	for _, rec := range job.Fibres {
		n, err := rec.Normalize()
		if err != nil {
			return nil, err
		}
		rows = append(rows, FibreRow{Record: n, Result: n.DerivedFinalResult(), Findings: fibre.Assess(n)})
	}
	return rows, nil
}

// Compose derives the sampling and fibre tables and lays them out as content.
func Compose(job Job) (Composition, error) {
	samples, err := Rows(job)
	if err != nil {
		return Composition{}, err
	}
	fibres, err := FibreRows(job)
	if err != nil {
		return Composition{}, err
	}
	c := Composition{Job: job, Samples: samples, Fibres: fibres}
	c.Primary = c.primary()
	c.AppendixCover = c.appendixCover()
	return c, nil
}

func (c Composition) primary() content.Document {
	job := c.Job
	b := content.NewBuilder(job.Title()).Heading(1, job.Title())
	b.KeyValues(c.header()...)

	if len(c.Samples) > 0 {
		b.Heading(2, "Sampling results")
		b.Table(c.samplingTable())
		if ids := c.Overnight(); len(ids) > 0 {
			b.Paragraph("Sampling period crossed midnight for " + strings.Join(ids, ", ") + "; durations include the wrap past 24:00.")
		}
		b.Paragraph("Concentrations are fibre content divided by sampled air volume. Values prefixed with < are below the limit of detection.")
	}

	if len(c.Fibres) > 0 {
		b.Heading(2, "Fibre analysis")
		b.Table(c.fibreTable())
		var outstanding []string
		for _, f := range c.Fibres {
			if f.Complete() {
				continue
			}
			outstanding = append(outstanding, f.Record.SampleID+": "+strings.Join(f.Findings.Messages(), "; "))
		}
		if len(outstanding) > 0 {
			b.Heading(3, "Outstanding analysis")
			for _, line := range outstanding {
				b.Paragraph(line)
			}
		}
	}

	if len(job.Notes) > 0 {
		b.Heading(2, "Notes")
		for _, n := range job.Notes {
			if strings.TrimSpace(n) != "" {
				b.Paragraph(n)
			}
		}
	}
	return b.Document()
}

func (c Composition) header() []content.Pair {
	job := c.Job
	pairs := []content.Pair{{Label: "Reference", Value: job.Reference}}
	add := func(label, value string) {
		if strings.TrimSpace(value) != "" {
			pairs = append(pairs, content.Pair{Label: label, Value: value})
		}
	}
	add("Client", job.Client)
	add("Site", job.Site)
	add("Address", job.Address)
	if d := job.IssueDate(); !d.IsZero() {
		add("Date", d.Format(dateLayout))
	}
	add("Analyst", job.Analyst)
	add("Method", job.Method)
	return pairs
}

func (c Composition) samplingTable() content.Table {
	t := content.Table{
		Columns: []string{"Sample", "Location", "Period", "Flow (L/min)", "Duration", "Volume (L)", "Concentration (mg/m³)"},
		Widths:  []float64{1, 2.4, 1.3, 1, 1.4, 1, 1.6},
	}
	for _, r := range c.Samples {
		flow := "-"
		if r.Sample.FlowRate > 0 {
			flow = strconv.FormatFloat(r.Sample.FlowRate, 'f', 2, 64)
		}
		t.Rows = append(t.Rows, []string{
			r.Sample.ID,
			r.Sample.Location,
			r.PeriodText(),
			flow,
			r.DurationText(),
			r.VolumeText(),
			r.Reading.Text,
		})
	}
	return t
}

func (c Composition) fibreTable() content.Table {
	t := content.Table{
		Columns: []string{"Sample", "Microscope", "Sizing", "Fibres identified", "Result"},
		Widths:  []float64{1, 1.2, 1.4, 2.6, 2},
	}
	for _, f := range c.Fibres {
		t.Rows = append(t.Rows, []string{
			f.Record.SampleID,
			f.Record.MicroscopeID,
			f.SizingText(),
			f.ObservationsText(),
			f.Result,
		})
	}
	return t
}

func sizingText(r fibre.Record) string {
	switch r.Sizing {
	case fibre.SizingMass:
		return "Mass " + strings.TrimSpace(r.Mass)
	case fibre.SizingDimensions:
		var dims []string
		for _, d := range []string{r.DimensionX, r.DimensionY, r.DimensionZ} {
			if s := strings.TrimSpace(d); s != "" {
				dims = append(dims, s)
			}
		}
		return strings.Join(dims, " x ")
	default:
		return "-"
	}
}

func fibresText(r fibre.Record) string {
	if r.NoFibresDetected {
		return "None"
	}
	parts := make([]string, 0, len(r.Observations))
	for i, obs := range r.Observations {
		label := strings.TrimSpace(obs.Result)
		if label == "" {
			label = "unresolved"
		}
		desc := string(obs.Morphology)
		if desc == "" {
			desc = "fibre"
		}
		parts = append(parts, fmt.Sprintf("%d. %s: %s", i+1, desc, label))
	}
	return strings.Join(parts, "\n")
}

func (c Composition) appendixCover() content.Document {
	job := c.Job
	return content.NewBuilder("Appendix").
		Heading(1, "Appendix A").
		Heading(2, "Laboratory analysis certificate").
		KeyValues(content.Pair{Label: "Reference", Value: job.Reference}).
		Paragraph("The laboratory's certificate of analysis for the samples in this report follows this page. It is reproduced in full and carries its own page numbering.").
		Document()
}

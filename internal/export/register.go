// Package export writes the sample register workbook that accompanies issued
// certificates.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"labcert/internal/compose"
	"labcert/internal/measure"
)

// Sheet names in the register workbook.
const (
	SamplesSheet = "Samples"
	FibresSheet  = "Fibres"
)

var sampleHeaders = []string{
	"Reference", "Sample", "Location", "Period", "Duration (min)", "Overnight",
	"Flow (L/min)", "Volume (L)", "Content", "Concentration (mg/m³)", "Below LOD",
}

var fibreHeaders = []string{
	"Reference", "Sample", "Microscope", "Sizing", "Observations", "Result", "Complete", "Outstanding",
}

// Register accumulates computed sample and fibre rows from one or more jobs
// into an XLSX workbook. It is not safe for concurrent use.
type Register struct {
	f          *excelize.File
	sampleNext int
	fibreNext  int
}

// NewRegister creates an empty register with header rows.
func NewRegister() (*Register, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SamplesSheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(FibresSheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("add sheet: %w", err)
	}
	r := &Register{f: f, sampleNext: 2, fibreNext: 2}
	if err := r.writeRow(SamplesSheet, 1, toCells(sampleHeaders)); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := r.writeRow(FibresSheet, 1, toCells(fibreHeaders)); err != nil {
		_ = f.Close()
		return nil, err
	}
	_ = f.SetColWidth(SamplesSheet, "A", "K", 16)
	_ = f.SetColWidth(FibresSheet, "A", "H", 18)
	return r, nil
}

// Add appends the rows of one composed job.
func (r *Register) Add(c compose.Composition) error {
	ref := c.Job.Reference
	for _, row := range c.Samples {
		cells := []any{
			ref,
			row.Sample.ID,
			row.Sample.Location,
			row.PeriodText(),
			row.Sample.DurationMinutes,
			row.Interval.Overnight,
			row.Sample.FlowRate,
			row.Reading.VolumeLitres,
			contentText(row.Sample.Content),
			nil,
			nil,
		}
		if row.Reading.OK {
			cells[9] = row.Reading.Concentration.Magnitude()
			cells[10] = row.Reading.Concentration.Censored()
		} else {
			cells[9] = row.Reading.Text
		}
		if err := r.writeRow(SamplesSheet, r.sampleNext, cells); err != nil {
			return err
		}
		r.sampleNext++
	}
	for _, fr := range c.Fibres {
		outstanding := ""
		if !fr.Complete() {
			outstanding = strings.Join(fr.Findings.Messages(), "\n")
		}
		cells := []any{
			ref,
			fr.Record.SampleID,
			fr.Record.MicroscopeID,
			fr.SizingText(),
			fr.ObservationsText(),
			fr.Result,
			fr.Complete(),
			outstanding,
		}
		if err := r.writeRow(FibresSheet, r.fibreNext, cells); err != nil {
			return err
		}
		r.fibreNext++
	}
	return nil
}

// Samples is the number of sample rows written so far.
func (r *Register) Samples() int { return r.sampleNext - 2 }

// Write serialises the workbook.
func (r *Register) Write(w io.Writer) error {
	r.f.SetActiveSheet(0)
	if err := r.f.Write(w); err != nil {
		return fmt.Errorf("write register: %w", err)
	}
	return nil
}

// SaveAs writes the workbook to path.
func (r *Register) SaveAs(path string) error {
	r.f.SetActiveSheet(0)
	if err := r.f.SaveAs(path); err != nil {
		return fmt.Errorf("save register: %w", err)
	}
	return nil
}

// Close releases the workbook's temporary resources.
func (r *Register) Close() error { return r.f.Close() }

func (r *Register) writeRow(sheet string, row int, cells []any) error {
	for i, v := range cells {
		if v == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := r.f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("set %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func toCells(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// contentText is the lossless form of the recorded fibre content.
func contentText(q measure.Quantity) string {
	b, _ := q.MarshalText()
	return string(b)
}

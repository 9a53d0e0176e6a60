package compose

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"labcert/internal/fibre"
	"labcert/internal/measure"
)

// ErrInvalidJob marks a job file that cannot be composed into a report.
var ErrInvalidJob = errors.New("invalid job")

// Job is one monitoring job as written in a job file.
type Job struct {
	Reference  string         `toml:"reference"`
	ReportType string         `toml:"report_type"`
	Client     string         `toml:"client"`
	Site       string         `toml:"site"`
	Address    string         `toml:"address"`
	Date       toml.LocalDate `toml:"date"`
	Analyst    string         `toml:"analyst"`
	Method     string         `toml:"method"`
	// Attachment is the blob key of the lab certificate. Empty means the
	// conventional key for Reference.
	Attachment string        `toml:"attachment"`
	Notes      []string      `toml:"notes"`
	Samples    []SampleInput `toml:"samples"`
	Fibres     []fibre.Record `toml:"fibres"`
}

// SampleInput is a field sample. Sampling time comes from Start/End clock
// times when either is set, else from DurationMinutes.
type SampleInput struct {
	ID              string           `toml:"id"`
	Location        string           `toml:"location"`
	Content         measure.Quantity `toml:"content"`
	FlowRate        float64          `toml:"flow_rate"`
	Start           string           `toml:"start"`
	End             string           `toml:"end"`
	DurationMinutes int              `toml:"duration_minutes"`
}

// LoadJob reads and validates a job file.
func LoadJob(path string) (Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Job{}, fmt.Errorf("read job: %w", err)
	}
	return DecodeJob(data)
}

// DecodeJob parses TOML job data. Unknown keys are rejected so that typos in
// field names do not silently drop measurements.
func DecodeJob(data []byte) (Job, error) {
	var job Job
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&job); err != nil {
		return Job{}, fmt.Errorf("parse job: %w", err)
	}
	job.normalize()
	if err := job.Validate(); err != nil {
		return Job{}, err
	}
	return job, nil
}

func (j *Job) normalize() {
	j.Reference = strings.TrimSpace(j.Reference)
	j.ReportType = strings.TrimSpace(j.ReportType)
	j.Attachment = strings.TrimSpace(j.Attachment)
	for i := range j.Samples {
		j.Samples[i].ID = strings.TrimSpace(j.Samples[i].ID)
		j.Samples[i].Start = strings.TrimSpace(j.Samples[i].Start)
		j.Samples[i].End = strings.TrimSpace(j.Samples[i].End)
	}
	for i := range j.Fibres {
		j.Fibres[i].SampleID = strings.TrimSpace(j.Fibres[i].SampleID)
	}
}

// Validate reports every structural problem with the job at once.
func (j Job) Validate() error {
	var problems []string
	if j.Reference == "" {
		problems = append(problems, "reference is required")
	}
	seen := make(map[string]struct{}, len(j.Samples))
	for i, s := range j.Samples {
		if s.ID == "" {
			problems = append(problems, fmt.Sprintf("sample %d has no id", i+1))
			continue
		}
		if _, dup := seen[s.ID]; dup {
			problems = append(problems, fmt.Sprintf("sample %s is listed twice", s.ID))
		}
		seen[s.ID] = struct{}{}
		if _, _, err := s.timing(); err != nil {
			problems = append(problems, fmt.Sprintf("sample %s: %v", s.ID, err))
		}
	}
	for _, r := range j.Fibres {
		if r.SampleID == "" {
			problems = append(problems, "fibre record has no sample_id")
		}
		if len(r.Observations) > fibre.MaxObservations {
			problems = append(problems, fmt.Sprintf("sample %s has %d fibre observations, limit %d", r.SampleID, len(r.Observations), fibre.MaxObservations))
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidJob, strings.Join(problems, "; "))
}

// IssueDate is the job date at midnight UTC, or the zero time when unset.
func (j Job) IssueDate() time.Time {
	if j.Date.Year == 0 {
		return time.Time{}
	}
	return j.Date.AsTime(time.UTC)
}

// timing resolves the sampling interval. timed is false when the duration
// was given directly.
func (s SampleInput) timing() (measure.Interval, bool, error) {
	if s.Start == "" && s.End == "" {
		return measure.Interval{Minutes: s.DurationMinutes}, false, nil
	}
	if s.Start == "" || s.End == "" {
		return measure.Interval{}, true, fmt.Errorf("%w: start and end must both be set", measure.ErrInvalidMeasurement)
	}
	iv, err := measure.SpanClock(s.Start, s.End)
	return iv, true, err
}

// Sample resolves the input into a measure.Sample.
func (s SampleInput) Sample() (measure.Sample, measure.Interval, error) {
	iv, _, err := s.timing()
	if err != nil {
		return measure.Sample{}, measure.Interval{}, err
	}
	return measure.Sample{
		ID:              s.ID,
		Location:        s.Location,
		Content:         s.Content,
		FlowRate:        s.FlowRate,
		DurationMinutes: iv.Minutes,
	}, iv, nil
}

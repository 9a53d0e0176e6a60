package compose

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labcert/internal/content"
	"labcert/internal/fibre"
	"labcert/internal/measure"
)

const sampleJob = `
reference = "J-2041"
report_type = "Air Monitoring Report"
client = "Harbour Estates"
site = "Block C plant room"
date = 2024-03-07
analyst = "R. Okafor"
notes = ["Samples collected during removal works."]

[[samples]]
id = "S1"
location = "Plant room entrance"
content = "<50"
flow_rate = 2.0
start = "08:00"
end = "12:00"

[[samples]]
id = "S2"
location = "Night shift"
content = "12"
flow_rate = 1.0
start = "22:00"
end = "02:00"

[[samples]]
id = "S3"
location = "Blank"
content = ""
flow_rate = 2.0
duration_minutes = 60

[[fibres]]
sample_id = "S1"
microscope_id = "PLM-2"
sizing = "mass"
mass = "1.2 g"

  [[fibres.observations]]
  morphology = "straight"
  disintegrates = "yes"
  result = "Synthetic mineral fibre (SMF)"

[[fibres]]
sample_id = "S2"
sizing = "dimensions"
started = true
`

func decodeSample(t *testing.T) Job {
	t.Helper()
	job, err := DecodeJob([]byte(sampleJob))
	require.NoError(t, err)
	return job
}

func TestDecodeJob(t *testing.T) {
	job := decodeSample(t)
	assert.Equal(t, "J-2041", job.Reference)
	assert.Equal(t, "2024-03-07", job.IssueDate().Format("2006-01-02"))
	require.Len(t, job.Samples, 3)
	assert.True(t, job.Samples[0].Content.Censored())
	assert.Equal(t, 50.0, job.Samples[0].Content.Magnitude())
	assert.False(t, job.Samples[2].Content.Valid())
	require.Len(t, job.Fibres, 2)
	assert.Equal(t, fibre.MorphologyStraight, job.Fibres[0].Observations[0].Morphology)
}

func TestDecodeJobRejectsUnknownFields(t *testing.T) {
	_, err := DecodeJob([]byte("reference = \"J\"\nrefrence = \"typo\"\n"))
	require.Error(t, err)
}

func TestDecodeJobValidation(t *testing.T) {
	cases := map[string]string{
		"missing reference": `[[samples]]
id = "S1"`,
		"duplicate sample": `reference = "J"
[[samples]]
id = "S1"
[[samples]]
id = "S1"`,
		"half a period": `reference = "J"
[[samples]]
id = "S1"
start = "08:00"`,
		"bad clock": `reference = "J"
[[samples]]
id = "S1"
start = "8am"
end = "12:00"`,
		"too many fibres": `reference = "J"
[[fibres]]
sample_id = "S1"
[[fibres.observations]]
[[fibres.observations]]
[[fibres.observations]]
[[fibres.observations]]
[[fibres.observations]]`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeJob([]byte(doc))
			require.ErrorIs(t, err, ErrInvalidJob)
		})
	}
}

func TestDecodeJobRejectsMalformedContent(t *testing.T) {
	_, err := DecodeJob([]byte("reference = \"J\"\n[[samples]]\nid = \"S1\"\ncontent = \"abc\"\n"))
	require.Error(t, err)
}

func TestLoadJob(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.toml")
	require.NoError(t, os.WriteFile(path, []byte(sampleJob), 0o600))
	job, err := LoadJob(path)
	require.NoError(t, err)
	assert.Equal(t, "Harbour Estates", job.Client)

	_, err = LoadJob(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestRows(t *testing.T) {
	rows, err := Rows(decodeSample(t))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	s1 := rows[0]
	assert.Equal(t, 240, s1.Sample.DurationMinutes)
	assert.Equal(t, "480.0", s1.VolumeText())
	assert.Equal(t, "<0.1042", s1.Reading.Text)
	assert.Equal(t, "08:00-12:00", s1.PeriodText())
	assert.Equal(t, "240 min", s1.DurationText())

	s2 := rows[1]
	assert.True(t, s2.Interval.Overnight)
	assert.Equal(t, "240 min (overnight)", s2.DurationText())
	assert.Equal(t, "0.0500", s2.Reading.Text)

	s3 := rows[2]
	assert.False(t, s3.Timed)
	assert.Empty(t, s3.PeriodText())
	assert.Equal(t, measure.InsufficientData, s3.Reading.Text)
	assert.False(t, s3.Reading.OK)
}

func TestComposeBuildsPrimaryAndCover(t *testing.T) {
	c, err := Compose(decodeSample(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"S2"}, c.Overnight())
	assert.False(t, c.Complete(), "S2 has a placeholder observation with no result")
	require.Len(t, c.Fibres, 2)
	assert.Equal(t, fibre.ResultSMF, c.Fibres[0].Result)
	assert.True(t, c.Fibres[0].Complete())
	assert.Len(t, c.Fibres[1].Record.Observations, 1)

	primary := c.Primary
	assert.Equal(t, "Air Monitoring Report", primary.Title)
	assert.False(t, primary.Empty())
	assert.Empty(t, primary.Marks())

	var tables []*content.Table
	var text []string
	for _, b := range primary.Blocks {
		switch b.Kind {
		case content.KindTable:
			tables = append(tables, b.Table)
		case content.KindParagraph, content.KindHeading:
			text = append(text, b.Text)
		case content.KindKeyValues:
			for _, p := range b.Pairs {
				text = append(text, p.Label+"="+p.Value)
			}
		}
	}
	require.Len(t, tables, 2)
	assert.Equal(t, []string{"S1", "Plant room entrance", "08:00-12:00", "2.00", "240 min", "480.0", "<0.1042"}, tables[0].Rows[0])
	assert.Equal(t, measure.InsufficientData, tables[0].Rows[2][6])
	assert.Equal(t, "Mass 1.2 g", tables[1].Rows[0][2])

	joined := strings.Join(text, "\n")
	assert.Contains(t, joined, "Date=7 March 2024")
	assert.Contains(t, joined, "crossed midnight for S2")
	assert.Contains(t, joined, "Outstanding analysis")
	assert.Contains(t, joined, "S2: sample dimensions not recorded; fibre 1 has no result")
	assert.Contains(t, joined, "Samples collected during removal works.")

	assert.False(t, c.AppendixCover.Empty())
	assert.Equal(t, content.KindHeading, c.AppendixCover.Blocks[0].Kind)
}

func TestComposeDefaultsTitle(t *testing.T) {
	c, err := Compose(Job{Reference: "J-1"})
	require.NoError(t, err)
	assert.Equal(t, DefaultTitle, c.Primary.Title)
	assert.True(t, c.Complete())
	assert.Nil(t, c.Overnight())
}

func TestFibresText(t *testing.T) {
	assert.Equal(t, "None", fibresText(fibre.Record{NoFibresDetected: true}))
	got := fibresText(fibre.Record{Observations: []fibre.Observation{
		{Morphology: fibre.MorphologyCurly, Result: fibre.ResultOrganic},
		{},
	}})
	assert.Equal(t, "1. curly: Organic fibres\n2. fibre: unresolved", got)
}

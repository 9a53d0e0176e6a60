package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderTableAlignsNumericColumns(t *testing.T) {
	out := renderTable([]column{textCol("Sample"), numCol("Volume (L)")}, [][]string{
		{"S1", "480.0"},
		{"S22", "5.0"},
		{"S3"},
	})
	lines := strings.Split(out, "\n")
	var s22, s3 string
	for _, l := range lines {
		switch {
		case strings.Contains(l, "S22"):
			s22 = l
		case strings.Contains(l, "S3"):
			s3 = l
		}
	}
	assert.Contains(t, s22, " 5.0 │", "numeric cells are right-aligned")
	assert.NotContains(t, s22, "│ 5.0 ")
	assert.Contains(t, s3, "S3")
	assert.Empty(t, renderTable(nil, nil))
}

func TestRenderPairsSkipsEmptyValues(t *testing.T) {
	out := renderPairs("Issued J-9", [][2]string{{"Written", "a.pdf"}, {"Archived", ""}})
	assert.Contains(t, out, "Issued J-9")
	assert.Contains(t, out, "a.pdf")
	assert.NotContains(t, out, "Archived")
}

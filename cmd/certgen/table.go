package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// column describes one table column. Numeric columns are right-aligned.
type column struct {
	title   string
	numeric bool
}

func textCol(title string) column { return column{title: title} }

func numCol(title string) column { return column{title: title, numeric: true} }

// renderTable lays rows out under cols. Short rows are padded; extra cells
// are dropped.
func renderTable(cols []column, rows [][]string) string {
	if len(cols) == 0 {
		return ""
	}
	tw := newTableWriter()

	header := make(table.Row, len(cols))
	configs := make([]table.ColumnConfig, len(cols))
	for i, c := range cols {
		header[i] = c.title
		configs[i] = table.ColumnConfig{Number: i + 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft}
		if c.numeric {
			configs[i].Align = text.AlignRight
		}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		r := make(table.Row, len(cols))
		for i := range r {
			r[i] = ""
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}
	return tw.Render()
}

// renderPairs prints a titled two-column label/value table without a header
// row. Pairs with an empty value are skipped.
func renderPairs(title string, pairs [][2]string) string {
	tw := newTableWriter()
	tw.SetTitle(title)
	for _, p := range pairs {
		if p[1] == "" {
			continue
		}
		tw.AppendRow(table.Row{p[0], p[1]})
	}
	return tw.Render()
}

func newTableWriter() table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	return tw
}

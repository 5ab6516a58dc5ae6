package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Every table driftwatch prints is run-shaped: project and status columns
// on the left, the DOK4/DOK3/tweet counts in the middle, free text on the
// right. countCols names the 1-based count columns so they right-align.
func renderRunShaped(header table.Row, rows []table.Row, countCols ...int) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(header)
	tw.AppendRows(rows)

	configs := make([]table.ColumnConfig, 0, len(countCols))
	for _, col := range countCols {
		configs = append(configs, table.ColumnConfig{
			Number:      col,
			Align:       text.AlignRight,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

func markFirstRun(firstRun bool) string {
	if firstRun {
		return "yes"
	}
	return ""
}

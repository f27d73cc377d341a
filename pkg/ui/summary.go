package ui

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"pixelripper/pkg/models"
)

// PrintFailureSummary writes the failed downloads grouped by category.
// Nothing is written when the report is empty.
func PrintFailureSummary(w io.Writer, report models.DownloadReport) {
	if !report.HasFailures() {
		return
	}
	fmt.Fprintln(w, "Failed to download the following:")
	for _, category := range models.Categories {
		failures := report[category]
		if len(failures) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s:\n", category)
		for _, f := range failures {
			fmt.Fprintln(w, f.String())
		}
	}
}

// RenderFailureTable renders the report as a table, or "" when it is empty
func RenderFailureTable(report models.DownloadReport) string {
	if !report.HasFailures() {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Category", "URL", "Status"})
	for _, category := range models.Categories {
		for _, f := range report[category] {
			tw.AppendRow(table.Row{string(category), f.URL, f.Status()})
		}
	}
	tw.AppendFooter(table.Row{"", "Failed", report.Count()})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft, WidthMax: 100},
		{Number: 3, Align: text.AlignRight},
	})
	return tw.Render()
}

package output

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/bgricker/weavetest/internal/report"
)

// RenderSummary prints a per-suite table of step outcomes with a totals footer. Colour selects
// the coloured table style, keyed on whether any suite failed.
func RenderSummary(out io.Writer, suites []report.TestSuiteResult, summary report.Summary, colour bool) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetTitle("weave-test results")

	t.AppendHeader(table.Row{
		"Suite", "Steps", "Passed", "Failed", "Inconclusive", "Skipped", "Not Run", "Result",
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Suite", WidthMax: 50, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Steps", Align: text.AlignRight},
		{Name: "Passed", Align: text.AlignRight},
		{Name: "Failed", Align: text.AlignRight},
		{Name: "Inconclusive", Align: text.AlignRight},
		{Name: "Skipped", Align: text.AlignRight},
		{Name: "Not Run", Align: text.AlignRight},
	})

	for _, s := range suites {
		counts := report.Summarize([]report.TestSuiteResult{s})
		t.AppendRow(table.Row{
			s.Name,
			counts.Steps,
			counts.Passed,
			counts.Failed,
			counts.Inconclusive,
			counts.Skipped,
			counts.NotRun,
			s.OverallResult.Label(),
		})
	}

	t.AppendFooter(table.Row{
		fmt.Sprintf("TOTAL (%d suites)", summary.Suites),
		summary.Steps,
		summary.Passed,
		summary.Failed,
		summary.Inconclusive,
		summary.Skipped,
		summary.NotRun,
		overallLabel(summary),
	})

	switch {
	case !colour:
		t.SetStyle(table.StyleLight)
	case summary.FailedSuites > 0:
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	case summary.Inconclusive > 0:
		t.SetStyle(table.StyleColoredBlackOnYellowWhite)
	default:
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	}

	t.Render()
}

func overallLabel(summary report.Summary) string {
	switch {
	case summary.FailedSuites > 0:
		return report.Fail.Label()
	case summary.Inconclusive > 0:
		return report.Inconclusive.Label()
	default:
		return report.Pass.Label()
	}
}

package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/cognicore/topicscan/pkg/topicscan/history"
)

const (
	historyTrending = 15
	historyNew      = 10
)

// PrintHistory renders rising topics and first-seen topics for the window.
func PrintHistory(out io.Writer, days int, trending []history.Trend, fresh []history.NewTopic) {
	if len(trending) > 0 {
		t := table.NewWriter()
		t.SetOutputMirror(out)
		t.SetStyle(table.StyleRounded)
		t.SetTitle(fmt.Sprintf("Rising Topics (last %d days)", days))
		t.AppendHeader(table.Row{"Keyword", "Current Score", "Previous Score", "Change"})
		t.SetColumnConfigs([]table.ColumnConfig{
			{Number: 2, Align: text.AlignRight},
			{Number: 3, Align: text.AlignRight},
			{Number: 4, Align: text.AlignRight},
		})
		for i, tr := range trending {
			if i == historyTrending {
				break
			}
			t.AppendRow(table.Row{
				tr.Keyword,
				fmt.Sprintf("%.3f", tr.CurrentScore),
				fmt.Sprintf("%.3f", tr.PreviousScore),
				color.GreenString("+%.3f", tr.Change),
			})
		}
		t.Render()
	} else {
		fmt.Fprintln(out, color.New(color.Faint).Sprint("No rising topics found"))
	}

	if len(fresh) == 0 {
		return
	}
	fmt.Fprintf(out, "\n%s\n", color.New(color.Bold).Sprintf("New topics (last %d days):", days))
	for i, nt := range fresh {
		if i == historyNew {
			break
		}
		fmt.Fprintf(out, "  - %s (first seen: %s)\n", nt.Keyword, nt.FirstSeen)
	}
}

package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cognicore/topicscan/pkg/topicscan/history"
	"github.com/cognicore/topicscan/pkg/topicscan/report"
)

func newHistoryCmd(a *app) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show rising and new topics across past runs",
		RunE: func(*cobra.Command, []string) error {
			tracker := history.Open(a.dataDir(), a.log)
			runs := tracker.RunsCount()
			a.printf(color.New(color.Bold), "History:")
			a.printf(nil, " %d runs recorded\n\n", runs)
			if runs < 2 {
				a.printf(warn, "At least 2 runs are needed to show trends.\n")
				return nil
			}
			report.PrintHistory(a.out, days, tracker.Trending(days), tracker.NewTopics(days))
			return nil
		},
	}
	cmd.Flags().IntVarP(&days, "days", "d", 7, "days to look back")
	return cmd
}

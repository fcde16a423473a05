package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/cognicore/topicscan/pkg/topicscan/schedule"
)

func newScheduleCmd(a *app) *cobra.Command {
	var (
		spec, tz string
		opts     scanOptions
	)
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run scans on a cron schedule until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if spec == "" {
				spec = a.cfg.Schedule.Cron
			}
			if tz == "" {
				tz = a.cfg.Schedule.Timezone
			}
			s, err := schedule.New(spec, tz, a.log)
			if err != nil {
				return err
			}
			a.printf(heading, "Scheduler running")
			a.printf(nil, " (%s, %s). Press Ctrl+C to stop.\n", spec, tz)
			return s.Run(cmd.Context(), func(ctx context.Context) error {
				return a.scan(ctx, opts)
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&spec, "cron", "", "cron expression (default from schedule.cron)")
	f.StringVar(&tz, "tz", "", "IANA timezone (default from schedule.timezone)")
	f.StringSliceVarP(&opts.sources, "sources", "s", nil, "comma-separated sources")
	f.BoolVar(&opts.email, "email", false, "send the newsletter email after each scan")
	return cmd
}

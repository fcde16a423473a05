package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cognicore/topicscan/internal/apperr"
	"github.com/cognicore/topicscan/pkg/topicscan/report"
	"github.com/cognicore/topicscan/pkg/topicscan/store"
)

func newReportCmd(a *app) *cobra.Command {
	var (
		format string
		topN   int
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Report the latest processed topics without fetching",
		RunE: func(*cobra.Command, []string) error {
			switch format {
			case "console", "json", "csv":
			default:
				return fmt.Errorf("%w: format must be console, json or csv, got %q", apperr.ErrInvalidInput, format)
			}
			return a.report(format, topN)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "console", "output format: console, json or csv")
	cmd.Flags().IntVarP(&topN, "top-n", "n", 15, "number of topics to show")
	return cmd
}

func (a *app) report(format string, topN int) error {
	fs, err := store.NewFileStore(a.dataDir(), a.log)
	if err != nil {
		return err
	}
	topics, err := fs.LoadLatestProcessed()
	if errors.Is(err, apperr.ErrNotFound) {
		a.printf(fail, "No processed data found. Run 'topicscan scan' first.\n")
		return nil
	}
	if err != nil {
		return err
	}

	exporter := report.NewExporter(fs, a.log)
	switch format {
	case "json":
		path, err := exporter.ExportJSON(exporter.BuildReport(topics, nil, report.RunInfo{ScanDate: "from_cache"}))
		if err != nil {
			return err
		}
		a.printf(nil, "JSON report: %s\n", path)
	case "csv":
		path, err := exporter.ExportCSV(topics)
		if err != nil {
			return err
		}
		a.printf(nil, "CSV report: %s\n", path)
	default:
		cfg := a.cfg.Reporting.Console
		cfg.TopN = topN
		if len(topics) > topN && topN > 0 {
			topics = topics[:topN]
		}
		report.NewConsole(cfg, a.out).Print(topics, nil, report.Metadata{ScanDate: a.now().Format("2006-01-02")})
	}
	return nil
}

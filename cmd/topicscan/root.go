package main

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cognicore/topicscan/internal/logger"
	"github.com/cognicore/topicscan/pkg/topicscan/config"
	"github.com/cognicore/topicscan/pkg/topicscan/fetch"
	"github.com/cognicore/topicscan/pkg/topicscan/report"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configDir string
	verbose   bool
	logFormat string

	cfg      *config.Config
	keywords map[string][]string
	log      logger.Logger
	out      io.Writer

	registry   *fetch.Registry
	httpClient *http.Client
	sendMail   report.SendFunc
	now        func() time.Time
}

var (
	heading = color.New(color.FgBlue, color.Bold)
	okColor = color.New(color.FgGreen)
	warn    = color.New(color.FgYellow)
	fail    = color.New(color.FgRed)
	dim     = color.New(color.Faint)
)

func newRootCmd() *cobra.Command {
	return newRootCmdFor(&app{registry: fetch.DefaultRegistry(), now: time.Now})
}

func newRootCmdFor(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "topicscan",
		Short:         "Track trending topics in marketing, AI and analytics",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.configDir, "config-dir", "config", "directory holding config.yaml and keywords.yaml")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "console", "log format: console or json")

	root.AddCommand(
		newScanCmd(a),
		newReportCmd(a),
		newHistoryCmd(a),
		newConfigCmd(a),
		newScheduleCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	a.out = cmd.OutOrStdout()
	if a.log == nil {
		level := "info"
		if a.verbose {
			level = "debug"
		}
		log, err := logger.New(logger.Config{Level: level, Format: a.logFormat})
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		a.log = log
	}

	cfg, err := config.Load(a.configDir, a.log)
	if err != nil {
		return err
	}
	keywords, err := config.LoadKeywords(a.configDir, a.log)
	if err != nil {
		return err
	}
	a.cfg, a.keywords = cfg, keywords
	return nil
}

func (a *app) printf(c *color.Color, format string, args ...any) {
	if c == nil {
		fmt.Fprintf(a.out, format, args...)
		return
	}
	c.Fprintf(a.out, format, args...)
}

package main

import (
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newConfigCmd(a *app) *cobra.Command {
	var show, validate bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or validate the configuration",
		RunE: func(*cobra.Command, []string) error {
			if show || !validate {
				out, err := a.cfg.YAML()
				if err != nil {
					return err
				}
				a.printf(color.New(color.Bold), "Current configuration:\n\n")
				a.printf(nil, "%s\n", out)
			}
			if validate {
				if missing := a.cfg.MissingSections(); len(missing) > 0 {
					a.printf(fail, "Missing sections: %s\n", strings.Join(missing, ", "))
				} else if err := a.cfg.Validate(); err != nil {
					a.printf(fail, "%v\n", err)
				} else {
					a.printf(okColor, "Configuration is valid.\n")
				}
				a.printf(nil, "Enabled sources: %s\n", strings.Join(a.cfg.EnabledSources(), ", "))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&show, "show", false, "print the merged configuration")
	cmd.Flags().BoolVar(&validate, "validate", false, "check required sections and values")
	return cmd
}

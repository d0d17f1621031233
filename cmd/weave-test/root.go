package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "weave-test",
		Short:         "weave-test runs declarative shell test suites",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return withExit(ExitConfigError, err)
	})

	persistent := cmd.PersistentFlags()
	persistent.String("path", ".", "directory containing *_test.yaml suites; commands run from here")
	persistent.StringArray("suite", nil, "suite file to load instead of discovery, relative to --path (repeatable)")
	persistent.String("only", "", "only run suites whose name matches the regular expression")
	persistent.StringArray("skip-step", nil, "skip steps whose name or command matches (substring or /regex/)")
	persistent.String("format", "colour", "output format (colour|plain|none|json)")
	persistent.String("log-level", "warn", "diagnostic log level (debug|info|warn|error)")
	persistent.String("log-format", "console", "diagnostic log format (console|json)")

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newRunCmd())

	return cmd
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bgricker/weavetest/internal/config"
)

func gatherFlags(cmd *cobra.Command) (config.FlagValues, error) {
	flags := cmd.Flags()
	var values config.FlagValues

	stringFlags := []struct {
		name string
		dst  *config.StringFlag
	}{
		{"path", &values.Path},
		{"values", &values.Values},
		{"only", &values.Only},
		{"format", &values.Format},
		{"log-level", &values.LogLevel},
		{"log-format", &values.LogFormat},
		{"metrics-path", &values.MetricsPath},
		{"results-path", &values.ResultsPath},
	}
	for _, f := range stringFlags {
		if flags.Lookup(f.name) == nil || !flags.Changed(f.name) {
			continue
		}
		v, err := flags.GetString(f.name)
		if err != nil {
			return values, fmt.Errorf("parse --%s: %w", f.name, err)
		}
		*f.dst = config.StringFlag{Value: v, Set: true}
	}

	if flags.Changed("suite") {
		v, err := flags.GetStringArray("suite")
		if err != nil {
			return values, fmt.Errorf("parse --suite: %w", err)
		}
		values.Suites = config.SliceFlag{Values: append([]string{}, v...)}
	}

	if flags.Changed("skip-step") {
		v, err := flags.GetStringArray("skip-step")
		if err != nil {
			return values, fmt.Errorf("parse --skip-step: %w", err)
		}
		values.SkipSteps = config.SliceFlag{Values: append([]string{}, v...)}
	}

	return values, nil
}

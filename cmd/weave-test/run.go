package main

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bgricker/weavetest/internal/logging"
	"github.com/bgricker/weavetest/internal/metrics"
	"github.com/bgricker/weavetest/internal/output"
	"github.com/bgricker/weavetest/internal/report"
	"github.com/bgricker/weavetest/internal/runner"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute test suites",
		Args:  cobra.NoArgs,
		RunE:  runExecute,
	}
	flags := cmd.Flags()
	flags.String("values", "", "values file (YAML, or dotenv when it ends in .env) shared by every suite")
	flags.String("metrics-path", "", "write Prometheus text metrics for the run to this file")
	flags.String("results-path", "", "write the JSON run result to this file")
	return cmd
}

func runExecute(cmd *cobra.Command, args []string) error {
	cfg, format, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return withExit(ExitConfigError, err)
	}
	defer func() { _ = logger.Sync() }()

	dir, err := resolveTestPath(cfg.Path)
	if err != nil {
		return err
	}
	values, err := loadValues(cfg.Values)
	if err != nil {
		return err
	}
	suites, err := loadSuites(dir, cfg)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	logger = logger.With(zap.String("run_id", runID))
	logger.Info("starting run", zap.String("path", dir), zap.Int("suites", len(suites)))

	var collector *metrics.Collector
	if cfg.MetricsPath != "" {
		collector = metrics.NewCollector()
		collector.ObserveRun(runID)
	}

	out := cmd.OutOrStdout()
	reporter := output.NewReporter(format, out)
	execRunner := runner.New(runner.Options{
		Reporter: reporter,
		Logger:   logger,
		Metrics:  collector,
		Dir:      dir,
	})
	results, runErr := execRunner.Run(cmd.Context(), suites, values)
	if err := reporter.Close(); err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil {
		logger.Error("run aborted", zap.Error(runErr))
		var cfgErr *runner.ConfigError
		if errors.As(runErr, &cfgErr) {
			return withExit(ExitConfigError, runErr)
		}
		return runErr
	}

	result := report.RunResult{RunID: runID, Suites: results}
	summary := report.Summarize(results)

	switch format {
	case output.FormatJSON:
		if err := output.NewJSON(out).Render(result); err != nil {
			return err
		}
	case output.FormatColour, output.FormatPlain:
		if len(results) == 0 {
			fmt.Fprintln(out, "No matching suites")
		} else {
			fmt.Fprintln(out)
			output.RenderSummary(out, results, summary, format == output.FormatColour)
		}
	}

	if cfg.ResultsPath != "" {
		if err := output.WriteResultFile(cfg.ResultsPath, result); err != nil {
			return err
		}
	}
	if err := collector.Write(cfg.MetricsPath); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}

	logger.Info("finished run", zap.Int("failed_suites", summary.FailedSuites))
	if summary.ExitCode != 0 {
		return withExit(ExitFailure, fmt.Errorf("%d of %d suites failed", summary.FailedSuites, summary.Suites))
	}
	return nil
}

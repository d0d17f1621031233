// Package runner sequences suites, steps and data set rows and aggregates their results.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/bgricker/weavetest/internal/environment"
	"github.com/bgricker/weavetest/internal/metrics"
	"github.com/bgricker/weavetest/internal/output"
	"github.com/bgricker/weavetest/internal/process"
	"github.com/bgricker/weavetest/internal/protocol"
	"github.com/bgricker/weavetest/internal/report"
	"github.com/bgricker/weavetest/internal/suite"
)

// DefaultStepTimeout applies to steps that do not configure a timeout.
const DefaultStepTimeout = 300 * time.Second

const (
	timeoutAssertion     = "Test Timeout Hit"
	timeoutResultMessage = "Test timed out!"
)

// ConfigError reports a suite definition the runner cannot execute, such as a step that
// references an unknown data set. It aborts the whole run.
type ConfigError struct {
	Suite   string
	Step    string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("suite %q step %q: %s", e.Suite, e.Step, e.Message)
}

// Options configure how the runner executes steps.
type Options struct {
	Reporter output.Reporter
	Logger   *zap.Logger
	Metrics  *metrics.Collector
	// BaseEnv is the environment every command inherits before the composed variables are
	// applied. Nil selects the current process environment.
	BaseEnv []string
	// Dir is the working directory of every command.
	Dir string
	Now func() time.Time
}

// Runner executes suites sequentially.
type Runner struct {
	opts Options
}

// New creates a runner with the supplied options.
func New(opts Options) *Runner {
	if opts.Reporter == nil {
		opts.Reporter = output.None{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.BaseEnv == nil {
		opts.BaseEnv = os.Environ()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Runner{opts: opts}
}

// Run executes suites in order. values may be nil. On a fatal error the results gathered so
// far are returned together with the error; the suite that was interrupted is included with
// its unfinished steps marked NotRun.
func (r *Runner) Run(ctx context.Context, suites []suite.TestSuite, values *suite.ValuesFile) ([]report.TestSuiteResult, error) {
	results := make([]report.TestSuiteResult, 0, len(suites))
	for _, s := range suites {
		res, err := r.runSuite(ctx, s, values)
		results = append(results, res)
		if err != nil {
			return results, err
		}
		r.opts.Metrics.ObserveSuite(string(res.OverallResult))
	}
	return results, nil
}

func (r *Runner) runSuite(ctx context.Context, s suite.TestSuite, values *suite.ValuesFile) (report.TestSuiteResult, error) {
	logger := r.opts.Logger.With(zap.String("suite", s.Name))
	logger.Debug("starting suite", zap.Int("steps", len(s.Steps)))

	var valuesEnv map[string]string
	if values != nil {
		valuesEnv = values.Env
	}
	dataSets := resolveDataSets(values, s)

	result := report.TestSuiteResult{
		Name:          s.Name,
		OverallResult: report.Pass,
		Steps:         make([]report.TestStepResult, 0, len(s.Steps)),
	}

	if err := r.opts.Reporter.SuiteStarted(s.Name); err != nil {
		return abandon(result, s.Steps), fmt.Errorf("report suite start: %w", err)
	}

	abortRemaining := false
	for i, step := range s.Steps {
		if abortRemaining {
			result.Steps = append(result.Steps, emptyStep(step.Name, report.NotRun))
			continue
		}
		if step.Skip {
			logger.Debug("skipping step", zap.String("step", step.Name))
			result.Steps = append(result.Steps, emptyStep(step.Name, report.Skip))
			r.opts.Metrics.ObserveStep(string(report.Skip))
			continue
		}

		stepResult, err := r.runStep(ctx, s, step, valuesEnv, dataSets)
		result.Steps = append(result.Steps, stepResult)
		if err != nil {
			result.OverallResult = report.Fail
			return abandon(result, s.Steps[i+1:]), err
		}
		r.opts.Metrics.ObserveStep(string(stepResult.Result))

		switch stepResult.Result {
		case report.Fail:
			abortRemaining = true
			result.OverallResult = report.Fail
		case report.Inconclusive:
			if result.OverallResult != report.Fail {
				result.OverallResult = report.Inconclusive
			}
		}
	}

	if err := r.opts.Reporter.SuiteFinished(s.Name, result.OverallResult); err != nil {
		return result, fmt.Errorf("report suite finish: %w", err)
	}
	logger.Debug("finished suite", zap.String("result", string(result.OverallResult)))
	return result, nil
}

func (r *Runner) runStep(ctx context.Context, s suite.TestSuite, step suite.TestStep, valuesEnv map[string]string, dataSets map[string]suite.DataSet) (report.TestStepResult, error) {
	result := report.TestStepResult{
		Name:    step.Name,
		Result:  report.Inconclusive,
		Asserts: []report.AssertResult{},
	}

	env := environment.Compose(valuesEnv, s.Env, step.Env)
	timeout := DefaultStepTimeout
	if step.Timeout > 0 {
		timeout = time.Duration(step.Timeout) * time.Second
	}
	logger := r.opts.Logger.With(zap.String("suite", s.Name), zap.String("step", step.Name), zap.Duration("timeout", timeout))

	if err := r.opts.Reporter.StepStarted(step.Name); err != nil {
		return result, fmt.Errorf("report step start: %w", err)
	}

	if step.DataSet == "" {
		inv, err := r.invoke(ctx, logger, s.Name, step.Command, env, timeout, nil)
		result.Result = inv.Result
		result.Asserts = append(result.Asserts, inv.Asserts...)
		if err != nil {
			return result, err
		}
	} else {
		set, ok := dataSets[step.DataSet]
		if !ok {
			result.Result = report.NotRun
			return result, &ConfigError{
				Suite:   s.Name,
				Step:    step.Name,
				Message: fmt.Sprintf("data set %q is not defined", step.DataSet),
			}
		}
		if err := r.opts.Reporter.SetStarted(step.DataSet); err != nil {
			return result, fmt.Errorf("report set start: %w", err)
		}

		result.Result = report.NotRun
		for idx, row := range set {
			if err := r.opts.Reporter.SetRowReported(idx); err != nil {
				return result, fmt.Errorf("report set row: %w", err)
			}
			rowEnv := environment.Compose(env, row)
			inv, err := r.invoke(ctx, logger.With(zap.Int("row", idx)), s.Name, step.Command, rowEnv, timeout, &idx)
			result.Asserts = append(result.Asserts, inv.Asserts...)
			result.Result = aggregateRow(result.Result, inv.Result)
			if err != nil {
				return result, err
			}
		}

		if err := r.opts.Reporter.SetFinished(); err != nil {
			return result, fmt.Errorf("report set finish: %w", err)
		}
	}

	if err := r.opts.Reporter.StepFinished(step.Name, result.Result); err != nil {
		return result, fmt.Errorf("report step finish: %w", err)
	}
	logger.Debug("finished step", zap.String("result", string(result.Result)))
	return result, nil
}

// invoke runs command once and classifies its output. The returned invocation is always
// usable; a non-nil error is fatal to the run.
func (r *Runner) invoke(ctx context.Context, logger *zap.Logger, suiteName, command string, env map[string]string, timeout time.Duration, row *int) (*protocol.Invocation, error) {
	inv := protocol.NewInvocation(row)
	sink := &reportSink{reporter: r.opts.Reporter, metrics: r.opts.Metrics}
	start := r.opts.Now()
	defer func() {
		r.opts.Metrics.ObserveInvocation(suiteName, string(inv.Result), r.opts.Now().Sub(start))
	}()

	logger.Debug("running command", zap.String("command", command))
	cmd, err := process.Start(process.Options{
		Command: command,
		Env:     environment.Environ(r.opts.BaseEnv, env),
		Dir:     r.opts.Dir,
		Timeout: timeout,
		Now:     r.opts.Now,
	})
	if err != nil {
		logger.Error("command failed to start", zap.Error(err))
		message := fmt.Sprintf("Test failed to start: %v", errors.Unwrap(err))
		inv.Abort(message)
		if rerr := sink.Assertion(message, false); rerr != nil {
			return inv, fmt.Errorf("report assertion: %w", rerr)
		}
		return inv, err
	}
	defer cmd.Close()

	for {
		line, err := cmd.NextLine(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, process.ErrTimeout) {
			logger.Warn("command timed out")
			r.opts.Metrics.ObserveTimeout()
			if rerr := sink.Assertion(timeoutAssertion, false); rerr != nil {
				return inv, fmt.Errorf("report assertion: %w", rerr)
			}
			inv.Abort(timeoutResultMessage)
			break
		}
		if err != nil {
			return inv, err
		}
		if err := inv.Feed(line, sink); err != nil {
			return inv, fmt.Errorf("report output: %w", err)
		}
	}

	logger.Debug("command finished", zap.String("result", string(inv.Result)), zap.Int("exit_code", cmd.ExitCode()))
	return inv, nil
}

// resolveDataSets overlays the suite's data sets on the values file's. A suite set replaces a
// values set of the same name entirely.
func resolveDataSets(values *suite.ValuesFile, s suite.TestSuite) map[string]suite.DataSet {
	sets := make(map[string]suite.DataSet)
	if values != nil {
		for name, set := range values.DataSets {
			sets[name] = set
		}
	}
	for name, set := range s.DataSets {
		sets[name] = set
	}
	return sets
}

// aggregateRow folds one row outcome into the step result. Fail is permanent, Inconclusive
// holds unless the step already failed, and Pass only upgrades NotRun or Pass.
func aggregateRow(step, row report.TestResult) report.TestResult {
	switch row {
	case report.Fail:
		return report.Fail
	case report.Inconclusive:
		if step != report.Fail {
			return report.Inconclusive
		}
	case report.Pass:
		if step != report.Fail && step != report.Inconclusive {
			return report.Pass
		}
	}
	return step
}

func emptyStep(name string, result report.TestResult) report.TestStepResult {
	return report.TestStepResult{Name: name, Result: result, Asserts: []report.AssertResult{}}
}

// abandon records steps left over by a fatal error as NotRun.
func abandon(result report.TestSuiteResult, remaining []suite.TestStep) report.TestSuiteResult {
	for _, step := range remaining {
		result.Steps = append(result.Steps, emptyStep(step.Name, report.NotRun))
	}
	return result
}

// reportSink forwards parser events to the reporter and counts assertions.
type reportSink struct {
	reporter output.Reporter
	metrics  *metrics.Collector
}

func (s *reportSink) Print(text string) error {
	return s.reporter.Print(text)
}

func (s *reportSink) Assertion(message string, success bool) error {
	s.metrics.ObserveAssertion(success)
	return s.reporter.Assertion(message, success)
}

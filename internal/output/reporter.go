// Package output renders run progress and results.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/bgricker/weavetest/internal/report"
)

// Reporter receives run lifecycle and assertion events in call order.
type Reporter interface {
	SuiteStarted(name string) error
	SuiteFinished(name string, result report.TestResult) error
	StepStarted(name string) error
	StepFinished(name string, result report.TestResult) error
	SetStarted(name string) error
	SetRowReported(index int) error
	SetFinished() error
	Print(text string) error
	Assertion(message string, success bool) error
}

// ReportCloser is a Reporter that must be closed once the run is over.
type ReportCloser interface {
	Reporter
	io.Closer
}

// Format selects how progress is rendered.
type Format string

const (
	FormatColour Format = "colour"
	FormatPlain  Format = "plain"
	FormatNone   Format = "none"
	FormatJSON   Format = "json"
)

// ParseFormat normalizes a user supplied format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "colour", "color":
		return FormatColour, nil
	case "plain":
		return FormatPlain, nil
	case "none":
		return FormatNone, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected colour, plain, none or json)", s)
	}
}

// NewReporter returns the progress reporter for format writing to out.
// JSON output reports nothing while running; results are rendered once at the end.
func NewReporter(format Format, out io.Writer) ReportCloser {
	switch format {
	case FormatColour:
		return NewColour(out)
	case FormatPlain:
		return NewPlain(out)
	default:
		return None{}
	}
}

// None discards every event.
type None struct{}

func (None) SuiteStarted(string) error                     { return nil }
func (None) SuiteFinished(string, report.TestResult) error { return nil }
func (None) StepStarted(string) error                      { return nil }
func (None) StepFinished(string, report.TestResult) error  { return nil }
func (None) SetStarted(string) error                       { return nil }
func (None) SetRowReported(int) error                      { return nil }
func (None) SetFinished() error                            { return nil }
func (None) Print(string) error                            { return nil }
func (None) Assertion(string, bool) error                  { return nil }
func (None) Close() error                                  { return nil }

package output

import (
	"fmt"
	"io"

	"github.com/acarl005/stripansi"

	"github.com/bgricker/weavetest/internal/report"
)

// PlainReporter writes one undecorated line per event. Escape sequences coming from test
// commands are stripped so the output stays readable in log files.
type PlainReporter struct {
	out io.Writer
}

// NewPlain creates a PlainReporter writing to out.
func NewPlain(out io.Writer) *PlainReporter {
	return &PlainReporter{out: out}
}

func (p *PlainReporter) println(format string, args ...any) error {
	_, err := fmt.Fprintln(p.out, stripansi.Strip(fmt.Sprintf(format, args...)))
	return err
}

func (p *PlainReporter) SuiteStarted(name string) error {
	return p.println("Starting Suite %s", name)
}

func (p *PlainReporter) SuiteFinished(name string, result report.TestResult) error {
	return p.println("Finished Suite %s: Result: %s", name, result)
}

func (p *PlainReporter) StepStarted(name string) error {
	return p.println("Starting Step %s", name)
}

func (p *PlainReporter) StepFinished(name string, result report.TestResult) error {
	return p.println("Finished Step %s: Result: %s", name, result)
}

func (p *PlainReporter) SetStarted(name string) error {
	return p.println("Starting Data Set %s", name)
}

func (p *PlainReporter) SetRowReported(index int) error {
	return p.println("Set Row: %d", index)
}

func (p *PlainReporter) SetFinished() error {
	return p.println("Finished Data Set")
}

func (p *PlainReporter) Print(text string) error {
	return p.println("%s", text)
}

func (p *PlainReporter) Assertion(message string, success bool) error {
	if success {
		return p.println("Assert Ok: %s", message)
	}
	return p.println("Assert Failed: %s", message)
}

// Close is a no-op; plain output is written synchronously.
func (p *PlainReporter) Close() error { return nil }

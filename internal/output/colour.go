package output

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/bgricker/weavetest/internal/report"
)

// colourQueueSize bounds the number of events waiting for the render worker.
const colourQueueSize = 100

// ErrReporterClosed is returned for events sent after Close.
var ErrReporterClosed = errors.New("reporter closed")

type eventKind int

const (
	eventText eventKind = iota
	eventSuiteStarted
	eventSuiteFinished
	eventStepStarted
	eventStepFinished
	eventAssert
	eventSetStarted
	eventSetRow
	eventSetFinished
)

type colourEvent struct {
	kind    eventKind
	name    string
	result  report.TestResult
	success bool
	index   int

	// lines is the distance from the cursor back up to the line being rewritten.
	lines int
}

// ColourReporter renders styled progress from a dedicated worker goroutine fed by a bounded
// queue. Suite and step lines are first printed as Running and rewritten in place once their
// result is known.
type ColourReporter struct {
	events chan colourEvent
	done   chan struct{}

	mu           sync.Mutex
	closed       bool
	linesToSuite int
	linesToStep  int

	errMu sync.Mutex
	err   error
}

// NewColour starts a ColourReporter writing to out.
func NewColour(out io.Writer) *ColourReporter {
	c := &ColourReporter{
		events: make(chan colourEvent, colourQueueSize),
		done:   make(chan struct{}),
	}
	go c.render(out)
	return c
}

func (c *ColourReporter) SuiteStarted(name string) error {
	return c.send(colourEvent{kind: eventSuiteStarted, name: name}, func() {
		c.linesToSuite = 1
	})
}

func (c *ColourReporter) SuiteFinished(name string, result report.TestResult) error {
	ev := colourEvent{kind: eventSuiteFinished, name: name, result: result}
	return c.send(ev, func() {
		c.linesToSuite = 0
	})
}

func (c *ColourReporter) StepStarted(name string) error {
	return c.send(colourEvent{kind: eventStepStarted, name: name}, func() {
		c.linesToStep = 1
		c.linesToSuite++
	})
}

func (c *ColourReporter) StepFinished(name string, result report.TestResult) error {
	ev := colourEvent{kind: eventStepFinished, name: name, result: result}
	return c.send(ev, func() {
		c.linesToStep = 0
	})
}

func (c *ColourReporter) SetStarted(name string) error {
	return c.send(colourEvent{kind: eventSetStarted, name: name}, c.countLine)
}

func (c *ColourReporter) SetRowReported(index int) error {
	return c.send(colourEvent{kind: eventSetRow, index: index}, c.countLine)
}

func (c *ColourReporter) SetFinished() error {
	return c.send(colourEvent{kind: eventSetFinished}, c.countLine)
}

func (c *ColourReporter) Print(message string) error {
	return c.send(colourEvent{kind: eventText, name: message}, c.countLine)
}

func (c *ColourReporter) Assertion(message string, success bool) error {
	return c.send(colourEvent{kind: eventAssert, name: message, success: success}, c.countLine)
}

// Close stops accepting events, waits for the worker to render everything queued and returns
// the first write error it hit.
func (c *ColourReporter) Close() error {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.events)
	}
	c.mu.Unlock()

	<-c.done
	return c.renderErr()
}

func (c *ColourReporter) renderErr() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.err
}

func (c *ColourReporter) countLine() {
	c.linesToSuite++
	c.linesToStep++
}

// send stamps the rewrite distance on finish events, queues ev and then applies update to the
// line counters. Counting happens on the sending side so it always matches call order.
func (c *ColourReporter) send(ev colourEvent, update func()) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrReporterClosed
	}
	if err := c.renderErr(); err != nil {
		return err
	}
	switch ev.kind {
	case eventSuiteFinished:
		ev.lines = c.linesToSuite
	case eventStepFinished:
		ev.lines = c.linesToStep
	}
	c.events <- ev
	update()
	return nil
}

func (c *ColourReporter) render(out io.Writer) {
	defer close(c.done)
	w := bufio.NewWriter(out)
	for ev := range c.events {
		writeColourEvent(w, ev)
		if err := w.Flush(); err != nil {
			c.errMu.Lock()
			if c.err == nil {
				c.err = fmt.Errorf("render progress: %w", err)
			}
			c.errMu.Unlock()
		}
	}
}

func writeColourEvent(w *bufio.Writer, ev colourEvent) {
	switch ev.kind {
	case eventText:
		fmt.Fprintf(w, "\t\t%s %s\n", text.FgBlue.Sprint("ℹ"), ev.name)
	case eventSuiteStarted:
		fmt.Fprintf(w, "❱ [%s]: %s\n", text.FgHiYellow.Sprint("Running"), ev.name)
	case eventSuiteFinished:
		rewrite(w, ev.lines, fmt.Sprintf("❱ [%s]: %s", styledResult(ev.result), ev.name))
	case eventStepStarted:
		fmt.Fprintf(w, "\t➤ [%s]: %s\n", text.FgHiYellow.Sprint("Running"), ev.name)
	case eventStepFinished:
		rewrite(w, ev.lines, fmt.Sprintf("\t➤ [%s]: %s", styledResult(ev.result), ev.name))
	case eventAssert:
		if ev.success {
			fmt.Fprintf(w, "\t\t%s %s\n", text.FgGreen.Sprint("✔"), ev.name)
		} else {
			fmt.Fprintf(w, "\t\t%s %s\n", text.FgRed.Sprint("✘"), ev.name)
		}
	case eventSetStarted:
		fmt.Fprintln(w, text.FgBlue.Sprintf("\t⬛ Running Set %s", ev.name))
	case eventSetRow:
		fmt.Fprintln(w, text.FgBlue.Sprintf("\t⬛ - Row: %d", ev.index))
	case eventSetFinished:
		fmt.Fprintln(w, text.FgBlue.Sprint("\t⬛ End of Data Set"))
	}
}

// rewrite replaces the line lines rows above the cursor and returns the cursor to where it was.
func rewrite(w *bufio.Writer, lines int, line string) {
	if lines <= 0 {
		fmt.Fprintln(w, line)
		return
	}
	fmt.Fprintf(w, "\033[%dA\r\033[2K%s\n", lines, line)
	if lines > 1 {
		fmt.Fprintf(w, "\033[%dB", lines-1)
	}
}

func styledResult(result report.TestResult) string {
	label := result.Label()
	switch result {
	case report.Pass:
		return text.FgGreen.Sprint(label)
	case report.Fail:
		return text.FgRed.Sprint(label)
	case report.Inconclusive:
		return text.FgYellow.Sprint(label)
	default:
		return text.FgHiBlack.Sprint(label)
	}
}

// Package protocol classifies test command output against the WEAVE-TEST marker protocol.
package protocol

import (
	"strings"

	"github.com/bgricker/weavetest/internal/report"
)

// Marker prefixes. Matching is exact and case-sensitive; the payload follows immediately.
const (
	PrefixPrint = "WEAVE-TEST:PRINT:"
	PrefixFail  = "WEAVE-TEST:FAIL:"
	PrefixPass  = "WEAVE-TEST:PASS:"
)

// Kind identifies which marker a line carries.
type Kind int

const (
	KindNone Kind = iota
	KindPrint
	KindFail
	KindPass
)

// Event is a classified line with its trimmed payload.
type Event struct {
	Kind    Kind
	Message string
}

// Classify inspects one line. Lines without a marker yield KindNone.
func Classify(line string) Event {
	switch {
	case strings.HasPrefix(line, PrefixPrint):
		return Event{Kind: KindPrint, Message: strings.TrimSpace(line[len(PrefixPrint):])}
	case strings.HasPrefix(line, PrefixFail):
		return Event{Kind: KindFail, Message: strings.TrimSpace(line[len(PrefixFail):])}
	case strings.HasPrefix(line, PrefixPass):
		return Event{Kind: KindPass, Message: strings.TrimSpace(line[len(PrefixPass):])}
	default:
		return Event{Kind: KindNone}
	}
}

// Sink receives the events a line produces.
type Sink interface {
	Print(text string) error
	Assertion(message string, success bool) error
}

// Invocation accumulates the result and assertions of one command run.
type Invocation struct {
	Result  report.TestResult
	Asserts []report.AssertResult

	row *int
}

// NewInvocation starts an accumulator in the Inconclusive state. row is the data set row
// index, or nil when the command is not part of a data set.
func NewInvocation(row *int) *Invocation {
	inv := &Invocation{Result: report.Inconclusive}
	if row != nil {
		idx := *row
		inv.row = &idx
	}
	return inv
}

// Feed classifies line and applies it. Fail is sticky: a later PASS never clears it.
func (inv *Invocation) Feed(line string, sink Sink) error {
	ev := Classify(line)
	switch ev.Kind {
	case KindPrint:
		return sink.Print(ev.Message)
	case KindFail:
		inv.Result = report.Fail
		if err := sink.Assertion(ev.Message, false); err != nil {
			return err
		}
		inv.record(ev.Message, false)
	case KindPass:
		if inv.Result != report.Fail {
			inv.Result = report.Pass
		}
		if err := sink.Assertion(ev.Message, true); err != nil {
			return err
		}
		inv.record(ev.Message, true)
	}
	return nil
}

// Abort forces the invocation to Fail and records a single synthetic failed assertion.
func (inv *Invocation) Abort(message string) {
	inv.Result = report.Fail
	inv.record(message, false)
}

func (inv *Invocation) record(message string, success bool) {
	var row *int
	if inv.row != nil {
		idx := *inv.row
		row = &idx
	}
	inv.Asserts = append(inv.Asserts, report.AssertResult{
		Message:    message,
		Success:    success,
		DataSetRow: row,
	})
}

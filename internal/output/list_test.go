package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bgricker/weavetest/internal/report"
	"github.com/bgricker/weavetest/internal/suite"
)

func TestRenderList(t *testing.T) {
	suites := []suite.TestSuite{
		{
			Path: "login_test.yaml",
			Name: "Login",
			Steps: []suite.TestStep{
				{Name: "Compile", Command: "go build"},
				{Name: "Rows", Command: "true", DataSet: "users"},
				{Name: "Later", Command: "true", Skip: true},
			},
		},
	}

	buf := &bytes.Buffer{}
	if err := NewList(buf).RenderList(suites); err != nil {
		t.Fatalf("render list: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Suite Login (login_test.yaml)",
		"• Compile",
		"• Rows [data set users]",
		"• Later (skipped)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got %q", want, out)
		}
	}
}

func TestRenderSummary(t *testing.T) {
	suites := []report.TestSuiteResult{
		{Name: "Login", OverallResult: report.Pass, Steps: []report.TestStepResult{{Name: "a", Result: report.Pass}}},
		{Name: "Checkout", OverallResult: report.Fail, Steps: []report.TestStepResult{
			{Name: "a", Result: report.Fail},
			{Name: "b", Result: report.NotRun},
		}},
	}

	buf := &bytes.Buffer{}
	RenderSummary(buf, suites, report.Summarize(suites), false)

	out := buf.String()
	for _, want := range []string{"Login", "Checkout", "TOTAL", "Fail"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in summary, got %q", want, out)
		}
	}
}

package output

import (
	"fmt"
	"io"

	"github.com/bgricker/weavetest/internal/suite"
)

// ListRenderer prints suites and their steps without running them.
type ListRenderer struct {
	out io.Writer
}

// NewList creates a ListRenderer writing to out.
func NewList(out io.Writer) *ListRenderer {
	return &ListRenderer{out: out}
}

// RenderList renders suites/steps in list mode.
func (l *ListRenderer) RenderList(suites []suite.TestSuite) error {
	for _, s := range suites {
		if _, err := fmt.Fprintf(l.out, "Suite %s\n", decorateName(s.Name, s.Path)); err != nil {
			return err
		}
		for _, step := range s.Steps {
			line := fmt.Sprintf("  • %s", step.Name)
			if step.DataSet != "" {
				line += fmt.Sprintf(" [data set %s]", step.DataSet)
			}
			if step.Skip {
				line += " (skipped)"
			}
			if _, err := fmt.Fprintln(l.out, line); err != nil {
				return err
			}
		}
	}
	return nil
}

func decorateName(name, path string) string {
	if name == "" || name == path {
		return path
	}
	if path == "" {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, path)
}

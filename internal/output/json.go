package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bgricker/weavetest/internal/report"
	"github.com/bgricker/weavetest/internal/suite"
)

// JSONRenderer emits structured run data.
type JSONRenderer struct {
	out io.Writer
}

// NewJSON creates a JSON renderer writing to out.
func NewJSON(out io.Writer) *JSONRenderer {
	return &JSONRenderer{out: out}
}

// SuiteListing is the JSON shape of the list command.
type SuiteListing struct {
	Suites []suite.TestSuite `json:"suites"`
}

// Render encodes the run result as indented JSON.
func (j *JSONRenderer) Render(result report.RunResult) error {
	return j.encode(result)
}

// RenderList encodes the discovered suites as indented JSON.
func (j *JSONRenderer) RenderList(suites []suite.TestSuite) error {
	if suites == nil {
		suites = []suite.TestSuite{}
	}
	return j.encode(SuiteListing{Suites: suites})
}

func (j *JSONRenderer) encode(v any) error {
	enc := json.NewEncoder(j.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteResultFile writes result as JSON to path, creating parent directories as needed.
func WriteResultFile(path string, result report.RunResult) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create results dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create results file: %w", err)
	}
	if err := NewJSON(f).Render(result); err != nil {
		_ = f.Close()
		return fmt.Errorf("write results file: %w", err)
	}
	return f.Close()
}

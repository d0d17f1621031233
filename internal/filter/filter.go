// Package filter narrows the suites and steps a run executes.
package filter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bgricker/weavetest/internal/suite"
)

// Pattern represents a compiled filter condition supporting substring and regex matching.
type Pattern struct {
	raw   string
	regex *regexp.Regexp
	lower string
}

// Compile transforms raw pattern strings into Pattern values.
func Compile(patterns []string) ([]Pattern, error) {
	result := make([]Pattern, 0, len(patterns))
	for _, raw := range patterns {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if strings.HasPrefix(raw, "/") && strings.HasSuffix(raw, "/") && len(raw) >= 2 {
			expr := raw[1 : len(raw)-1]
			re, err := regexp.Compile(expr)
			if err != nil {
				return nil, fmt.Errorf("compile regexp %q: %w", raw, err)
			}
			result = append(result, Pattern{raw: raw, regex: re})
			continue
		}
		result = append(result, Pattern{raw: raw, lower: strings.ToLower(raw)})
	}
	return result, nil
}

// String returns the pattern as it was supplied.
func (p Pattern) String() string {
	return p.raw
}

// Match reports whether the pattern matches the supplied string.
func (p Pattern) Match(s string) bool {
	if s == "" {
		return false
	}
	if p.regex != nil {
		return p.regex.MatchString(s)
	}
	return strings.Contains(strings.ToLower(s), p.lower)
}

// CompileOnly compiles the suite name expression. An empty expression selects every suite.
func CompileOnly(expr string) (*regexp.Regexp, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile suite pattern %q: %w", expr, err)
	}
	return re, nil
}

// FilterSuites keeps the suites whose name matches only, preserving order. A nil only keeps all.
func FilterSuites(suites []suite.TestSuite, only *regexp.Regexp) []suite.TestSuite {
	if only == nil {
		return suites
	}
	result := make([]suite.TestSuite, 0, len(suites))
	for _, s := range suites {
		if only.MatchString(s.Name) {
			result = append(result, s)
		}
	}
	return result
}

// MarkSkipped returns copies of suites in which every step matching a skip pattern, by name or
// command, has its skip flag set. The input suites are not modified.
func MarkSkipped(suites []suite.TestSuite, skipPatterns []Pattern) []suite.TestSuite {
	if len(skipPatterns) == 0 {
		return suites
	}
	result := make([]suite.TestSuite, 0, len(suites))
	for _, s := range suites {
		steps := make([]suite.TestStep, len(s.Steps))
		copy(steps, s.Steps)
		for i := range steps {
			if matchesStep(steps[i], skipPatterns) {
				steps[i].Skip = true
			}
		}
		s.Steps = steps
		result = append(result, s)
	}
	return result
}

func matchesStep(step suite.TestStep, patterns []Pattern) bool {
	for _, pattern := range patterns {
		if pattern.Match(step.Name) || pattern.Match(step.Command) {
			return true
		}
	}
	return false
}

package report

// TestResult is the outcome of an invocation, step or suite.
type TestResult string

const (
	Pass         TestResult = "Pass"
	Fail         TestResult = "Fail"
	NotRun       TestResult = "NotRun"
	Inconclusive TestResult = "Inconclusive"
	Skip         TestResult = "Skip"
)

// Label returns the human readable form used by terminal reporters.
func (r TestResult) Label() string {
	switch r {
	case NotRun:
		return "Not Run"
	case Skip:
		return "Skipped"
	case "":
		return "Unknown"
	default:
		return string(r)
	}
}

// AssertResult captures one PASS or FAIL marker emitted by a test command.
type AssertResult struct {
	Message    string `json:"message"`
	Success    bool   `json:"success"`
	DataSetRow *int   `json:"data_set_row"`
}

// TestStepResult captures the aggregated outcome of a step across all its invocations.
type TestStepResult struct {
	Name    string         `json:"name"`
	Result  TestResult     `json:"result"`
	Asserts []AssertResult `json:"asserts"`
}

// TestSuiteResult captures the outcome of one suite.
type TestSuiteResult struct {
	Name          string           `json:"name"`
	OverallResult TestResult       `json:"overall_result"`
	Steps         []TestStepResult `json:"steps"`
}

// RunResult is the serialized result of a whole run.
type RunResult struct {
	RunID  string            `json:"run_id"`
	Suites []TestSuiteResult `json:"suite"`
}

// Summary aggregates step counts of a run.
type Summary struct {
	Suites       int `json:"suites"`
	FailedSuites int `json:"failed_suites"`
	Steps        int `json:"steps"`
	Passed       int `json:"passed"`
	Failed       int `json:"failed"`
	Inconclusive int `json:"inconclusive"`
	Skipped      int `json:"skipped"`
	NotRun       int `json:"not_run"`
	ExitCode     int `json:"exit_code"`
}

// Summarize counts suite and step outcomes.
func Summarize(suites []TestSuiteResult) Summary {
	summary := Summary{Suites: len(suites)}
	for _, s := range suites {
		if s.OverallResult == Fail {
			summary.FailedSuites++
			summary.ExitCode = 1
		}
		for _, step := range s.Steps {
			summary.Steps++
			switch step.Result {
			case Pass:
				summary.Passed++
			case Fail:
				summary.Failed++
			case Inconclusive:
				summary.Inconclusive++
			case Skip:
				summary.Skipped++
			case NotRun:
				summary.NotRun++
			}
		}
	}
	return summary
}

// Package suite defines test suite and values file documents and loads them from disk.
package suite

// DataSet is an ordered list of rows; each row adds environment variables to one invocation.
type DataSet []map[string]string

// TestSuite is an ordered list of steps sharing environment and data sets.
type TestSuite struct {
	Path        string             `json:"path"`
	Name        string             `json:"name"`
	Author      string             `json:"author,omitempty"`
	Description string             `json:"description,omitempty"`
	Env         map[string]string  `json:"env,omitempty"`
	DataSets    map[string]DataSet `json:"data_sets,omitempty"`
	Steps       []TestStep         `json:"steps"`
}

// TestStep is one shell command run by a suite.
type TestStep struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Skip        bool              `json:"skip,omitempty"`
	Command     string            `json:"command"`
	Env         map[string]string `json:"env,omitempty"`
	DataSet     string            `json:"data_set,omitempty"`
	// Timeout in seconds; zero selects the runner default.
	Timeout int `json:"timeout,omitempty"`
}

// ValuesFile supplies run-wide environment and data sets to every suite.
type ValuesFile struct {
	Env      map[string]string  `json:"env"`
	DataSets map[string]DataSet `json:"data_sets,omitempty"`
}

package suite

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Loader reads suite files from disk.
type Loader struct {
	Root string
}

// NewLoader constructs a Loader that resolves suite paths relative to root.
func NewLoader(root string) *Loader {
	return &Loader{Root: root}
}

// Load reads the supplied suite paths in order.
func (l *Loader) Load(paths []string) ([]TestSuite, error) {
	suites := make([]TestSuite, 0, len(paths))
	for _, relPath := range paths {
		full := relPath
		if !filepath.IsAbs(full) {
			full = filepath.Join(l.Root, relPath)
		}
		data, err := os.ReadFile(full)
		if err != nil {
			return nil, fmt.Errorf("read suite %q: %w", relPath, err)
		}
		s, err := DecodeSuite(data, relPath)
		if err != nil {
			return nil, err
		}
		suites = append(suites, s)
	}
	return suites, nil
}

// DecodeSuite validates and decodes one YAML suite document.
func DecodeSuite(data []byte, displayPath string) (TestSuite, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return TestSuite{}, fmt.Errorf("parse suite %q: %w", displayPath, err)
	}
	if err := validateSuite(raw); err != nil {
		return TestSuite{}, fmt.Errorf("validate suite %q: %w", displayPath, err)
	}

	var doc suiteDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return TestSuite{}, fmt.Errorf("parse suite %q: %w", displayPath, err)
	}

	s := TestSuite{
		Path:        displayPath,
		Name:        doc.Name,
		Author:      doc.Author,
		Description: doc.Description,
		Env:         convertEnv(doc.Env),
		DataSets:    convertDataSets(doc.DataSets),
		Steps:       make([]TestStep, 0, len(doc.Steps)),
	}
	for idx, stepDoc := range doc.Steps {
		step := TestStep{
			Name:        stepDoc.Name,
			Description: stepDoc.Description,
			Skip:        stepDoc.Skip,
			Command:     stepDoc.Command,
			Env:         convertEnv(stepDoc.Env),
			DataSet:     stepDoc.DataSet,
			Timeout:     stepDoc.Timeout,
		}
		if strings.TrimSpace(step.Name) == "" {
			step.Name = fmt.Sprintf("step %d", idx+1)
		}
		s.Steps = append(s.Steps, step)
	}
	return s, nil
}

// LoadValues reads a values file. Files ending in .env are read as dotenv and only supply
// environment variables; anything else is parsed as YAML.
func LoadValues(path string) (ValuesFile, error) {
	if strings.EqualFold(filepath.Ext(path), ".env") {
		env, err := godotenv.Read(path)
		if err != nil {
			return ValuesFile{}, fmt.Errorf("read values %q: %w", path, err)
		}
		return ValuesFile{Env: env}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return ValuesFile{}, fmt.Errorf("read values %q: %w", path, err)
	}
	return DecodeValues(data, path)
}

// DecodeValues validates and decodes a YAML values document.
func DecodeValues(data []byte, displayPath string) (ValuesFile, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return ValuesFile{}, fmt.Errorf("parse values %q: %w", displayPath, err)
	}
	if err := validateValues(raw); err != nil {
		return ValuesFile{}, fmt.Errorf("validate values %q: %w", displayPath, err)
	}

	var doc valuesDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return ValuesFile{}, fmt.Errorf("parse values %q: %w", displayPath, err)
	}
	env := convertEnv(doc.Env)
	if env == nil {
		env = map[string]string{}
	}
	return ValuesFile{Env: env, DataSets: convertDataSets(doc.DataSets)}, nil
}

type suiteDocument struct {
	Name        string                              `yaml:"name"`
	Author      string                              `yaml:"author"`
	Description string                              `yaml:"description"`
	Env         map[string]interface{}              `yaml:"env"`
	DataSets    map[string][]map[string]interface{} `yaml:"data_sets"`
	Steps       []stepDocument                      `yaml:"steps"`
}

type stepDocument struct {
	Name        string                 `yaml:"name"`
	Description string                 `yaml:"description"`
	Skip        bool                   `yaml:"skip"`
	Command     string                 `yaml:"command"`
	Env         map[string]interface{} `yaml:"env"`
	DataSet     string                 `yaml:"data_set"`
	Timeout     int                    `yaml:"timeout"`
}

type valuesDocument struct {
	Env      map[string]interface{}              `yaml:"env"`
	DataSets map[string][]map[string]interface{} `yaml:"data_sets"`
}

func convertEnv(input map[string]interface{}) map[string]string {
	if len(input) == 0 {
		return nil
	}
	out := make(map[string]string, len(input))
	keys := make([]string, 0, len(input))
	for k := range input {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out[k] = fmt.Sprint(input[k])
	}
	return out
}

func convertDataSets(input map[string][]map[string]interface{}) map[string]DataSet {
	if len(input) == 0 {
		return nil
	}
	out := make(map[string]DataSet, len(input))
	for name, rows := range input {
		set := make(DataSet, 0, len(rows))
		for _, row := range rows {
			converted := convertEnv(row)
			if converted == nil {
				converted = map[string]string{}
			}
			set = append(set, converted)
		}
		out[name] = set
	}
	return out
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the optional configuration file read from the working directory.
const FileName = ".weave-test.yml"

// EnvPrefix prefixes the environment variables that override the configuration file.
const EnvPrefix = "WEAVE_TEST_"

// Config captures CLI options sourced from config files, the environment or flags.
type Config struct {
	Path   string   `yaml:"path"`
	Values string   `yaml:"values"`
	Suites []string `yaml:"suites"`

	Only      string   `yaml:"only"`
	SkipSteps []string `yaml:"skip_step"`

	Format      string `yaml:"format"`
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	MetricsPath string `yaml:"metrics_path"`
	ResultsPath string `yaml:"results_path"`
}

const (
	// FormatColour renders styled progress with in-place status updates.
	FormatColour = "colour"
	// FormatJSON renders the run result as JSON once the run is over.
	FormatJSON = "json"

	// DefaultLogLevel keeps diagnostics quiet unless something goes wrong.
	DefaultLogLevel = "warn"
	// DefaultLogFormat renders human readable log lines.
	DefaultLogFormat = "console"
)

// Default returns the baseline configuration used when no flags or config file specify values.
func Default() Config {
	return Config{
		Path:      ".",
		Format:    FormatColour,
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
	}
}

// Load reads .weave-test.yml from dir when present. Missing files are ignored.
func Load(dir string) (Config, error) {
	cfg := Default()
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return cfg, fmt.Errorf("parse config %q: %w", path, err)
	}

	cfg = merge(cfg, fileCfg)
	return cfg, nil
}

func merge(base, override Config) Config {
	out := base

	if override.Path != "" {
		out.Path = override.Path
	}
	if override.Values != "" {
		out.Values = override.Values
	}
	if len(override.Suites) > 0 {
		out.Suites = append([]string{}, override.Suites...)
	}
	if override.Only != "" {
		out.Only = override.Only
	}
	if len(override.SkipSteps) > 0 {
		out.SkipSteps = append([]string{}, override.SkipSteps...)
	}
	if override.Format != "" {
		out.Format = override.Format
	}
	if override.LogLevel != "" {
		out.LogLevel = override.LogLevel
	}
	if override.LogFormat != "" {
		out.LogFormat = override.LogFormat
	}
	if override.MetricsPath != "" {
		out.MetricsPath = override.MetricsPath
	}
	if override.ResultsPath != "" {
		out.ResultsPath = override.ResultsPath
	}

	return out
}

// ApplyEnv overrides cfg with WEAVE_TEST_* variables found through lookup, normally
// os.LookupEnv. List values are comma separated.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	list := func(name string, dst *[]string) {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			return
		}
		var items []string
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		if len(items) > 0 {
			*dst = items
		}
	}

	str("PATH", &cfg.Path)
	str("VALUES", &cfg.Values)
	list("SUITE", &cfg.Suites)
	str("ONLY", &cfg.Only)
	list("SKIP_STEP", &cfg.SkipSteps)
	str("FORMAT", &cfg.Format)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FORMAT", &cfg.LogFormat)
	str("METRICS_PATH", &cfg.MetricsPath)
	str("RESULTS_PATH", &cfg.ResultsPath)
}

// ApplyFlags mutates cfg by applying values from CLI flags when they are present.
func ApplyFlags(cfg *Config, flags FlagValues) {
	if flags.Path.Set {
		cfg.Path = flags.Path.Value
	}
	if flags.Values.Set {
		cfg.Values = flags.Values.Value
	}
	if len(flags.Suites.Values) > 0 {
		cfg.Suites = append([]string{}, flags.Suites.Values...)
	}
	if flags.Only.Set {
		cfg.Only = flags.Only.Value
	}
	if len(flags.SkipSteps.Values) > 0 {
		cfg.SkipSteps = append([]string{}, flags.SkipSteps.Values...)
	}
	if flags.Format.Set {
		cfg.Format = flags.Format.Value
	}
	if flags.LogLevel.Set {
		cfg.LogLevel = flags.LogLevel.Value
	}
	if flags.LogFormat.Set {
		cfg.LogFormat = flags.LogFormat.Value
	}
	if flags.MetricsPath.Set {
		cfg.MetricsPath = flags.MetricsPath.Value
	}
	if flags.ResultsPath.Set {
		cfg.ResultsPath = flags.ResultsPath.Value
	}
}

// FlagValues captures CLI flag state with knowledge of whether each flag was set explicitly.
type FlagValues struct {
	Path        StringFlag
	Values      StringFlag
	Suites      SliceFlag
	Only        StringFlag
	SkipSteps   SliceFlag
	Format      StringFlag
	LogLevel    StringFlag
	LogFormat   StringFlag
	MetricsPath StringFlag
	ResultsPath StringFlag
}

// StringFlag represents a string flag and whether it was set.
type StringFlag struct {
	Value string
	Set   bool
}

// SliceFlag represents a slice flag and whether it captured values via CLI.
type SliceFlag struct {
	Values []string
}

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadMergesFile(t *testing.T) {
	dir := t.TempDir()
	content := "path: tests\nvalues: values.yaml\nskip_step:\n  - slow\nformat: plain\nlog_level: debug\n"
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Path != "tests" || cfg.Values != "values.yaml" || cfg.Format != "plain" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.LogLevel != "debug" || cfg.LogFormat != DefaultLogFormat {
		t.Fatalf("log settings mismatch: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.SkipSteps, []string{"slow"}) {
		t.Fatalf("skip steps mismatch: %v", cfg.SkipSteps)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("path: [oops"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestApplyEnvThenFlags(t *testing.T) {
	cfg := Default()
	env := map[string]string{
		"WEAVE_TEST_PATH":      "from-env",
		"WEAVE_TEST_ONLY":      "^Login",
		"WEAVE_TEST_SKIP_STEP": "slow, /flaky/ ,",
		"WEAVE_TEST_FORMAT":    "  ",
	}
	ApplyEnv(&cfg, func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})

	if cfg.Path != "from-env" || cfg.Only != "^Login" {
		t.Fatalf("env values not applied: %+v", cfg)
	}
	if cfg.Format != FormatColour {
		t.Fatalf("blank env value should be ignored, got %q", cfg.Format)
	}
	if !reflect.DeepEqual(cfg.SkipSteps, []string{"slow", "/flaky/"}) {
		t.Fatalf("skip steps mismatch: %v", cfg.SkipSteps)
	}

	ApplyFlags(&cfg, FlagValues{
		Path:   StringFlag{Value: "from-flag", Set: true},
		Format: StringFlag{Value: FormatJSON, Set: true},
		Suites: SliceFlag{Values: []string{"a_test.yaml"}},
	})
	if cfg.Path != "from-flag" || cfg.Format != FormatJSON {
		t.Fatalf("flag values not applied: %+v", cfg)
	}
	if cfg.Only != "^Login" {
		t.Fatalf("unset flag should keep env value, got %q", cfg.Only)
	}
	if !reflect.DeepEqual(cfg.Suites, []string{"a_test.yaml"}) {
		t.Fatalf("suites mismatch: %v", cfg.Suites)
	}
}

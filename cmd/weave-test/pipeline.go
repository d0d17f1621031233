package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bgricker/weavetest/internal/config"
	"github.com/bgricker/weavetest/internal/discovery"
	"github.com/bgricker/weavetest/internal/filter"
	"github.com/bgricker/weavetest/internal/output"
	"github.com/bgricker/weavetest/internal/suite"
)

// loadConfig layers .weave-test.yml, WEAVE_TEST_* variables and explicit flags.
func loadConfig(cmd *cobra.Command) (config.Config, output.Format, error) {
	wd, err := os.Getwd()
	if err != nil {
		return config.Config{}, "", fmt.Errorf("determine working directory: %w", err)
	}

	cfg, err := config.Load(wd)
	if err != nil {
		return config.Config{}, "", withExit(ExitConfigError, err)
	}
	config.ApplyEnv(&cfg, os.LookupEnv)

	flags, err := gatherFlags(cmd)
	if err != nil {
		return config.Config{}, "", withExit(ExitConfigError, err)
	}
	config.ApplyFlags(&cfg, flags)

	format, err := output.ParseFormat(cfg.Format)
	if err != nil {
		return config.Config{}, "", withExit(ExitConfigError, err)
	}
	return cfg, format, nil
}

// resolveTestPath returns the absolute test directory.
func resolveTestPath(path string) (string, error) {
	if path == "" {
		path = "."
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve path %q: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", withExit(ExitNotFound, fmt.Errorf("unable to find path %q", path))
		}
		return "", fmt.Errorf("stat path %q: %w", path, err)
	}
	if !info.IsDir() {
		return "", withExit(ExitNotDirectory, fmt.Errorf("expected a folder as the test path, got %q", path))
	}
	return abs, nil
}

// loadValues reads the values file when one is configured.
func loadValues(path string) (*suite.ValuesFile, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, withExit(ExitNotFound, fmt.Errorf("unable to find values file %q", path))
		}
		return nil, fmt.Errorf("stat values file %q: %w", path, err)
	}
	values, err := suite.LoadValues(path)
	if err != nil {
		return nil, withExit(ExitConfigError, err)
	}
	return &values, nil
}

// loadSuites discovers, parses and filters the suites under dir. Finding no suite files is
// not an error; the run is simply empty.
func loadSuites(dir string, cfg config.Config) ([]suite.TestSuite, error) {
	only, err := filter.CompileOnly(cfg.Only)
	if err != nil {
		return nil, withExit(ExitConfigError, err)
	}
	skipPatterns, err := filter.Compile(cfg.SkipSteps)
	if err != nil {
		return nil, withExit(ExitConfigError, err)
	}

	paths, err := discovery.Suites(dir, cfg.Suites)
	if err != nil {
		switch {
		case errors.Is(err, discovery.ErrNoSuites):
			return nil, nil
		case errors.Is(err, os.ErrNotExist):
			return nil, withExit(ExitNotFound, err)
		default:
			return nil, withExit(ExitConfigError, err)
		}
	}

	suites, err := suite.NewLoader(dir).Load(paths)
	if err != nil {
		return nil, withExit(ExitConfigError, err)
	}

	suites = filter.FilterSuites(suites, only)
	return filter.MarkSkipped(suites, skipPatterns), nil
}

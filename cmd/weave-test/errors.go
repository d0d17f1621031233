package main

import (
	"errors"

	"github.com/bgricker/weavetest/internal/runner"
)

// Process exit codes.
const (
	ExitSuccess      = 0 // every suite passed or was inconclusive
	ExitFailure      = 1 // a suite failed, or the run hit a runtime error
	ExitConfigError  = 2 // invalid flags, configuration, suite or values file
	ExitNotFound     = 4 // test path or values file does not exist
	ExitNotDirectory = 5 // test path is not a directory
)

// exitError attaches a process exit code to an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

func withExit(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var coded *exitError
	if errors.As(err, &coded) {
		return coded.code
	}
	var cfgErr *runner.ConfigError
	if errors.As(err, &cfgErr) {
		return ExitConfigError
	}
	return ExitFailure
}

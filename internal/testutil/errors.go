// Package testutil provides testing utilities for autopost.
//
// This package contains mock errors and draft fixtures used across test
// files. It should only be imported by test files (*_test.go).
package testutil

import "errors"

// Mock errors for testing purposes.
// These errors are used to simulate various failure scenarios in tests.
var (
	// ErrMockFileNotFound indicates a mock file was not found (used in tests).
	ErrMockFileNotFound = errors.New("file not found")

	// ErrMockCommandFailed indicates a mock external command failed (used in tests).
	ErrMockCommandFailed = errors.New("command failed")

	// ErrMockNetwork indicates a mock network error occurred (used in tests).
	ErrMockNetwork = errors.New("network error")

	// ErrMockStoreUnavailable indicates a mock corpus store is unavailable (used in tests).
	ErrMockStoreUnavailable = errors.New("corpus store unavailable")
)

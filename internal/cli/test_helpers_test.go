package cli

// This file contains test utilities and mocks for testing CLI functions.
// These helpers are only available in test files (*_test.go).

// mockFormRunner is a test helper that implements the formRunner interface
// (defined in init.go as a package-level interface).
// Use this to mock Charm Huh forms in tests.
type mockFormRunner struct {
	// runErr is the error to return from Run()
	runErr error

	// onRun is an optional callback executed when Run() is called
	// Use this to simulate user input by modifying form values
	onRun func()
}

// Run executes the mock form, optionally calling the onRun callback.
func (m *mockFormRunner) Run() error {
	if m.onRun != nil {
		m.onRun()
	}
	return m.runErr
}

// recordingOutput implements tui.Output and records everything written to it,
// so tests can assert on rendered messages without parsing styled text.
type recordingOutput struct {
	successes    []string
	errors       []string
	warnings     []string
	infos        []string
	tableHeaders []string
	tableRows    [][]string
	jsonVals     []any
}

func (r *recordingOutput) Success(msg string) { r.successes = append(r.successes, msg) }

func (r *recordingOutput) Error(err error) { r.errors = append(r.errors, err.Error()) }

func (r *recordingOutput) Warning(msg string) { r.warnings = append(r.warnings, msg) }

func (r *recordingOutput) Info(msg string) { r.infos = append(r.infos, msg) }

func (r *recordingOutput) Table(headers []string, rows [][]string) {
	r.tableHeaders = headers
	r.tableRows = rows
}

func (r *recordingOutput) JSON(v any) error {
	r.jsonVals = append(r.jsonVals, v)
	return nil
}

// allInfos joins the recorded info lines for substring assertions.
func (r *recordingOutput) allInfos() string {
	out := ""
	for _, line := range r.infos {
		out += line + "\n"
	}
	return out
}

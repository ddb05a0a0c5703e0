package harness

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestEnvironment provides an isolated test environment with its own DUET_HOME.
type TestEnvironment struct {
	DuetHome string
	tb       testing.TB
}

// NewTestEnvironment creates an isolated test environment with a temp DUET_HOME.
// The temp directory is automatically cleaned up when the test completes.
func NewTestEnvironment(tb testing.TB) *TestEnvironment {
	tb.Helper()

	return &TestEnvironment{
		DuetHome: tb.TempDir(),
		tb:       tb,
	}
}

// Environ returns environment variables configured for test isolation.
// It filters out DUET_* variables and sets:
//   - DUET_HOME to the temp directory
//   - DUET_DEBUG to empty string (disables debug logging)
//   - SHELL to /bin/sh
func (e *TestEnvironment) Environ() []string {
	env := make([]string, 0, len(os.Environ())+3)

	// Drop inherited DUET_* variables and the shell we pin
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, "DUET_") || key == "SHELL" {
			continue
		}
		env = append(env, kv)
	}

	env = append(env,
		"DUET_HOME="+e.DuetHome,
		"DUET_DEBUG=",
		"SHELL=/bin/sh",
	)

	return env
}

// SettingsPath returns the path to the test settings file.
func (e *TestEnvironment) SettingsPath() string {
	return filepath.Join(e.DuetHome, "settings.json")
}

// WriteFile writes content to a file under DUET_HOME.
func (e *TestEnvironment) WriteFile(name, content string) string {
	e.tb.Helper()
	path := filepath.Join(e.DuetHome, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		e.tb.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

// WriteAgentScript writes an executable shell script that stands in for an
// agent binary and returns its path.
func (e *TestEnvironment) WriteAgentScript(name, body string) string {
	e.tb.Helper()
	dir := filepath.Join(e.DuetHome, "bin")
	if err := os.MkdirAll(dir, 0755); err != nil {
		e.tb.Fatalf("Failed to create bin directory: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755); err != nil {
		e.tb.Fatalf("Failed to write agent script: %v", err)
	}
	return path
}

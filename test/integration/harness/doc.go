// Package harness provides utilities for integration testing the duet CLI.
// It handles binary compilation, environment isolation, and command execution.
//
// Environment variables managed:
//   - DUET_HOME: Isolated per test (temp directory)
//   - DUET_DEBUG: Disabled to reduce noise
//   - SHELL: Pinned to /bin/sh so terminal and exec runs are predictable
package harness

package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Role identifies which of a session's two processes an operation targets
type Role string

const (
	RoleAI       Role = "ai"
	RoleTerminal Role = "terminal"
)

// Roles lists every role in a stable order
var Roles = []Role{RoleAI, RoleTerminal}

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleAI || r == RoleTerminal
}

// ParseRole converts a string to a Role
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("invalid role %q (expected ai or terminal)", s)
	}
	return r, nil
}

// ProcessKey is the composite key of a live process
type ProcessKey struct {
	SessionID string
	Role      Role
}

// String renders the routing form {sessionId}-{role}
func (k ProcessKey) String() string {
	return fmt.Sprintf("%s-%s", k.SessionID, k.Role)
}

// ProcessState represents the lifecycle of a process handle
type ProcessState string

const (
	ProcessStarting ProcessState = "starting"
	ProcessRunning  ProcessState = "running"
	ProcessExited   ProcessState = "exited"
)

// LaunchMode tells how a process was started
type LaunchMode string

const (
	LaunchPTY  LaunchMode = "pty"
	LaunchPipe LaunchMode = "pipe"
)

// Session represents a logical unit of work bound to one working directory
type Session struct {
	AgentID     string
	CreatedAt   time.Time
	ID          string
	Interactive bool
	ModelID     string
	ReadOnly    bool
	ResumeToken string
	WorkingDir  string
}

// ExitStatus describes how a process terminated
type ExitStatus struct {
	Code   int    `json:"code"`
	Signal string `json:"signal,omitempty"`
}

// Success reports whether the process exited cleanly
func (s ExitStatus) Success() bool {
	return s.Code == 0 && s.Signal == ""
}

// ProcessInfo is a serializable snapshot of a live process handle
type ProcessInfo struct {
	AgentID        string       `json:"agent_id"`
	AgentSessionID string       `json:"agent_session_id,omitempty"`
	Args           []string     `json:"args"`
	Mode           LaunchMode   `json:"mode"`
	ModelID        string       `json:"model_id,omitempty"`
	PID            int          `json:"pid"`
	ReadOnly       bool         `json:"read_only,omitempty"`
	Role           Role         `json:"role"`
	SessionID      string       `json:"session_id"`
	StartedAt      time.Time    `json:"started_at"`
	State          ProcessState `json:"state"`
	WorkingDir     string       `json:"working_dir"`
}

// Key returns the composite key of the snapshot
func (p ProcessInfo) Key() ProcessKey {
	return ProcessKey{SessionID: p.SessionID, Role: p.Role}
}

// CommandResult holds the captured output of a one-shot command
type CommandResult struct {
	Duration time.Duration `json:"duration"`
	ExitCode int           `json:"exit_code"`
	Signal   string        `json:"signal,omitempty"`
	Stderr   string        `json:"stderr"`
	Stdout   string        `json:"stdout"`
}

// SanitizeSessionID converts a user supplied name to a session id safe for
// routing keys and file names.
// - Alphanumeric, underscores, hyphens, and periods are kept
// - Spaces, parentheses, and slashes become underscores (consecutive ones collapsed)
// - Everything else is removed
func SanitizeSessionID(name string) string {
	var result strings.Builder
	lastWasUnderscore := false

	for _, r := range name {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r) || r == '-' || r == '.':
			result.WriteRune(r)
			lastWasUnderscore = false
		case r == '_':
			result.WriteRune('_')
			lastWasUnderscore = true
		case unicode.IsSpace(r) || r == '(' || r == ')' || r == '/':
			if !lastWasUnderscore && result.Len() > 0 {
				result.WriteRune('_')
				lastWasUnderscore = true
			}
		}
	}

	return strings.TrimRight(result.String(), "_")
}

package domain

import (
	"encoding/json"
	"time"
)

// EventKind tags the variant carried by an Event
type EventKind string

// Process lifecycle and raw output events
const (
	EventSpawned EventKind = "spawned"
	EventOutput  EventKind = "output"
	EventExit    EventKind = "exit"
)

// Normalized agent events
const (
	EventText      EventKind = "text"
	EventThinking  EventKind = "thinking"
	EventToolCall  EventKind = "tool_call"
	EventPlan      EventKind = "plan"
	EventCommands  EventKind = "commands"
	EventMode      EventKind = "mode"
	EventSessionID EventKind = "session_id"
	EventResult    EventKind = "result"
	EventError     EventKind = "error"
)

// IsAgentEvent reports whether the kind is a normalized agent event
func (k EventKind) IsAgentEvent() bool {
	switch k {
	case EventSpawned, EventOutput, EventExit:
		return false
	}
	return true
}

// ToolStatus is the normalized status of a tool invocation
type ToolStatus string

const (
	ToolPending   ToolStatus = "pending"
	ToolRunning   ToolStatus = "running"
	ToolCompleted ToolStatus = "completed"
	ToolError     ToolStatus = "error"
)

// FileLocation points at a file touched by a tool call
type FileLocation struct {
	Line *int   `json:"line,omitempty"`
	Path string `json:"path"`
}

// ToolCall describes a started or updated tool invocation
type ToolCall struct {
	Content   []string        `json:"content,omitempty"`
	ID        string          `json:"id"`
	Kind      string          `json:"kind,omitempty"`
	Locations []FileLocation  `json:"locations,omitempty"`
	RawInput  json.RawMessage `json:"raw_input,omitempty"`
	RawOutput json.RawMessage `json:"raw_output,omitempty"`
	Status    ToolStatus      `json:"status"`
	Title     string          `json:"title,omitempty"`
	Update    bool            `json:"update,omitempty"`
}

// PlanEntry is one step of an agent plan
type PlanEntry struct {
	Content  string `json:"content"`
	Priority string `json:"priority,omitempty"`
	Status   string `json:"status,omitempty"`
}

// AvailableCommand is a slash command advertised by the agent
type AvailableCommand struct {
	Description string `json:"description,omitempty"`
	Hint        string `json:"hint,omitempty"`
	Name        string `json:"name"`
}

// Event is the single outbound contract of the session manager.
// Only the fields relevant to Kind are populated.
type Event struct {
	AgentSessionID string             `json:"agent_session_id,omitempty"`
	Commands       []AvailableCommand `json:"commands,omitempty"`
	Data           []byte             `json:"data,omitempty"`
	Error          string             `json:"error,omitempty"`
	Exit           *ExitStatus        `json:"exit,omitempty"`
	Kind           EventKind          `json:"kind"`
	ModeID         string             `json:"mode_id,omitempty"`
	PID            int                `json:"pid,omitempty"`
	Plan           []PlanEntry        `json:"plan,omitempty"`
	Process        *ProcessInfo       `json:"process,omitempty"`
	Role           Role               `json:"role,omitempty"`
	SessionID      string             `json:"session_id"`
	StopReason     string             `json:"stop_reason,omitempty"`
	Stream         string             `json:"stream,omitempty"`
	Text           string             `json:"text,omitempty"`
	Time           time.Time          `json:"time"`
	ToolCall       *ToolCall          `json:"tool_call,omitempty"`
}

// Key returns the process key the event belongs to
func (e Event) Key() ProcessKey {
	return ProcessKey{SessionID: e.SessionID, Role: e.Role}
}

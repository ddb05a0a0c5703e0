package ports

import (
	"context"
	"time"

	"github.com/renato0307/duet/internal/domain"
)

// ProcessRun is a historical record of one launched process
type ProcessRun struct {
	Args      []string          `json:"args"`
	ExitCode  *int              `json:"exit_code,omitempty"`
	ExitedAt  *time.Time        `json:"exited_at,omitempty"`
	ID        uint              `json:"id"`
	Mode      domain.LaunchMode `json:"mode"`
	PID       int               `json:"pid"`
	Role      domain.Role       `json:"role"`
	SessionID string            `json:"session_id"`
	Signal    string            `json:"signal,omitempty"`
	StartedAt time.Time         `json:"started_at"`
}

// SessionRecord is a persisted session with its last known agent token
type SessionRecord struct {
	AgentID        string    `json:"agent_id"`
	AgentSessionID string    `json:"agent_session_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	ID             string    `json:"id"`
	ModelID        string    `json:"model_id,omitempty"`
	ReadOnly       bool      `json:"read_only"`
	UpdatedAt      time.Time `json:"updated_at"`
	WorkingDir     string    `json:"working_dir"`
}

// SessionHistoryWriter records session lifecycle facts
type SessionHistoryWriter interface {
	RecordExit(ctx context.Context, key domain.ProcessKey, pid int, status domain.ExitStatus, at time.Time) error
	RecordSpawn(ctx context.Context, record SessionRecord, run ProcessRun) error
	UpdateAgentSessionID(ctx context.Context, sessionID, agentSessionID string) error
}

// SessionHistoryReader reads session history
type SessionHistoryReader interface {
	GetSession(ctx context.Context, id string) (*SessionRecord, error)
	ListRuns(ctx context.Context, sessionID string) ([]ProcessRun, error)
	ListSessions(ctx context.Context) ([]SessionRecord, error)
}

// SessionHistory is the composite interface
type SessionHistory interface {
	SessionHistoryReader
	SessionHistoryWriter
	Close() error
}

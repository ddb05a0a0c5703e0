package storage

import "time"

// SessionModel is the GORM model for sessions table
type SessionModel struct {
	AgentID        string `gorm:"not null;default:''"`
	AgentSessionID string `gorm:"not null;default:''"`
	CreatedAt      time.Time
	ID             string    `gorm:"primaryKey"`
	ModelID        string    `gorm:"not null;default:''"`
	ReadOnly       bool      `gorm:"not null;default:false"`
	UpdatedAt      time.Time `gorm:"index:idx_updated_at"`
	WorkingDir     string    `gorm:"not null;default:''"`
}

// TableName specifies the table name for GORM
func (SessionModel) TableName() string { return "sessions" }

// ProcessRunModel is the GORM model for process_runs table
type ProcessRunModel struct {
	Args      []string   `gorm:"serializer:json"`
	ExitCode  *int       `gorm:"default:null"`
	ExitedAt  *time.Time `gorm:"default:null"`
	ID        uint       `gorm:"primaryKey;autoIncrement"`
	Mode      string     `gorm:"not null;check:mode IN ('pty','pipe')"`
	PID       int        `gorm:"not null"`
	Role      string     `gorm:"not null;check:role IN ('ai','terminal')"`
	SessionID string     `gorm:"not null;index:idx_run_session"`
	Signal    string     `gorm:"not null;default:''"`
	StartedAt time.Time  `gorm:"not null"`
}

// TableName specifies the table name for GORM
func (ProcessRunModel) TableName() string { return "process_runs" }

package storage

import (
	"github.com/renato0307/duet/internal/domain"
	"github.com/renato0307/duet/internal/ports"
)

func sessionModelToRecord(m SessionModel) ports.SessionRecord {
	return ports.SessionRecord{
		AgentID:        m.AgentID,
		AgentSessionID: m.AgentSessionID,
		CreatedAt:      m.CreatedAt,
		ID:             m.ID,
		ModelID:        m.ModelID,
		ReadOnly:       m.ReadOnly,
		UpdatedAt:      m.UpdatedAt,
		WorkingDir:     m.WorkingDir,
	}
}

func recordToSessionModel(r ports.SessionRecord) SessionModel {
	return SessionModel{
		AgentID:        r.AgentID,
		AgentSessionID: r.AgentSessionID,
		ID:             r.ID,
		ModelID:        r.ModelID,
		ReadOnly:       r.ReadOnly,
		WorkingDir:     r.WorkingDir,
	}
}

func runModelToDomain(m ProcessRunModel) ports.ProcessRun {
	return ports.ProcessRun{
		Args:      m.Args,
		ExitCode:  m.ExitCode,
		ExitedAt:  m.ExitedAt,
		ID:        m.ID,
		Mode:      domain.LaunchMode(m.Mode),
		PID:       m.PID,
		Role:      domain.Role(m.Role),
		SessionID: m.SessionID,
		Signal:    m.Signal,
		StartedAt: m.StartedAt,
	}
}

func runToModel(r ports.ProcessRun) ProcessRunModel {
	return ProcessRunModel{
		Args:      r.Args,
		ExitCode:  r.ExitCode,
		ExitedAt:  r.ExitedAt,
		Mode:      string(r.Mode),
		PID:       r.PID,
		Role:      string(r.Role),
		SessionID: r.SessionID,
		Signal:    r.Signal,
		StartedAt: r.StartedAt,
	}
}

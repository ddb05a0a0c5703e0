package services

import (
	"context"

	"github.com/renato0307/duet/internal/domain"
	"github.com/renato0307/duet/internal/logging"
	"github.com/renato0307/duet/internal/ports"
)

// HistoryRecorder persists session lifecycle events as they are published
type HistoryRecorder struct {
	writer ports.SessionHistoryWriter
}

// NewHistoryRecorder creates a new HistoryRecorder
func NewHistoryRecorder(writer ports.SessionHistoryWriter) *HistoryRecorder {
	return &HistoryRecorder{writer: writer}
}

// Run consumes the subscription until it ends or ctx is cancelled
func (r *HistoryRecorder) Run(ctx context.Context, sub *Subscription) {
	for {
		select {
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			if err := r.Handle(ctx, ev); err != nil {
				logging.Logger.Warn("Failed to record session history", "session_id", ev.SessionID, "kind", ev.Kind, "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Handle records one event; kinds other than spawn, exit and session id are ignored
func (r *HistoryRecorder) Handle(ctx context.Context, ev domain.Event) error {
	switch ev.Kind {
	case domain.EventSpawned:
		if ev.Process == nil {
			return nil
		}
		p := ev.Process
		return r.writer.RecordSpawn(ctx,
			ports.SessionRecord{
				AgentID:    p.AgentID,
				ID:         ev.SessionID,
				ModelID:    p.ModelID,
				ReadOnly:   p.ReadOnly,
				WorkingDir: p.WorkingDir,
			},
			ports.ProcessRun{
				Args:      p.Args,
				Mode:      p.Mode,
				PID:       p.PID,
				Role:      ev.Role,
				SessionID: ev.SessionID,
				StartedAt: p.StartedAt,
			},
		)
	case domain.EventExit:
		if ev.Exit == nil {
			return nil
		}
		return r.writer.RecordExit(ctx, ev.Key(), ev.PID, *ev.Exit, ev.Time)
	case domain.EventSessionID:
		return r.writer.UpdateAgentSessionID(ctx, ev.SessionID, ev.AgentSessionID)
	}
	return nil
}

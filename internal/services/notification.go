package services

import (
	"context"

	"github.com/renato0307/duet/internal/domain"
	"github.com/renato0307/duet/internal/logging"
	"github.com/renato0307/duet/internal/ports"
)

// Sound event names understood by the sound player
const (
	SoundDone  = "done"
	SoundError = "error"
)

// NotificationService plays a sound when an agent finishes a turn or exits
type NotificationService struct {
	soundPlayer ports.SoundPlayer
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(soundPlayer ports.SoundPlayer) *NotificationService {
	return &NotificationService{soundPlayer: soundPlayer}
}

// SoundFor maps an event to a sound, or "" when the event is silent.
// Only the ai role is audible; terminals come and go with the user.
func (s *NotificationService) SoundFor(ev domain.Event) string {
	if ev.Role != domain.RoleAI {
		return ""
	}
	switch ev.Kind {
	case domain.EventResult:
		return SoundDone
	case domain.EventError:
		return SoundError
	case domain.EventExit:
		if ev.Exit != nil && !ev.Exit.Success() {
			return SoundError
		}
		return SoundDone
	}
	return ""
}

// Run consumes the subscription until it ends or ctx is cancelled
func (s *NotificationService) Run(ctx context.Context, sub *Subscription) {
	for {
		select {
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			sound := s.SoundFor(ev)
			if sound == "" {
				continue
			}
			logging.Logger.Debug("Playing sound for event", "session_id", ev.SessionID, "kind", ev.Kind, "sound", sound)
			if err := s.soundPlayer.PlaySoundForEvent(sound); err != nil {
				logging.Logger.Warn("Failed to play sound", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

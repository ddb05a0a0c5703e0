package services

import (
	"fmt"
	"sync"

	"github.com/renato0307/duet/internal/config"
	"github.com/renato0307/duet/internal/logging"
	"github.com/renato0307/duet/internal/ports"
)

// SettingsService exposes persisted settings to the session manager and
// updates them on request
type SettingsService struct {
	mu       sync.RWMutex
	save     func(*config.Settings) error
	settings *config.Settings
}

// Compile-time interface verification
var _ ports.SettingsSource = (*SettingsService)(nil)

// NewSettingsService creates a new SettingsService over loaded settings
func NewSettingsService(settings *config.Settings) *SettingsService {
	if settings == nil {
		settings = &config.Settings{}
	}
	return &SettingsService{save: config.SaveSettings, settings: settings}
}

// DefaultShell implements ports.SettingsSource
func (s *SettingsService) DefaultShell() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.DefaultShell
}

// AgentOption implements ports.SettingsSource
func (s *SettingsService) AgentOption(agentID, key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	agent, ok := s.settings.Agents[agentID]
	if !ok {
		return nil, false
	}
	v, ok := agent.Options[key]
	return v, ok
}

// SetAgentOption stores an option value for an agent
func (s *SettingsService) SetAgentOption(agentID, key string, value any) error {
	logging.Logger.Info("Setting agent option", "agent", agentID, "key", key, "value", value)

	return s.update(func(st *config.Settings) {
		if st.Agents == nil {
			st.Agents = make(map[string]config.AgentSettings)
		}
		agent := st.Agents[agentID]
		if agent.Options == nil {
			agent.Options = make(map[string]any)
		}
		agent.Options[key] = value
		st.Agents[agentID] = agent
	})
}

// SetAgentPath stores the executable path of an agent
func (s *SettingsService) SetAgentPath(agentID, path string) error {
	expanded := config.ExpandPath(path)
	logging.Logger.Info("Setting agent path", "agent", agentID, "path", expanded)

	return s.update(func(st *config.Settings) {
		if st.Agents == nil {
			st.Agents = make(map[string]config.AgentSettings)
		}
		agent := st.Agents[agentID]
		agent.Path = expanded
		st.Agents[agentID] = agent
	})
}

// SetDefaultShell stores the shell used for terminals and commands
func (s *SettingsService) SetDefaultShell(shell string) error {
	logging.Logger.Info("Setting default shell", "shell", shell)
	return s.update(func(st *config.Settings) {
		st.DefaultShell = shell
	})
}

func (s *SettingsService) update(fn func(*config.Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(s.settings)
	if err := s.save(s.settings); err != nil {
		logging.Logger.Error("Failed to save settings", "error", err)
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

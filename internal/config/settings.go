package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// Defaults used when settings.json leaves a value unset
const (
	DefaultKillGraceSeconds = 3
	DefaultMaxLogFiles      = 1000
	DefaultServerHost       = "localhost"
	DefaultServerPort       = "23235"
)

// AgentSettings holds per-agent user configuration
type AgentSettings struct {
	Options map[string]any `json:"options,omitempty"`
	Path    string         `json:"path,omitempty"`
}

// Settings represents the structure of $DUET_HOME/settings.json
type Settings struct {
	Agents           map[string]AgentSettings `json:"agents,omitempty"`
	Debug            *bool                    `json:"debug,omitempty"`
	DefaultShell     string                   `json:"default_shell,omitempty"`
	KillGraceSeconds *int                     `json:"kill_grace_seconds,omitempty"`
	MaxLogFiles      *int                     `json:"max_log_files,omitempty"`
	ServerHost       string                   `json:"server_host,omitempty"`
	ServerPort       string                   `json:"server_port,omitempty"`
}

// AgentPaths returns the configured executable path per agent id
func (s *Settings) AgentPaths() map[string]string {
	paths := make(map[string]string)
	for id, agent := range s.Agents {
		if agent.Path != "" {
			paths[id] = ExpandPath(agent.Path)
		}
	}
	return paths
}

// LoadSettings loads settings from $DUET_HOME/settings.json.
// Returns empty Settings if the file doesn't exist (not an error).
func LoadSettings() (*Settings, error) {
	return LoadSettingsFrom(GetSettingsPath())
}

// LoadSettingsFrom loads settings from an explicit path
func LoadSettingsFrom(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Settings{}, nil
		}
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("invalid settings.json: %w", err)
	}

	if settings.DefaultShell != "" {
		settings.DefaultShell = ExpandPath(settings.DefaultShell)
	}

	return &settings, nil
}

// SaveSettings saves settings to $DUET_HOME/settings.json
func SaveSettings(settings *Settings) error {
	return SaveSettingsTo(GetSettingsPath(), settings)
}

// SaveSettingsTo writes settings to path while holding an exclusive file lock
func SaveSettingsTo(path string, settings *Settings) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock settings file: %w", err)
	}
	defer lock.Unlock()

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace settings file: %w", err)
	}

	return nil
}

package config

import (
	"os"
	"path/filepath"
)

// GetDuetHome returns DUET_HOME or the ~/.duet default
func GetDuetHome() string {
	duetHome := os.Getenv("DUET_HOME")
	if duetHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return ".duet"
		}
		return filepath.Join(homeDir, ".duet")
	}
	return ExpandPath(duetHome)
}

// GetDBPath returns $DUET_HOME/state.db
func GetDBPath() string {
	return filepath.Join(GetDuetHome(), "state.db")
}

// GetSettingsPath returns $DUET_HOME/settings.json
func GetSettingsPath() string {
	return filepath.Join(GetDuetHome(), "settings.json")
}

// GetAgentsPath returns $DUET_HOME/agents.toml
func GetAgentsPath() string {
	return filepath.Join(GetDuetHome(), "agents.toml")
}

// GetSSHDir returns $DUET_HOME/ssh, where the relay host key lives
func GetSSHDir() string {
	return filepath.Join(GetDuetHome(), "ssh")
}

// GetServeLockPath returns the lock file guarding a single relay server
func GetServeLockPath() string {
	return filepath.Join(GetDuetHome(), "serve.lock")
}

// ExpandPath expands ~ to the home directory
func ExpandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			if len(path) == 1 {
				return homeDir
			}
			return filepath.Join(homeDir, path[1:])
		}
	}
	return path
}

package ports

// SettingsSource provides persisted user settings as plain lookups
type SettingsSource interface {
	// DefaultShell returns the configured shell, or empty when unset
	DefaultShell() string
	// AgentOption returns the stored value of an agent option
	AgentOption(agentID, key string) (any, bool)
}

package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/renato0307/duet/internal/domain"
)

// agentsFile is the layout of agents.toml:
//
//	[[agent]]
//	id = "aider"
//	binary = "aider"
//	requires_pty = true
type agentsFile struct {
	Agents []domain.AgentDescriptor `toml:"agent"`
}

// LoadAgentDescriptors reads extra or overriding agent descriptors from
// $DUET_HOME/agents.toml. A missing file yields no descriptors.
func LoadAgentDescriptors() ([]domain.AgentDescriptor, error) {
	return LoadAgentDescriptorsFrom(GetAgentsPath())
}

// LoadAgentDescriptorsFrom reads agent descriptors from path
func LoadAgentDescriptorsFrom(path string) ([]domain.AgentDescriptor, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	var file agentsFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("invalid agents.toml: %w", err)
	}

	for i, desc := range file.Agents {
		if desc.ID == "" {
			return nil, fmt.Errorf("invalid agents.toml: agent #%d has no id", i+1)
		}
		if desc.Binary == "" && desc.Path == "" {
			return nil, fmt.Errorf("invalid agents.toml: agent %q has neither binary nor path", desc.ID)
		}
		if desc.Output == "" {
			file.Agents[i].Output = domain.OutputRaw
		}
		if desc.Path != "" {
			file.Agents[i].Path = ExpandPath(desc.Path)
		}
	}

	return file.Agents, nil
}

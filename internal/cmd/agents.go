package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/renato0307/duet/internal/theme"
)

// AgentsCmd lists agent descriptors
type AgentsCmd struct {
	Format string `help:"Output format: table or json" enum:"table,json" default:"table"`
}

// Run executes the agents command
func (a *AgentsCmd) Run(cli *CLI) error {
	descs := cli.Container.AgentRegistry.List()

	if a.Format == "json" {
		data, err := json.MarshalIndent(descs, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Print(theme.RenderAgentTable(descs))
	return nil
}

package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strconv"
	"text/tabwriter"

	"github.com/renato0307/duet/internal/config"
	"github.com/renato0307/duet/internal/domain"
)

// SettingsCmd manages settings
type SettingsCmd struct {
	Meta      SettingsMetaCmd      `cmd:"meta" help:"Show settings file location and available options" default:"1"`
	SetOption SettingsSetOptionCmd `cmd:"set-option" help:"Set an agent option default"`
	SetPath   SettingsSetPathCmd   `cmd:"set-path" help:"Set the executable path of an agent"`
	SetShell  SettingsSetShellCmd  `cmd:"set-shell" help:"Set the default shell"`
}

// SettingsMetaCmd displays settings metadata
type SettingsMetaCmd struct {
	Format string `help:"Output format: table or json" enum:"table,json" default:"table"`
}

// Run executes the meta command
func (s *SettingsMetaCmd) Run(cli *CLI) error {
	settingsFile := config.GetSettingsPath()
	example := config.GetSettingsExample()

	if s.Format == "json" {
		return printJSON(map[string]any{
			"settings_file": settingsFile,
			"agents_file":   config.GetAgentsPath(),
			"format":        example,
		})
	}

	fmt.Printf("Settings file: %s\n", settingsFile)
	fmt.Printf("Agents file: %s\n\n", config.GetAgentsPath())
	fmt.Println("Example settings.json:")
	fmt.Println()

	keys := make([]string, 0, len(example))
	for key := range example {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, key := range keys {
		var valueStr string
		switch v := example[key].(type) {
		case string:
			valueStr = v
		case bool, int:
			valueStr = fmt.Sprintf("%v", v)
		default:
			data, _ := json.Marshal(v)
			valueStr = string(data)
		}
		fmt.Fprintf(w, "%s\t%s\n", key, valueStr)
	}
	w.Flush()

	fmt.Println()
	fmt.Println("Create or edit this file to configure duet.")
	fmt.Println("All settings are optional and have sensible defaults.")

	return nil
}

// SettingsSetOptionCmd stores an agent option default
type SettingsSetOptionCmd struct {
	Agent string `arg:"" help:"Agent ID"`
	Key   string `arg:"" help:"Option key"`
	Value string `arg:"" help:"Option value"`
}

// Run executes the set-option command
func (s *SettingsSetOptionCmd) Run(cli *CLI) error {
	desc, err := cli.Container.AgentRegistry.Get(s.Agent)
	if err != nil {
		return err
	}
	opt := findOption(desc, s.Key)
	if opt == nil {
		return fmt.Errorf("agent %s has no option %q", s.Agent, s.Key)
	}

	value, err := parseOptionValue(opt, s.Value)
	if err != nil {
		return err
	}
	if err := cli.Container.SettingsService.SetAgentOption(s.Agent, s.Key, value); err != nil {
		return err
	}

	fmt.Printf("%s.%s = %v\n", s.Agent, s.Key, value)
	return nil
}

// SettingsSetPathCmd stores the executable path of an agent
type SettingsSetPathCmd struct {
	Agent string `arg:"" help:"Agent ID"`
	Path  string `arg:"" help:"Executable path"`
}

// Run executes the set-path command
func (s *SettingsSetPathCmd) Run(cli *CLI) error {
	if _, err := cli.Container.AgentRegistry.Get(s.Agent); err != nil {
		return err
	}
	if err := cli.Container.SettingsService.SetAgentPath(s.Agent, s.Path); err != nil {
		return err
	}
	fmt.Printf("%s path = %s\n", s.Agent, config.ExpandPath(s.Path))
	return nil
}

// SettingsSetShellCmd stores the default shell
type SettingsSetShellCmd struct {
	Shell string `arg:"" help:"Shell path"`
}

// Run executes the set-shell command
func (s *SettingsSetShellCmd) Run(cli *CLI) error {
	if err := cli.Container.SettingsService.SetDefaultShell(s.Shell); err != nil {
		return err
	}
	fmt.Printf("default_shell = %s\n", s.Shell)
	return nil
}

func findOption(desc *domain.AgentDescriptor, key string) *domain.AgentOption {
	for i := range desc.Options {
		if desc.Options[i].Key == key {
			return &desc.Options[i]
		}
	}
	return nil
}

// parseOptionValue converts a command-line value to the option's JSON type
func parseOptionValue(opt *domain.AgentOption, raw string) (any, error) {
	switch opt.Type {
	case domain.OptionBool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("option %s expects true or false, got %q", opt.Key, raw)
		}
		return v, nil
	case domain.OptionNumber:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("option %s expects a number, got %q", opt.Key, raw)
		}
		return v, nil
	case domain.OptionSelect:
		if !slices.Contains(opt.Choices, raw) {
			return nil, fmt.Errorf("option %s must be one of %v, got %q", opt.Key, opt.Choices, raw)
		}
	}
	return raw, nil
}

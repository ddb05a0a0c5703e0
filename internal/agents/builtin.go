package agents

import "github.com/renato0307/duet/internal/domain"

// Builtin returns the descriptors for the agents duet knows out of the box.
// A fresh slice is returned on every call.
func Builtin() []domain.AgentDescriptor {
	return []domain.AgentDescriptor{
		{
			ID:           "claude-code",
			Name:         "Claude Code",
			Binary:       "claude",
			RequiresPTY:  true,
			Output:       domain.OutputStreamJSON,
			Dialect:      domain.DialectClaude,
			BatchPrefix:  []string{"--print", "--verbose", "--output-format", "stream-json"},
			ResumeArgs:   []string{"--resume", domain.ValuePlaceholder},
			ReadOnlyArgs: []string{"--permission-mode", "plan"},
			ModelArgs:    []string{"--model", domain.ValuePlaceholder},
			PromptArgs:   []string{domain.ValuePlaceholder},
			Options: []domain.AgentOption{
				{
					Key:     "skip_permissions",
					Label:   "Skip permission prompts",
					Type:    domain.OptionBool,
					Default: false,
					Args:    []string{"--dangerously-skip-permissions"},
				},
			},
		},
		{
			ID:           "codex",
			Name:         "Codex",
			Binary:       "codex",
			RequiresPTY:  true,
			Output:       domain.OutputStreamJSON,
			Dialect:      domain.DialectCodex,
			BatchPrefix:  []string{"exec", "--json"},
			ResumeArgs:   []string{"resume", domain.ValuePlaceholder},
			ReadOnlyArgs: []string{"--sandbox", "read-only"},
			ModelArgs:    []string{"-m", domain.ValuePlaceholder},
			PromptArgs:   []string{domain.ValuePlaceholder},
			Options: []domain.AgentOption{
				{
					Key:     "full_auto",
					Label:   "Full auto",
					Type:    domain.OptionBool,
					Default: false,
					Args:    []string{"--full-auto"},
				},
				{
					Key:     "reasoning_effort",
					Label:   "Reasoning effort",
					Type:    domain.OptionSelect,
					Choices: []string{"minimal", "low", "medium", "high"},
					Args:    []string{"-c", "model_reasoning_effort=" + domain.ValuePlaceholder},
				},
			},
		},
		{
			ID:           "opencode",
			Name:         "OpenCode",
			Binary:       "opencode",
			RequiresPTY:  true,
			Output:       domain.OutputStreamJSON,
			Dialect:      domain.DialectOpenCode,
			BatchPrefix:  []string{"run", "--format", "json"},
			ResumeArgs:   []string{"--session", domain.ValuePlaceholder},
			ReadOnlyArgs: []string{"--agent", "plan"},
			ModelArgs:    []string{"--model", domain.ValuePlaceholder},
			PromptArgs:   []string{domain.ValuePlaceholder},
		},
		{
			ID:          "gemini",
			Name:        "Gemini CLI",
			Binary:      "gemini",
			RequiresPTY: true,
			Output:      domain.OutputStreamJSON,
			Dialect:     domain.DialectGemini,
			BatchPrefix: []string{"--output-format", "stream-json"},
			ResumeArgs:  []string{"--resume", domain.ValuePlaceholder},
			ModelArgs:   []string{"-m", domain.ValuePlaceholder},
			PromptArgs:  []string{"--prompt", domain.ValuePlaceholder},
			Options: []domain.AgentOption{
				{
					Key:     "yolo",
					Label:   "Auto-approve all actions",
					Type:    domain.OptionBool,
					Default: false,
					Args:    []string{"--yolo"},
				},
			},
		},
		{
			ID:        "gemini-acp",
			Name:      "Gemini CLI (ACP)",
			Binary:    "gemini",
			BaseArgs:  []string{"--experimental-acp"},
			Output:    domain.OutputACP,
			ModelArgs: []string{"-m", domain.ValuePlaceholder},
		},
		{
			ID:          domain.TerminalAgentID,
			Name:        "Terminal",
			RequiresPTY: true,
			Output:      domain.OutputRaw,
		},
	}
}

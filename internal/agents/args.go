package agents

import (
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/renato0307/duet/internal/domain"
	"github.com/renato0307/duet/internal/ports"
)

const fallbackShell = "/bin/sh"

// Interactive decides whether a request runs on a pseudo-terminal.
// Terminal roles always do, prompted (batch) runs never do.
func Interactive(desc *domain.AgentDescriptor, req domain.SpawnRequest) bool {
	if req.Role == domain.RoleTerminal || desc.ID == domain.TerminalAgentID {
		return true
	}
	if req.Prompt != "" {
		return false
	}
	return desc.RequiresPTY
}

// ResolveShell picks the shell for terminal processes and one-shot commands:
// explicit request, then the configured default, then $SHELL, then /bin/sh.
func ResolveShell(requested string, settings ports.SettingsSource) string {
	if requested != "" {
		return requested
	}
	if settings != nil {
		if shell := settings.DefaultShell(); shell != "" {
			return shell
		}
	}
	if shell := os.Getenv("SHELL"); shell != "" {
		return shell
	}
	return fallbackShell
}

// BuildArgs resolves the executable and argv for a spawn request.
//
// Fragments are appended in a fixed order:
//  1. batch prefix (only with a prompt)
//  2. descriptor and request base args
//  3. JSON output flags (unless one of their flags is already present)
//  4. resume fragment
//  5. read-only fragment
//  6. model fragment
//  7. user-configurable options
//  8. the prompt itself
//
// Capabilities the descriptor does not declare are skipped.
func BuildArgs(desc *domain.AgentDescriptor, req domain.SpawnRequest, settings ports.SettingsSource) (string, []string) {
	if req.Role == domain.RoleTerminal || desc.ID == domain.TerminalAgentID {
		shell := ResolveShell(req.Shell, settings)
		return shell, concat(desc.BaseArgs, req.BaseArgs)
	}

	var args []string

	if req.Prompt != "" && len(desc.BatchPrefix) > 0 {
		args = append(args, desc.BatchPrefix...)
	}

	args = append(args, desc.BaseArgs...)
	args = append(args, req.BaseArgs...)

	if len(desc.JSONOutputArgs) > 0 && !containsFlag(args, desc.JSONOutputArgs) {
		args = append(args, desc.JSONOutputArgs...)
	}

	if req.ResumeToken != "" && desc.SupportsResume() {
		args = append(args, expand(desc.ResumeArgs, req.ResumeToken)...)
	}

	if req.ReadOnly && desc.SupportsReadOnly() {
		args = append(args, desc.ReadOnlyArgs...)
	}

	if req.ModelID != "" && desc.SupportsModel() {
		args = append(args, expand(desc.ModelArgs, req.ModelID)...)
	}

	for _, opt := range desc.Options {
		value := resolveOption(desc.ID, opt, req.Options, settings)
		args = append(args, optionArgs(opt, value)...)
	}

	if req.Prompt != "" && len(desc.PromptArgs) > 0 {
		args = append(args, expand(desc.PromptArgs, req.Prompt)...)
	}

	return desc.Executable(), args
}

// CommandArgs returns the argv of a one-shot shell invocation
func CommandArgs(command string) []string {
	return []string{"-c", command}
}

func resolveOption(agentID string, opt domain.AgentOption, overrides map[string]any, settings ports.SettingsSource) any {
	if v, ok := overrides[opt.Key]; ok {
		return v
	}
	if settings != nil {
		if v, ok := settings.AgentOption(agentID, opt.Key); ok {
			return v
		}
	}
	return opt.Default
}

func optionArgs(opt domain.AgentOption, value any) []string {
	if opt.Type == domain.OptionBool {
		if toBool(value) {
			return slices.Clone(opt.Args)
		}
		return slices.Clone(opt.ArgsWhenFalse)
	}

	s := toString(value)
	if s == "" || len(opt.Args) == 0 {
		return nil
	}
	if opt.Type == domain.OptionSelect && len(opt.Choices) > 0 && !slices.Contains(opt.Choices, s) {
		return nil
	}
	return expand(opt.Args, s)
}

func expand(template []string, value string) []string {
	out := make([]string, len(template))
	for i, tok := range template {
		out[i] = strings.ReplaceAll(tok, domain.ValuePlaceholder, value)
	}
	return out
}

// containsFlag reports whether any flag token of template (one starting
// with "-") is already in args. Value tokens are not compared, so
// "--format text" blocks "--format json".
func containsFlag(args, template []string) bool {
	for _, tok := range template {
		if strings.HasPrefix(tok, "-") && slices.Contains(args, tok) {
			return true
		}
	}
	return false
}

func concat(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

func toBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, err := strconv.ParseBool(b)
		return err == nil && parsed
	}
	return false
}

func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case bool:
		return strconv.FormatBool(s)
	}
	return ""
}

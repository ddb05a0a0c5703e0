package domain

// OutputFormat is the wire format an agent writes on stdout
type OutputFormat string

const (
	OutputRaw        OutputFormat = "raw"
	OutputStreamJSON OutputFormat = "stream-json"
	OutputACP        OutputFormat = "acp"
)

// Dialect selects the record schema of a stream-json agent
type Dialect string

const (
	DialectNone     Dialect = ""
	DialectClaude   Dialect = "claude"
	DialectCodex    Dialect = "codex"
	DialectGemini   Dialect = "gemini"
	DialectOpenCode Dialect = "opencode"
)

// OptionType is the value type of a user-configurable agent option
type OptionType string

const (
	OptionBool   OptionType = "bool"
	OptionNumber OptionType = "number"
	OptionSelect OptionType = "select"
	OptionString OptionType = "string"
)

// ValuePlaceholder is replaced by the resolved value inside argument templates
const ValuePlaceholder = "{value}"

// TerminalAgentID is the pseudo agent used for plain shells
const TerminalAgentID = "terminal"

// AgentOption is a user-configurable agent setting that turns into arguments
type AgentOption struct {
	Args          []string   `toml:"args" json:"args,omitempty"`
	ArgsWhenFalse []string   `toml:"args_when_false" json:"args_when_false,omitempty"`
	Choices       []string   `toml:"choices" json:"choices,omitempty"`
	Default       any        `toml:"default" json:"default,omitempty"`
	Key           string     `toml:"key" json:"key"`
	Label         string     `toml:"label" json:"label,omitempty"`
	Type          OptionType `toml:"type" json:"type"`
}

// AgentDescriptor is the static table of spawn conventions for one agent type.
// Argument templates are token lists where ValuePlaceholder is substituted;
// an empty template means the capability is not supported.
type AgentDescriptor struct {
	BaseArgs       []string      `toml:"base_args" json:"base_args,omitempty"`
	BatchPrefix    []string      `toml:"batch_prefix" json:"batch_prefix,omitempty"`
	Binary         string        `toml:"binary" json:"binary"`
	Dialect        Dialect       `toml:"dialect" json:"dialect,omitempty"`
	ID             string        `toml:"id" json:"id"`
	JSONOutputArgs []string      `toml:"json_output_args" json:"json_output_args,omitempty"`
	ModelArgs      []string      `toml:"model_args" json:"model_args,omitempty"`
	Name           string        `toml:"name" json:"name"`
	Options        []AgentOption `toml:"options" json:"options,omitempty"`
	Output         OutputFormat  `toml:"output" json:"output"`
	Path           string        `toml:"path" json:"path,omitempty"`
	PromptArgs     []string      `toml:"prompt_args" json:"prompt_args,omitempty"`
	ReadOnlyArgs   []string      `toml:"read_only_args" json:"read_only_args,omitempty"`
	RequiresPTY    bool          `toml:"requires_pty" json:"requires_pty"`
	ResumeArgs     []string      `toml:"resume_args" json:"resume_args,omitempty"`
}

// Executable returns the configured path, falling back to the binary name
func (d *AgentDescriptor) Executable() string {
	if d.Path != "" {
		return d.Path
	}
	return d.Binary
}

// SupportsResume reports whether the agent can resume a previous conversation
func (d *AgentDescriptor) SupportsResume() bool { return len(d.ResumeArgs) > 0 }

// SupportsReadOnly reports whether the agent has a read-only/plan mode
func (d *AgentDescriptor) SupportsReadOnly() bool { return len(d.ReadOnlyArgs) > 0 }

// SupportsModel reports whether the agent accepts a model selector
func (d *AgentDescriptor) SupportsModel() bool { return len(d.ModelArgs) > 0 }

// SpawnRequest is a logical request to start one process of a session
type SpawnRequest struct {
	AgentID     string
	BaseArgs    []string
	Cols        uint16
	Env         []string
	ModelID     string
	Options     map[string]any
	Prompt      string
	ReadOnly    bool
	Replace     bool
	ResumeToken string
	Role        Role
	Rows        uint16
	SessionID   string
	Shell       string
	WorkingDir  string
}

// Key returns the composite key the request will occupy
func (r SpawnRequest) Key() ProcessKey {
	return ProcessKey{SessionID: r.SessionID, Role: r.Role}
}

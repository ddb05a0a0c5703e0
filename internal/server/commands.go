package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"

	"github.com/renato0307/duet/internal/domain"
)

// relayCLI is the command grammar accepted over SSH
type relayCLI struct {
	Exec      execCmd      `cmd:"" help:"Run a one-shot shell command and capture its output"`
	Interrupt interruptCmd `cmd:"" help:"Interrupt the current operation of a process"`
	Kill      killCmd      `cmd:"" help:"Terminate the processes of a session"`
	List      listCmd      `cmd:"" help:"List live processes as JSON lines"`
	Prompt    promptCmd    `cmd:"" help:"Send a user turn to the ai process"`
	Resize    resizeCmd    `cmd:"" help:"Resize the terminal of a process"`
	Spawn     spawnCmd     `cmd:"" help:"Start a process for a session"`
	Watch     watchCmd     `cmd:"" help:"Stream events as JSON lines"`
	Write     writeCmd     `cmd:"" help:"Write input to a process"`
}

// relayContext is bound to every command's Run method
type relayContext struct {
	controller Controller
	ctx        context.Context
	exitCode   int
	stderr     io.Writer
	stdin      io.Reader
	stdout     io.Writer
}

// Dispatch parses args as one relay command, runs it against controller
// and returns the exit code for the SSH session
func Dispatch(ctx context.Context, controller Controller, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var grammar relayCLI
	exited, exitCode := false, 0

	parser, err := kong.New(&grammar,
		kong.Name("duet"),
		kong.Description("Remote control for duet sessions"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) {
			exited = true
			exitCode = code
		}),
	)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if len(args) == 0 {
		args = []string{"--help"}
	}
	kctx, err := parser.Parse(args)
	if exited {
		return exitCode
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	rc := &relayContext{
		controller: controller,
		ctx:        ctx,
		stderr:     stderr,
		stdin:      stdin,
		stdout:     stdout,
	}
	if err := kctx.Run(rc); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if rc.exitCode == 0 {
			return 1
		}
	}
	return rc.exitCode
}

func (rc *relayContext) encode(v any) error {
	return json.NewEncoder(rc.stdout).Encode(v)
}

type listCmd struct{}

func (c *listCmd) Run(rc *relayContext) error {
	for _, info := range rc.controller.GetAll() {
		if err := rc.encode(info); err != nil {
			return err
		}
	}
	return nil
}

type spawnCmd struct {
	Session  string            `arg:"" optional:"" help:"Session ID (generated when empty)"`
	Agent    string            `help:"Agent ID" default:"claude-code"`
	Arg      []string          `help:"Extra argument placed before the generated flags"`
	Cols     uint16            `help:"Terminal columns" default:"80"`
	Cwd      string            `help:"Working directory"`
	Model    string            `help:"Model selector"`
	Option   map[string]string `help:"Agent option as key=value"`
	Prompt   string            `help:"Run in batch mode with this prompt"`
	ReadOnly bool              `help:"Start in read-only (plan) mode"`
	Replace  bool              `help:"Replace a live process of the same role"`
	Resume   string            `help:"Agent session token to resume"`
	Role     string            `help:"Process role" enum:"ai,terminal" default:"ai"`
	Rows     uint16            `help:"Terminal rows" default:"24"`
	Shell    string            `help:"Shell for the terminal role"`
}

func (c *spawnCmd) Run(rc *relayContext) error {
	sessionID := domain.SanitizeSessionID(c.Session)
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	var options map[string]any
	if len(c.Option) > 0 {
		options = make(map[string]any, len(c.Option))
		for k, v := range c.Option {
			options[k] = v
		}
	}

	pid, err := rc.controller.Spawn(rc.ctx, domain.SpawnRequest{
		AgentID:     c.Agent,
		BaseArgs:    c.Arg,
		Cols:        c.Cols,
		ModelID:     c.Model,
		Options:     options,
		Prompt:      c.Prompt,
		ReadOnly:    c.ReadOnly,
		Replace:     c.Replace,
		ResumeToken: c.Resume,
		Role:        domain.Role(c.Role),
		Rows:        c.Rows,
		SessionID:   sessionID,
		Shell:       c.Shell,
		WorkingDir:  c.Cwd,
	})
	if err != nil {
		return err
	}

	return rc.encode(map[string]any{
		"pid":        pid,
		"role":       c.Role,
		"session_id": sessionID,
	})
}

type writeCmd struct {
	Session string `arg:"" help:"Session ID"`
	Data    string `arg:"" optional:"" help:"Text to write"`
	Newline bool   `help:"Append a newline" short:"n"`
	Role    string `help:"Process role" enum:"ai,terminal" default:"terminal"`
	Stdin   bool   `help:"Copy the SSH session input instead of a text argument"`
}

func (c *writeCmd) Run(rc *relayContext) error {
	role := domain.Role(c.Role)
	if !c.Stdin {
		data := c.Data
		if c.Newline {
			data += "\n"
		}
		return rc.controller.Write(c.Session, role, []byte(data))
	}

	buf := make([]byte, 32*1024)
	for {
		n, err := rc.stdin.Read(buf)
		if n > 0 {
			if werr := rc.controller.Write(c.Session, role, buf[:n]); werr != nil {
				return werr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

type promptCmd struct {
	Session string   `arg:"" help:"Session ID"`
	Text    []string `arg:"" help:"Prompt text"`
}

func (c *promptCmd) Run(rc *relayContext) error {
	return rc.controller.Prompt(c.Session, strings.Join(c.Text, " "))
}

type interruptCmd struct {
	Session string `arg:"" help:"Session ID"`
	Role    string `help:"Process role" enum:"ai,terminal" default:"ai"`
}

func (c *interruptCmd) Run(rc *relayContext) error {
	return rc.controller.Interrupt(c.Session, domain.Role(c.Role))
}

type resizeCmd struct {
	Session string `arg:"" help:"Session ID"`
	Cols    uint16 `arg:"" help:"Columns"`
	Rows    uint16 `arg:"" help:"Rows"`
	Role    string `help:"Process role" enum:"ai,terminal" default:"terminal"`
}

func (c *resizeCmd) Run(rc *relayContext) error {
	return rc.controller.Resize(c.Session, domain.Role(c.Role), c.Cols, c.Rows)
}

type killCmd struct {
	Session string `arg:"" help:"Session ID"`
	Role    string `help:"Kill only this role" enum:"ai,terminal,both" default:"both"`
}

func (c *killCmd) Run(rc *relayContext) error {
	var killed bool
	if c.Role == "both" {
		killed = rc.controller.Kill(c.Session)
	} else {
		killed = rc.controller.KillRole(c.Session, domain.Role(c.Role))
	}
	if !killed {
		return fmt.Errorf("no live process for session %s", c.Session)
	}
	fmt.Fprintf(rc.stdout, "killed %s\n", c.Session)
	return nil
}

type execCmd struct {
	Session string   `arg:"" help:"Session ID"`
	Command []string `arg:"" passthrough:"" help:"Command line"`
	Cwd     string   `help:"Working directory"`
	Shell   string   `help:"Shell used to run the command"`
}

func (c *execCmd) Run(rc *relayContext) error {
	result, err := rc.controller.RunCommand(rc.ctx, c.Session, strings.Join(c.Command, " "), c.Cwd, c.Shell)
	if err != nil {
		return err
	}
	_, _ = io.WriteString(rc.stdout, result.Stdout)
	_, _ = io.WriteString(rc.stderr, result.Stderr)
	rc.exitCode = result.ExitCode
	return nil
}

type watchCmd struct {
	Session   string `arg:"" optional:"" help:"Only events of this session"`
	NoOutput  bool   `help:"Skip raw output events"`
	Role      string `help:"Only events of this role" enum:"ai,terminal,both" default:"both"`
	UntilExit bool   `help:"Stop after the first matching exit event"`
}

func (c *watchCmd) matches(ev domain.Event) bool {
	if c.Session != "" && ev.SessionID != c.Session {
		return false
	}
	if c.Role != "both" && string(ev.Role) != c.Role {
		return false
	}
	return !(c.NoOutput && ev.Kind == domain.EventOutput)
}

func (c *watchCmd) Run(rc *relayContext) error {
	sub := rc.controller.Subscribe()
	defer sub.Close()

	for {
		select {
		case ev, ok := <-sub.C:
			if !ok {
				return nil
			}
			if !c.matches(ev) {
				continue
			}
			if err := rc.encode(ev); err != nil {
				return err
			}
			if c.UntilExit && ev.Kind == domain.EventExit {
				return nil
			}
		case <-rc.ctx.Done():
			return nil
		}
	}
}

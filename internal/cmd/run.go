package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"golang.org/x/term"

	"github.com/renato0307/duet/internal/agents"
	"github.com/renato0307/duet/internal/domain"
	"github.com/renato0307/duet/internal/logging"
	"github.com/renato0307/duet/internal/ports"
	"github.com/renato0307/duet/internal/services"
	"github.com/renato0307/duet/internal/theme"
)

// RunCmd starts one process of a session and attaches the local terminal.
// With a prompt the agent runs in batch mode and its events are rendered.
type RunCmd struct {
	Agent      string            `arg:"" optional:"" help:"Agent ID (see 'duet agents'), or 'terminal' for a shell" default:"claude-code"`
	Arg        []string          `help:"Extra argument placed before the generated flags"`
	Cwd        string            `help:"Working directory" default:"." type:"path"`
	JSON       bool              `help:"Print normalized events as JSON lines (batch mode)"`
	Model      string            `help:"Model selector" short:"m"`
	Notify     bool              `help:"Play a sound when the agent finishes"`
	Option     map[string]string `help:"Agent option as key=value (overrides settings.json)"`
	Prompt     string            `help:"Run in batch mode with this prompt" short:"p"`
	Raw        bool              `help:"Print raw agent output instead of rendered events (batch mode)"`
	ReadOnly   bool              `help:"Start the agent in read-only (plan) mode"`
	Resume     string            `help:"Agent session token to resume"`
	ResumeLast bool              `help:"Resume the last recorded session of this agent in the working directory"`
	Session    string            `help:"Session ID (generated when empty)"`
	Shell      string            `help:"Shell used for the terminal role"`
}

// Run executes the run command
func (r *RunCmd) Run(cli *CLI) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	req, err := r.buildRequest(ctx, cli)
	if err != nil {
		return err
	}
	desc, err := cli.Container.AgentRegistry.Get(req.AgentID)
	if err != nil {
		return err
	}
	if r.Notify {
		cli.Container.EnableNotifications()
	}

	logging.Logger.Info("Running session", "session_id", req.SessionID, "role", req.Role, "agent", req.AgentID)

	sub := cli.Container.ProcessManager.Subscribe()
	defer sub.Close()

	if agents.Interactive(desc, req) {
		return r.attach(ctx, cli.Container.ProcessManager, sub, req)
	}
	return r.batch(ctx, cli.Container.ProcessManager, sub, desc, req)
}

func (r *RunCmd) buildRequest(ctx context.Context, cli *CLI) (domain.SpawnRequest, error) {
	cwd, err := filepath.Abs(r.Cwd)
	if err != nil {
		return domain.SpawnRequest{}, fmt.Errorf("failed to resolve working directory: %w", err)
	}

	req := domain.SpawnRequest{
		AgentID:     r.Agent,
		BaseArgs:    r.Arg,
		ModelID:     r.Model,
		Options:     optionValues(r.Option),
		Prompt:      r.Prompt,
		ReadOnly:    r.ReadOnly,
		ResumeToken: r.Resume,
		Role:        domain.RoleAI,
		SessionID:   domain.SanitizeSessionID(r.Session),
		Shell:       r.Shell,
		WorkingDir:  cwd,
	}
	if r.Agent == domain.TerminalAgentID {
		req.Role = domain.RoleTerminal
	}

	if r.ResumeLast && req.ResumeToken == "" {
		records, err := cli.Container.SessionHistory.ListSessions(ctx)
		if err != nil {
			return req, fmt.Errorf("failed to list sessions: %w", err)
		}
		rec := findResumable(records, r.Agent, cwd)
		if rec == nil {
			return req, fmt.Errorf("no resumable %s session in %s", r.Agent, cwd)
		}
		logging.Logger.Info("Resuming last session", "session_id", rec.ID, "agent_session_id", rec.AgentSessionID)
		req.ResumeToken = rec.AgentSessionID
		if req.SessionID == "" {
			req.SessionID = rec.ID
		}
	}

	if req.SessionID == "" {
		req.SessionID = uuid.New().String()
	}
	return req, nil
}

// findResumable returns the most recent record of agentID in dir that has
// an agent session token. Records are expected newest first.
func findResumable(records []ports.SessionRecord, agentID, dir string) *ports.SessionRecord {
	for i := range records {
		rec := &records[i]
		if rec.AgentID == agentID && rec.WorkingDir == dir && rec.AgentSessionID != "" {
			return rec
		}
	}
	return nil
}

// attach runs an interactive session: the local terminal is put in raw
// mode, keystrokes are forwarded and window changes become resizes
func (r *RunCmd) attach(ctx context.Context, pm *services.ProcessManager, sub *services.Subscription, req domain.SpawnRequest) error {
	fd := int(os.Stdin.Fd())
	isTerm := term.IsTerminal(fd)
	if isTerm {
		if cols, rows, err := term.GetSize(fd); err == nil {
			req.Cols, req.Rows = uint16(cols), uint16(rows)
		}
	}

	if _, err := pm.Spawn(ctx, req); err != nil {
		return err
	}

	if isTerm {
		state, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("failed to set raw mode: %w", err)
		}
		defer term.Restore(fd, state)

		winch := make(chan os.Signal, 1)
		signal.Notify(winch, syscall.SIGWINCH)
		defer signal.Stop(winch)
		go func() {
			for range winch {
				cols, rows, err := term.GetSize(fd)
				if err != nil {
					continue
				}
				if err := pm.Resize(req.SessionID, req.Role, uint16(cols), uint16(rows)); err != nil {
					logging.Logger.Debug("Failed to resize", "error", err)
				}
			}
		}()
	}

	go forwardInput(pm, req.SessionID, req.Role, os.Stdin)

	key := req.Key()
	for {
		select {
		case ev, ok := <-sub.C:
			if !ok {
				return nil
			}
			if ev.Key() != key {
				continue
			}
			switch ev.Kind {
			case domain.EventOutput:
				_, _ = os.Stdout.Write(ev.Data)
			case domain.EventExit:
				return exitResult(ev.Exit)
			}
		case <-ctx.Done():
			pm.KillRole(req.SessionID, req.Role)
			return pm.WaitExit(context.Background(), key)
		}
	}
}

// forwardInput copies local input to the process until either side closes
func forwardInput(pm *services.ProcessManager, sessionID string, role domain.Role, in io.Reader) {
	buf := make([]byte, 4096)
	for {
		n, err := in.Read(buf)
		if n > 0 {
			if werr := pm.Write(sessionID, role, buf[:n]); werr != nil {
				logging.Logger.Debug("Stopped forwarding input", "error", werr)
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// batch runs a prompted agent and renders its normalized events
func (r *RunCmd) batch(ctx context.Context, pm *services.ProcessManager, sub *services.Subscription, desc *domain.AgentDescriptor, req domain.SpawnRequest) error {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)

	if _, err := pm.Spawn(ctx, req); err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	key := req.Key()
	rawOutput := r.Raw || desc.Output == domain.OutputRaw

	for {
		select {
		case ev, ok := <-sub.C:
			if !ok {
				return nil
			}
			if ev.Key() != key {
				continue
			}

			switch ev.Kind {
			case domain.EventSpawned:
				continue
			case domain.EventOutput:
				switch {
				case ev.Stream == "stderr":
					_, _ = os.Stderr.Write(ev.Data)
				case rawOutput:
					_, _ = os.Stdout.Write(ev.Data)
				}
				continue
			case domain.EventExit:
				if !rawOutput && !r.JSON && ev.Exit != nil && !ev.Exit.Success() {
					fmt.Fprint(os.Stderr, theme.RenderExit(ev.Exit))
				}
				return exitResult(ev.Exit)
			case domain.EventResult:
				// ACP agents keep the session open after a turn
				if desc.Output == domain.OutputACP {
					pm.KillRole(req.SessionID, req.Role)
				}
			}

			if rawOutput {
				continue
			}
			if r.JSON {
				if err := enc.Encode(ev); err != nil {
					return err
				}
				continue
			}
			fmt.Fprint(os.Stdout, theme.RenderEvent(ev))

		case <-interrupt:
			logging.Logger.Info("Interrupt received, stopping agent", "session_id", req.SessionID)
			if err := pm.Interrupt(req.SessionID, req.Role); err != nil && !errors.Is(err, ports.ErrProcessNotFound) {
				logging.Logger.Warn("Failed to interrupt agent", "error", err)
			}
			pm.KillRole(req.SessionID, req.Role)
		case <-ctx.Done():
			pm.KillRole(req.SessionID, req.Role)
			return pm.WaitExit(context.Background(), key)
		}
	}
}

func exitResult(status *domain.ExitStatus) error {
	if status == nil || status.Success() {
		return nil
	}
	return &ExitError{Code: status.Code}
}

// optionValues converts key=value flags into request option overrides
func optionValues(raw map[string]string) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		out[k] = v
	}
	return out
}

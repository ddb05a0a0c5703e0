package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/renato0307/duet/internal/adapters/protocol"
	"github.com/renato0307/duet/internal/agents"
	"github.com/renato0307/duet/internal/domain"
	"github.com/renato0307/duet/internal/logging"
	"github.com/renato0307/duet/internal/ports"
)

const (
	// DefaultKillGrace is how long a terminated process has before SIGKILL
	DefaultKillGrace = 3 * time.Second
	// DefaultDrainTimeout bounds how long output is read after the process exits
	DefaultDrainTimeout = 2 * time.Second

	readBufferSize = 32 * 1024
)

// ProcessManager is the control surface of the session manager: it spawns
// processes, routes control operations to them and streams their output.
type ProcessManager struct {
	agents       *agents.Registry
	bus          *EventBus
	drainTimeout time.Duration
	killGrace    time.Duration
	launcher     ports.ProcessLauncher
	now          func() time.Time
	registry     *Registry
	settings     ports.SettingsSource
}

// ManagerOption configures a ProcessManager
type ManagerOption func(*ProcessManager)

// WithKillGrace sets the delay between SIGTERM and SIGKILL
func WithKillGrace(d time.Duration) ManagerOption {
	return func(m *ProcessManager) { m.killGrace = d }
}

// WithDrainTimeout sets how long output is drained after exit
func WithDrainTimeout(d time.Duration) ManagerOption {
	return func(m *ProcessManager) { m.drainTimeout = d }
}

// WithRegistry uses an existing registry instead of a fresh one
func WithRegistry(r *Registry) ManagerOption {
	return func(m *ProcessManager) { m.registry = r }
}

// WithEventBus uses an existing event bus instead of a fresh one
func WithEventBus(b *EventBus) ManagerOption {
	return func(m *ProcessManager) { m.bus = b }
}

// NewProcessManager creates a new ProcessManager
func NewProcessManager(
	launcher ports.ProcessLauncher,
	agentRegistry *agents.Registry,
	settings ports.SettingsSource,
	opts ...ManagerOption,
) *ProcessManager {
	m := &ProcessManager{
		agents:       agentRegistry,
		bus:          NewEventBus(),
		drainTimeout: DefaultDrainTimeout,
		killGrace:    DefaultKillGrace,
		launcher:     launcher,
		now:          time.Now,
		registry:     NewRegistry(),
		settings:     settings,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Subscribe attaches a new event subscriber
func (m *ProcessManager) Subscribe() *Subscription {
	return m.bus.Subscribe()
}

// GetAll returns a snapshot of every live process
func (m *ProcessManager) GetAll() []domain.ProcessInfo {
	return m.registry.Snapshot()
}

// Spawn resolves, launches and registers one process of a session.
// An occupied key fails with ErrProcessExists unless Replace is set, in which
// case the previous process is killed and its exit awaited first.
func (m *ProcessManager) Spawn(ctx context.Context, req domain.SpawnRequest) (int, error) {
	if req.SessionID == "" {
		return 0, fmt.Errorf("session id is required")
	}
	if !req.Role.Valid() {
		return 0, fmt.Errorf("invalid role %q", req.Role)
	}

	agentID := req.AgentID
	if req.Role == domain.RoleTerminal || agentID == "" {
		agentID = domain.TerminalAgentID
	}
	desc, err := m.agents.Get(agentID)
	if err != nil {
		return 0, err
	}

	path, args := agents.BuildArgs(desc, req, m.settings)
	mode := domain.LaunchPipe
	if agents.Interactive(desc, req) {
		mode = domain.LaunchPTY
	}

	h := newHandle(req.Key(), desc, domain.ProcessInfo{
		AgentID:    desc.ID,
		Args:       args,
		ModelID:    req.ModelID,
		ReadOnly:   req.ReadOnly,
		WorkingDir: req.WorkingDir,
	})
	if err := m.claim(ctx, h, req.Replace); err != nil {
		return 0, err
	}

	logger := logging.Logger.With("session_id", req.SessionID, "role", req.Role, "agent", desc.ID)
	logger.Info("Spawning process", "path", path, "args", args, "mode", mode)

	proc, err := m.launcher.Launch(ctx, ports.LaunchSpec{
		Args: args,
		Cols: req.Cols,
		Dir:  req.WorkingDir,
		Env:  req.Env,
		Mode: mode,
		Path: path,
		Rows: req.Rows,
	})
	if err != nil {
		m.registry.remove(h)
		close(h.exited)
		logger.Error("Failed to launch process", "error", err)
		return 0, err
	}

	// Interactive sessions render a TUI, only pipe output carries records
	if mode == domain.LaunchPipe {
		h.decoder = protocol.NewDecoder(desc, req.SessionID)
	}
	m.setupInput(h, proc, req)

	killed := h.attach(proc, m.now())
	m.publish(h, domain.Event{Kind: domain.EventSpawned, PID: proc.PID(), Process: ptr(h.snapshot())})

	go m.monitor(h)

	if killed {
		m.terminate(h)
	}

	logger.Info("Process spawned", "pid", proc.PID())
	return proc.PID(), nil
}

// claim reserves the key for h, replacing the current owner if asked to
func (m *ProcessManager) claim(ctx context.Context, h *handle, replace bool) error {
	for {
		err := m.registry.insert(h)
		if err == nil {
			return nil
		}
		if !replace {
			return fmt.Errorf("%w: %s", err, h.key)
		}

		logging.Logger.Info("Replacing running process", "key", h.key.String())
		m.KillRole(h.key.SessionID, h.key.Role)
		if err := m.WaitExit(ctx, h.key); err != nil {
			return err
		}
	}
}

// setupInput wires the input side before the first output is read
func (m *ProcessManager) setupInput(h *handle, proc ports.Process, req domain.SpawnRequest) {
	switch {
	case h.decoder != nil && h.desc.Output == domain.OutputACP:
		h.acp = protocol.NewACPClient(proc, protocol.ACPClientOptions{
			ReadOnly:    req.ReadOnly,
			ResumeToken: req.ResumeToken,
			WorkingDir:  req.WorkingDir,
		})
		h.decoder.Observe(func(line []byte) {
			if err := h.acp.HandleLine(line); err != nil {
				logging.Logger.Warn("ACP client error", "session_id", h.key.SessionID, "error", err)
			}
		})
		if err := h.acp.Start(); err != nil {
			logging.Logger.Warn("Failed to start ACP handshake", "session_id", h.key.SessionID, "error", err)
		}
		if req.Prompt != "" {
			if err := h.acp.Prompt(req.Prompt); err != nil {
				logging.Logger.Warn("Failed to queue ACP prompt", "session_id", h.key.SessionID, "error", err)
			}
		}
	case req.Prompt != "" && proc.Mode() == domain.LaunchPipe:
		// Batch runs get their prompt on argv; a closed stdin keeps agents
		// from waiting for more input
		if err := proc.CloseInput(); err != nil {
			logging.Logger.Warn("Failed to close stdin", "session_id", h.key.SessionID, "error", err)
		}
	}
}

// monitor runs one reader per stream, waits for exit and drain, then
// removes the handle and publishes the exit event exactly once
func (m *ProcessManager) monitor(h *handle) {
	proc, _ := h.process()

	var wg sync.WaitGroup
	var decodeMu sync.Mutex
	for _, s := range proc.Streams() {
		wg.Add(1)
		go func(s ports.OutputStream) {
			defer wg.Done()
			m.readLoop(h, s, &decodeMu)
		}(s)
	}
	readersDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(readersDone)
	}()

	<-proc.Done()
	h.markExited()

	select {
	case <-readersDone:
	case <-time.After(m.drainTimeout):
		logging.Logger.Warn("Output still open after exit, closing streams", "key", h.key.String())
	}
	_ = proc.Close()
	<-readersDone

	if h.decoder != nil {
		m.publishAgentEvents(h, h.decoder.Flush())
	}

	status := proc.ExitStatus()
	m.registry.remove(h)
	m.publish(h, domain.Event{Kind: domain.EventExit, PID: proc.PID(), Exit: &status})
	close(h.exited)

	logging.Logger.Info("Process exited", "key", h.key.String(), "pid", proc.PID(), "code", status.Code, "signal", status.Signal)
}

// readLoop forwards one stream in arrival order. Structured agents write
// records on stdout (or the pty); stderr is passed through untouched.
func (m *ProcessManager) readLoop(h *handle, s ports.OutputStream, decodeMu *sync.Mutex) {
	structured := h.decoder != nil && s.Name != "stderr"
	buf := make([]byte, readBufferSize)

	for {
		n, err := s.Reader.Read(buf)
		if n > 0 {
			data := bytes.Clone(buf[:n])
			m.publish(h, domain.Event{Kind: domain.EventOutput, Stream: s.Name, Data: data})
			if structured {
				decodeMu.Lock()
				events := h.decoder.Push(data)
				decodeMu.Unlock()
				m.publishAgentEvents(h, events)
			}
		}
		if err != nil {
			logging.Logger.Debug("Stream closed", "key", h.key.String(), "stream", s.Name, "error", err)
			return
		}
	}
}

func (m *ProcessManager) publishAgentEvents(h *handle, events []domain.Event) {
	for _, ev := range events {
		if ev.Kind == domain.EventSessionID {
			h.mu.Lock()
			h.info.AgentSessionID = ev.AgentSessionID
			h.mu.Unlock()
		}
		m.publish(h, ev)
	}
}

func (m *ProcessManager) publish(h *handle, ev domain.Event) {
	ev.SessionID = h.key.SessionID
	ev.Role = h.key.Role
	if ev.Time.IsZero() {
		ev.Time = m.now()
	}
	m.bus.Publish(ev)
}

// live returns the running process for a key
func (m *ProcessManager) live(sessionID string, role domain.Role) (*handle, ports.Process, error) {
	h, ok := m.registry.lookup(domain.ProcessKey{SessionID: sessionID, Role: role})
	if !ok {
		return nil, nil, ports.ErrProcessNotFound
	}
	proc, state := h.process()
	if state != domain.ProcessRunning {
		return nil, nil, ports.ErrProcessNotFound
	}
	return h, proc, nil
}

// Write sends raw bytes to the input of the given role
func (m *ProcessManager) Write(sessionID string, role domain.Role, data []byte) error {
	_, proc, err := m.live(sessionID, role)
	if err != nil {
		return err
	}
	_, err = proc.Write(data)
	return err
}

// Prompt sends a user turn: a JSON-RPC prompt for ACP agents, a line of
// input otherwise
func (m *ProcessManager) Prompt(sessionID, text string) error {
	h, proc, err := m.live(sessionID, domain.RoleAI)
	if err != nil {
		return err
	}
	if h.acp != nil {
		return h.acp.Prompt(text)
	}
	eol := "\n"
	if proc.Mode() == domain.LaunchPTY {
		eol = "\r"
	}
	_, err = proc.Write([]byte(text + eol))
	return err
}

// Interrupt sends the interrupt byte or signal; the process stays registered
func (m *ProcessManager) Interrupt(sessionID string, role domain.Role) error {
	h, proc, err := m.live(sessionID, role)
	if err != nil {
		return err
	}
	if h.acp != nil {
		return h.acp.Cancel()
	}
	return proc.Interrupt()
}

// Resize changes the terminal size; pipe-backed processes ignore it
func (m *ProcessManager) Resize(sessionID string, role domain.Role, cols, rows uint16) error {
	_, proc, err := m.live(sessionID, role)
	if err != nil {
		return err
	}
	if proc.Mode() == domain.LaunchPipe {
		return nil
	}
	return proc.Resize(cols, rows)
}

// Kill terminates both roles of a session. It returns false when the session
// has no live process; handles that already exited but are still draining
// output do not count. Handles are removed by the exit path, not here.
func (m *ProcessManager) Kill(sessionID string) bool {
	killed := false
	for _, h := range m.registry.lookupSession(sessionID) {
		if h.hasExited() {
			continue
		}
		m.terminate(h)
		killed = true
	}
	return killed
}

// KillRole terminates one role of a session
func (m *ProcessManager) KillRole(sessionID string, role domain.Role) bool {
	h, ok := m.registry.lookup(domain.ProcessKey{SessionID: sessionID, Role: role})
	if !ok || h.hasExited() {
		return false
	}
	m.terminate(h)
	return true
}

// terminate sends SIGTERM and escalates to SIGKILL after the grace period
func (m *ProcessManager) terminate(h *handle) {
	h.mu.Lock()
	proc := h.proc
	if proc == nil {
		h.killRequested = true
		h.mu.Unlock()
		return
	}
	if h.killing {
		h.mu.Unlock()
		return
	}
	h.killing = true
	h.mu.Unlock()

	logging.Logger.Info("Terminating process", "key", h.key.String(), "pid", proc.PID())
	if err := proc.Terminate(); err != nil && !errors.Is(err, ports.ErrProcessExited) {
		logging.Logger.Warn("Failed to send SIGTERM", "key", h.key.String(), "error", err)
	}

	go func() {
		select {
		case <-proc.Done():
		case <-time.After(m.killGrace):
			logging.Logger.Warn("Process ignored SIGTERM, killing", "key", h.key.String(), "pid", proc.PID())
			_ = proc.Kill()
		}
	}()
}

// WaitExit blocks until the process at key has exited and been removed.
// It returns immediately when nothing is registered under key.
func (m *ProcessManager) WaitExit(ctx context.Context, key domain.ProcessKey) error {
	h, ok := m.registry.lookup(key)
	if !ok {
		return nil
	}
	select {
	case <-h.exited:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown kills every live process and waits for all of them to exit,
// then ends every subscription
func (m *ProcessManager) Shutdown(ctx context.Context) error {
	defer m.bus.Close()

	g, gctx := errgroup.WithContext(ctx)
	for _, h := range m.registry.all() {
		g.Go(func() error {
			m.terminate(h)
			select {
			case <-h.exited:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}
	return g.Wait()
}

func ptr[T any](v T) *T {
	return &v
}

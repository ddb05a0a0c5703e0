package server

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renato0307/duet/internal/domain"
	"github.com/renato0307/duet/internal/ports"
	"github.com/renato0307/duet/internal/services"
)

type fakeController struct {
	bus *services.EventBus

	mu         sync.Mutex
	interrupts []domain.ProcessKey
	killed     map[string]bool
	prompts    []string
	resizes    [][2]uint16
	runs       []string
	spawns     []domain.SpawnRequest
	writes     []string
}

func newFakeController() *fakeController {
	return &fakeController{bus: services.NewEventBus(), killed: map[string]bool{"live": true}}
}

func (f *fakeController) GetAll() []domain.ProcessInfo {
	return []domain.ProcessInfo{
		{SessionID: "live", Role: domain.RoleAI, PID: 10, State: domain.ProcessRunning, Mode: domain.LaunchPipe},
		{SessionID: "live", Role: domain.RoleTerminal, PID: 11, State: domain.ProcessRunning, Mode: domain.LaunchPTY},
	}
}

func (f *fakeController) Interrupt(sessionID string, role domain.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.interrupts = append(f.interrupts, domain.ProcessKey{SessionID: sessionID, Role: role})
	return nil
}

func (f *fakeController) Kill(sessionID string) bool {
	return f.killed[sessionID]
}

func (f *fakeController) KillRole(sessionID string, role domain.Role) bool {
	return f.killed[sessionID] && role == domain.RoleAI
}

func (f *fakeController) Prompt(sessionID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, sessionID+":"+text)
	return nil
}

func (f *fakeController) Resize(sessionID string, role domain.Role, cols, rows uint16) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resizes = append(f.resizes, [2]uint16{cols, rows})
	return nil
}

func (f *fakeController) RunCommand(ctx context.Context, sessionID, command, cwd, shell string) (*domain.CommandResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, command)
	return &domain.CommandResult{Stdout: "out\n", Stderr: "err\n", ExitCode: 3}, nil
}

func (f *fakeController) Spawn(ctx context.Context, req domain.SpawnRequest) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if req.SessionID == "busy" {
		return 0, ports.ErrProcessExists
	}
	f.spawns = append(f.spawns, req)
	return 4242, nil
}

func (f *fakeController) Subscribe() *services.Subscription {
	return f.bus.Subscribe()
}

func (f *fakeController) Write(sessionID string, role domain.Role, data []byte) error {
	if sessionID == "ghost" {
		return ports.ErrProcessNotFound
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, string(role)+":"+string(data))
	return nil
}

func dispatch(t *testing.T, ctl Controller, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Dispatch(context.Background(), ctl, args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestDispatch_List(t *testing.T) {
	code, out, _ := dispatch(t, newFakeController(), "", "list")

	require.Equal(t, 0, code)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)

	var info domain.ProcessInfo
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &info))
	assert.Equal(t, domain.RoleTerminal, info.Role)
	assert.Equal(t, 11, info.PID)
}

func TestDispatch_Spawn(t *testing.T) {
	ctl := newFakeController()

	code, out, _ := dispatch(t, ctl, "",
		"spawn", "s1", "--agent", "codex", "--prompt", "fix it", "--read-only",
		"--model", "o3", "--option", "full_auto=true", "--cwd", "/work", "--resume", "tok")

	require.Equal(t, 0, code)
	assert.JSONEq(t, `{"pid":4242,"role":"ai","session_id":"s1"}`, out)
	require.Len(t, ctl.spawns, 1)
	req := ctl.spawns[0]
	assert.Equal(t, "codex", req.AgentID)
	assert.Equal(t, "fix it", req.Prompt)
	assert.True(t, req.ReadOnly)
	assert.Equal(t, "o3", req.ModelID)
	assert.Equal(t, "/work", req.WorkingDir)
	assert.Equal(t, "tok", req.ResumeToken)
	assert.Equal(t, domain.RoleAI, req.Role)
	assert.Equal(t, map[string]any{"full_auto": "true"}, req.Options)
}

func TestDispatch_SpawnGeneratesSessionID(t *testing.T) {
	ctl := newFakeController()

	code, _, _ := dispatch(t, ctl, "", "spawn", "--role", "terminal")

	require.Equal(t, 0, code)
	require.Len(t, ctl.spawns, 1)
	assert.Len(t, ctl.spawns[0].SessionID, 36)
	assert.Equal(t, domain.RoleTerminal, ctl.spawns[0].Role)
}

func TestDispatch_SpawnSanitizesSessionID(t *testing.T) {
	ctl := newFakeController()

	code, _, _ := dispatch(t, ctl, "", "spawn", "my session (2)")

	require.Equal(t, 0, code)
	require.Len(t, ctl.spawns, 1)
	assert.Equal(t, "my_session_2", ctl.spawns[0].SessionID)
}

func TestDispatch_SpawnErrorIsReported(t *testing.T) {
	code, _, errOut := dispatch(t, newFakeController(), "", "spawn", "busy")

	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, ports.ErrProcessExists.Error())
}

func TestDispatch_Write(t *testing.T) {
	ctl := newFakeController()

	code, _, _ := dispatch(t, ctl, "", "write", "live", "ls", "-n")
	require.Equal(t, 0, code)
	code, _, _ = dispatch(t, ctl, "piped", "write", "live", "--stdin", "--role", "ai")
	require.Equal(t, 0, code)

	assert.Equal(t, []string{"terminal:ls\n", "ai:piped"}, ctl.writes)
}

func TestDispatch_WriteWithoutProcess(t *testing.T) {
	code, _, errOut := dispatch(t, newFakeController(), "", "write", "ghost", "x")

	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "no live process")
}

func TestDispatch_ControlCommands(t *testing.T) {
	ctl := newFakeController()

	code, _, _ := dispatch(t, ctl, "", "interrupt", "live")
	require.Equal(t, 0, code)
	code, _, _ = dispatch(t, ctl, "", "resize", "live", "120", "40")
	require.Equal(t, 0, code)
	code, _, _ = dispatch(t, ctl, "", "prompt", "live", "hello", "there")
	require.Equal(t, 0, code)

	assert.Equal(t, []domain.ProcessKey{{SessionID: "live", Role: domain.RoleAI}}, ctl.interrupts)
	assert.Equal(t, [][2]uint16{{120, 40}}, ctl.resizes)
	assert.Equal(t, []string{"live:hello there"}, ctl.prompts)
}

func TestDispatch_Kill(t *testing.T) {
	ctl := newFakeController()

	code, out, _ := dispatch(t, ctl, "", "kill", "live")
	assert.Equal(t, 0, code)
	assert.Equal(t, "killed live\n", out)

	code, _, _ = dispatch(t, ctl, "", "kill", "live", "--role", "terminal")
	assert.Equal(t, 1, code)

	code, _, errOut := dispatch(t, ctl, "", "kill", "ghost")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "no live process for session ghost")
}

func TestDispatch_ExecUsesCommandExitCode(t *testing.T) {
	ctl := newFakeController()

	code, out, errOut := dispatch(t, ctl, "", "exec", "live", "git", "status", "--short")

	assert.Equal(t, 3, code)
	assert.Equal(t, "out\n", out)
	assert.Equal(t, "err\n", errOut)
	assert.Equal(t, []string{"git status --short"}, ctl.runs)
}

func TestDispatch_UsageErrors(t *testing.T) {
	code, _, _ := dispatch(t, newFakeController(), "", "bogus")
	assert.Equal(t, 2, code)

	code, _, _ = dispatch(t, newFakeController(), "", "spawn", "--role", "robot")
	assert.Equal(t, 2, code)

	code, out, _ := dispatch(t, newFakeController(), "")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "watch")
}

func TestDispatch_WatchFiltersAndStopsOnExit(t *testing.T) {
	ctl := newFakeController()
	var stdout, stderr bytes.Buffer
	done := make(chan int, 1)

	go func() {
		done <- Dispatch(context.Background(), ctl,
			[]string{"watch", "s1", "--no-output", "--until-exit"},
			strings.NewReader(""), &stdout, &stderr)
	}()

	// Publish until the watcher has subscribed and stopped
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case code := <-done:
			require.Equal(t, 0, code)
			lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
			require.NotEmpty(t, lines)

			var last domain.Event
			require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &last))
			assert.Equal(t, domain.EventExit, last.Kind)
			assert.Equal(t, "s1", last.SessionID)
			assert.NotContains(t, stdout.String(), `"kind":"output"`)
			assert.NotContains(t, stdout.String(), `"other"`)
			return
		case <-ticker.C:
			ctl.bus.Publish(domain.Event{Kind: domain.EventOutput, SessionID: "s1", Role: domain.RoleAI, Data: []byte("x")})
			ctl.bus.Publish(domain.Event{Kind: domain.EventText, SessionID: "other", Role: domain.RoleAI, Text: "other"})
			ctl.bus.Publish(domain.Event{Kind: domain.EventText, SessionID: "s1", Role: domain.RoleAI, Text: "hi"})
			ctl.bus.Publish(domain.Event{Kind: domain.EventExit, SessionID: "s1", Role: domain.RoleAI, Exit: &domain.ExitStatus{}})
		case <-time.After(5 * time.Second):
			t.Fatal("watch did not stop")
		}
	}
}

func TestDispatch_WatchEndsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var stdout bytes.Buffer
	done := make(chan int, 1)

	go func() {
		done <- Dispatch(ctx, newFakeController(), []string{"watch"}, strings.NewReader(""), &stdout, &bytes.Buffer{})
	}()
	cancel()

	select {
	case code := <-done:
		assert.Equal(t, 0, code)
	case <-time.After(5 * time.Second):
		t.Fatal("watch ignored cancellation")
	}
}

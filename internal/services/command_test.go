package services

import (
	"bytes"
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renato0307/duet/internal/adapters/process"
	"github.com/renato0307/duet/internal/agents"
	"github.com/renato0307/duet/internal/domain"
	"github.com/renato0307/duet/internal/ports"
)

func newRealManager() *ProcessManager {
	return NewProcessManager(process.NewLauncher(), agents.NewRegistry(), nil,
		WithKillGrace(200*time.Millisecond),
		WithDrainTimeout(time.Second),
	)
}

func TestRunCommand_CapturesCleanOutput(t *testing.T) {
	shell := "bash"
	if _, err := exec.LookPath(shell); err != nil {
		shell = "/bin/sh"
	}
	m := newRealManager()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	defer func() { _ = m.Shutdown(ctx) }()

	// An interactive terminal for the same session must not leak into the result
	_, err := m.Spawn(ctx, domain.SpawnRequest{SessionID: "sid", Role: domain.RoleTerminal, Shell: "/bin/sh", WorkingDir: "/tmp"})
	require.NoError(t, err)

	result, err := m.RunCommand(ctx, "sid", "echo hi", "/tmp", shell)

	require.NoError(t, err)
	assert.Equal(t, "hi\n", result.Stdout)
	assert.Empty(t, result.Stderr)
	assert.Equal(t, 0, result.ExitCode)
	assert.Len(t, m.GetAll(), 1, "runCommand is not registered")
}

func TestRunCommand_NonZeroExitIsNotAnError(t *testing.T) {
	m := newRealManager()

	result, err := m.RunCommand(context.Background(), "sid", "echo oops >&2; exit 7", t.TempDir(), "/bin/sh")

	require.NoError(t, err)
	assert.Equal(t, 7, result.ExitCode)
	assert.Equal(t, "oops\n", result.Stderr)
}

func TestRunCommand_MissingShell(t *testing.T) {
	m := newRealManager()

	_, err := m.RunCommand(context.Background(), "sid", "true", "", "/no/such/shell")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "/no/such/shell")
}

func TestRunCommand_ContextCancelKills(t *testing.T) {
	m := newRealManager()
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	result, err := m.RunCommand(ctx, "sid", "sleep 30", "", "/bin/sh")

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	require.NotNil(t, result)
	assert.NotEqual(t, 0, result.ExitCode)
}

func TestSpawn_RealTerminalLifecycle(t *testing.T) {
	m := newRealManager()
	sub := m.Subscribe()
	defer sub.Close()

	_, err := m.Spawn(context.Background(), domain.SpawnRequest{SessionID: "live", Role: domain.RoleTerminal, Shell: "/bin/sh"})
	require.NoError(t, err)

	require.NoError(t, m.Write("live", domain.RoleTerminal, []byte("echo marker-$((40+2))\r")))
	waitFor(t, sub, func(ev domain.Event) bool {
		return ev.Kind == domain.EventOutput && bytes.Contains(ev.Data, []byte("marker-42"))
	})

	require.True(t, m.Kill("live"))
	waitFor(t, sub, isExit(domain.ProcessKey{SessionID: "live", Role: domain.RoleTerminal}))
	assert.Empty(t, m.GetAll())
}

func TestSpawn_ExitedWhileOutputStillOpen(t *testing.T) {
	// The background sleep keeps stdout open after the shell itself exits
	reg := agents.LoadRegistry([]domain.AgentDescriptor{{
		ID:       "leaky",
		Binary:   "/bin/sh",
		BaseArgs: []string{"-c", "sleep 5 & exit 0"},
		Output:   domain.OutputRaw,
	}}, nil)
	m := NewProcessManager(process.NewLauncher(), reg, nil,
		WithKillGrace(200*time.Millisecond),
		WithDrainTimeout(2*time.Second),
	)
	sub := m.Subscribe()
	defer sub.Close()

	_, err := m.Spawn(context.Background(), domain.SpawnRequest{SessionID: "bg", Role: domain.RoleAI, AgentID: "leaky"})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(m.GetAll()) == 0 }, time.Second, 10*time.Millisecond,
		"exited process must leave GetAll before its output drains")
	assert.False(t, m.Kill("bg"))
	assert.False(t, m.KillRole("bg", domain.RoleAI))
	assert.ErrorIs(t, m.Write("bg", domain.RoleAI, []byte("x")), ports.ErrProcessNotFound)

	exit := waitFor(t, sub, isExit(domain.ProcessKey{SessionID: "bg", Role: domain.RoleAI}))
	assert.Equal(t, 0, exit.Exit.Code)
}

package process

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renato0307/duet/internal/domain"
	"github.com/renato0307/duet/internal/ports"
)

// readAll drains every stream of p concurrently and returns the output per stream
func readAll(t *testing.T, p ports.Process) map[string]string {
	t.Helper()

	var mu sync.Mutex
	var wg sync.WaitGroup
	out := make(map[string]string)
	for _, s := range p.Streams() {
		wg.Add(1)
		go func(s ports.OutputStream) {
			defer wg.Done()
			var buf bytes.Buffer
			_, _ = io.Copy(&buf, s.Reader)
			mu.Lock()
			out[s.Name] = buf.String()
			mu.Unlock()
		}(s)
	}
	wg.Wait()
	return out
}

func waitDone(t *testing.T, p ports.Process) {
	t.Helper()
	select {
	case <-p.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("process did not exit")
	}
}

func TestLaunch_ExecutableNotFound(t *testing.T) {
	_, err := NewLauncher().Launch(context.Background(), ports.LaunchSpec{
		Path: "duet-definitely-missing-binary",
		Mode: domain.LaunchPipe,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrExecutableNotFound)
	var launchErr *ports.LaunchError
	require.True(t, errors.As(err, &launchErr))
	assert.Equal(t, "duet-definitely-missing-binary", launchErr.Binary)
	assert.Contains(t, err.Error(), "duet-definitely-missing-binary")
}

func TestLaunch_MissingWorkingDir(t *testing.T) {
	_, err := NewLauncher().Launch(context.Background(), ports.LaunchSpec{
		Path: "/bin/sh",
		Dir:  "/definitely/not/here",
		Mode: domain.LaunchPipe,
	})

	var launchErr *ports.LaunchError
	require.True(t, errors.As(err, &launchErr))
	assert.Equal(t, "/definitely/not/here", launchErr.Dir)
}

func TestPipe_SeparatesStdoutAndStderr(t *testing.T) {
	p, err := NewLauncher().Launch(context.Background(), ports.LaunchSpec{
		Path: "/bin/sh",
		Args: []string{"-c", "echo out; echo err >&2; exit 3"},
		Dir:  t.TempDir(),
		Mode: domain.LaunchPipe,
	})
	require.NoError(t, err)
	defer p.Close()

	out := readAll(t, p)
	waitDone(t, p)

	assert.Equal(t, domain.LaunchPipe, p.Mode())
	assert.Equal(t, "out\n", out["stdout"])
	assert.Equal(t, "err\n", out["stderr"])
	assert.Equal(t, 3, p.ExitStatus().Code)
}

func TestPipe_WriteReachesStdin(t *testing.T) {
	p, err := NewLauncher().Launch(context.Background(), ports.LaunchSpec{
		Path: "/bin/sh",
		Args: []string{"-c", "read line; echo got:$line"},
		Mode: domain.LaunchPipe,
	})
	require.NoError(t, err)
	defer p.Close()

	_, err = p.Write([]byte("hello\n"))
	require.NoError(t, err)

	out := readAll(t, p)
	waitDone(t, p)
	assert.Equal(t, "got:hello\n", out["stdout"])
}

func TestPipe_WriteAfterExitFails(t *testing.T) {
	p, err := NewLauncher().Launch(context.Background(), ports.LaunchSpec{
		Path: "/bin/sh",
		Args: []string{"-c", "exit 0"},
		Mode: domain.LaunchPipe,
	})
	require.NoError(t, err)
	defer p.Close()

	readAll(t, p)
	waitDone(t, p)

	_, err = p.Write([]byte("late\n"))
	assert.Error(t, err)
}

func TestPipe_CloseInputThenWrite(t *testing.T) {
	p, err := NewLauncher().Launch(context.Background(), ports.LaunchSpec{
		Path: "/bin/sh",
		Args: []string{"-c", "cat"},
		Mode: domain.LaunchPipe,
	})
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.CloseInput())
	_, err = p.Write([]byte("x"))
	assert.ErrorIs(t, err, ports.ErrInputClosed)

	readAll(t, p)
	waitDone(t, p)
	assert.True(t, p.ExitStatus().Success())
}

func TestPipe_BlockedWriteDoesNotHoldUpExit(t *testing.T) {
	// The background sleep keeps stdin open without reading it, so a large
	// write fills the pipe and blocks
	p, err := NewLauncher().Launch(context.Background(), ports.LaunchSpec{
		Path: "/bin/sh",
		Args: []string{"-c", "sleep 5 <&0 >/dev/null 2>&1 & sleep 0.2"},
		Mode: domain.LaunchPipe,
	})
	require.NoError(t, err)
	defer p.Close()

	writeErr := make(chan error, 1)
	go func() {
		_, err := p.Write(bytes.Repeat([]byte("x"), 1<<20))
		writeErr <- err
	}()

	select {
	case <-p.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("exit blocked behind a pending write")
	}

	select {
	case err := <-writeErr:
		assert.ErrorIs(t, err, ports.ErrProcessExited)
	case <-time.After(2 * time.Second):
		t.Fatal("pending write was not released")
	}
}

func TestPipe_ResizeUnsupported(t *testing.T) {
	p, err := NewLauncher().Launch(context.Background(), ports.LaunchSpec{
		Path: "/bin/sh",
		Args: []string{"-c", "exit 0"},
		Mode: domain.LaunchPipe,
	})
	require.NoError(t, err)
	defer p.Close()

	assert.ErrorIs(t, p.Resize(100, 40), ports.ErrResizeUnsupported)
	readAll(t, p)
	waitDone(t, p)
}

func TestPipe_InterruptSignalsGroup(t *testing.T) {
	p, err := NewLauncher().Launch(context.Background(), ports.LaunchSpec{
		Path: "/bin/sh",
		Args: []string{"-c", "sleep 30"},
		Mode: domain.LaunchPipe,
	})
	require.NoError(t, err)
	defer p.Close()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, p.Interrupt())

	readAll(t, p)
	waitDone(t, p)
	assert.False(t, p.ExitStatus().Success())
}

func TestPipe_KillAfterExitReportsExited(t *testing.T) {
	p, err := NewLauncher().Launch(context.Background(), ports.LaunchSpec{
		Path: "/bin/sh",
		Args: []string{"-c", "exit 0"},
		Mode: domain.LaunchPipe,
	})
	require.NoError(t, err)
	defer p.Close()

	readAll(t, p)
	waitDone(t, p)
	assert.ErrorIs(t, p.Kill(), ports.ErrProcessExited)
}

func TestPTY_EchoesOutput(t *testing.T) {
	p, err := NewLauncher().Launch(context.Background(), ports.LaunchSpec{
		Path: "/bin/sh",
		Args: []string{"-c", "echo hello-pty; echo $TERM"},
		Mode: domain.LaunchPTY,
	})
	require.NoError(t, err)
	defer p.Close()

	streams := p.Streams()
	require.Len(t, streams, 1)
	assert.Equal(t, "output", streams[0].Name)

	var buf bytes.Buffer
	chunk := make([]byte, 1024)
	for {
		n, err := streams[0].Reader.Read(chunk)
		buf.Write(chunk[:n])
		if err != nil {
			break
		}
	}
	waitDone(t, p)

	assert.Contains(t, buf.String(), "hello-pty")
	assert.Contains(t, buf.String(), "xterm-256color")
	assert.True(t, p.ExitStatus().Success())
}

func TestPTY_ResizeAndKill(t *testing.T) {
	p, err := NewLauncher().Launch(context.Background(), ports.LaunchSpec{
		Path: "/bin/sh",
		Args: []string{"-c", "sleep 30"},
		Mode: domain.LaunchPTY,
		Cols: 100,
		Rows: 30,
	})
	require.NoError(t, err)
	defer p.Close()

	go func() { _, _ = io.Copy(io.Discard, p.Streams()[0].Reader) }()

	assert.Equal(t, domain.LaunchPTY, p.Mode())
	assert.NoError(t, p.Resize(120, 40))
	require.NoError(t, p.Kill())

	waitDone(t, p)
	assert.Equal(t, "SIGKILL", p.ExitStatus().Signal)
	assert.False(t, p.ExitStatus().Success())
}

func TestPTY_InterruptSendsCtrlC(t *testing.T) {
	p, err := NewLauncher().Launch(context.Background(), ports.LaunchSpec{
		Path: "/bin/sh",
		Args: []string{"-c", "sleep 30"},
		Mode: domain.LaunchPTY,
	})
	require.NoError(t, err)
	defer p.Close()

	go func() { _, _ = io.Copy(io.Discard, p.Streams()[0].Reader) }()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, p.Interrupt())
	waitDone(t, p)

	assert.False(t, p.ExitStatus().Success())
}

package services

import (
	"bytes"
	"context"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/renato0307/duet/internal/agents"
	"github.com/renato0307/duet/internal/domain"
	"github.com/renato0307/duet/internal/logging"
	"github.com/renato0307/duet/internal/ports"
)

// RunCommand runs command once through a pipe-backed shell and returns its
// captured output. It never touches the session's interactive terminal, and
// the buffers belong to this call alone. A non-zero exit is a result, not an
// error.
func (m *ProcessManager) RunCommand(ctx context.Context, sessionID, command, cwd, shell string) (*domain.CommandResult, error) {
	shellPath := agents.ResolveShell(shell, m.settings)
	logger := logging.Logger.With("session_id", sessionID, "shell", shellPath)
	logger.Info("Running command", "command", command, "cwd", cwd)

	start := m.now()
	proc, err := m.launcher.Launch(ctx, ports.LaunchSpec{
		Args: agents.CommandArgs(command),
		Dir:  cwd,
		Mode: domain.LaunchPipe,
		Path: shellPath,
	})
	if err != nil {
		logger.Error("Failed to launch command", "error", err)
		return nil, err
	}
	defer proc.Close()

	if err := proc.CloseInput(); err != nil {
		logger.Debug("Failed to close command stdin", "error", err)
	}

	// Kill the command if the caller gives up
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = proc.Kill()
		case <-proc.Done():
		case <-stop:
		}
	}()

	buffers := make(map[string]*bytes.Buffer)
	var g errgroup.Group
	for _, s := range proc.Streams() {
		buf := &bytes.Buffer{}
		buffers[s.Name] = buf
		g.Go(func() error {
			_, err := io.Copy(buf, s.Reader)
			return err
		})
	}

	readErr := make(chan error, 1)
	go func() { readErr <- g.Wait() }()

	<-proc.Done()
	select {
	case err := <-readErr:
		if err != nil {
			logger.Debug("Command output read ended with error", "error", err)
		}
	case <-time.After(m.drainTimeout):
		// A background child still holds the pipes
		_ = proc.Close()
		<-readErr
	}

	status := proc.ExitStatus()
	result := &domain.CommandResult{
		Duration: m.now().Sub(start),
		ExitCode: status.Code,
		Signal:   status.Signal,
		Stderr:   streamText(buffers, "stderr"),
		Stdout:   streamText(buffers, "stdout"),
	}

	logger.Info("Command finished", "exit_code", result.ExitCode, "duration", result.Duration)
	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

func streamText(buffers map[string]*bytes.Buffer, name string) string {
	if buf, ok := buffers[name]; ok {
		return buf.String()
	}
	return ""
}

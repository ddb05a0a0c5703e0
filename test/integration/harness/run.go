package harness

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"
	"time"
)

const defaultTimeout = 30 * time.Second

// CommandResult holds the outcome of one duet invocation. ExitCode is -1
// when the binary timed out or could not be started.
type CommandResult struct {
	ExitCode int
	Stderr   string
	Stdout   string
}

// Invocation describes one run of the binary
type Invocation struct {
	Args    []string
	Stdin   string
	Timeout time.Duration
}

// RunCommand runs duet with args and no input.
func RunCommand(tb testing.TB, env *TestEnvironment, args ...string) CommandResult {
	tb.Helper()
	return Run(tb, env, Invocation{Args: args})
}

// RunCommandWithInput runs duet with args, feeding stdin to the process.
func RunCommandWithInput(tb testing.TB, env *TestEnvironment, stdin string, args ...string) CommandResult {
	tb.Helper()
	return Run(tb, env, Invocation{Args: args, Stdin: stdin})
}

// Run executes the binary built by BuildBinary inside env.
func Run(tb testing.TB, env *TestEnvironment, inv Invocation) CommandResult {
	tb.Helper()

	timeout := inv.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, binaryPath, inv.Args...)
	cmd.Env = env.Environ()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if inv.Stdin != "" {
		cmd.Stdin = strings.NewReader(inv.Stdin)
	}

	err := cmd.Run()

	result := CommandResult{Stdout: stdout.String(), Stderr: stderr.String()}
	var exitErr *exec.ExitError
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		tb.Logf("Command timed out after %v: duet %v", timeout, inv.Args)
		result.ExitCode = -1
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	case err != nil:
		tb.Logf("Command execution error: %v", err)
		result.ExitCode = -1
	}
	return result
}

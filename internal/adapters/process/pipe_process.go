package process

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/renato0307/duet/internal/domain"
	"github.com/renato0307/duet/internal/ports"
)

// pipeProcess uses os.Pipe instead of cmd.StdoutPipe so the read ends stay
// open after Wait and the caller decides when output is fully drained.
type pipeProcess struct {
	*osProcess
	closeOnce   sync.Once
	inputClosed atomic.Bool
	stderr      *os.File
	stdin       *os.File
	stdout      *os.File
}

func startPipe(cmd *exec.Cmd) (*pipeProcess, error) {
	stdinR, stdinW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		closeAll(stdinR, stdinW)
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		closeAll(stdinR, stdinW, stdoutR, stdoutW)
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	cmd.Stdin = stdinR
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		closeAll(stdinR, stdinW, stdoutR, stdoutW, stderrR, stderrW)
		return nil, fmt.Errorf("failed to start process: %w", err)
	}

	// Child ends belong to the child now
	closeAll(stdinR, stdoutW, stderrW)

	p := &pipeProcess{
		osProcess: newOSProcess(cmd),
		stderr:    stderrR,
		stdin:     stdinW,
		stdout:    stdoutR,
	}
	go p.wait(func() { _ = p.CloseInput() })
	return p, nil
}

func (p *pipeProcess) Mode() domain.LaunchMode {
	return domain.LaunchPipe
}

func (p *pipeProcess) Streams() []ports.OutputStream {
	return []ports.OutputStream{
		{Name: "stdout", Reader: p.stdout},
		{Name: "stderr", Reader: p.stderr},
	}
}

// Write may block while the pipe is full. It holds no lock, so CloseInput
// can still run and unblock it with os.ErrClosed.
func (p *pipeProcess) Write(b []byte) (int, error) {
	if p.exited() {
		return 0, ports.ErrProcessExited
	}
	if p.inputClosed.Load() {
		return 0, ports.ErrInputClosed
	}
	n, err := p.stdin.Write(b)
	if errors.Is(err, os.ErrClosed) {
		if p.exited() {
			return n, ports.ErrProcessExited
		}
		return n, ports.ErrInputClosed
	}
	return n, err
}

func (p *pipeProcess) CloseInput() error {
	if !p.inputClosed.CompareAndSwap(false, true) {
		return nil
	}
	return p.stdin.Close()
}

func (p *pipeProcess) Resize(cols, rows uint16) error {
	return ports.ErrResizeUnsupported
}

func (p *pipeProcess) Interrupt() error {
	return p.signalGroup(unix.SIGINT)
}

func (p *pipeProcess) Close() error {
	p.closeOnce.Do(func() {
		_ = p.CloseInput()
		closeAll(p.stdout, p.stderr)
	})
	return nil
}

func closeAll(files ...*os.File) {
	for _, f := range files {
		_ = f.Close()
	}
}

package process

import (
	"errors"
	"os/exec"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/renato0307/duet/internal/domain"
	"github.com/renato0307/duet/internal/logging"
	"github.com/renato0307/duet/internal/ports"
)

// osProcess tracks the wait state shared by both launch modes.
// The child always leads its own process group, so signals go to -pid.
type osProcess struct {
	cmd    *exec.Cmd
	done   chan struct{}
	mu     sync.Mutex
	status domain.ExitStatus
}

func newOSProcess(cmd *exec.Cmd) *osProcess {
	return &osProcess{cmd: cmd, done: make(chan struct{})}
}

// wait reaps the child and runs release before Done is closed
func (p *osProcess) wait(release func()) {
	err := p.cmd.Wait()
	status := exitStatusOf(p.cmd, err)

	p.mu.Lock()
	p.status = status
	p.mu.Unlock()

	if release != nil {
		release()
	}

	logging.Logger.Debug("Process exited", "pid", p.PID(), "code", status.Code, "signal", status.Signal)
	close(p.done)
}

func (p *osProcess) PID() int {
	return p.cmd.Process.Pid
}

func (p *osProcess) Done() <-chan struct{} {
	return p.done
}

func (p *osProcess) ExitStatus() domain.ExitStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *osProcess) exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

func (p *osProcess) signalGroup(sig unix.Signal) error {
	if p.exited() {
		return ports.ErrProcessExited
	}
	err := unix.Kill(-p.PID(), sig)
	if errors.Is(err, unix.ESRCH) {
		return ports.ErrProcessExited
	}
	return err
}

func (p *osProcess) Terminate() error {
	return p.signalGroup(unix.SIGTERM)
}

func (p *osProcess) Kill() error {
	return p.signalGroup(unix.SIGKILL)
}

func exitStatusOf(cmd *exec.Cmd, waitErr error) domain.ExitStatus {
	state := cmd.ProcessState
	if state == nil {
		logging.Logger.Warn("Process wait failed", "error", waitErr)
		return domain.ExitStatus{Code: -1}
	}

	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		sig := unix.Signal(ws.Signal())
		return domain.ExitStatus{Code: 128 + int(sig), Signal: unix.SignalName(sig)}
	}
	return domain.ExitStatus{Code: state.ExitCode()}
}

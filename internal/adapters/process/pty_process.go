package process

import (
	"fmt"
	"os"
	"os/exec"
	"sync"

	"github.com/creack/pty"

	"github.com/renato0307/duet/internal/domain"
	"github.com/renato0307/duet/internal/ports"
)

// ctrlC is the byte a terminal turns into SIGINT for the foreground job
const ctrlC = 0x03

type ptyProcess struct {
	*osProcess
	closeOnce sync.Once
	ptmx      *os.File
}

func startPTY(cmd *exec.Cmd, cols, rows uint16) (*ptyProcess, error) {
	if cols == 0 {
		cols = defaultCols
	}
	if rows == 0 {
		rows = defaultRows
	}
	cmd.Env = append(cmd.Env, "TERM=xterm-256color")

	// pty.StartWithSize runs the child with Setsid, so it leads its own group
	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Cols: cols, Rows: rows})
	if err != nil {
		return nil, fmt.Errorf("failed to start pty: %w", err)
	}

	p := &ptyProcess{osProcess: newOSProcess(cmd), ptmx: ptmx}
	go p.wait(nil)
	return p, nil
}

func (p *ptyProcess) Mode() domain.LaunchMode {
	return domain.LaunchPTY
}

func (p *ptyProcess) Streams() []ports.OutputStream {
	return []ports.OutputStream{{Name: "output", Reader: p.ptmx}}
}

func (p *ptyProcess) Write(b []byte) (int, error) {
	if p.exited() {
		return 0, ports.ErrProcessExited
	}
	return p.ptmx.Write(b)
}

// CloseInput is a no-op, a terminal has no separate input channel
func (p *ptyProcess) CloseInput() error {
	return nil
}

func (p *ptyProcess) Resize(cols, rows uint16) error {
	if p.exited() {
		return ports.ErrProcessExited
	}
	return pty.Setsize(p.ptmx, &pty.Winsize{Cols: cols, Rows: rows})
}

func (p *ptyProcess) Interrupt() error {
	_, err := p.Write([]byte{ctrlC})
	return err
}

func (p *ptyProcess) Close() error {
	var err error
	p.closeOnce.Do(func() {
		err = p.ptmx.Close()
	})
	return err
}

package services

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/renato0307/duet/internal/domain"
	"github.com/renato0307/duet/internal/ports"
)

type fakeProcess struct {
	done   chan struct{}
	mode   domain.LaunchMode
	once   sync.Once
	out    *io.PipeReader
	outW   *io.PipeWriter
	pid    int
	status domain.ExitStatus

	mu              sync.Mutex
	exitOnTerminate bool
	input           bytes.Buffer
	inputClosed     bool
	interrupts      int
	kills           int
	size            [2]uint16
	terminates      int
}

func newFakeProcess(pid int, mode domain.LaunchMode) *fakeProcess {
	r, w := io.Pipe()
	return &fakeProcess{
		done:            make(chan struct{}),
		exitOnTerminate: true,
		mode:            mode,
		out:             r,
		outW:            w,
		pid:             pid,
	}
}

func (p *fakeProcess) PID() int                { return p.pid }
func (p *fakeProcess) Mode() domain.LaunchMode { return p.mode }
func (p *fakeProcess) Done() <-chan struct{}   { return p.done }

func (p *fakeProcess) Streams() []ports.OutputStream {
	name := "stdout"
	if p.mode == domain.LaunchPTY {
		name = "output"
	}
	return []ports.OutputStream{{Name: name, Reader: p.out}}
}

func (p *fakeProcess) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	select {
	case <-p.done:
		return 0, ports.ErrProcessExited
	default:
	}
	if p.inputClosed {
		return 0, ports.ErrInputClosed
	}
	return p.input.Write(b)
}

func (p *fakeProcess) CloseInput() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inputClosed = true
	return nil
}

func (p *fakeProcess) Resize(cols, rows uint16) error {
	if p.mode == domain.LaunchPipe {
		return ports.ErrResizeUnsupported
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.size = [2]uint16{cols, rows}
	return nil
}

func (p *fakeProcess) Interrupt() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.interrupts++
	return nil
}

func (p *fakeProcess) Terminate() error {
	p.mu.Lock()
	p.terminates++
	exit := p.exitOnTerminate
	p.mu.Unlock()
	if exit {
		p.exit(domain.ExitStatus{Code: 143, Signal: "SIGTERM"})
	}
	return nil
}

func (p *fakeProcess) Kill() error {
	p.mu.Lock()
	p.kills++
	p.mu.Unlock()
	p.exit(domain.ExitStatus{Code: 137, Signal: "SIGKILL"})
	return nil
}

func (p *fakeProcess) ExitStatus() domain.ExitStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *fakeProcess) Close() error {
	return p.out.Close()
}

// emit writes one chunk of output, as the child would
func (p *fakeProcess) emit(data string) {
	_, _ = p.outW.Write([]byte(data))
}

// exit ends the output stream and reports the exit status
func (p *fakeProcess) exit(status domain.ExitStatus) {
	p.once.Do(func() {
		p.mu.Lock()
		p.status = status
		p.mu.Unlock()
		_ = p.outW.Close()
		close(p.done)
	})
}

func (p *fakeProcess) counts() (interrupts, terminates, kills int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.interrupts, p.terminates, p.kills
}

type fakeLauncher struct {
	err     error
	mu      sync.Mutex
	nextPID int
	procs   []*fakeProcess
	specs   []ports.LaunchSpec
}

func (l *fakeLauncher) Launch(ctx context.Context, spec ports.LaunchSpec) (ports.Process, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.specs = append(l.specs, spec)
	if l.err != nil {
		return nil, l.err
	}
	l.nextPID++
	p := newFakeProcess(1000+l.nextPID, spec.Mode)
	l.procs = append(l.procs, p)
	return p, nil
}

func (l *fakeLauncher) last() (*fakeProcess, ports.LaunchSpec) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.procs[len(l.procs)-1], l.specs[len(l.specs)-1]
}

// waitFor reads events until one matches, failing after a timeout
func waitFor(t *testing.T, sub *Subscription, match func(domain.Event) bool) domain.Event {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-sub.C:
			require.True(t, ok, "subscription closed")
			if match(ev) {
				return ev
			}
		case <-timeout:
			t.Fatal("timed out waiting for event")
		}
	}
}

func isExit(key domain.ProcessKey) func(domain.Event) bool {
	return func(ev domain.Event) bool {
		return ev.Kind == domain.EventExit && ev.Key() == key
	}
}

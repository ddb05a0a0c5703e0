package ports

import (
	"context"
	"io"

	"github.com/renato0307/duet/internal/domain"
)

// LaunchSpec is a fully resolved request to start one OS process
type LaunchSpec struct {
	Args []string
	Cols uint16
	Dir  string
	Env  []string
	Mode domain.LaunchMode
	Path string
	Rows uint16
}

// OutputStream is one readable output channel of a process
type OutputStream struct {
	Name   string
	Reader io.Reader
}

// Process is a live OS process started by a ProcessLauncher
type Process interface {
	// PID returns the OS process identifier
	PID() int
	// Mode returns how the process was launched
	Mode() domain.LaunchMode
	// Streams returns the output streams; pty processes have a single "output" stream
	Streams() []OutputStream
	// Write writes raw bytes to the process input
	Write(p []byte) (int, error)
	// CloseInput closes the process input (pipe mode only, no-op for pty)
	CloseInput() error
	// Resize changes the terminal size (ErrResizeUnsupported in pipe mode)
	Resize(cols, rows uint16) error
	// Interrupt sends the platform interrupt (Ctrl-C byte or SIGINT)
	Interrupt() error
	// Terminate asks the process group to exit (SIGTERM)
	Terminate() error
	// Kill forcibly terminates the process group (SIGKILL)
	Kill() error
	// Done is closed once the OS process has exited
	Done() <-chan struct{}
	// ExitStatus is valid after Done is closed
	ExitStatus() domain.ExitStatus
	// Close releases the terminal and pipe descriptors, unblocking pending reads
	Close() error
}

// ProcessLauncher starts OS processes
type ProcessLauncher interface {
	Launch(ctx context.Context, spec LaunchSpec) (Process, error)
}

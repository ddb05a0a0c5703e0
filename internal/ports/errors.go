package ports

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the session manager and its adapters
var (
	ErrExecutableNotFound = errors.New("executable not found")
	ErrInputClosed        = errors.New("process input is closed")
	ErrProcessExists      = errors.New("process already running for session role")
	ErrProcessExited      = errors.New("process has exited")
	ErrProcessNotFound    = errors.New("no live process for session role")
	ErrResizeUnsupported  = errors.New("resize is not supported for pipe-backed processes")
	ErrSessionNotFound    = errors.New("session not found")
	ErrUnknownAgent       = errors.New("unknown agent")
)

// LaunchError reports a failure to start a process, naming the binary involved
type LaunchError struct {
	Binary string
	Dir    string
	Err    error
}

func (e *LaunchError) Error() string {
	if e.Dir != "" {
		return fmt.Sprintf("failed to launch %s in %s: %v", e.Binary, e.Dir, e.Err)
	}
	return fmt.Sprintf("failed to launch %s: %v", e.Binary, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

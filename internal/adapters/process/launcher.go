package process

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/renato0307/duet/internal/domain"
	"github.com/renato0307/duet/internal/logging"
	"github.com/renato0307/duet/internal/ports"
)

const (
	defaultCols = 80
	defaultRows = 24
)

// Launcher implements ProcessLauncher with OS processes
type Launcher struct{}

// Compile-time interface verification
var _ ports.ProcessLauncher = (*Launcher)(nil)

// NewLauncher creates a new process launcher
func NewLauncher() *Launcher {
	return &Launcher{}
}

// Launch starts exactly one OS process in the requested mode
func (l *Launcher) Launch(ctx context.Context, spec ports.LaunchSpec) (ports.Process, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := exec.LookPath(spec.Path)
	if err != nil {
		return nil, &ports.LaunchError{
			Binary: spec.Path,
			Err:    fmt.Errorf("%w: %w", ports.ErrExecutableNotFound, err),
		}
	}

	if spec.Dir != "" {
		info, err := os.Stat(spec.Dir)
		if err != nil {
			return nil, &ports.LaunchError{Binary: spec.Path, Dir: spec.Dir, Err: fmt.Errorf("working directory is not accessible: %w", err)}
		}
		if !info.IsDir() {
			return nil, &ports.LaunchError{Binary: spec.Path, Dir: spec.Dir, Err: fmt.Errorf("working directory is not a directory")}
		}
	}

	cmd := exec.Command(path, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.Env = append(os.Environ(), spec.Env...)

	logging.Logger.Debug("Launching process", "path", path, "args", spec.Args, "dir", spec.Dir, "mode", spec.Mode)

	var proc ports.Process
	switch spec.Mode {
	case domain.LaunchPTY:
		proc, err = startPTY(cmd, spec.Cols, spec.Rows)
	case domain.LaunchPipe:
		proc, err = startPipe(cmd)
	default:
		return nil, fmt.Errorf("unknown launch mode: %q", spec.Mode)
	}
	if err != nil {
		return nil, &ports.LaunchError{Binary: spec.Path, Dir: spec.Dir, Err: err}
	}

	logging.Logger.Info("Process started", "path", path, "pid", proc.PID(), "mode", spec.Mode)
	return proc, nil
}

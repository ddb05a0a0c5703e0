package logging

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"

	"github.com/google/uuid"
)

// Environment variables through which child processes inherit the log setup
const (
	EnvDebug       = "DUET_DEBUG"
	EnvDebugFile   = "DUET_DEBUG_FILE"
	EnvMaxLogFiles = "DUET_MAX_LOG_FILES"
)

const defaultMaxFiles = 1000

// Logger is the public logger instance accessible from all packages.
// It discards everything until Initialize is called.
var Logger = discard()

// Options controls where debug logs go
type Options struct {
	Debug    bool
	File     string // explicit log file, never rotated
	MaxFiles int    // per-run files kept in the log dir, 0 keeps all
}

// Initialize sets up Logger and returns the log file in use, or an empty
// string when logging is disabled. Values inherited from the environment
// fill in whatever opts leaves at its default.
func Initialize(opts Options) (string, error) {
	opts = inherit(opts)

	if !opts.Debug && opts.File == "" {
		Logger = discard()
		return "", nil
	}

	path := opts.File
	if path == "" {
		dir, err := LogDir()
		if err != nil {
			return "", fmt.Errorf("failed to get log directory: %w", err)
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create log directory: %w", err)
		}
		if opts.MaxFiles > 0 {
			if err := rotateLogs(dir, opts.MaxFiles); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: log rotation failed: %v\n", err)
			}
		}
		path = filepath.Join(dir, uuid.New().String()+".log")
	} else if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create log file: %w", err)
	}

	Logger = slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})).
		With("pid", os.Getpid())

	// Announce only in the process that turned debugging on
	if os.Getenv(EnvDebug) == "" {
		Logger.Info("Debug logging initialized", "log_file", path)
		fmt.Fprintf(os.Stderr, "Debug mode enabled. Logs: %s\n", path)
	}

	return path, nil
}

func inherit(opts Options) Options {
	if os.Getenv(EnvDebug) == "1" {
		opts.Debug = true
	}
	if opts.File == "" {
		opts.File = os.Getenv(EnvDebugFile)
	}
	if v := os.Getenv(EnvMaxLogFiles); v != "" && opts.MaxFiles == defaultMaxFiles {
		if n, err := strconv.Atoi(v); err == nil {
			opts.MaxFiles = n
		}
	}
	return opts
}

func discard() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// rotateLogs deletes the oldest *.log files so that, with the file about to
// be created, at most maxFiles remain
func rotateLogs(dir string, maxFiles int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read log directory: %w", err)
	}

	var logs []fs.FileInfo
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".log" {
			continue
		}
		if info, err := entry.Info(); err == nil {
			logs = append(logs, info)
		}
	}
	if len(logs) < maxFiles {
		return nil
	}

	slices.SortFunc(logs, func(a, b fs.FileInfo) int {
		return a.ModTime().Compare(b.ModTime())
	})

	for _, info := range logs[:len(logs)-maxFiles+1] {
		p := filepath.Join(dir, info.Name())
		if err := os.Remove(p); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to delete old log file %s: %v\n", p, err)
		}
	}
	return nil
}

// LogDir returns the OS-specific directory for per-run log files
func LogDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Logs", "duet"), nil
	case "linux":
		state := os.Getenv("XDG_STATE_HOME")
		if state == "" {
			state = filepath.Join(home, ".local", "state")
		}
		return filepath.Join(state, "duet"), nil
	default:
		return filepath.Join(home, ".duet", "logs"), nil
	}
}

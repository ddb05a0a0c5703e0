package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
)

// ExecCmd runs a shell command once and prints its captured output
type ExecCmd struct {
	Command []string `arg:"" passthrough:"" help:"Command line to run"`
	Cwd     string   `help:"Working directory" default:"." type:"path"`
	JSON    bool     `help:"Print the result as JSON"`
	Session string   `help:"Session the command belongs to (for logs)"`
	Shell   string   `help:"Shell used to run the command"`
}

// Run executes the exec command
func (e *ExecCmd) Run(cli *CLI) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessionID := e.Session
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	result, err := cli.Container.ProcessManager.RunCommand(ctx, sessionID, strings.Join(e.Command, " "), e.Cwd, e.Shell)
	if err != nil {
		return err
	}

	if e.JSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Fprint(os.Stdout, result.Stdout)
	fmt.Fprint(os.Stderr, result.Stderr)
	if result.ExitCode != 0 {
		return &ExitError{Code: result.ExitCode}
	}
	return nil
}

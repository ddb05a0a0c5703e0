package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/renato0307/duet/internal/ports"
	"github.com/renato0307/duet/internal/theme"
)

const timeFormat = "2006-01-02 15:04:05"

// SessionsCmd shows session history
type SessionsCmd struct {
	List SessionsListCmd `cmd:"list" help:"List recorded sessions" default:"1"`
	Show SessionsShowCmd `cmd:"show" help:"Show a session and its process runs"`
}

// SessionsListCmd lists recorded sessions
type SessionsListCmd struct {
	Format string `help:"Output format: table or json" enum:"table,json" default:"table"`
}

// Run executes the list command
func (s *SessionsListCmd) Run(cli *CLI) error {
	records, err := cli.Container.SessionHistory.ListSessions(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if s.Format == "json" {
		return printJSON(records)
	}

	if len(records) == 0 {
		fmt.Println("No sessions recorded")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tAGENT\tAGENT SESSION\tDIR\tUPDATED")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.AgentID, orDash(r.AgentSessionID), r.WorkingDir, r.UpdatedAt.Local().Format(timeFormat))
	}
	return w.Flush()
}

// SessionsShowCmd shows one session
type SessionsShowCmd struct {
	Format string `help:"Output format: table or json" enum:"table,json" default:"table"`
	ID     string `arg:"" help:"Session ID"`
}

// Run executes the show command
func (s *SessionsShowCmd) Run(cli *CLI) error {
	ctx := context.Background()
	record, err := cli.Container.SessionHistory.GetSession(ctx, s.ID)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	runs, err := cli.Container.SessionHistory.ListRuns(ctx, s.ID)
	if err != nil {
		return fmt.Errorf("failed to list process runs: %w", err)
	}

	if s.Format == "json" {
		return printJSON(map[string]any{"session": record, "runs": runs})
	}

	fmt.Println(theme.HeaderStyle.Render("Session " + record.ID))
	fmt.Printf("Agent: %s\n", record.AgentID)
	fmt.Printf("Agent Session: %s\n", orDash(record.AgentSessionID))
	fmt.Printf("Model: %s\n", orDash(record.ModelID))
	fmt.Printf("Read Only: %t\n", record.ReadOnly)
	fmt.Printf("Working Dir: %s\n", record.WorkingDir)
	fmt.Printf("Created: %s\n", record.CreatedAt.Local().Format(timeFormat))
	fmt.Printf("Updated: %s\n", record.UpdatedAt.Local().Format(timeFormat))
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ROLE\tPID\tMODE\tSTARTED\tEXIT\tARGS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\n",
			run.Role, run.PID, run.Mode, run.StartedAt.Local().Format(timeFormat), formatRunExit(run), strings.Join(run.Args, " "))
	}
	return w.Flush()
}

func formatRunExit(run ports.ProcessRun) string {
	if run.ExitedAt == nil {
		return "running"
	}
	code := "?"
	if run.ExitCode != nil {
		code = fmt.Sprintf("%d", *run.ExitCode)
	}
	if run.Signal != "" {
		code += " " + run.Signal
	}
	return fmt.Sprintf("%s after %s", code, run.ExitedAt.Sub(run.StartedAt).Round(time.Millisecond))
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

package theme

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/renato0307/duet/internal/domain"
)

// Tool call status icons
const (
	IconCompleted = "●"
	IconError     = "✗"
	IconPending   = "○"
	IconRunning   = "◐"
)

var planMarks = map[string]string{
	"completed":   "[x]",
	"in_progress": "[~]",
}

// ToolIcon returns the icon of a tool call status
func ToolIcon(status domain.ToolStatus) string {
	switch status {
	case domain.ToolRunning:
		return IconRunning
	case domain.ToolCompleted:
		return IconCompleted
	case domain.ToolError:
		return IconError
	}
	return IconPending
}

// RenderEvent formats a normalized agent event for a terminal.
// Text and thinking chunks are returned as-is so streamed deltas join up;
// every other kind renders as whole lines. Raw output and spawn events
// render as "".
func RenderEvent(ev domain.Event) string {
	switch ev.Kind {
	case domain.EventText:
		return NormalStyle.Render(ev.Text)
	case domain.EventThinking:
		return ThinkingStyle.Render(ev.Text)
	case domain.EventToolCall:
		return renderToolCall(ev.ToolCall)
	case domain.EventPlan:
		return renderPlan(ev.Plan)
	case domain.EventCommands:
		names := make([]string, 0, len(ev.Commands))
		for _, c := range ev.Commands {
			names = append(names, "/"+c.Name)
		}
		return "\n" + LabelStyle.Render("Commands: ") + strings.Join(names, " ") + "\n"
	case domain.EventMode:
		return "\n" + LabelStyle.Render("Mode: ") + ev.ModeID + "\n"
	case domain.EventSessionID:
		return MutedStyle.Render("agent session "+ev.AgentSessionID) + "\n"
	case domain.EventResult:
		reason := ev.StopReason
		if reason == "" {
			reason = "done"
		}
		return "\n" + SuccessStyle.Render("✓ "+reason) + "\n"
	case domain.EventError:
		return "\n" + ErrorStyle.Render("✗ "+ev.Error) + "\n"
	case domain.EventExit:
		return RenderExit(ev.Exit)
	}
	return ""
}

// RenderExit formats an exit status line
func RenderExit(status *domain.ExitStatus) string {
	if status == nil {
		return ""
	}
	if status.Success() {
		return MutedStyle.Render("process exited") + "\n"
	}
	msg := fmt.Sprintf("process exited with code %d", status.Code)
	if status.Signal != "" {
		msg += " (" + status.Signal + ")"
	}
	return ErrorStyle.Render(msg) + "\n"
}

func renderToolCall(tc *domain.ToolCall) string {
	if tc == nil {
		return ""
	}
	title := tc.Title
	if title == "" {
		title = tc.Kind
	}
	if title == "" {
		title = tc.ID
	}

	style := ToolStatusStyle(tc.Status)
	var b strings.Builder
	b.WriteString("\n")
	if tc.Update {
		b.WriteString("  ")
	}
	b.WriteString(style.Render(ToolIcon(tc.Status)))
	b.WriteString(" ")
	if tc.Update {
		b.WriteString(LabelStyle.Render(title + " " + string(tc.Status)))
	} else {
		b.WriteString(TitleStyle.Render(title))
	}
	for _, loc := range tc.Locations {
		path := loc.Path
		if loc.Line != nil {
			path += ":" + strconv.Itoa(*loc.Line)
		}
		b.WriteString("\n    " + MutedStyle.Render(path))
	}
	b.WriteString("\n")
	return b.String()
}

func renderPlan(entries []domain.PlanEntry) string {
	var b strings.Builder
	b.WriteString("\n" + HeaderStyle.Render("Plan") + "\n")
	for _, e := range entries {
		mark, ok := planMarks[e.Status]
		if !ok {
			mark = "[ ]"
		}
		b.WriteString("  " + LabelStyle.Render(mark) + " " + e.Content + "\n")
	}
	return b.String()
}

// RenderProcessTable renders live processes as a table
func RenderProcessTable(infos []domain.ProcessInfo) string {
	rows := make([][]string, 0, len(infos))
	for _, p := range infos {
		rows = append(rows, []string{
			p.SessionID,
			string(p.Role),
			p.AgentID,
			strconv.Itoa(p.PID),
			string(p.Mode),
			StateStyle(p.State).Render(string(p.State)),
			formatAge(p.StartedAt),
		})
	}
	return renderTable([]string{"SESSION", "ROLE", "AGENT", "PID", "MODE", "STATE", "AGE"}, rows)
}

// RenderAgentTable renders agent descriptors with their capabilities
func RenderAgentTable(descs []*domain.AgentDescriptor) string {
	rows := make([][]string, 0, len(descs))
	for _, d := range descs {
		var caps []string
		if d.SupportsResume() {
			caps = append(caps, "resume")
		}
		if d.SupportsReadOnly() {
			caps = append(caps, "read-only")
		}
		if d.SupportsModel() {
			caps = append(caps, "model")
		}
		if d.RequiresPTY {
			caps = append(caps, "pty")
		}
		rows = append(rows, []string{
			d.ID,
			d.Name,
			d.Executable(),
			string(d.Output),
			strings.Join(caps, ","),
		})
	}
	return renderTable([]string{"ID", "NAME", "COMMAND", "OUTPUT", "CAPABILITIES"}, rows)
}

func renderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderHeader(false).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return TableCellStyle
		})
	return t.Render() + "\n"
}

// formatAge renders the time since t in a compact form
func formatAge(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	return fmt.Sprintf("%dd", int(d.Hours()/24))
}

package protocol

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/renato0307/duet/internal/domain"
)

// codexRecord is one line of `codex exec --json`
type codexRecord struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
	Item     *codexItem `json:"item"`
	Message  string     `json:"message"`
	ThreadID string     `json:"thread_id"`
	Type     string     `json:"type"`
}

type codexItem struct {
	AggregatedOutput string `json:"aggregated_output"`
	Changes          []struct {
		Kind string `json:"kind"`
		Path string `json:"path"`
	} `json:"changes"`
	Command string `json:"command"`
	ID      string `json:"id"`
	Items   []struct {
		Completed bool   `json:"completed"`
		Text      string `json:"text"`
	} `json:"items"`
	Message string `json:"message"`
	Query   string `json:"query"`
	Server  string `json:"server"`
	Status  string `json:"status"`
	Text    string `json:"text"`
	Tool    string `json:"tool"`
	Type    string `json:"type"`
}

func parseCodex(sessionID string, line []byte) []domain.Event {
	var rec codexRecord
	if err := json.Unmarshal(line, &rec); err != nil {
		return nil
	}

	switch rec.Type {
	case "thread.started":
		if rec.ThreadID != "" {
			return []domain.Event{{Kind: domain.EventSessionID, SessionID: sessionID, AgentSessionID: rec.ThreadID}}
		}
	case "item.started", "item.updated", "item.completed":
		if rec.Item != nil {
			return codexItemEvents(sessionID, rec.Type, rec.Item)
		}
	case "turn.completed":
		return []domain.Event{{Kind: domain.EventResult, SessionID: sessionID, StopReason: "end_turn"}}
	case "turn.failed":
		msg := "turn failed"
		if rec.Error != nil {
			msg = rec.Error.Message
		}
		return []domain.Event{{Kind: domain.EventError, SessionID: sessionID, Error: msg}}
	case "error":
		return []domain.Event{{Kind: domain.EventError, SessionID: sessionID, Error: rec.Message}}
	}
	return nil
}

func codexItemEvents(sessionID, recordType string, item *codexItem) []domain.Event {
	ev := domain.Event{SessionID: sessionID}

	switch item.Type {
	case "agent_message":
		if recordType != "item.completed" {
			return nil
		}
		ev.Kind = domain.EventText
		ev.Text = item.Text
	case "reasoning":
		if recordType != "item.completed" {
			return nil
		}
		ev.Kind = domain.EventThinking
		ev.Text = item.Text
	case "todo_list":
		ev.Kind = domain.EventPlan
		for _, t := range item.Items {
			status := "pending"
			if t.Completed {
				status = "completed"
			}
			ev.Plan = append(ev.Plan, domain.PlanEntry{Content: t.Text, Status: status})
		}
	case "error":
		ev.Kind = domain.EventError
		ev.Error = item.Message
	case "command_execution", "file_change", "mcp_tool_call", "web_search":
		ev.Kind = domain.EventToolCall
		ev.ToolCall = codexToolCall(recordType, item)
	default:
		return nil
	}
	return []domain.Event{ev}
}

func codexToolCall(recordType string, item *codexItem) *domain.ToolCall {
	tc := &domain.ToolCall{
		ID:     item.ID,
		Status: MapToolStatus(item.Status),
		Update: recordType != "item.started",
	}
	if item.Status == "" && recordType == "item.completed" {
		tc.Status = domain.ToolCompleted
	}

	switch item.Type {
	case "command_execution":
		tc.Kind = "execute"
		tc.Title = item.Command
		if item.AggregatedOutput != "" {
			tc.Content = []string{item.AggregatedOutput}
		}
	case "file_change":
		tc.Kind = "edit"
		paths := make([]string, 0, len(item.Changes))
		for _, c := range item.Changes {
			paths = append(paths, c.Path)
			tc.Locations = append(tc.Locations, domain.FileLocation{Path: c.Path})
		}
		tc.Title = strings.Join(paths, ", ")
	case "mcp_tool_call":
		tc.Kind = "other"
		tc.Title = fmt.Sprintf("%s.%s", item.Server, item.Tool)
	case "web_search":
		tc.Kind = "fetch"
		tc.Title = item.Query
	}
	return tc
}

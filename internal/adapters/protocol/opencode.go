package protocol

import (
	"encoding/json"

	"github.com/renato0307/duet/internal/domain"
)

// opencodeRecord is one line of `opencode run --format json`
type opencodeRecord struct {
	Error *struct {
		Data *struct {
			Message string `json:"message"`
		} `json:"data"`
		Name string `json:"name"`
	} `json:"error"`
	Part      *opencodePart `json:"part"`
	SessionID string        `json:"sessionID"`
	Type      string        `json:"type"`
}

type opencodePart struct {
	CallID string `json:"callID"`
	Reason string `json:"reason"`
	State  *struct {
		Error  string          `json:"error"`
		Input  json.RawMessage `json:"input"`
		Output string          `json:"output"`
		Status string          `json:"status"`
		Title  string          `json:"title"`
	} `json:"state"`
	Text string `json:"text"`
	Tool string `json:"tool"`
}

var opencodeToolStatuses = map[string]string{
	"running": "in_progress",
	"error":   "failed",
}

func parseOpenCode(sessionID string, line []byte) []domain.Event {
	var rec opencodeRecord
	if err := json.Unmarshal(line, &rec); err != nil {
		return nil
	}

	switch rec.Type {
	case "step_start":
		if rec.SessionID != "" {
			return []domain.Event{{Kind: domain.EventSessionID, SessionID: sessionID, AgentSessionID: rec.SessionID}}
		}
	case "text":
		if rec.Part != nil {
			return []domain.Event{{Kind: domain.EventText, SessionID: sessionID, Text: rec.Part.Text}}
		}
	case "reasoning":
		if rec.Part != nil {
			return []domain.Event{{Kind: domain.EventThinking, SessionID: sessionID, Text: rec.Part.Text}}
		}
	case "tool_use":
		if rec.Part != nil && rec.Part.State != nil {
			return []domain.Event{{Kind: domain.EventToolCall, SessionID: sessionID, ToolCall: opencodeToolCall(rec.Part)}}
		}
	case "step_finish":
		if rec.Part != nil && rec.Part.Reason != "" && rec.Part.Reason != "tool-calls" {
			return []domain.Event{{Kind: domain.EventResult, SessionID: sessionID, StopReason: rec.Part.Reason}}
		}
	case "error":
		msg := "unknown error"
		if rec.Error != nil {
			msg = rec.Error.Name
			if rec.Error.Data != nil && rec.Error.Data.Message != "" {
				msg = rec.Error.Data.Message
			}
		}
		return []domain.Event{{Kind: domain.EventError, SessionID: sessionID, Error: msg}}
	}
	return nil
}

func opencodeToolCall(part *opencodePart) *domain.ToolCall {
	state := part.State
	status := state.Status
	if mapped, ok := opencodeToolStatuses[status]; ok {
		status = mapped
	}

	tc := &domain.ToolCall{
		ID:       part.CallID,
		Kind:     part.Tool,
		RawInput: state.Input,
		Status:   MapToolStatus(status),
		Title:    firstNonEmpty(state.Title, part.Tool),
		Update:   state.Status != "pending",
	}
	if out := firstNonEmpty(state.Output, state.Error); out != "" {
		tc.Content = []string{out}
	}
	return tc
}

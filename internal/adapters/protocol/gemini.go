package protocol

import (
	"encoding/json"

	"github.com/renato0307/duet/internal/domain"
)

// geminiRecord is one line of `gemini --output-format stream-json`
type geminiRecord struct {
	Content    string          `json:"content"`
	Message    string          `json:"message"`
	Output     string          `json:"output"`
	Parameters json.RawMessage `json:"parameters"`
	Role       string          `json:"role"`
	SessionID  string          `json:"session_id"`
	Status     string          `json:"status"`
	ToolID     string          `json:"tool_id"`
	ToolName   string          `json:"tool_name"`
	Type       string          `json:"type"`
}

var geminiToolStatuses = map[string]string{
	"success": "completed",
	"error":   "failed",
}

func parseGemini(sessionID string, line []byte) []domain.Event {
	var rec geminiRecord
	if err := json.Unmarshal(line, &rec); err != nil {
		return nil
	}

	switch rec.Type {
	case "init":
		if rec.SessionID != "" {
			return []domain.Event{{Kind: domain.EventSessionID, SessionID: sessionID, AgentSessionID: rec.SessionID}}
		}
	case "message":
		if rec.Role == "assistant" {
			return []domain.Event{{Kind: domain.EventText, SessionID: sessionID, Text: rec.Content}}
		}
	case "tool_use":
		return []domain.Event{{
			Kind:      domain.EventToolCall,
			SessionID: sessionID,
			ToolCall: &domain.ToolCall{
				ID:       rec.ToolID,
				Kind:     rec.ToolName,
				RawInput: rec.Parameters,
				Status:   domain.ToolRunning,
				Title:    rec.ToolName,
			},
		}}
	case "tool_result":
		status := rec.Status
		if mapped, ok := geminiToolStatuses[status]; ok {
			status = mapped
		}
		tc := &domain.ToolCall{ID: rec.ToolID, Status: MapToolStatus(status), Update: true}
		if rec.Output != "" {
			tc.Content = []string{rec.Output}
		}
		return []domain.Event{{Kind: domain.EventToolCall, SessionID: sessionID, ToolCall: tc}}
	case "error":
		return []domain.Event{{Kind: domain.EventError, SessionID: sessionID, Error: rec.Message}}
	case "result":
		if rec.Status != "" && rec.Status != "success" {
			return []domain.Event{{Kind: domain.EventError, SessionID: sessionID, Error: firstNonEmpty(rec.Message, rec.Status)}}
		}
		return []domain.Event{{Kind: domain.EventResult, SessionID: sessionID, StopReason: "end_turn"}}
	}
	return nil
}

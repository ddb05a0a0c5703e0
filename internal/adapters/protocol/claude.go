package protocol

import (
	"encoding/json"

	"github.com/renato0307/duet/internal/domain"
)

// claudeRecord is one line of `claude --output-format stream-json`
type claudeRecord struct {
	Event     *claudeStreamEvent `json:"event"`
	IsError   bool               `json:"is_error"`
	Message   *claudeMessage     `json:"message"`
	Result    string             `json:"result"`
	SessionID string             `json:"session_id"`
	Subtype   string             `json:"subtype"`
	Type      string             `json:"type"`
}

type claudeMessage struct {
	Content    json.RawMessage `json:"content"`
	StopReason string          `json:"stop_reason"`
}

type claudeBlock struct {
	Content   json.RawMessage `json:"content"`
	ID        string          `json:"id"`
	Input     json.RawMessage `json:"input"`
	IsError   bool            `json:"is_error"`
	Name      string          `json:"name"`
	Text      string          `json:"text"`
	Thinking  string          `json:"thinking"`
	ToolUseID string          `json:"tool_use_id"`
	Type      string          `json:"type"`
}

// claudeStreamEvent carries partial deltas when partial messages are enabled
type claudeStreamEvent struct {
	Delta *struct {
		Text     string `json:"text"`
		Thinking string `json:"thinking"`
		Type     string `json:"type"`
	} `json:"delta"`
	Type string `json:"type"`
}

func parseClaude(sessionID string, line []byte) []domain.Event {
	var rec claudeRecord
	if err := json.Unmarshal(line, &rec); err != nil {
		return nil
	}

	switch rec.Type {
	case "system":
		if rec.Subtype == "init" && rec.SessionID != "" {
			return []domain.Event{{Kind: domain.EventSessionID, SessionID: sessionID, AgentSessionID: rec.SessionID}}
		}
	case "assistant":
		if rec.Message != nil {
			return claudeAssistantEvents(sessionID, rec.Message.Content)
		}
	case "user":
		if rec.Message != nil {
			return claudeToolResults(sessionID, rec.Message.Content)
		}
	case "stream_event":
		return claudeDelta(sessionID, rec.Event)
	case "result":
		events := []domain.Event{}
		if rec.IsError {
			events = append(events, domain.Event{Kind: domain.EventError, SessionID: sessionID, Error: firstNonEmpty(rec.Result, rec.Subtype)})
		}
		return append(events, domain.Event{Kind: domain.EventResult, SessionID: sessionID, StopReason: rec.Subtype, Text: rec.Result})
	}
	return nil
}

func claudeBlocks(content json.RawMessage) []claudeBlock {
	var blocks []claudeBlock
	if err := json.Unmarshal(content, &blocks); err != nil {
		// A bare string is plain text
		var s string
		if json.Unmarshal(content, &s) == nil && s != "" {
			return []claudeBlock{{Type: "text", Text: s}}
		}
		return nil
	}
	return blocks
}

func claudeAssistantEvents(sessionID string, content json.RawMessage) []domain.Event {
	var events []domain.Event
	for _, b := range claudeBlocks(content) {
		switch b.Type {
		case "text":
			events = append(events, domain.Event{Kind: domain.EventText, SessionID: sessionID, Text: b.Text})
		case "thinking":
			events = append(events, domain.Event{Kind: domain.EventThinking, SessionID: sessionID, Text: b.Thinking})
		case "tool_use":
			events = append(events, domain.Event{
				Kind:      domain.EventToolCall,
				SessionID: sessionID,
				ToolCall: &domain.ToolCall{
					ID:       b.ID,
					Title:    b.Name,
					Kind:     b.Name,
					RawInput: b.Input,
					Status:   domain.ToolRunning,
				},
			})
		}
	}
	return events
}

func claudeToolResults(sessionID string, content json.RawMessage) []domain.Event {
	var events []domain.Event
	for _, b := range claudeBlocks(content) {
		if b.Type != "tool_result" {
			continue
		}
		status := domain.ToolCompleted
		if b.IsError {
			status = domain.ToolError
		}
		tc := &domain.ToolCall{ID: b.ToolUseID, Status: status, RawOutput: b.Content, Update: true}
		for _, inner := range claudeBlocks(b.Content) {
			tc.Content = append(tc.Content, contentBlock{Type: inner.Type, Text: inner.Text}.text())
		}
		events = append(events, domain.Event{Kind: domain.EventToolCall, SessionID: sessionID, ToolCall: tc})
	}
	return events
}

func claudeDelta(sessionID string, ev *claudeStreamEvent) []domain.Event {
	if ev == nil || ev.Type != "content_block_delta" || ev.Delta == nil {
		return nil
	}
	switch ev.Delta.Type {
	case "text_delta":
		return []domain.Event{{Kind: domain.EventText, SessionID: sessionID, Text: ev.Delta.Text}}
	case "thinking_delta":
		return []domain.Event{{Kind: domain.EventThinking, SessionID: sessionID, Text: ev.Delta.Thinking}}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

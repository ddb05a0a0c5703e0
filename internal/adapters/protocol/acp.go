package protocol

import (
	"encoding/json"

	"github.com/renato0307/duet/internal/domain"
	"github.com/renato0307/duet/internal/logging"
)

// acpMessage is any JSON-RPC 2.0 message on an ACP agent's stdout
type acpMessage struct {
	Error  *rpcError       `json:"error"`
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
	Result json.RawMessage `json:"result"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type acpSessionNotification struct {
	SessionID string          `json:"sessionId"`
	Update    json.RawMessage `json:"update"`
}

type acpUpdate struct {
	AvailableCommands []acpCommand          `json:"availableCommands"`
	Content           json.RawMessage       `json:"content"`
	CurrentModeID     string                `json:"currentModeId"`
	Entries           []domain.PlanEntry    `json:"entries"`
	Kind              string                `json:"kind"`
	Locations         []domain.FileLocation `json:"locations"`
	RawInput          json.RawMessage       `json:"rawInput"`
	RawOutput         json.RawMessage       `json:"rawOutput"`
	SessionUpdate     string                `json:"sessionUpdate"`
	Status            string                `json:"status"`
	Title             string                `json:"title"`
	ToolCallID        string                `json:"toolCallId"`
}

type acpCommand struct {
	Description string `json:"description"`
	Input       *struct {
		Hint string `json:"hint"`
	} `json:"input"`
	Name string `json:"name"`
}

type acpResult struct {
	SessionID  string `json:"sessionId"`
	StopReason string `json:"stopReason"`
}

// ParseACPMessage translates one line of ACP JSON-RPC output into events.
// Notifications map one-to-one; results carrying a session id or stop reason
// and error responses are surfaced too. Anything else yields nothing.
func ParseACPMessage(sessionID string, line []byte) []domain.Event {
	var msg acpMessage
	if err := json.Unmarshal(line, &msg); err != nil {
		logging.Logger.Debug("Ignoring non-JSON line", "session_id", sessionID, "error", err)
		return nil
	}

	switch {
	case msg.Method == "session/update":
		return parseSessionUpdate(sessionID, msg.Params)
	case msg.Error != nil && msg.Method == "":
		return []domain.Event{{Kind: domain.EventError, SessionID: sessionID, Error: msg.Error.Message}}
	case len(msg.Result) > 0 && msg.Method == "":
		return parseACPResult(sessionID, msg.Result)
	}
	return nil
}

func parseSessionUpdate(sessionID string, params json.RawMessage) []domain.Event {
	var n acpSessionNotification
	if err := json.Unmarshal(params, &n); err != nil {
		return nil
	}
	var u acpUpdate
	if err := json.Unmarshal(n.Update, &u); err != nil {
		return nil
	}

	ev := domain.Event{SessionID: sessionID}
	switch u.SessionUpdate {
	case "agent_message_chunk":
		ev.Kind = domain.EventText
		ev.Text = ContentText(u.Content)
	case "agent_thought_chunk":
		ev.Kind = domain.EventThinking
		ev.Text = ContentText(u.Content)
	case "tool_call", "tool_call_update":
		ev.Kind = domain.EventToolCall
		ev.ToolCall = u.toolCall()
	case "plan":
		ev.Kind = domain.EventPlan
		ev.Plan = u.Entries
	case "available_commands_update":
		ev.Kind = domain.EventCommands
		ev.Commands = make([]domain.AvailableCommand, 0, len(u.AvailableCommands))
		for _, c := range u.AvailableCommands {
			cmd := domain.AvailableCommand{Name: c.Name, Description: c.Description}
			if c.Input != nil {
				cmd.Hint = c.Input.Hint
			}
			ev.Commands = append(ev.Commands, cmd)
		}
	case "current_mode_update":
		ev.Kind = domain.EventMode
		ev.ModeID = u.CurrentModeID
	default:
		// user_message_chunk echoes our own prompt
		return nil
	}
	return []domain.Event{ev}
}

func (u acpUpdate) toolCall() *domain.ToolCall {
	tc := &domain.ToolCall{
		ID:        u.ToolCallID,
		Kind:      u.Kind,
		Locations: u.Locations,
		RawInput:  u.RawInput,
		RawOutput: u.RawOutput,
		Status:    MapToolStatus(u.Status),
		Title:     u.Title,
		Update:    u.SessionUpdate == "tool_call_update",
	}

	var blocks []json.RawMessage
	if len(u.Content) > 0 && json.Unmarshal(u.Content, &blocks) == nil {
		tc.Content = contentTexts(blocks)
	}
	return tc
}

func parseACPResult(sessionID string, raw json.RawMessage) []domain.Event {
	var r acpResult
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil
	}

	var events []domain.Event
	if r.SessionID != "" {
		events = append(events, domain.Event{Kind: domain.EventSessionID, SessionID: sessionID, AgentSessionID: r.SessionID})
	}
	if r.StopReason != "" {
		events = append(events, domain.Event{Kind: domain.EventResult, SessionID: sessionID, StopReason: r.StopReason})
	}
	return events
}

package protocol

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/renato0307/duet/internal/logging"
)

// ACPProtocolVersion is the protocol version sent in initialize
const ACPProtocolVersion = 1

const methodNotFound = -32601

// ACPClient is the client half of an ACP conversation over an agent's stdin.
// It performs the initialize and session handshake, queues prompts until the
// agent session exists, and answers requests the agent sends back.
type ACPClient struct {
	agentSessionID string
	cwd            string
	enc            *json.Encoder
	mu             sync.Mutex
	nextID         int64
	pending        map[int64]string
	queued         []string
	readOnly       bool
	resumeToken    string
}

// ACPClientOptions configures a new ACPClient
type ACPClientOptions struct {
	ReadOnly    bool
	ResumeToken string
	WorkingDir  string
}

type rpcRequest struct {
	ID      *int64 `json:"id,omitempty"`
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type rpcResponse struct {
	Error   *rpcError       `json:"error,omitempty"`
	ID      json.RawMessage `json:"id"`
	JSONRPC string          `json:"jsonrpc"`
	Result  any             `json:"result,omitempty"`
}

type permissionRequest struct {
	Options []struct {
		Kind     string `json:"kind"`
		OptionID string `json:"optionId"`
	} `json:"options"`
}

// NewACPClient creates a client writing JSON-RPC messages to w
func NewACPClient(w io.Writer, opts ACPClientOptions) *ACPClient {
	return &ACPClient{
		cwd:         opts.WorkingDir,
		enc:         json.NewEncoder(w),
		pending:     make(map[int64]string),
		readOnly:    opts.ReadOnly,
		resumeToken: opts.ResumeToken,
	}
}

// Start sends initialize; the session request follows its response
func (c *ACPClient) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.request("initialize", map[string]any{
		"protocolVersion": ACPProtocolVersion,
		"clientCapabilities": map[string]any{
			"fs":       map[string]bool{"readTextFile": false, "writeTextFile": false},
			"terminal": false,
		},
		"clientInfo": map[string]string{"name": "duet"},
	})
}

// Prompt sends a user turn, or queues it until the agent session is ready
func (c *ACPClient) Prompt(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.agentSessionID == "" {
		c.queued = append(c.queued, text)
		return nil
	}
	return c.prompt(text)
}

// Cancel asks the agent to stop the current turn
func (c *ACPClient) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.agentSessionID == "" {
		return nil
	}
	return c.enc.Encode(rpcRequest{
		JSONRPC: "2.0",
		Method:  "session/cancel",
		Params:  map[string]string{"sessionId": c.agentSessionID},
	})
}

// AgentSessionID returns the session id assigned by the agent, if known
func (c *ACPClient) AgentSessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.agentSessionID
}

// HandleLine advances the handshake on responses and answers agent requests.
// Lines that are neither are ignored.
func (c *ACPClient) HandleLine(line []byte) error {
	var msg acpMessage
	if err := json.Unmarshal(line, &msg); err != nil || len(msg.ID) == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if msg.Method != "" {
		return c.answer(msg)
	}

	id, err := strconv.ParseInt(string(msg.ID), 10, 64)
	if err != nil {
		return nil
	}
	method, ok := c.pending[id]
	if !ok {
		return nil
	}
	delete(c.pending, id)

	if msg.Error != nil {
		logging.Logger.Warn("ACP request failed", "method", method, "code", msg.Error.Code, "error", msg.Error.Message)
		return nil
	}

	switch method {
	case "initialize":
		return c.openSession()
	case "session/new":
		var r acpResult
		if err := json.Unmarshal(msg.Result, &r); err != nil || r.SessionID == "" {
			return fmt.Errorf("session/new returned no session id")
		}
		return c.ready(r.SessionID)
	case "session/load":
		return c.ready(c.resumeToken)
	}
	return nil
}

func (c *ACPClient) openSession() error {
	if c.resumeToken != "" {
		return c.request("session/load", map[string]any{
			"sessionId":  c.resumeToken,
			"cwd":        c.cwd,
			"mcpServers": []any{},
		})
	}
	return c.request("session/new", map[string]any{
		"cwd":        c.cwd,
		"mcpServers": []any{},
	})
}

func (c *ACPClient) ready(agentSessionID string) error {
	c.agentSessionID = agentSessionID
	queued := c.queued
	c.queued = nil
	for _, text := range queued {
		if err := c.prompt(text); err != nil {
			return err
		}
	}
	return nil
}

func (c *ACPClient) prompt(text string) error {
	return c.request("session/prompt", map[string]any{
		"sessionId": c.agentSessionID,
		"prompt":    []map[string]string{{"type": "text", "text": text}},
	})
}

func (c *ACPClient) request(method string, params any) error {
	c.nextID++
	id := c.nextID
	c.pending[id] = method
	if err := c.enc.Encode(rpcRequest{ID: &id, JSONRPC: "2.0", Method: method, Params: params}); err != nil {
		return fmt.Errorf("failed to send %s: %w", method, err)
	}
	return nil
}

// answer replies to a request the agent sent to us
func (c *ACPClient) answer(msg acpMessage) error {
	resp := rpcResponse{ID: msg.ID, JSONRPC: "2.0"}

	switch msg.Method {
	case "session/request_permission":
		resp.Result = map[string]any{"outcome": c.permissionOutcome(msg.Params)}
	default:
		resp.Error = &rpcError{Code: methodNotFound, Message: "method not found: " + msg.Method}
	}

	if err := c.enc.Encode(resp); err != nil {
		return fmt.Errorf("failed to answer %s: %w", msg.Method, err)
	}
	return nil
}

// permissionOutcome allows once, or rejects once in read-only sessions
func (c *ACPClient) permissionOutcome(params json.RawMessage) map[string]string {
	var req permissionRequest
	_ = json.Unmarshal(params, &req)

	want := "allow_once"
	if c.readOnly {
		want = "reject_once"
	}
	for _, opt := range req.Options {
		if opt.Kind == want {
			return map[string]string{"outcome": "selected", "optionId": opt.OptionID}
		}
	}
	return map[string]string{"outcome": "cancelled"}
}

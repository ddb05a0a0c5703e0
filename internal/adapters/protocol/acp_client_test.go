package protocol

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeAll(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	buf.Reset()
	return out
}

func TestACPClient_HandshakeQueuesPrompt(t *testing.T) {
	var buf bytes.Buffer
	c := NewACPClient(&buf, ACPClientOptions{WorkingDir: "/work"})

	require.NoError(t, c.Start())
	require.NoError(t, c.Prompt("hello"))

	msgs := decodeAll(t, &buf)
	require.Len(t, msgs, 1)
	assert.Equal(t, "initialize", msgs[0]["method"])

	require.NoError(t, c.HandleLine([]byte(`{"jsonrpc":"2.0","id":1,"result":{"protocolVersion":1}}`)))
	msgs = decodeAll(t, &buf)
	require.Len(t, msgs, 1)
	assert.Equal(t, "session/new", msgs[0]["method"])
	assert.Equal(t, "/work", msgs[0]["params"].(map[string]any)["cwd"])

	require.NoError(t, c.HandleLine([]byte(`{"jsonrpc":"2.0","id":2,"result":{"sessionId":"sess-9"}}`)))
	msgs = decodeAll(t, &buf)
	require.Len(t, msgs, 1)
	assert.Equal(t, "session/prompt", msgs[0]["method"])
	params := msgs[0]["params"].(map[string]any)
	assert.Equal(t, "sess-9", params["sessionId"])
	assert.Equal(t, "sess-9", c.AgentSessionID())
}

func TestACPClient_ResumeLoadsSession(t *testing.T) {
	var buf bytes.Buffer
	c := NewACPClient(&buf, ACPClientOptions{ResumeToken: "old", WorkingDir: "/w"})

	require.NoError(t, c.Start())
	decodeAll(t, &buf)
	require.NoError(t, c.HandleLine([]byte(`{"jsonrpc":"2.0","id":1,"result":{}}`)))

	msgs := decodeAll(t, &buf)
	require.Len(t, msgs, 1)
	assert.Equal(t, "session/load", msgs[0]["method"])

	require.NoError(t, c.HandleLine([]byte(`{"jsonrpc":"2.0","id":2,"result":null}`)))
	assert.Equal(t, "old", c.AgentSessionID())
}

func TestACPClient_AnswersPermissionRequests(t *testing.T) {
	request := []byte(`{"jsonrpc":"2.0","id":7,"method":"session/request_permission","params":{"options":[{"optionId":"a","kind":"allow_once"},{"optionId":"r","kind":"reject_once"}]}}`)

	var buf bytes.Buffer
	require.NoError(t, NewACPClient(&buf, ACPClientOptions{}).HandleLine(request))
	msgs := decodeAll(t, &buf)
	require.Len(t, msgs, 1)
	outcome := msgs[0]["result"].(map[string]any)["outcome"].(map[string]any)
	assert.Equal(t, "a", outcome["optionId"])

	require.NoError(t, NewACPClient(&buf, ACPClientOptions{ReadOnly: true}).HandleLine(request))
	msgs = decodeAll(t, &buf)
	outcome = msgs[0]["result"].(map[string]any)["outcome"].(map[string]any)
	assert.Equal(t, "r", outcome["optionId"])
}

func TestACPClient_UnknownRequestGetsMethodNotFound(t *testing.T) {
	var buf bytes.Buffer
	c := NewACPClient(&buf, ACPClientOptions{})

	require.NoError(t, c.HandleLine([]byte(`{"jsonrpc":"2.0","id":"x1","method":"fs/read_text_file","params":{}}`)))

	msgs := decodeAll(t, &buf)
	require.Len(t, msgs, 1)
	assert.Equal(t, "x1", msgs[0]["id"])
	assert.EqualValues(t, -32601, msgs[0]["error"].(map[string]any)["code"])
}

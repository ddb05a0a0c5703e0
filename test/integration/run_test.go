package integration_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renato0307/duet/test/integration/harness"
)

// fakeClaude answers in Claude's stream-json format, echoing the prompt
// (always the last argument) back as assistant text.
const fakeClaude = `
for arg in "$@"; do prompt="$arg"; done
echo '{"type":"system","subtype":"init","session_id":"fake-1"}'
printf '{"type":"assistant","message":{"content":[{"type":"text","text":"echo: %s"}]}}\n' "$prompt"
echo '{"type":"result","subtype":"success","session_id":"fake-1","result":"ok"}'
`

func setupFakeClaude(t *testing.T, body string) *harness.TestEnvironment {
	t.Helper()
	env := harness.NewTestEnvironment(t)
	script := env.WriteAgentScript("claude", body)
	result := harness.RunCommand(t, env, "settings", "set-path", "claude-code", script)
	harness.AssertSuccess(t, result)
	return env
}

func TestRun_BatchRendered(t *testing.T) {
	env := setupFakeClaude(t, fakeClaude)

	result := harness.RunCommand(t, env, "run", "claude-code", "--cwd", env.DuetHome, "-p", "hello")

	harness.AssertSuccess(t, result)
	harness.AssertStdoutContains(t, result, "echo: hello")
	harness.AssertStdoutContains(t, result, "fake-1")
}

func TestRun_BatchJSON(t *testing.T) {
	env := setupFakeClaude(t, fakeClaude)

	result := harness.RunCommand(t, env, "run", "claude-code", "--cwd", env.DuetHome, "--json", "-p", "hello")
	harness.AssertSuccess(t, result)

	var kinds []string
	for _, ev := range harness.EventLines(t, result) {
		kinds = append(kinds, ev["kind"].(string))
	}
	assert.Equal(t, []string{"session_id", "text", "result"}, kinds)
}

func TestRun_RecordsHistory(t *testing.T) {
	env := setupFakeClaude(t, fakeClaude)

	result := harness.RunCommand(t, env, "run", "claude-code", "--cwd", env.DuetHome, "--session", "hist-1", "-p", "hello")
	harness.AssertSuccess(t, result)

	result = harness.RunCommand(t, env, "sessions", "list", "--format", "json")
	harness.AssertSuccess(t, result)

	var records []map[string]any
	harness.AssertValidJSON(t, result, &records)
	require.Len(t, records, 1)
	assert.Equal(t, "hist-1", records[0]["id"])
	assert.Equal(t, "fake-1", records[0]["agent_session_id"])

	result = harness.RunCommand(t, env, "sessions", "show", "hist-1")
	harness.AssertSuccess(t, result)
	harness.AssertStdoutContains(t, result, "claude-code")
}

func TestRun_AgentFailureExitCode(t *testing.T) {
	env := setupFakeClaude(t, `echo boom >&2; exit 4`)

	result := harness.RunCommand(t, env, "run", "claude-code", "--cwd", env.DuetHome, "-p", "hello")

	harness.AssertExitCode(t, result, 4)
	harness.AssertStderrContains(t, result, "boom")
}

func TestRun_UnknownAgent(t *testing.T) {
	env := harness.NewTestEnvironment(t)

	result := harness.RunCommand(t, env, "run", "nope", "-p", "hello")

	harness.AssertFailure(t, result)
	harness.AssertStderrContains(t, result, "nope")
}

func TestRun_MissingExecutable(t *testing.T) {
	env := harness.NewTestEnvironment(t)
	result := harness.RunCommand(t, env, "settings", "set-path", "claude-code", "/nonexistent/claude")
	harness.AssertSuccess(t, result)

	result = harness.RunCommand(t, env, "run", "claude-code", "-p", "hello")

	harness.AssertFailure(t, result)
	harness.AssertStderrContains(t, result, "/nonexistent/claude")
}

func TestRun_TerminalRole(t *testing.T) {
	env := harness.NewTestEnvironment(t)

	result := harness.RunCommandWithInput(t, env, "echo marker-$((40+2))\nexit\n", "run", "terminal", "--cwd", env.DuetHome)

	harness.AssertSuccess(t, result)
	harness.AssertStdoutContains(t, result, "marker-42")
}

func TestRun_TerminalExitCode(t *testing.T) {
	env := harness.NewTestEnvironment(t)

	result := harness.RunCommandWithInput(t, env, "exit 5\n", "run", "terminal")

	harness.AssertExitCode(t, result, 5)
}

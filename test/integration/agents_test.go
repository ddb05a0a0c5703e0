package integration_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/renato0307/duet/test/integration/harness"
)

func TestAgents_Table(t *testing.T) {
	env := harness.NewTestEnvironment(t)

	result := harness.RunCommand(t, env, "agents")

	harness.AssertSuccess(t, result)
	harness.AssertStdoutContains(t, result, "claude-code")
	harness.AssertStdoutContains(t, result, "codex")
}

func TestAgents_JSON(t *testing.T) {
	env := harness.NewTestEnvironment(t)

	result := harness.RunCommand(t, env, "agents", "--format", "json")
	harness.AssertSuccess(t, result)

	var descs []map[string]any
	harness.AssertValidJSON(t, result, &descs)

	ids := make([]string, 0, len(descs))
	for _, d := range descs {
		ids = append(ids, d["id"].(string))
	}
	assert.Contains(t, ids, "claude-code")
	assert.Contains(t, ids, "codex")
}

func TestAgents_CustomFromAgentsFile(t *testing.T) {
	env := harness.NewTestEnvironment(t)
	env.WriteFile("agents.toml", `
[[agent]]
id = "echo-agent"
name = "Echo"
binary = "echo"
`)

	result := harness.RunCommand(t, env, "agents", "--format", "json")
	harness.AssertSuccess(t, result)
	harness.AssertStdoutContains(t, result, `"echo-agent"`)
	harness.AssertStdoutContains(t, result, `"raw"`)
}

func TestAgents_InvalidAgentsFile(t *testing.T) {
	env := harness.NewTestEnvironment(t)
	env.WriteFile("agents.toml", `
[[agent]]
name = "No ID"
binary = "echo"
`)

	result := harness.RunCommand(t, env, "agents")

	harness.AssertFailure(t, result)
	harness.AssertStderrContains(t, result, "agents.toml")
}

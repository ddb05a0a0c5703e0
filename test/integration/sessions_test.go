package integration_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/renato0307/duet/test/integration/harness"
)

func TestSessionsList_Empty(t *testing.T) {
	env := harness.NewTestEnvironment(t)

	result := harness.RunCommand(t, env, "sessions")

	harness.AssertSuccess(t, result)
	harness.AssertStdoutContains(t, result, "No sessions recorded")
}

func TestSessionsList_EmptyJSON(t *testing.T) {
	env := harness.NewTestEnvironment(t)

	result := harness.RunCommand(t, env, "sessions", "list", "--format", "json")
	harness.AssertSuccess(t, result)

	var records []map[string]any
	harness.AssertValidJSON(t, result, &records)
	assert.Empty(t, records)
}

func TestSessionsShow_Unknown(t *testing.T) {
	env := harness.NewTestEnvironment(t)

	result := harness.RunCommand(t, env, "sessions", "show", "nope")

	harness.AssertFailure(t, result)
	harness.AssertStderrContains(t, result, "failed to get session")
}

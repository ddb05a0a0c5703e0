package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeSessionID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "simple", "simple"},
		{"keeps dots and hyphens", "api-v1.2", "api-v1.2"},
		{"space becomes underscore", "fix login bug", "fix_login_bug"},
		{"collapses separators", "path/ (name)", "path_name"},
		{"removes specials", "test:name!", "testname"},
		{"trims trailing", "name / ", "name"},
		{"ignores leading", " (name", "name"},
		{"only specials", "!@#$", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeSessionID(tt.input))
		})
	}
}

func TestProcessKey_String(t *testing.T) {
	key := ProcessKey{SessionID: "abc", Role: RoleTerminal}
	assert.Equal(t, "abc-terminal", key.String())
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" AI ")
	require.NoError(t, err)
	assert.Equal(t, RoleAI, r)

	_, err = ParseRole("shell")
	assert.Error(t, err)
}

func TestExitStatus_Success(t *testing.T) {
	assert.True(t, ExitStatus{}.Success())
	assert.False(t, ExitStatus{Code: 1}.Success())
	assert.False(t, ExitStatus{Code: -1, Signal: "killed"}.Success())
}

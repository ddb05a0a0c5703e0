package logging

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize_DisabledReturnsNoFile(t *testing.T) {
	t.Setenv("DUET_DEBUG", "")
	t.Setenv("DUET_DEBUG_FILE", "")

	path, err := Initialize(Options{MaxFiles: 1000})

	require.NoError(t, err)
	assert.Empty(t, path)
	assert.NotNil(t, Logger)
}

func TestInitialize_CustomFile(t *testing.T) {
	t.Setenv("DUET_DEBUG", "1")
	t.Setenv("DUET_DEBUG_FILE", "")
	logFile := filepath.Join(t.TempDir(), "nested", "duet.log")

	path, err := Initialize(Options{File: logFile, MaxFiles: 1000})
	require.NoError(t, err)
	assert.Equal(t, logFile, path)

	Logger.Info("Hello from test", "session_id", "abc")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Hello from test")
	assert.Contains(t, string(data), `"session_id":"abc"`)
}

func TestRotateLogs_RemovesOldest(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	for i, name := range []string{"a.log", "b.log", "c.log", "notes.txt"} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte("x"), 0644))
		mod := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, os.Chtimes(p, mod, mod))
	}

	require.NoError(t, rotateLogs(dir, 2))

	assert.NoFileExists(t, filepath.Join(dir, "a.log"))
	assert.NoFileExists(t, filepath.Join(dir, "b.log"))
	assert.FileExists(t, filepath.Join(dir, "c.log"))
	assert.FileExists(t, filepath.Join(dir, "notes.txt"))
}

func TestInherit(t *testing.T) {
	t.Setenv(EnvDebug, "1")
	t.Setenv(EnvDebugFile, "/tmp/parent.log")
	t.Setenv(EnvMaxLogFiles, "5")

	opts := inherit(Options{MaxFiles: 1000})
	assert.Equal(t, Options{Debug: true, File: "/tmp/parent.log", MaxFiles: 5}, opts)

	// Explicit values win over the environment
	opts = inherit(Options{File: "/tmp/own.log", MaxFiles: 20})
	assert.Equal(t, "/tmp/own.log", opts.File)
	assert.Equal(t, 20, opts.MaxFiles)
}

func TestLogDir_RespectsXDGStateHome(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_STATE_HOME only applies on linux")
	}
	state := t.TempDir()
	t.Setenv("XDG_STATE_HOME", state)

	dir, err := LogDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(state, "duet"), dir)
}

package sound

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayer_FallsBackToBell(t *testing.T) {
	var bell bytes.Buffer
	var tried []string
	p := &Player{
		bell: &bell,
		start: func(name string, _ ...string) error {
			tried = append(tried, name)
			return errors.New("not installed")
		},
	}

	require.NoError(t, p.PlaySoundForEvent("error"))

	assert.Equal(t, "\a", bell.String())
	assert.Len(t, tried, len(cuesFor("error")))
}

func TestPlayer_StopsAtFirstWorkingCue(t *testing.T) {
	if len(cuesFor("done")) == 0 {
		t.Skip("no sound programs on this platform")
	}
	var bell bytes.Buffer
	calls := 0
	p := &Player{
		bell: &bell,
		start: func(string, ...string) error {
			calls++
			return nil
		},
	}

	require.NoError(t, p.PlaySound())

	assert.Equal(t, 1, calls)
	assert.Empty(t, bell.String())
}

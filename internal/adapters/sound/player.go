package sound

import (
	"io"
	"os"
	"os/exec"

	"github.com/renato0307/duet/internal/logging"
	"github.com/renato0307/duet/internal/ports"
)

// cue is one way of making a sound: a program and its arguments
type cue struct {
	name string
	args []string
}

// Player implements ports.SoundPlayer with the platform's audio tools,
// ringing the terminal bell when none of them works
type Player struct {
	bell  io.Writer
	start func(name string, args ...string) error
}

var _ ports.SoundPlayer = (*Player)(nil)

// NewPlayer creates a player that rings the bell on stderr, keeping stdout
// clean for JSON output
func NewPlayer() *Player {
	return &Player{bell: os.Stderr, start: startDetached}
}

// PlaySound plays the "done" sound
func (p *Player) PlaySound() error {
	return p.PlaySoundForEvent("done")
}

// PlaySoundForEvent plays the sound for "done" or "error"
func (p *Player) PlaySoundForEvent(event string) error {
	for _, c := range cuesFor(event) {
		err := p.start(c.name, c.args...)
		if err == nil {
			return nil
		}
		logging.Logger.Debug("Sound cue failed", "program", c.name, "error", err)
	}
	_, err := io.WriteString(p.bell, "\a")
	return err
}

// startDetached starts the program without waiting for it to finish
func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

package ports

// SoundPlayer makes the audible cues used by --notify
type SoundPlayer interface {
	PlaySound() error
	// PlaySoundForEvent plays the cue for "done" or "error"
	PlaySoundForEvent(event string) error
}

//go:build linux

package sound

import "os"

// cuesFor prefers the freedesktop theme file through PulseAudio and falls
// back to libcanberra's event ids
func cuesFor(event string) []cue {
	id := "complete"
	if event == "error" {
		id = "dialog-error"
	}

	var cues []cue
	file := "/usr/share/sounds/freedesktop/stereo/" + id + ".oga"
	if _, err := os.Stat(file); err == nil {
		cues = append(cues, cue{name: "paplay", args: []string{file}})
	}
	return append(cues, cue{name: "canberra-gtk-play", args: []string{"-i", id}})
}

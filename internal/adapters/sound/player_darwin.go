//go:build darwin

package sound

func cuesFor(event string) []cue {
	files := []string{"/System/Library/Sounds/Glass.aiff", "/System/Library/Sounds/Tink.aiff"}
	if event == "error" {
		files = []string{"/System/Library/Sounds/Basso.aiff", "/System/Library/Sounds/Sosumi.aiff"}
	}

	cues := make([]cue, 0, len(files))
	for _, f := range files {
		cues = append(cues, cue{name: "afplay", args: []string{f}})
	}
	return cues
}

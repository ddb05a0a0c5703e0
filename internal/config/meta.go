package config

import (
	"reflect"
	"strings"
)

// exampleValues is the sample shown for a settings.json key; keys missing
// here get the zero value of their field type
var exampleValues = map[string]any{
	"agents": map[string]any{
		"claude-code": map[string]any{
			"path":    "~/.local/bin/claude",
			"options": map[string]any{"skip_permissions": false},
		},
		"codex": map[string]any{
			"options": map[string]any{"reasoning_effort": "high"},
		},
	},
	"default_shell":      "/bin/zsh",
	"kill_grace_seconds": DefaultKillGraceSeconds,
	"max_log_files":      DefaultMaxLogFiles,
	"server_host":        DefaultServerHost,
	"server_port":        DefaultServerPort,
}

// GetSettingsExample lists every settings.json key with a sample value.
// Keys come from the Settings struct tags, so new fields show up here.
func GetSettingsExample() map[string]any {
	example := make(map[string]any)
	for _, field := range reflect.VisibleFields(reflect.TypeFor[Settings]()) {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		if v, ok := exampleValues[name]; ok {
			example[name] = v
			continue
		}
		example[name] = zeroExample(field.Type)
	}
	return example
}

func zeroExample(t reflect.Type) any {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Bool:
		return false
	case reflect.Int:
		return 0
	case reflect.String:
		return ""
	}
	return nil
}

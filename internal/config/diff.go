package config

import "slices"

// Diff describes what changed between two configs. Only fields that can
// be hot-reloaded without restarting the daemon are tracked.
type Diff struct {
	LogLevelChanged       bool
	NewLogLevel           LogLevel
	DictionaryPathChanged bool
	NewDictionaryPath     string
	DevicePriorityChanged bool
}

// Any reports whether the diff contains at least one change.
func (d Diff) Any() bool {
	return d.LogLevelChanged || d.DictionaryPathChanged || d.DevicePriorityChanged
}

// Compare returns what changed between old and updated that is safe to
// apply without a restart.
func Compare(old, updated *Config) Diff {
	d := Diff{}

	if old.Server.LogLevel != updated.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = updated.Server.LogLevel
	}
	if old.Dictionary.Path != updated.Dictionary.Path {
		d.DictionaryPathChanged = true
		d.NewDictionaryPath = updated.Dictionary.Path
	}
	if !slices.Equal(old.Audio.DevicePriority, updated.Audio.DevicePriority) {
		d.DevicePriorityChanged = true
	}
	return d
}

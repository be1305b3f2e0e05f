// Package media abstracts pausing background playback around a
// recording so the microphone does not pick up music. The default
// implementation does nothing; desktop integrations plug in here.
package media

import "context"

// Controller pauses and resumes background playback.
type Controller interface {
	// PauseIfPlaying pauses playback and reports whether anything was
	// actually playing, so the caller knows whether to resume later.
	PauseIfPlaying(ctx context.Context) (bool, error)
	// Resume restarts playback previously paused by PauseIfPlaying.
	Resume(ctx context.Context) error
}

// Compile-time assertion that Noop satisfies Controller.
var _ Controller = Noop{}

// Noop is a Controller for environments without media integration.
type Noop struct{}

// PauseIfPlaying reports that nothing was playing.
func (Noop) PauseIfPlaying(ctx context.Context) (bool, error) { return false, nil }

// Resume does nothing.
func (Noop) Resume(ctx context.Context) error { return nil }

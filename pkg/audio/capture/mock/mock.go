// Package mock provides a scripted test double for the capture package.
package mock

import (
	"sync"

	"github.com/kazuhideoki/voice-input/pkg/audio"
	"github.com/kazuhideoki/voice-input/pkg/audio/capture"
)

// Compile-time assertion that Backend satisfies capture.Backend.
var _ capture.Backend = (*Backend)(nil)

// Backend is a mock implementation of capture.Backend. The zero value is
// idle and returns an empty payload from StopRecording.
type Backend struct {
	mu sync.Mutex

	// StartErr, if non-nil, is returned from StartRecording.
	StartErr error
	// StopErr, if non-nil, is returned from StopRecording.
	StopErr error
	// Result is the payload returned from a successful StopRecording.
	Result audio.EncodedAudio

	recording  bool
	startCalls int
	stopCalls  int
}

// StartRecording records the call and returns StartErr.
func (b *Backend) StartRecording() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.startCalls++
	if b.StartErr != nil {
		return b.StartErr
	}
	if b.recording {
		return capture.ErrAlreadyRecording
	}
	b.recording = true
	return nil
}

// StopRecording records the call and returns Result, StopErr.
func (b *Backend) StopRecording() (audio.EncodedAudio, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopCalls++
	if !b.recording {
		return audio.EncodedAudio{}, capture.ErrNotRecording
	}
	b.recording = false
	if b.StopErr != nil {
		return audio.EncodedAudio{}, b.StopErr
	}
	return b.Result, nil
}

// IsRecording reports the mock's recording state.
func (b *Backend) IsRecording() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.recording
}

// StartCalls returns how many times StartRecording was called.
func (b *Backend) StartCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.startCalls
}

// StopCalls returns how many times StopRecording was called.
func (b *Backend) StopCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stopCalls
}

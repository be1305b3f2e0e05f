// Package capture records microphone audio and hands back a finished,
// already-processed payload. A Backend owns the device lifecycle; the
// shared Finalize pipeline trims, downmixes, resamples and encodes the
// raw capture so every backend produces the same payload shape.
package capture

import (
	"errors"
	"time"

	"github.com/kazuhideoki/voice-input/pkg/audio"
	"github.com/kazuhideoki/voice-input/pkg/audio/encode"
)

// Errors returned by capture backends.
var (
	// ErrAlreadyRecording is returned by StartRecording while a capture
	// is in progress.
	ErrAlreadyRecording = errors.New("capture: already recording")
	// ErrNotRecording is returned by StopRecording when no capture is in
	// progress.
	ErrNotRecording = errors.New("capture: not recording")
	// ErrNoInputDevice is returned when no usable input device exists.
	ErrNoInputDevice = errors.New("capture: no input device available")
)

// Backend is the capability contract for microphone capture.
// Implementations are safe for concurrent use.
type Backend interface {
	// StartRecording opens the input device and begins buffering audio.
	StartRecording() error
	// StopRecording tears the device down and returns the processed,
	// encoded capture. The buffer is only read after the device stream
	// has fully stopped.
	StopRecording() (audio.EncodedAudio, error)
	// IsRecording reports whether a capture is in progress.
	IsRecording() bool
}

// Config tunes a capture backend.
type Config struct {
	// DevicePriority lists input device names to try in order before
	// falling back to the system default.
	DevicePriority []string
	// MaxDuration bounds a single capture and sizes the sample buffer.
	MaxDuration time.Duration
	// TargetSampleRate is the rate the processed capture is resampled
	// to. Defaults to audio.TargetSampleRate.
	TargetSampleRate int
}

func (c Config) withDefaults() Config {
	if c.MaxDuration <= 0 {
		c.MaxDuration = 30 * time.Second
	}
	if c.TargetSampleRate <= 0 {
		c.TargetSampleRate = audio.TargetSampleRate
	}
	return c
}

// Finalize runs the full processing pipeline on a raw capture: silence
// trim, mono downmix, resample to targetRate, then container encoding.
// It always yields a well-formed payload for valid input, even when the
// capture is empty.
func Finalize(samples []int16, sampleRate, channels, targetRate int) (audio.EncodedAudio, error) {
	trimmed := audio.TrimSilence(samples, sampleRate, channels)
	mono := audio.DownmixMono(trimmed, channels)

	resampled, rate, err := audio.Resample(mono, sampleRate, targetRate, 1)
	if err != nil {
		return audio.EncodedAudio{}, err
	}

	clip := audio.Clip{Samples: resampled, SampleRate: rate, Channels: 1}
	return encode.Encode(clip), nil
}

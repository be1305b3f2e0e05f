// Package audio provides the PCM processing pipeline that turns raw
// microphone capture into a compact payload ready for transcription:
// silence trimming, mono downmix and sample-rate conversion, all on
// 16-bit signed little-endian samples.
package audio

import "time"

// TargetSampleRate is the sample rate transcription backends expect.
const TargetSampleRate = 16000

// MIME types for the containers produced by the encode package.
const (
	MIMETypeFLAC = "audio/flac"
	MIMETypeWAV  = "audio/wav"
)

// Clip is a buffer of interleaved 16-bit PCM samples together with the
// format needed to interpret it. Samples holds Channels values per frame.
type Clip struct {
	// Samples are interleaved signed 16-bit samples.
	Samples []int16
	// SampleRate in Hz, e.g. 16000.
	SampleRate int
	// Channels is the number of interleaved channels, e.g. 1 for mono.
	Channels int
}

// Frames returns the number of complete frames in the clip.
func (c Clip) Frames() int {
	if c.Channels <= 0 {
		return 0
	}
	return len(c.Samples) / c.Channels
}

// Duration returns the playback duration of the clip.
func (c Clip) Duration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(c.Frames()) * time.Second / time.Duration(c.SampleRate)
}

// EncodedAudio is a finished audio payload in a transportable container.
// It is always well formed, even when produced from an empty capture.
type EncodedAudio struct {
	// Bytes is the full container, header included.
	Bytes []byte
	// MIMEType is MIMETypeFLAC or MIMETypeWAV.
	MIMEType string
	// FileName is a suggested file name matching the container type.
	FileName string
}

func clampInt16(v int32) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

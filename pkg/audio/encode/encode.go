// Package encode turns processed PCM clips into transportable audio
// containers. FLAC is the preferred container; WAV is the lossless
// fallback when the FLAC encode fails, so Encode always produces a
// usable payload.
package encode

import (
	"log/slog"

	"github.com/kazuhideoki/voice-input/pkg/audio"
)

// File names suggested for encoded payloads, matching their container.
const (
	fileNameFLAC = "audio.flac"
	fileNameWAV  = "audio.wav"
)

// Encode serialises the clip, preferring FLAC and falling back to WAV.
// A FLAC failure is logged, never surfaced: the caller always receives
// a well-formed payload.
func Encode(clip audio.Clip) audio.EncodedAudio {
	b, err := EncodeFLAC(clip)
	if err != nil {
		slog.Warn("flac encode failed, falling back to wav",
			"error", err,
			"frames", clip.Frames(),
			"sample_rate", clip.SampleRate,
			"channels", clip.Channels)
		return audio.EncodedAudio{
			Bytes:    EncodeWAV(clip),
			MIMEType: audio.MIMETypeWAV,
			FileName: fileNameWAV,
		}
	}
	return audio.EncodedAudio{
		Bytes:    b,
		MIMEType: audio.MIMETypeFLAC,
		FileName: fileNameFLAC,
	}
}

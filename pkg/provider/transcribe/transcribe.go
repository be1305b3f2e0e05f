// Package transcribe defines the capability contract for speech-to-text
// of finished audio payloads. Implementations live in subpackages: one
// per backing service, plus mock for tests.
package transcribe

import (
	"context"

	"github.com/kazuhideoki/voice-input/pkg/audio"
)

// Client converts an encoded audio payload into text.
type Client interface {
	// Transcribe sends the payload for recognition and returns the raw
	// transcript. languageHint is a BCP-47 language code such as "ja";
	// an empty hint lets the backend auto-detect. Implementations honor
	// ctx cancellation.
	Transcribe(ctx context.Context, payload audio.EncodedAudio, languageHint string) (string, error)
}

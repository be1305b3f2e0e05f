// Package mock provides a scripted test double for the transcribe
// package. Client records calls, tracks in-flight concurrency, and
// returns canned transcripts, so dispatch behavior can be verified
// without a real recognition backend.
package mock

import (
	"context"
	"sync"

	"github.com/kazuhideoki/voice-input/pkg/audio"
	"github.com/kazuhideoki/voice-input/pkg/provider/transcribe"
)

// Compile-time assertion that Client satisfies transcribe.Client.
var _ transcribe.Client = (*Client)(nil)

// Call records a single invocation of Transcribe.
type Call struct {
	// Payload is the audio handed to Transcribe.
	Payload audio.EncodedAudio
	// LanguageHint is the hint handed to Transcribe.
	LanguageHint string
}

// Client is a mock implementation of transcribe.Client. The zero value
// returns Text ("") with no error for every call.
type Client struct {
	mu sync.Mutex

	// Text is returned from Transcribe when TranscribeFunc is nil.
	Text string
	// Err, if non-nil, is returned from Transcribe when TranscribeFunc
	// is nil.
	Err error
	// TranscribeFunc, if non-nil, handles each call. It runs without the
	// mock's lock held, so it may block to exercise concurrency.
	TranscribeFunc func(ctx context.Context, payload audio.EncodedAudio, languageHint string) (string, error)

	calls       []Call
	inFlight    int
	maxInFlight int
}

// Transcribe records the call and returns the scripted response.
func (c *Client) Transcribe(ctx context.Context, payload audio.EncodedAudio, languageHint string) (string, error) {
	c.mu.Lock()
	c.calls = append(c.calls, Call{Payload: payload, LanguageHint: languageHint})
	c.inFlight++
	if c.inFlight > c.maxInFlight {
		c.maxInFlight = c.inFlight
	}
	fn := c.TranscribeFunc
	text, err := c.Text, c.Err
	c.mu.Unlock()

	if fn != nil {
		text, err = fn(ctx, payload, languageHint)
	}

	c.mu.Lock()
	c.inFlight--
	c.mu.Unlock()
	return text, err
}

// Calls returns a copy of all recorded calls.
func (c *Client) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Call, len(c.calls))
	copy(out, c.calls)
	return out
}

// MaxInFlight returns the highest number of concurrent Transcribe calls
// observed.
func (c *Client) MaxInFlight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxInFlight
}

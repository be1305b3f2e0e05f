package resilience

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/kazuhideoki/voice-input/pkg/audio"
	"github.com/kazuhideoki/voice-input/pkg/provider/transcribe"
)

// ErrAllBackendsFailed is returned by [Failover.Transcribe] when every
// registered backend either failed or had an open breaker.
var ErrAllBackendsFailed = errors.New("all transcription backends failed")

type failoverEntry struct {
	name    string
	client  transcribe.Client
	breaker *Breaker
}

// Failover implements [transcribe.Client] over an ordered list of backends,
// each guarded by its own [Breaker]. Backends are tried in registration order;
// the first success wins.
type Failover struct {
	entries []failoverEntry
	cfg     BreakerConfig
}

var _ transcribe.Client = (*Failover)(nil)

// NewFailover creates a [Failover] with primary as the preferred backend.
// cfg.Name is ignored; each backend's breaker is named after the backend.
func NewFailover(name string, primary transcribe.Client, cfg BreakerConfig) *Failover {
	f := &Failover{cfg: cfg}
	f.Add(name, primary)
	return f
}

// Add registers a fallback backend. Fallbacks are tried in the order they were
// added, after the primary.
func (f *Failover) Add(name string, client transcribe.Client) {
	cfg := f.cfg
	cfg.Name = name
	f.entries = append(f.entries, failoverEntry{
		name:    name,
		client:  client,
		breaker: NewBreaker(cfg),
	})
}

// Transcribe implements [transcribe.Client]. Backends whose breaker is open
// are skipped without being called.
func (f *Failover) Transcribe(ctx context.Context, payload audio.EncodedAudio, languageHint string) (string, error) {
	var lastErr error
	for i := range f.entries {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		entry := &f.entries[i]

		var text string
		err := entry.breaker.Do(func() error {
			var innerErr error
			text, innerErr = entry.client.Transcribe(ctx, payload, languageHint)
			return innerErr
		})
		if err == nil {
			return text, nil
		}
		lastErr = err
		if errors.Is(err, ErrBreakerOpen) {
			slog.Debug("skipping backend", "backend", entry.name, "reason", "breaker open")
		} else {
			slog.Warn("backend failed, trying next", "backend", entry.name, "error", err)
		}
	}
	return "", fmt.Errorf("%w: %v", ErrAllBackendsFailed, lastErr)
}

// Close closes every registered backend that implements [io.Closer].
func (f *Failover) Close() error {
	var errs []error
	for i := range f.entries {
		if c, ok := f.entries[i].client.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s: %w", f.entries[i].name, err))
			}
		}
	}
	return errors.Join(errs...)
}

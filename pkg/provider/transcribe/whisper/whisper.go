// Package whisper implements transcribe.Client on the whisper.cpp Go
// bindings for fully local recognition. Model weights are loaded once at
// construction; each Transcribe runs in a fresh inference context.
package whisper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	whisperlib "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/kazuhideoki/voice-input/pkg/audio"
	"github.com/kazuhideoki/voice-input/pkg/provider/transcribe"
)

// Compile-time assertion that Client satisfies transcribe.Client.
var _ transcribe.Client = (*Client)(nil)

type config struct {
	language string
}

// Option configures the Client.
type Option func(*config)

// WithLanguage sets the default recognition language used when the
// caller supplies no hint.
func WithLanguage(lang string) Option {
	return func(c *config) { c.language = lang }
}

// Client transcribes audio payloads with a local whisper.cpp model.
type Client struct {
	mu       sync.Mutex
	model    whisperlib.Model
	language string
}

// New loads the model weights at modelPath.
func New(modelPath string, opts ...Option) (*Client, error) {
	if modelPath == "" {
		return nil, errors.New("whisper: model path must not be empty")
	}

	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}

	model, err := whisperlib.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("whisper: load model %s: %w", modelPath, err)
	}
	slog.Info("whisper model loaded", "path", modelPath)

	return &Client{model: model, language: cfg.language}, nil
}

// Close releases the model weights.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.model == nil {
		return nil
	}
	err := c.model.Close()
	c.model = nil
	return err
}

// Transcribe implements [transcribe.Client]. FLAC and WAV payloads are
// decoded locally; whisper.cpp consumes raw float PCM.
func (c *Client) Transcribe(ctx context.Context, payload audio.EncodedAudio, languageHint string) (string, error) {
	var samples []float32
	var err error
	switch payload.MIMEType {
	case audio.MIMETypeFLAC:
		samples, err = decodeFLAC(payload.Bytes)
	case audio.MIMETypeWAV:
		samples, err = decodeWAV(payload.Bytes)
	default:
		return "", fmt.Errorf("whisper: unsupported container %q", payload.MIMEType)
	}
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.model == nil {
		return "", errors.New("whisper: client is closed")
	}

	wctx, err := c.model.NewContext()
	if err != nil {
		return "", fmt.Errorf("whisper: new context: %w", err)
	}

	lang := languageHint
	if lang == "" {
		lang = c.language
	}
	if lang != "" {
		if err := wctx.SetLanguage(lang); err != nil {
			slog.Warn("unsupported whisper language, using auto-detect", "language", lang, "error", err)
		}
	}

	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return "", fmt.Errorf("whisper: process audio: %w", err)
	}

	var sb strings.Builder
	for {
		segment, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("whisper: read segment: %w", err)
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strings.TrimSpace(segment.Text))
	}
	return sb.String(), nil
}

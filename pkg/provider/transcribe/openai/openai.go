// Package openai implements transcribe.Client on the OpenAI audio
// transcription API.
package openai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/kazuhideoki/voice-input/pkg/audio"
	"github.com/kazuhideoki/voice-input/pkg/provider/transcribe"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini-transcribe"

const defaultTimeout = 60 * time.Second

// Compile-time assertion that Client satisfies transcribe.Client.
var _ transcribe.Client = (*Client)(nil)

type config struct {
	baseURL string
	model   string
	prompt  string
	timeout time.Duration
}

// Option configures the Client.
type Option func(*config)

// WithBaseURL overrides the API endpoint, e.g. for a compatible proxy.
func WithBaseURL(url string) Option {
	return func(c *config) { c.baseURL = url }
}

// WithModel selects the transcription model. Defaults to DefaultModel.
func WithModel(model string) Option {
	return func(c *config) { c.model = model }
}

// WithPrompt sets a default context prompt sent with every request.
func WithPrompt(prompt string) Option {
	return func(c *config) { c.prompt = prompt }
}

// WithTimeout bounds each transcription request. Defaults to 60s.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// Client transcribes audio payloads via the OpenAI API.
type Client struct {
	client oai.Client
	model  string
	prompt string
}

// New returns a Client authenticated with apiKey.
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("openai: api key must not be empty")
	}

	cfg := config{model: DefaultModel, timeout: defaultTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.model == "" {
		cfg.model = DefaultModel
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(&http.Client{Timeout: cfg.timeout}),
	}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}

	return &Client{
		client: oai.NewClient(reqOpts...),
		model:  cfg.model,
		prompt: cfg.prompt,
	}, nil
}

// Transcribe implements [transcribe.Client].
func (c *Client) Transcribe(ctx context.Context, payload audio.EncodedAudio, languageHint string) (string, error) {
	if len(payload.Bytes) == 0 {
		return "", errors.New("openai: empty audio payload")
	}

	params := oai.AudioTranscriptionNewParams{
		File:  oai.File(bytes.NewReader(payload.Bytes), payload.FileName, payload.MIMEType),
		Model: oai.AudioModel(c.model),
	}
	if languageHint != "" {
		params.Language = oai.String(languageHint)
	}
	if c.prompt != "" {
		params.Prompt = oai.String(c.prompt)
	}

	res, err := c.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai: transcribe: %w", err)
	}
	return strings.TrimSpace(res.Text), nil
}

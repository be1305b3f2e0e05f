package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/kazuhideoki/voice-input/pkg/provider/transcribe"
)

// ErrProviderNotRegistered is returned by CreateTranscriber when no
// factory has been registered under the requested provider name.
var ErrProviderNotRegistered = errors.New("config: provider not registered")

// TranscriberFactory builds a transcription client from its config.
type TranscriberFactory func(TranscriptionConfig) (transcribe.Client, error)

// Registry maps transcription provider names to their constructor
// functions. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]TranscriberFactory
}

// NewRegistry returns an empty, ready-to-use [Registry].
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]TranscriberFactory)}
}

// RegisterTranscriber registers a factory under name, replacing any
// previous registration.
func (r *Registry) RegisterTranscriber(name string, factory TranscriberFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// CreateTranscriber builds a client for cfg.Provider. An empty provider
// name defaults to "openai".
func (r *Registry) CreateTranscriber(cfg TranscriptionConfig) (transcribe.Client, error) {
	name := cfg.Provider
	if name == "" {
		name = "openai"
	}
	return r.Create(name, cfg)
}

// Create builds a client using the factory registered under name.
func (r *Registry) Create(name string, cfg TranscriptionConfig) (transcribe.Client, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrProviderNotRegistered, name)
	}
	return factory(cfg)
}

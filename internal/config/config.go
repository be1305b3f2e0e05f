// Package config provides the configuration schema, loader, provider
// registry, and file watcher for the voice input daemon.
package config

import (
	"log/slog"
	"time"
)

// LogLevel controls log verbosity for the daemon.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Level maps l onto an [slog.Level]. Unknown or empty levels map to Info.
func (l LogLevel) Level() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Config is the root configuration structure, typically loaded from a
// YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Audio         AudioConfig         `yaml:"audio"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	Dictionary    DictionaryConfig    `yaml:"dictionary"`
}

// ServerConfig holds logging and metrics settings for the daemon.
type ServerConfig struct {
	// LogLevel selects log verbosity. Default: info.
	LogLevel LogLevel `yaml:"log_level"`

	// MetricsAddr, when set, serves Prometheus metrics on this address,
	// e.g. "127.0.0.1:9102".
	MetricsAddr string `yaml:"metrics_addr"`
}

// AudioConfig holds capture and processing settings.
type AudioConfig struct {
	// DevicePriority lists input device names to try in order before
	// falling back to the system default.
	DevicePriority []string `yaml:"device_priority"`

	// MaxDurationSecs bounds a recording session. Default: 30.
	MaxDurationSecs int `yaml:"max_duration_secs"`

	// TargetSampleRate is the processed sample rate in Hz. Default: 16000.
	TargetSampleRate int `yaml:"target_sample_rate"`
}

// MaxDuration returns the auto-stop limit with the default applied.
func (a AudioConfig) MaxDuration() time.Duration {
	if a.MaxDurationSecs <= 0 {
		return 30 * time.Second
	}
	return time.Duration(a.MaxDurationSecs) * time.Second
}

// TranscriptionConfig selects and tunes the transcription backend.
type TranscriptionConfig struct {
	// Provider is the backend name; see ValidProviderNames. Default: openai.
	Provider string `yaml:"provider"`

	// FallbackProvider, when set, names a second backend to try when the
	// primary fails or its breaker is open.
	FallbackProvider string `yaml:"fallback_provider"`

	// Model is the model identifier for hosted backends.
	Model string `yaml:"model"`

	// ModelPath points at local model weights for the whisper-native
	// backend.
	ModelPath string `yaml:"model_path"`

	// Language is the BCP-47 recognition language hint. Default: ja.
	Language string `yaml:"language"`

	// MaxConcurrent caps in-flight transcription requests. Default: 2.
	MaxConcurrent int `yaml:"max_concurrent"`

	// APIKeyEnv names the environment variable holding the API key for
	// hosted backends. Default: OPENAI_API_KEY.
	APIKeyEnv string `yaml:"api_key_env"`

	// BaseURL overrides the API endpoint for hosted backends.
	BaseURL string `yaml:"base_url"`

	// Prompt is default context sent with every request.
	Prompt string `yaml:"prompt"`

	// TimeoutSecs bounds each transcription request. Default: 60.
	TimeoutSecs int `yaml:"timeout_secs"`
}

// Concurrency returns the in-flight cap with the default applied.
func (t TranscriptionConfig) Concurrency() int64 {
	if t.MaxConcurrent <= 0 {
		return 2
	}
	return int64(t.MaxConcurrent)
}

// LanguageHint returns the language with the default applied.
func (t TranscriptionConfig) LanguageHint() string {
	if t.Language == "" {
		return "ja"
	}
	return t.Language
}

// Timeout returns the request timeout with the default applied.
func (t TranscriptionConfig) Timeout() time.Duration {
	if t.TimeoutSecs <= 0 {
		return 60 * time.Second
	}
	return time.Duration(t.TimeoutSecs) * time.Second
}

// DictionaryConfig locates the persisted substitution dictionary.
type DictionaryConfig struct {
	// Path is the YAML dictionary file. Empty keeps the dictionary in
	// memory only.
	Path string `yaml:"path"`
}

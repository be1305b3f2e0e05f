package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists known transcription provider names.
// Used by [Validate] to reject unrecognised providers.
var ValidProviderNames = []string{"openai", "whisper-native"}

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader] and
// [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	if cfg.Audio.MaxDurationSecs < 0 {
		errs = append(errs, fmt.Errorf("audio.max_duration_secs %d must not be negative", cfg.Audio.MaxDurationSecs))
	}
	if cfg.Audio.TargetSampleRate < 0 {
		errs = append(errs, fmt.Errorf("audio.target_sample_rate %d must not be negative", cfg.Audio.TargetSampleRate))
	}

	if cfg.Transcription.Provider != "" && !slices.Contains(ValidProviderNames, cfg.Transcription.Provider) {
		errs = append(errs, fmt.Errorf("transcription.provider %q is unknown; valid values: %v", cfg.Transcription.Provider, ValidProviderNames))
	}
	if fb := cfg.Transcription.FallbackProvider; fb != "" {
		if !slices.Contains(ValidProviderNames, fb) {
			errs = append(errs, fmt.Errorf("transcription.fallback_provider %q is unknown; valid values: %v", fb, ValidProviderNames))
		} else if primary := cfg.Transcription.Provider; fb == primary || (primary == "" && fb == "openai") {
			errs = append(errs, errors.New("transcription.fallback_provider must differ from transcription.provider"))
		}
	}
	if usesProvider(cfg, "whisper-native") && cfg.Transcription.ModelPath == "" {
		errs = append(errs, errors.New("transcription.model_path is required for provider whisper-native"))
	}
	if cfg.Transcription.MaxConcurrent < 0 {
		errs = append(errs, fmt.Errorf("transcription.max_concurrent %d must not be negative", cfg.Transcription.MaxConcurrent))
	}
	if cfg.Transcription.TimeoutSecs < 0 {
		errs = append(errs, fmt.Errorf("transcription.timeout_secs %d must not be negative", cfg.Transcription.TimeoutSecs))
	}

	return errors.Join(errs...)
}

// usesProvider reports whether name is the primary or fallback backend.
// An empty primary counts as "openai".
func usesProvider(cfg *Config, name string) bool {
	primary := cfg.Transcription.Provider
	if primary == "" {
		primary = "openai"
	}
	return primary == name || cfg.Transcription.FallbackProvider == name
}

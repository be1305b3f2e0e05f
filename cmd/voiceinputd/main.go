// Command voiceinputd is the local voice input daemon: push-to-talk
// microphone capture, transcription with bounded concurrency, and
// dictionary cleanup of the resulting text.
//
// Send SIGUSR1 to toggle recording; the finished transcript is printed
// to stdout.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kazuhideoki/voice-input/internal/command"
	"github.com/kazuhideoki/voice-input/internal/config"
	"github.com/kazuhideoki/voice-input/internal/dict"
	"github.com/kazuhideoki/voice-input/internal/dispatch"
	"github.com/kazuhideoki/voice-input/internal/health"
	"github.com/kazuhideoki/voice-input/internal/media"
	"github.com/kazuhideoki/voice-input/internal/observe"
	"github.com/kazuhideoki/voice-input/internal/resilience"
	"github.com/kazuhideoki/voice-input/internal/session"
	"github.com/kazuhideoki/voice-input/pkg/audio/capture"
	"github.com/kazuhideoki/voice-input/pkg/provider/transcribe"
	transcribeoai "github.com/kazuhideoki/voice-input/pkg/provider/transcribe/openai"
	transcribewhisper "github.com/kazuhideoki/voice-input/pkg/provider/transcribe/whisper"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	listDevices := flag.Bool("list-devices", false, "print input-capable audio devices and exit")
	flag.Parse()

	if *listDevices {
		names, err := capture.ListInputDevices()
		if err != nil {
			fmt.Fprintf(os.Stderr, "voiceinputd: %v\n", err)
			return 1
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return 0
	}

	// ── Configuration with hot reload ─────────────────────────────────────────
	logLevel := new(slog.LevelVar)
	watcher, err := config.NewWatcher(*configPath, func(old, updated *config.Config) {
		diff := config.Compare(old, updated)
		if diff.LogLevelChanged {
			logLevel.Set(diff.NewLogLevel.Level())
			slog.Info("log level changed", "level", diff.NewLogLevel)
		}
		if diff.DictionaryPathChanged || diff.DevicePriorityChanged {
			slog.Warn("changed settings need a restart to take effect")
		}
	})
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "voiceinputd: config file %q not found\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "voiceinputd: %v\n", err)
		}
		return 1
	}
	defer watcher.Stop()
	cfg := watcher.Current()

	// ── Logger ────────────────────────────────────────────────────────────────
	logLevel.Set(cfg.Server.LogLevel.Level())
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	slog.Info("voiceinputd starting",
		"version", version,
		"config", *configPath,
		"provider", cfg.Transcription.Provider,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	shutdownTelemetry, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    "voice-input",
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	metrics := observe.DefaultMetrics()

	// ── Transcription client ──────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	client, err := buildTranscriber(reg, cfg.Transcription)
	if err != nil {
		slog.Error("failed to build transcription client", "err", err)
		return 1
	}
	if closer, ok := client.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	// ── Dictionary ────────────────────────────────────────────────────────────
	var store dict.Store
	if cfg.Dictionary.Path != "" {
		store = dict.NewFileStore(cfg.Dictionary.Path)
	} else {
		store = dict.NewMemStore()
	}

	// ── Pipeline wiring ───────────────────────────────────────────────────────
	backend := capture.NewPortAudio(capture.Config{
		DevicePriority:   cfg.Audio.DevicePriority,
		MaxDuration:      cfg.Audio.MaxDuration(),
		TargetSampleRate: cfg.Audio.TargetSampleRate,
	})
	sessions := session.New(backend,
		session.Config{MaxDuration: cfg.Audio.MaxDuration()},
		session.WithMetrics(metrics),
	)
	dispatcher := dispatch.New(client,
		dispatch.WithConcurrency(cfg.Transcription.Concurrency()),
		dispatch.WithDictionary(store),
		dispatch.WithMetrics(metrics),
	)
	router := command.NewRouter(sessions, dispatcher, media.Noop{}, cfg.Transcription.LanguageHint())
	sessions.OnAutoStop(router.EnqueueResult)

	// ── Metrics and health endpoints ──────────────────────────────────────────
	if addr := cfg.Server.MetricsAddr; addr != "" {
		probes := health.New(
			health.Check{Name: "audio", Probe: func(context.Context) error {
				names, err := capture.ListInputDevices()
				if err != nil {
					return err
				}
				if len(names) == 0 {
					return errors.New("no input devices")
				}
				return nil
			}},
			health.Check{Name: "dictionary", Probe: func(ctx context.Context) error {
				_, err := store.Load(ctx)
				return err
			}},
		)
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			probes.Routes(mux)
			slog.Info("metrics endpoint listening", "addr", addr)
			if err := http.ListenAndServe(addr, mux); err != nil {
				slog.Warn("metrics endpoint stopped", "err", err)
			}
		}()
	}

	// ── Transcript consumer ───────────────────────────────────────────────────
	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		for res := range dispatcher.Results() {
			if res.Err != nil {
				slog.Error("transcription failed", "session_id", res.SessionID, "err", res.Err)
				continue
			}
			fmt.Println(res.Text)
		}
	}()

	// ── Recording toggle ──────────────────────────────────────────────────────
	toggle := make(chan os.Signal, 1)
	signal.Notify(toggle, syscall.SIGUSR1)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-toggle:
				resp := router.Handle(ctx, command.Command{Kind: command.KindToggle})
				if !resp.OK {
					slog.Warn("toggle failed", "message", resp.Message)
					continue
				}
				slog.Info(resp.Message)
			}
		}
	}()

	slog.Info("ready — send SIGUSR1 to toggle recording, Ctrl+C to shut down")

	if err := dispatcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("dispatcher error", "err", err)
	}

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	slog.Info("shutdown signal received, stopping…")
	if sessions.IsRecording() {
		if _, err := sessions.Stop(); err != nil {
			slog.Warn("stopping active recording", "err", err)
		}
	}
	<-consumerDone

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		slog.Warn("telemetry shutdown", "err", err)
	}
	slog.Info("goodbye")
	return 0
}

// buildTranscriber creates the configured transcription client. When a
// fallback provider is configured, both backends are wrapped in a
// breaker-guarded [resilience.Failover].
func buildTranscriber(reg *config.Registry, tc config.TranscriptionConfig) (transcribe.Client, error) {
	primary, err := reg.CreateTranscriber(tc)
	if err != nil {
		return nil, err
	}
	if tc.FallbackProvider == "" {
		return primary, nil
	}

	backup, err := reg.Create(tc.FallbackProvider, tc)
	if err != nil {
		return nil, fmt.Errorf("fallback provider: %w", err)
	}

	primaryName := tc.Provider
	if primaryName == "" {
		primaryName = "openai"
	}
	fo := resilience.NewFailover(primaryName, primary, resilience.BreakerConfig{})
	fo.Add(tc.FallbackProvider, backup)
	slog.Info("transcription failover enabled",
		"primary", primaryName,
		"fallback", tc.FallbackProvider,
	)
	return fo, nil
}

// registerBuiltinProviders wires the built-in transcription factories
// into reg.
func registerBuiltinProviders(reg *config.Registry) {
	reg.RegisterTranscriber("openai", func(tc config.TranscriptionConfig) (transcribe.Client, error) {
		keyEnv := tc.APIKeyEnv
		if keyEnv == "" {
			keyEnv = "OPENAI_API_KEY"
		}
		apiKey := os.Getenv(keyEnv)
		if apiKey == "" {
			return nil, fmt.Errorf("environment variable %s is not set", keyEnv)
		}

		opts := []transcribeoai.Option{transcribeoai.WithTimeout(tc.Timeout())}
		if tc.Model != "" {
			opts = append(opts, transcribeoai.WithModel(tc.Model))
		}
		if tc.BaseURL != "" {
			opts = append(opts, transcribeoai.WithBaseURL(tc.BaseURL))
		}
		if tc.Prompt != "" {
			opts = append(opts, transcribeoai.WithPrompt(tc.Prompt))
		}
		return transcribeoai.New(apiKey, opts...)
	})

	reg.RegisterTranscriber("whisper-native", func(tc config.TranscriptionConfig) (transcribe.Client, error) {
		return transcribewhisper.New(tc.ModelPath,
			transcribewhisper.WithLanguage(tc.LanguageHint()))
	})
}

// Package observe provides application-wide observability primitives:
// OpenTelemetry metrics, tracing helpers, and structured-logging glue.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can be
// scraped via a standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all metrics.
const meterName = "github.com/kazuhideoki/voice-input"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use.
type Metrics struct {
	// RecordingDuration tracks the wall-clock length of finished
	// recording sessions.
	RecordingDuration metric.Float64Histogram

	// TranscriptionDuration tracks transcription latency per work unit.
	// Use with attribute.String("status", "ok"|"error").
	TranscriptionDuration metric.Float64Histogram

	// EncodeFallbacks counts recordings that fell back to the WAV
	// container after a failed FLAC encode.
	EncodeFallbacks metric.Int64Counter

	// TranscriptionErrors counts failed transcription work units.
	TranscriptionErrors metric.Int64Counter

	// DictionaryReplacements counts dictionary substitutions applied to
	// transcripts.
	DictionaryReplacements metric.Int64Counter

	// ActiveSessions tracks whether a recording session is live (0 or 1).
	ActiveSessions metric.Int64UpDownCounter

	// QueueDepth tracks transcription work units waiting for a permit.
	QueueDepth metric.Int64UpDownCounter
}

// latencyBuckets defines histogram bucket boundaries (in seconds) sized
// for recordings up to the auto-stop limit and for transcription calls.
var latencyBuckets = []float64{
	0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.RecordingDuration, err = m.Float64Histogram("voice_input.recording.duration",
		metric.WithDescription("Wall-clock length of finished recording sessions."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TranscriptionDuration, err = m.Float64Histogram("voice_input.transcription.duration",
		metric.WithDescription("Latency of transcription work units by status."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	if met.EncodeFallbacks, err = m.Int64Counter("voice_input.encode.fallbacks",
		metric.WithDescription("Recordings encoded as WAV after a failed FLAC encode."),
	); err != nil {
		return nil, err
	}
	if met.TranscriptionErrors, err = m.Int64Counter("voice_input.transcription.errors",
		metric.WithDescription("Failed transcription work units."),
	); err != nil {
		return nil, err
	}
	if met.DictionaryReplacements, err = m.Int64Counter("voice_input.dictionary.replacements",
		metric.WithDescription("Dictionary substitutions applied to transcripts."),
	); err != nil {
		return nil, err
	}

	if met.ActiveSessions, err = m.Int64UpDownCounter("voice_input.active_sessions",
		metric.WithDescription("Live recording sessions."),
	); err != nil {
		return nil, err
	}
	if met.QueueDepth, err = m.Int64UpDownCounter("voice_input.queue_depth",
		metric.WithDescription("Transcription work units waiting for a permit."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it
// on first call using [otel.GetMeterProvider]. Subsequent calls return the
// same pointer. Panics if instrument creation fails (should not happen
// with the global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordTranscription records one finished transcription work unit.
func (m *Metrics) RecordTranscription(ctx context.Context, seconds float64, status string) {
	m.TranscriptionDuration.Record(ctx, seconds,
		metric.WithAttributes(attribute.String("status", status)))
	if status != "ok" {
		m.TranscriptionErrors.Add(ctx, 1)
	}
}

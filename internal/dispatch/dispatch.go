// Package dispatch runs transcription work units with bounded
// concurrency. Finished recordings are accepted immediately into an
// unbounded queue; a weighted semaphore caps how many are in flight
// against the transcription backend at once. After recognition each
// transcript gets a dictionary substitution pass before delivery.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/kazuhideoki/voice-input/internal/dict"
	"github.com/kazuhideoki/voice-input/internal/observe"
	"github.com/kazuhideoki/voice-input/pkg/audio"
	"github.com/kazuhideoki/voice-input/pkg/provider/transcribe"
)

// DefaultConcurrency is the in-flight cap when none is configured.
const DefaultConcurrency = 2

// Job is one finished recording awaiting transcription.
type Job struct {
	// SessionID identifies the recording session that produced the audio.
	SessionID uint64
	// Audio is the encoded payload to transcribe.
	Audio audio.EncodedAudio
	// Language is the BCP-47 language hint; empty means auto-detect.
	Language string
	// Prompt is freeform context for the transcription backend.
	Prompt string
}

// Result is the outcome of one job. Exactly one of Text or Err is
// meaningful: a failed job carries Err and an empty Text.
type Result struct {
	// SessionID identifies the originating session.
	SessionID uint64
	// Text is the final transcript after dictionary substitution.
	Text string
	// Err is the failure, if any, for this job.
	Err error
}

// Dispatcher owns the transcription queue. Construct with New, feed it
// with Submit, and drain Results while Run executes.
type Dispatcher struct {
	client  transcribe.Client
	store   dict.Store
	sem     *semaphore.Weighted
	queue   *jobQueue
	results chan Result
	metrics *observe.Metrics
	wg      sync.WaitGroup
}

// Option configures the Dispatcher.
type Option func(*Dispatcher)

// WithConcurrency caps in-flight transcription calls. Defaults to
// DefaultConcurrency.
func WithConcurrency(n int64) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.sem = semaphore.NewWeighted(n)
		}
	}
}

// WithDictionary applies substitutions from store to every transcript.
func WithDictionary(store dict.Store) Option {
	return func(d *Dispatcher) { d.store = store }
}

// WithMetrics records dispatch metrics on m.
func WithMetrics(m *observe.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// New returns a Dispatcher transcribing through client.
func New(client transcribe.Client, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		client:  client,
		sem:     semaphore.NewWeighted(DefaultConcurrency),
		queue:   newJobQueue(),
		results: make(chan Result, 16),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Submit queues a job. It never blocks, regardless of how much work is
// already queued or in flight.
func (d *Dispatcher) Submit(job Job) {
	d.queue.push(job)
	if d.metrics != nil {
		d.metrics.QueueDepth.Add(context.Background(), 1)
	}
	slog.Debug("transcription queued", "session_id", job.SessionID, "payload_bytes", len(job.Audio.Bytes))
}

// Results delivers one Result per submitted job, in completion order.
// The channel is closed when Run returns.
func (d *Dispatcher) Results() <-chan Result {
	return d.results
}

// Run processes queued jobs until ctx is cancelled, then waits for
// in-flight work and closes Results. A failed job produces a Result with
// Err set; the loop keeps going.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		job, err := d.queue.pop(ctx)
		if err != nil {
			break
		}
		if err := d.sem.Acquire(ctx, 1); err != nil {
			// Shutting down with the job still unprocessed; report it.
			d.deliver(Result{SessionID: job.SessionID, Err: err})
			break
		}
		if d.metrics != nil {
			d.metrics.QueueDepth.Add(context.Background(), -1)
		}

		d.wg.Add(1)
		go func(job Job) {
			defer d.wg.Done()
			d.deliver(d.process(ctx, job))
		}(job)
	}

	d.wg.Wait()
	close(d.results)
	return ctx.Err()
}

// process runs one job: transcription, then dictionary substitution.
// The concurrency permit is held for the whole unit and released before
// the result is delivered.
func (d *Dispatcher) process(ctx context.Context, job Job) Result {
	defer d.sem.Release(1)

	ctx, span := observe.StartSpan(ctx, "dispatch.process")
	defer span.End()

	started := time.Now()
	text, err := d.client.Transcribe(ctx, job.Audio, job.Language)
	if err != nil {
		d.recordUnit(ctx, started, "error")
		slog.Error("transcription failed", "session_id", job.SessionID, "error", err)
		return Result{SessionID: job.SessionID, Err: fmt.Errorf("dispatch: transcribe session %d: %w", job.SessionID, err)}
	}

	if d.store != nil {
		replaced, err := d.substitute(ctx, text)
		if err != nil {
			d.recordUnit(ctx, started, "error")
			return Result{SessionID: job.SessionID, Err: fmt.Errorf("dispatch: dictionary pass for session %d: %w", job.SessionID, err)}
		}
		text = replaced
	}

	d.recordUnit(ctx, started, "ok")
	slog.Info("transcription finished",
		"session_id", job.SessionID,
		"duration", time.Since(started),
		"text_len", len(text))
	return Result{SessionID: job.SessionID, Text: text}
}

// substitute applies the dictionary to text and persists updated hit
// counts.
func (d *Dispatcher) substitute(ctx context.Context, text string) (string, error) {
	entries, err := d.store.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("load dictionary: %w", err)
	}
	if len(entries) == 0 {
		return text, nil
	}

	var before uint64
	for _, e := range entries {
		before += e.Hits
	}
	replaced := dict.Apply(text, entries)
	var after uint64
	for _, e := range entries {
		after += e.Hits
	}

	if after != before {
		if d.metrics != nil {
			d.metrics.DictionaryReplacements.Add(ctx, int64(after-before))
		}
		if err := d.store.Save(ctx, entries); err != nil {
			return "", fmt.Errorf("save dictionary hits: %w", err)
		}
	}
	return replaced, nil
}

func (d *Dispatcher) recordUnit(ctx context.Context, started time.Time, status string) {
	if d.metrics == nil {
		return
	}
	d.metrics.RecordTranscription(ctx, time.Since(started).Seconds(), status)
}

func (d *Dispatcher) deliver(res Result) {
	d.results <- res
}

// Package session owns the single recording session: at most one capture
// is active at a time, each session gets a unique id, and every session
// is bounded by an auto-stop timer so a forgotten recording cannot run
// forever.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kazuhideoki/voice-input/internal/observe"
	"github.com/kazuhideoki/voice-input/pkg/audio"
	"github.com/kazuhideoki/voice-input/pkg/audio/capture"
)

// Errors returned by the session state machine.
var (
	// ErrAlreadyActive is returned by Start while a session is recording.
	ErrAlreadyActive = errors.New("session: recording already active")
	// ErrNotStarted is returned by Stop when no session is recording.
	ErrNotStarted = errors.New("session: recording not started")
)

// DefaultMaxDuration bounds a session when no limit is configured.
const DefaultMaxDuration = 30 * time.Second

// State is the recording lifecycle state.
type State int

// Valid State values.
const (
	StateIdle State = iota
	StateRecording
)

// String implements [fmt.Stringer].
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Options carries per-session context captured at start time.
type Options struct {
	// Prompt is freeform context for the transcription backend.
	Prompt string
	// MusicWasPlaying records whether background playback was paused for
	// this session and should be resumed afterwards.
	MusicWasPlaying bool
}

// Result is a finished session: the processed audio plus the context the
// session was started with.
type Result struct {
	// SessionID identifies the finished session.
	SessionID uint64
	// Audio is the processed, encoded capture.
	Audio audio.EncodedAudio
	// Duration is the wall-clock recording length.
	Duration time.Duration
	// Prompt carries Options.Prompt through to transcription.
	Prompt string
	// MusicWasPlaying carries Options.MusicWasPlaying for playback resume.
	MusicWasPlaying bool
}

// Config tunes the session service.
type Config struct {
	// MaxDuration is the auto-stop limit. Defaults to DefaultMaxDuration.
	MaxDuration time.Duration
}

// Service is the recording session state machine. All methods are safe
// for concurrent use.
type Service struct {
	backend capture.Backend
	cfg     Config
	metrics *observe.Metrics

	mu         sync.Mutex
	state      State
	sessionID  uint64
	nextID     uint64
	cancel     chan struct{}
	startedAt  time.Time
	opts       Options
	onAutoStop func(Result)
}

// Option configures the Service.
type Option func(*Service)

// WithMetrics records session metrics on m.
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New returns an idle Service recording through backend.
func New(backend capture.Backend, cfg Config, opts ...Option) *Service {
	if cfg.MaxDuration <= 0 {
		cfg.MaxDuration = DefaultMaxDuration
	}
	s := &Service{backend: backend, cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnAutoStop registers the callback invoked with the session result when
// the auto-stop timer fires. Manual stops do not invoke it.
func (s *Service) OnAutoStop(fn func(Result)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onAutoStop = fn
}

// Start begins a new recording session and returns its unique id.
// Returns ErrAlreadyActive when a session is already recording; a backend
// failure leaves the service idle.
func (s *Service) Start(opts Options) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateRecording {
		return 0, ErrAlreadyActive
	}
	if err := s.backend.StartRecording(); err != nil {
		return 0, fmt.Errorf("session: start capture: %w", err)
	}

	s.nextID++
	id := s.nextID
	s.sessionID = id
	s.state = StateRecording
	s.opts = opts
	s.startedAt = time.Now()

	cancel := make(chan struct{})
	s.cancel = cancel
	go s.autoStop(id, cancel)

	if s.metrics != nil {
		s.metrics.ActiveSessions.Add(context.Background(), 1)
	}
	slog.Info("recording started",
		"session_id", id,
		"max_duration", s.cfg.MaxDuration,
		"music_was_playing", opts.MusicWasPlaying)
	return id, nil
}

// Stop ends the active session and returns its result. Returns
// ErrNotStarted when no session is recording. A backend failure still
// resets the service to idle.
func (s *Service) Stop() (Result, error) {
	return s.stop(0)
}

// stop ends the active session. A non-zero id only stops that session,
// which lets a stale auto-stop timer expire harmlessly after a manual
// stop has already recycled the service.
func (s *Service) stop(id uint64) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRecording || (id != 0 && s.sessionID != id) {
		return Result{}, ErrNotStarted
	}

	if s.cancel != nil {
		close(s.cancel)
		s.cancel = nil
	}

	sid := s.sessionID
	opts := s.opts
	duration := time.Since(s.startedAt)
	s.state = StateIdle
	s.sessionID = 0
	s.opts = Options{}

	if s.metrics != nil {
		s.metrics.ActiveSessions.Add(context.Background(), -1)
		s.metrics.RecordingDuration.Record(context.Background(), duration.Seconds())
	}

	enc, err := s.backend.StopRecording()
	if err != nil {
		return Result{}, fmt.Errorf("session: stop capture: %w", err)
	}
	if s.metrics != nil && enc.MIMEType == audio.MIMETypeWAV {
		// WAV only ever reaches this point via the FLAC fallback.
		s.metrics.EncodeFallbacks.Add(context.Background(), 1)
	}

	slog.Info("recording stopped",
		"session_id", sid,
		"duration", duration,
		"payload_bytes", len(enc.Bytes),
		"mime_type", enc.MIMEType)
	return Result{
		SessionID:       sid,
		Audio:           enc,
		Duration:        duration,
		Prompt:          opts.Prompt,
		MusicWasPlaying: opts.MusicWasPlaying,
	}, nil
}

// autoStop ends session id when the configured limit elapses, unless the
// session is cancelled first.
func (s *Service) autoStop(id uint64, cancel <-chan struct{}) {
	timer := time.NewTimer(s.cfg.MaxDuration)
	defer timer.Stop()

	select {
	case <-timer.C:
		res, err := s.stop(id)
		if err != nil {
			// The session already ended; a late timer is a no-op.
			return
		}
		slog.Info("recording auto-stopped", "session_id", id, "max_duration", s.cfg.MaxDuration)
		s.mu.Lock()
		fn := s.onAutoStop
		s.mu.Unlock()
		if fn != nil {
			fn(res)
		}
	case <-cancel:
	}
}

// IsRecording reports whether a session is active.
func (s *Service) IsRecording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateRecording
}

// Status returns the current state and, while recording, the active
// session id.
func (s *Service) Status() (State, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.sessionID
}

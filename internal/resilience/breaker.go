// Package resilience shields transcription backends from repeated failure.
//
// [Breaker] is a three-state circuit breaker (closed, open, half-open) that
// stops hammering a backend once it fails repeatedly. [Failover] chains
// several transcription clients behind per-backend breakers so that a broken
// primary is skipped in favour of a healthy fallback.
//
// All types are safe for concurrent use.
package resilience

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrBreakerOpen is returned by [Breaker.Do] while the breaker is open and the
// cooldown has not yet elapsed.
var ErrBreakerOpen = errors.New("breaker open")

// BreakerState is the current operating mode of a [Breaker].
type BreakerState int

const (
	// BreakerClosed forwards all calls.
	BreakerClosed BreakerState = iota

	// BreakerOpen rejects calls with [ErrBreakerOpen] until the cooldown
	// elapses.
	BreakerOpen

	// BreakerHalfOpen admits a limited number of probe calls to test whether
	// the backend has recovered.
	BreakerHalfOpen
)

// String implements [fmt.Stringer].
func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig tunes a [Breaker]. Zero fields fall back to defaults.
type BreakerConfig struct {
	// Name labels the breaker in log output.
	Name string

	// FailureLimit is the number of consecutive failures that trips the
	// breaker. Default: 3.
	FailureLimit int

	// Cooldown is how long the breaker stays open before admitting probe
	// calls. Default: 30s.
	Cooldown time.Duration

	// ProbeLimit is how many probe calls the half-open state admits, and how
	// many of them must succeed for the breaker to close. Default: 2.
	ProbeLimit int
}

// Breaker is a three-state circuit breaker.
type Breaker struct {
	name         string
	failureLimit int
	cooldown     time.Duration
	probeLimit   int

	mu       sync.Mutex
	state    BreakerState
	failures int
	probes   int
	probeOK  int
	openedAt time.Time
}

// NewBreaker creates a closed [Breaker] from cfg.
func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.FailureLimit <= 0 {
		cfg.FailureLimit = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	if cfg.ProbeLimit <= 0 {
		cfg.ProbeLimit = 2
	}
	return &Breaker{
		name:         cfg.Name,
		failureLimit: cfg.FailureLimit,
		cooldown:     cfg.Cooldown,
		probeLimit:   cfg.ProbeLimit,
	}
}

// Do runs fn unless the breaker rejects the call. An open breaker returns
// [ErrBreakerOpen] without invoking fn; a half-open breaker admits at most
// ProbeLimit probes. The error from fn is returned unchanged.
func (b *Breaker) Do(fn func() error) error {
	b.mu.Lock()
	switch b.state {
	case BreakerOpen:
		if time.Since(b.openedAt) < b.cooldown {
			b.mu.Unlock()
			return ErrBreakerOpen
		}
		b.state = BreakerHalfOpen
		b.probes = 0
		b.probeOK = 0
		slog.Info("breaker half-open", "backend", b.name)
	case BreakerHalfOpen:
		if b.probes >= b.probeLimit {
			b.mu.Unlock()
			return ErrBreakerOpen
		}
	}
	probing := b.state == BreakerHalfOpen
	if probing {
		b.probes++
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.fail(probing)
		return err
	}
	b.pass(probing)
	return nil
}

// fail records a failed call. Caller holds b.mu.
func (b *Breaker) fail(probing bool) {
	b.openedAt = time.Now()
	if probing {
		// A single failed probe sends the breaker straight back to open.
		b.state = BreakerOpen
		b.failures = b.failureLimit
		slog.Warn("breaker re-opened", "backend", b.name)
		return
	}
	b.failures++
	if b.failures >= b.failureLimit {
		b.state = BreakerOpen
		slog.Warn("breaker opened",
			"backend", b.name,
			"consecutive_failures", b.failures)
	}
}

// pass records a successful call. Caller holds b.mu.
func (b *Breaker) pass(probing bool) {
	if !probing {
		b.failures = 0
		return
	}
	b.probeOK++
	if b.probeOK >= b.probeLimit {
		b.state = BreakerClosed
		b.failures = 0
		slog.Info("breaker closed", "backend", b.name)
	}
}

// State reports the breaker state. An open breaker whose cooldown has elapsed
// is reported as half-open; the actual transition happens on the next call to
// [Breaker.Do].
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == BreakerOpen && time.Since(b.openedAt) >= b.cooldown {
		return BreakerHalfOpen
	}
	return b.state
}

// Reset forces the breaker back to closed and clears all counters.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = BreakerClosed
	b.failures = 0
	b.probes = 0
	b.probeOK = 0
}

package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kazuhideoki/voice-input/internal/resilience"
	"github.com/kazuhideoki/voice-input/pkg/audio"
	"github.com/kazuhideoki/voice-input/pkg/provider/transcribe/mock"
)

func testPayload() audio.EncodedAudio {
	return audio.EncodedAudio{
		Bytes:    []byte{1, 2, 3},
		MIMEType: audio.MIMETypeFLAC,
		FileName: "audio.flac",
	}
}

func TestFailoverUsesPrimary(t *testing.T) {
	t.Parallel()

	primary := &mock.Client{Text: "primary"}
	backup := &mock.Client{Text: "backup"}

	f := resilience.NewFailover("primary", primary, resilience.BreakerConfig{})
	f.Add("backup", backup)

	got, err := f.Transcribe(context.Background(), testPayload(), "ja")
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if got != "primary" {
		t.Errorf("Transcribe() = %q, want %q", got, "primary")
	}
	if calls := backup.Calls(); len(calls) != 0 {
		t.Errorf("backup received %d calls, want 0", len(calls))
	}
}

func TestFailoverFallsBackOnError(t *testing.T) {
	t.Parallel()

	primary := &mock.Client{Err: errors.New("quota exceeded")}
	backup := &mock.Client{Text: "backup"}

	f := resilience.NewFailover("primary", primary, resilience.BreakerConfig{})
	f.Add("backup", backup)

	got, err := f.Transcribe(context.Background(), testPayload(), "ja")
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if got != "backup" {
		t.Errorf("Transcribe() = %q, want %q", got, "backup")
	}
	if calls := primary.Calls(); len(calls) != 1 {
		t.Errorf("primary received %d calls, want 1", len(calls))
	}
}

func TestFailoverAllBackendsFail(t *testing.T) {
	t.Parallel()

	primary := &mock.Client{Err: errors.New("down")}
	backup := &mock.Client{Err: errors.New("also down")}

	f := resilience.NewFailover("primary", primary, resilience.BreakerConfig{})
	f.Add("backup", backup)

	_, err := f.Transcribe(context.Background(), testPayload(), "ja")
	if !errors.Is(err, resilience.ErrAllBackendsFailed) {
		t.Errorf("Transcribe() error = %v, want %v", err, resilience.ErrAllBackendsFailed)
	}
}

func TestFailoverSkipsOpenBreaker(t *testing.T) {
	t.Parallel()

	primary := &mock.Client{Err: errors.New("down")}
	backup := &mock.Client{Text: "backup"}

	f := resilience.NewFailover("primary", primary, resilience.BreakerConfig{
		FailureLimit: 1,
		Cooldown:     time.Hour,
	})
	f.Add("backup", backup)

	for i := 0; i < 3; i++ {
		got, err := f.Transcribe(context.Background(), testPayload(), "ja")
		if err != nil {
			t.Fatalf("call %d: Transcribe() error = %v", i, err)
		}
		if got != "backup" {
			t.Fatalf("call %d: Transcribe() = %q, want %q", i, got, "backup")
		}
	}

	// The primary's breaker opened after the first failure; later calls must
	// not reach it.
	if calls := primary.Calls(); len(calls) != 1 {
		t.Errorf("primary received %d calls, want 1", len(calls))
	}
}

func TestFailoverRespectsContext(t *testing.T) {
	t.Parallel()

	primary := &mock.Client{Text: "primary"}
	f := resilience.NewFailover("primary", primary, resilience.BreakerConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Transcribe(ctx, testPayload(), "ja")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Transcribe() error = %v, want %v", err, context.Canceled)
	}
	if calls := primary.Calls(); len(calls) != 0 {
		t.Errorf("primary received %d calls, want 0", len(calls))
	}
}

type closableClient struct {
	mock.Client
	closed bool
}

func (c *closableClient) Close() error {
	c.closed = true
	return nil
}

func TestFailoverCloseClosesBackends(t *testing.T) {
	t.Parallel()

	primary := &closableClient{}
	backup := &mock.Client{}

	f := resilience.NewFailover("primary", primary, resilience.BreakerConfig{})
	f.Add("backup", backup)

	if err := f.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !primary.closed {
		t.Error("primary was not closed")
	}
}

package command_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kazuhideoki/voice-input/internal/command"
	"github.com/kazuhideoki/voice-input/internal/dispatch"
	"github.com/kazuhideoki/voice-input/internal/session"
	"github.com/kazuhideoki/voice-input/pkg/audio"
	capturemock "github.com/kazuhideoki/voice-input/pkg/audio/capture/mock"
	transcribemock "github.com/kazuhideoki/voice-input/pkg/provider/transcribe/mock"
)

// fakeMedia is a scripted media.Controller.
type fakeMedia struct {
	mu          sync.Mutex
	playing     bool
	pauseErr    error
	pauseCalls  int
	resumeCalls int
}

func (m *fakeMedia) PauseIfPlaying(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pauseCalls++
	if m.pauseErr != nil {
		return false, m.pauseErr
	}
	return m.playing, nil
}

func (m *fakeMedia) Resume(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resumeCalls++
	return nil
}

func (m *fakeMedia) resumed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resumeCalls
}

type fixture struct {
	router     *command.Router
	sessions   *session.Service
	dispatcher *dispatch.Dispatcher
	backend    *capturemock.Backend
	client     *transcribemock.Client
	media      *fakeMedia
	cancel     context.CancelFunc
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	backend := &capturemock.Backend{Result: audio.EncodedAudio{
		Bytes:    []byte("audio"),
		MIMEType: audio.MIMETypeFLAC,
		FileName: "audio.flac",
	}}
	client := &transcribemock.Client{Text: "transcript"}
	sessions := session.New(backend, session.Config{MaxDuration: time.Minute})
	dispatcher := dispatch.New(client)
	fm := &fakeMedia{}
	router := command.NewRouter(sessions, dispatcher, fm, "ja")
	sessions.OnAutoStop(router.EnqueueResult)

	ctx, cancel := context.WithCancel(context.Background())
	go dispatcher.Run(ctx)
	t.Cleanup(cancel)

	return &fixture{
		router:     router,
		sessions:   sessions,
		dispatcher: dispatcher,
		backend:    backend,
		client:     client,
		media:      fm,
		cancel:     cancel,
	}
}

func (f *fixture) waitResult(t *testing.T) dispatch.Result {
	t.Helper()
	select {
	case res := <-f.dispatcher.Results():
		return res
	case <-time.After(5 * time.Second):
		t.Fatal("no transcription result arrived")
		return dispatch.Result{}
	}
}

func TestToggleStartsAndStops(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	resp := f.router.Handle(ctx, command.Command{Kind: command.KindToggle})
	if !resp.OK {
		t.Fatalf("toggle start failed: %s", resp.Message)
	}
	if !f.sessions.IsRecording() {
		t.Fatal("not recording after toggle")
	}

	resp = f.router.Handle(ctx, command.Command{Kind: command.KindToggle})
	if !resp.OK {
		t.Fatalf("toggle stop failed: %s", resp.Message)
	}
	if f.sessions.IsRecording() {
		t.Fatal("still recording after second toggle")
	}

	res := f.waitResult(t)
	if res.Err != nil {
		t.Fatalf("transcription error: %v", res.Err)
	}
	if res.Text != "transcript" {
		t.Errorf("Text = %q, want %q", res.Text, "transcript")
	}
	calls := f.client.Calls()
	if len(calls) != 1 {
		t.Fatalf("client called %d times, want 1", len(calls))
	}
	if calls[0].LanguageHint != "ja" {
		t.Errorf("LanguageHint = %q, want ja", calls[0].LanguageHint)
	}
	if string(calls[0].Payload.Bytes) != "audio" {
		t.Errorf("Payload = %q, want captured audio", calls[0].Payload.Bytes)
	}
}

func TestStartWhileRecordingFails(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	if resp := f.router.Handle(ctx, command.Command{Kind: command.KindStart}); !resp.OK {
		t.Fatalf("start failed: %s", resp.Message)
	}
	resp := f.router.Handle(ctx, command.Command{Kind: command.KindStart})
	if resp.OK {
		t.Fatal("second start succeeded, want failure")
	}
	if !strings.Contains(resp.Message, "already active") {
		t.Errorf("Message = %q, want mention of active recording", resp.Message)
	}
}

func TestStatusReflectsState(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	resp := f.router.Handle(ctx, command.Command{Kind: command.KindStatus})
	if !resp.OK || resp.Message != "idle" {
		t.Errorf("status = %+v, want idle", resp)
	}

	f.router.Handle(ctx, command.Command{Kind: command.KindStart})
	resp = f.router.Handle(ctx, command.Command{Kind: command.KindStatus})
	if !resp.OK || !strings.Contains(resp.Message, "recording") {
		t.Errorf("status = %+v, want recording", resp)
	}
}

func TestMediaPausedAndResumed(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.media.playing = true
	ctx := context.Background()

	f.router.Handle(ctx, command.Command{Kind: command.KindStart})
	if got := f.media.resumed(); got != 0 {
		t.Fatalf("Resume called %d times during recording, want 0", got)
	}

	resp := f.router.Handle(ctx, command.Command{Kind: command.KindStop})
	if !resp.OK {
		t.Fatalf("stop failed: %s", resp.Message)
	}
	if got := f.media.resumed(); got != 1 {
		t.Errorf("Resume called %d times after stop, want 1", got)
	}
}

func TestMediaPauseErrorDoesNotBlockRecording(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.media.pauseErr = errors.New("player gone")
	ctx := context.Background()

	resp := f.router.Handle(ctx, command.Command{Kind: command.KindStart})
	if !resp.OK {
		t.Fatalf("start failed despite best-effort media pause: %s", resp.Message)
	}
	f.router.Handle(ctx, command.Command{Kind: command.KindStop})
	if got := f.media.resumed(); got != 0 {
		t.Errorf("Resume called %d times, want 0 when pause failed", got)
	}
}

func TestStartFailureResumesMedia(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.media.playing = true
	f.backend.StartErr = errors.New("no device")
	ctx := context.Background()

	resp := f.router.Handle(ctx, command.Command{Kind: command.KindStart})
	if resp.OK {
		t.Fatal("start succeeded, want backend failure")
	}
	if got := f.media.resumed(); got != 1 {
		t.Errorf("Resume called %d times after failed start, want 1", got)
	}
}

func TestAutoStopFlowsIntoDispatcher(t *testing.T) {
	t.Parallel()

	backend := &capturemock.Backend{Result: audio.EncodedAudio{Bytes: []byte("a"), MIMEType: audio.MIMETypeFLAC}}
	client := &transcribemock.Client{Text: "auto"}
	sessions := session.New(backend, session.Config{MaxDuration: 30 * time.Millisecond})
	dispatcher := dispatch.New(client)
	router := command.NewRouter(sessions, dispatcher, nil, "ja")
	sessions.OnAutoStop(router.EnqueueResult)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go dispatcher.Run(ctx)

	if resp := router.Handle(ctx, command.Command{Kind: command.KindStart}); !resp.OK {
		t.Fatalf("start failed: %s", resp.Message)
	}

	select {
	case res := <-dispatcher.Results():
		if res.Err != nil {
			t.Fatalf("transcription error: %v", res.Err)
		}
		if res.Text != "auto" {
			t.Errorf("Text = %q, want %q", res.Text, "auto")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("auto-stopped session never reached the dispatcher")
	}
}

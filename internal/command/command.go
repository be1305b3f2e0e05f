// Package command routes user commands to the recording session and the
// transcription dispatcher. It is the single place where a finished
// recording becomes a queued transcription job.
package command

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kazuhideoki/voice-input/internal/dispatch"
	"github.com/kazuhideoki/voice-input/internal/media"
	"github.com/kazuhideoki/voice-input/internal/session"
)

// Kind identifies a user command.
type Kind int

// Valid Kind values.
const (
	KindStart Kind = iota
	KindStop
	KindToggle
	KindStatus
)

// String implements [fmt.Stringer].
func (k Kind) String() string {
	switch k {
	case KindStart:
		return "start"
	case KindStop:
		return "stop"
	case KindToggle:
		return "toggle"
	case KindStatus:
		return "status"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Command is one user request.
type Command struct {
	// Kind selects the operation.
	Kind Kind
	// Prompt is optional context attached to a started session.
	Prompt string
}

// Response is the user-facing outcome of a command.
type Response struct {
	// OK reports whether the command succeeded.
	OK bool
	// Message is a short human-readable summary.
	Message string
}

// Router dispatches commands. Construct with NewRouter and register
// Router.EnqueueResult as the session's auto-stop callback so timer
// stops flow into transcription like manual ones.
type Router struct {
	sessions   *session.Service
	dispatcher *dispatch.Dispatcher
	media      media.Controller
	language   string
}

// NewRouter wires a Router. A nil controller disables media handling.
func NewRouter(sessions *session.Service, dispatcher *dispatch.Dispatcher, controller media.Controller, language string) *Router {
	if controller == nil {
		controller = media.Noop{}
	}
	return &Router{
		sessions:   sessions,
		dispatcher: dispatcher,
		media:      controller,
		language:   language,
	}
}

// Handle executes one command.
func (r *Router) Handle(ctx context.Context, cmd Command) Response {
	switch cmd.Kind {
	case KindStart:
		return r.start(ctx, cmd)
	case KindStop:
		return r.stop(ctx)
	case KindToggle:
		if r.sessions.IsRecording() {
			return r.stop(ctx)
		}
		return r.start(ctx, cmd)
	case KindStatus:
		state, id := r.sessions.Status()
		if state == session.StateRecording {
			return Response{OK: true, Message: fmt.Sprintf("recording (session %d)", id)}
		}
		return Response{OK: true, Message: "idle"}
	default:
		return Response{OK: false, Message: fmt.Sprintf("unknown command %v", cmd.Kind)}
	}
}

func (r *Router) start(ctx context.Context, cmd Command) Response {
	wasPlaying, err := r.media.PauseIfPlaying(ctx)
	if err != nil {
		slog.Warn("pausing media playback", "error", err)
		wasPlaying = false
	}

	id, err := r.sessions.Start(session.Options{Prompt: cmd.Prompt, MusicWasPlaying: wasPlaying})
	if err != nil {
		if wasPlaying {
			if rerr := r.media.Resume(ctx); rerr != nil {
				slog.Warn("resuming media playback", "error", rerr)
			}
		}
		return Response{OK: false, Message: err.Error()}
	}
	return Response{OK: true, Message: fmt.Sprintf("recording started (session %d)", id)}
}

func (r *Router) stop(ctx context.Context) Response {
	res, err := r.sessions.Stop()
	if err != nil {
		return Response{OK: false, Message: err.Error()}
	}
	r.EnqueueResult(res)
	return Response{OK: true, Message: fmt.Sprintf("recording stopped (session %d), transcription queued", res.SessionID)}
}

// EnqueueResult queues a finished session for transcription and resumes
// media playback when the session paused it. It is safe to call from the
// session auto-stop callback.
func (r *Router) EnqueueResult(res session.Result) {
	r.dispatcher.Submit(dispatch.Job{
		SessionID: res.SessionID,
		Audio:     res.Audio,
		Language:  r.language,
		Prompt:    res.Prompt,
	})
	if res.MusicWasPlaying {
		if err := r.media.Resume(context.Background()); err != nil {
			slog.Warn("resuming media playback", "error", err)
		}
	}
}

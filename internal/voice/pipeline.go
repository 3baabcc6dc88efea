package voice

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/ARahim3/ERP-Voice-Assistant/internal/agent"
)

// apologyReply is the spoken fallback for any internal failure. The user
// always hears something; silence is not an acceptable error response.
const apologyReply = "Sorry, I encountered an error processing your request."

const repeatReply = "I didn't catch that. Could you say it again?"

// Transcriber converts a recorded utterance into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, format string) (string, error)
}

// Agent runs one conversation turn for a session.
type Agent interface {
	Converse(ctx context.Context, sessionID, transcript string) (*agent.TurnResult, error)
}

// Result is what the session handler needs from one processed utterance.
type Result struct {
	// ReplyText is the text to synthesize and play back.
	ReplyText string
	// Navigated tells the handler to send the deferred navigation signal
	// after playback finishes.
	Navigated bool
}

// Pipeline turns raw utterance bytes into a spoken reply: sniff the
// container, transcribe, run the agent. Concurrency is capped by a weighted
// semaphore so a burst of sessions cannot pile unbounded work onto the
// Groq API.
type Pipeline struct {
	transcriber Transcriber
	agent       Agent
	workers     *semaphore.Weighted

	transcribeTimeout time.Duration
	chatTimeout       time.Duration
}

func NewPipeline(tr Transcriber, ag Agent, maxWorkers int64, transcribeTimeout, chatTimeout time.Duration) *Pipeline {
	return &Pipeline{
		transcriber:       tr,
		agent:             ag,
		workers:           semaphore.NewWeighted(maxWorkers),
		transcribeTimeout: transcribeTimeout,
		chatTimeout:       chatTimeout,
	}
}

// Process handles one utterance end to end. It never returns an error:
// every failure path degrades to a spoken apology so the session continues.
func (p *Pipeline) Process(ctx context.Context, sessionID string, audio []byte) Result {
	if err := p.workers.Acquire(ctx, 1); err != nil {
		return Result{ReplyText: apologyReply}
	}
	defer p.workers.Release(1)

	format, ok := detectFormat(audio)
	if !ok {
		slog.Warn("unrecognized audio container", "session_id", sessionID, "bytes", len(audio))
		return Result{ReplyText: apologyReply}
	}

	transcript, err := p.transcribe(ctx, audio, format)
	if err != nil {
		slog.Error("transcription failed", "session_id", sessionID, "error", err)
		return Result{ReplyText: apologyReply}
	}
	if transcript == "" {
		return Result{ReplyText: repeatReply}
	}
	slog.Info("utterance transcribed", "session_id", sessionID, "transcript", transcript)

	turn, err := p.converse(ctx, sessionID, transcript)
	if err != nil {
		slog.Error("agent turn failed", "session_id", sessionID, "error", err)
		return Result{ReplyText: apologyReply}
	}
	slog.Info("turn complete", "session_id", sessionID,
		"tool_calls", turn.ToolCalls, "navigated", turn.Navigated)

	return Result{ReplyText: turn.Reply, Navigated: turn.Navigated}
}

func (p *Pipeline) transcribe(ctx context.Context, audio []byte, format string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.transcribeTimeout)
	defer cancel()
	transcript, err := p.transcriber.Transcribe(ctx, audio, format)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(transcript), nil
}

func (p *Pipeline) converse(ctx context.Context, sessionID, transcript string) (*agent.TurnResult, error) {
	ctx, cancel := context.WithTimeout(ctx, p.chatTimeout)
	defer cancel()
	return p.agent.Converse(ctx, sessionID, transcript)
}

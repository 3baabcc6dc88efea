package voice

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// navigateSignal is the control token telling the client it may change
// pages now that the spoken reply has finished playing.
const navigateSignal = "NAVIGATE_NOW"

// navigateMargin pads the measured playback duration so the signal never
// races the tail of the audio.
const navigateMargin = 500 * time.Millisecond

// maxUtteranceBytes bounds one recorded utterance frame. Browser recordings
// run to a few hundred KiB per utterance, far past the transport's 32 KiB
// default read limit.
const maxUtteranceBytes = 16 << 20

// Synthesizer converts reply text into encoded audio.
type Synthesizer interface {
	Speak(ctx context.Context, text string) ([]byte, error)
}

// SessionRegistry brackets per-connection conversation state.
type SessionRegistry interface {
	OpenSession(sessionID string)
	CloseSession(sessionID string)
}

// Handler owns one voice websocket per connected user. Each connection runs
// a strict receive-audio, process, send-audio loop; the optional navigation
// signal trails the audio frame by its playback duration.
type Handler struct {
	pipeline     *Pipeline
	synth        Synthesizer
	sessions     SessionRegistry
	allowOrigin  string
	speakTimeout time.Duration
}

func NewHandler(p *Pipeline, synth Synthesizer, sessions SessionRegistry, allowOrigin string, speakTimeout time.Duration) *Handler {
	return &Handler{
		pipeline:     p,
		synth:        synth,
		sessions:     sessions,
		allowOrigin:  allowOrigin,
		speakTimeout: speakTimeout,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// Origin is checked below so a bad origin can be refused with a
		// proper close code instead of a bare HTTP 403.
		InsecureSkipVerify: true,
	})
	if err != nil {
		slog.Warn("voice websocket accept failed", "error", err)
		return
	}
	conn.SetReadLimit(maxUtteranceBytes)

	if !h.originAllowed(r) {
		slog.Warn("voice websocket rejected", "origin", r.Header.Get("Origin"))
		_ = conn.Close(websocket.StatusPolicyViolation, "origin not allowed")
		return
	}

	sessionID := uuid.NewString()
	h.sessions.OpenSession(sessionID)
	slog.Info("voice session started", "session_id", sessionID)

	defer func() {
		h.sessions.CloseSession(sessionID)
		_ = conn.Close(websocket.StatusNormalClosure, "session ended")
		slog.Info("voice session ended", "session_id", sessionID)
	}()

	h.serve(r.Context(), conn, sessionID)
}

func (h *Handler) serve(ctx context.Context, conn *websocket.Conn, sessionID string) {
	for {
		typ, audio, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("voice websocket closed by client", "session_id", sessionID)
			} else {
				slog.Warn("voice websocket read error", "session_id", sessionID, "error", err)
			}
			return
		}
		if typ != websocket.MessageBinary {
			continue
		}

		result := h.pipeline.Process(ctx, sessionID, audio)

		reply, ok := h.speak(ctx, sessionID, result.ReplyText)
		if !ok {
			// Even the apology could not be synthesized, so the session
			// has no way to answer. Close it rather than go silent.
			return
		}

		duration := playbackDuration(reply, result.ReplyText)
		if err := conn.Write(ctx, websocket.MessageBinary, reply); err != nil {
			slog.Warn("voice reply send failed", "session_id", sessionID, "error", err)
			return
		}

		if !result.Navigated {
			continue
		}
		// The client tears down its audio element on navigation, so the
		// signal must wait out the reply it just received.
		select {
		case <-time.After(duration + navigateMargin):
		case <-ctx.Done():
			return
		}
		if err := conn.Write(ctx, websocket.MessageText, []byte(navigateSignal)); err != nil {
			slog.Warn("navigation signal send failed", "session_id", sessionID, "error", err)
			return
		}
	}
}

// speak synthesizes the reply, falling back to a spoken apology if the
// reply itself cannot be synthesized. A false return means even the apology
// failed.
func (h *Handler) speak(ctx context.Context, sessionID, text string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(ctx, h.speakTimeout)
	defer cancel()

	audio, err := h.synth.Speak(ctx, text)
	if err == nil {
		return audio, true
	}
	slog.Error("speech synthesis failed", "session_id", sessionID, "error", err)

	if text == apologyReply {
		return nil, false
	}
	audio, err = h.synth.Speak(ctx, apologyReply)
	if err != nil {
		slog.Error("apology synthesis failed", "session_id", sessionID, "error", err)
		return nil, false
	}
	return audio, true
}

// originAllowed admits the configured frontend plus local loopback hosts.
// With no frontend configured the check is open for local development.
func (h *Handler) originAllowed(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	host := u.Hostname()
	if host == "localhost" || host == "127.0.0.1" {
		return true
	}
	if h.allowOrigin == "" {
		return true
	}
	allowed, err := url.Parse(h.allowOrigin)
	if err != nil {
		return false
	}
	return host == allowed.Hostname()
}

package voice

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/ARahim3/ERP-Voice-Assistant/internal/agent"
)

type fakeSynth struct {
	err   error
	calls []string
}

func (f *fakeSynth) Speak(ctx context.Context, text string) ([]byte, error) {
	f.calls = append(f.calls, text)
	if f.err != nil {
		return nil, f.err
	}
	// Not decodable mp3, so playback duration comes from the text.
	return []byte("synthesized:" + text), nil
}

type fakeRegistry struct {
	mu     sync.Mutex
	opened []string
	closed []string
}

func (f *fakeRegistry) OpenSession(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened = append(f.opened, id)
}

func (f *fakeRegistry) CloseSession(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = append(f.closed, id)
}

func newTestHandler(reply string, navigated bool, synth *fakeSynth, reg *fakeRegistry) *Handler {
	tr := &fakeTranscriber{transcript: "anything"}
	ag := &fakeAgent{result: &agent.TurnResult{Reply: reply, Navigated: navigated}}
	p := newTestPipeline(tr, ag)
	return NewHandler(p, synth, reg, "", time.Second)
}

func dialTest(t *testing.T, h *Handler) (*websocket.Conn, func()) {
	t.Helper()
	srv := httptest.NewServer(h)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		cancel()
		srv.Close()
		t.Fatalf("Failed to dial: %v", err)
	}
	return conn, func() {
		_ = conn.Close(websocket.StatusNormalClosure, "test done")
		cancel()
		srv.Close()
	}
}

func TestHandlerSendsAudioThenNavigateSignal(t *testing.T) {
	synth := &fakeSynth{}
	reg := &fakeRegistry{}
	h := newTestHandler("Okay.", true, synth, reg)

	conn, done := dialTest(t, h)
	defer done()

	ctx := context.Background()
	if err := conn.Write(ctx, websocket.MessageBinary, wavUtterance); err != nil {
		t.Fatalf("Failed to send utterance: %v", err)
	}

	typ, reply, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("Failed to read audio reply: %v", err)
	}
	if typ != websocket.MessageBinary {
		t.Fatalf("Expected binary audio frame first, got %v", typ)
	}
	if string(reply) != "synthesized:Okay." {
		t.Errorf("Expected synthesized reply, got %q", reply)
	}
	audioSent := time.Now()

	typ, signal, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("Failed to read navigation signal: %v", err)
	}
	if typ != websocket.MessageText {
		t.Fatalf("Expected text control frame, got %v", typ)
	}
	if string(signal) != navigateSignal {
		t.Errorf("Expected %q, got %q", navigateSignal, signal)
	}

	// "Okay." estimates to 400ms; the signal must trail playback plus the
	// safety margin.
	if elapsed := time.Since(audioSent); elapsed < 850*time.Millisecond {
		t.Errorf("Navigation signal arrived after %v, before playback could finish", elapsed)
	}
}

func TestHandlerAcceptsLargeUtterance(t *testing.T) {
	synth := &fakeSynth{}
	h := newTestHandler("Hello.", false, synth, &fakeRegistry{})

	conn, done := dialTest(t, h)
	defer done()

	// A few seconds of recorded audio easily exceeds the transport's
	// 32 KiB default read limit.
	utterance := make([]byte, 64*1024)
	copy(utterance, []byte{0x1A, 0x45, 0xDF, 0xA3})

	ctx := context.Background()
	if err := conn.Write(ctx, websocket.MessageBinary, utterance); err != nil {
		t.Fatalf("Failed to send utterance: %v", err)
	}

	typ, reply, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("Expected an audio reply, got read error: %v", err)
	}
	if typ != websocket.MessageBinary {
		t.Fatalf("Expected binary audio frame, got %v", typ)
	}
	if string(reply) != "synthesized:Hello." {
		t.Errorf("Expected synthesized reply, got %q", reply)
	}
}

func TestHandlerNoSignalWithoutNavigation(t *testing.T) {
	synth := &fakeSynth{}
	h := newTestHandler("Hello.", false, synth, &fakeRegistry{})

	conn, done := dialTest(t, h)
	defer done()

	ctx := context.Background()
	if err := conn.Write(ctx, websocket.MessageBinary, wavUtterance); err != nil {
		t.Fatalf("Failed to send utterance: %v", err)
	}
	if _, _, err := conn.Read(ctx); err != nil {
		t.Fatalf("Failed to read audio reply: %v", err)
	}

	readCtx, cancel := context.WithTimeout(ctx, 1500*time.Millisecond)
	defer cancel()
	if _, frame, err := conn.Read(readCtx); err == nil {
		t.Errorf("Expected no further frame, got %q", frame)
	}
}

func TestHandlerSynthesisFallsBackToApology(t *testing.T) {
	synth := &fakeSynth{err: errors.New("tts down")}
	h := newTestHandler("A long reply.", false, synth, &fakeRegistry{})

	conn, done := dialTest(t, h)
	defer done()

	ctx := context.Background()
	if err := conn.Write(ctx, websocket.MessageBinary, wavUtterance); err != nil {
		t.Fatalf("Failed to send utterance: %v", err)
	}

	// Both attempts fail, so the session closes instead of going silent.
	readCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	_, _, err := conn.Read(readCtx)
	cancel()
	if err == nil {
		t.Error("Expected the session to close when synthesis fails twice")
	}

	if len(synth.calls) != 2 {
		t.Fatalf("Expected reply then apology synthesis, got %d calls", len(synth.calls))
	}
	if synth.calls[1] != apologyReply {
		t.Errorf("Expected apology retry, got %q", synth.calls[1])
	}
}

func TestHandlerSessionLifecycle(t *testing.T) {
	reg := &fakeRegistry{}
	h := newTestHandler("Hi.", false, &fakeSynth{}, reg)

	conn, done := dialTest(t, h)
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	done()

	deadline := time.Now().Add(2 * time.Second)
	for {
		reg.mu.Lock()
		opened, closed := len(reg.opened), len(reg.closed)
		reg.mu.Unlock()
		if opened == 1 && closed == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("Expected session opened and closed, got opened=%d closed=%d", opened, closed)
		}
		time.Sleep(10 * time.Millisecond)
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()
	if reg.opened[0] != reg.closed[0] {
		t.Errorf("Expected matching session ids, got %q and %q", reg.opened[0], reg.closed[0])
	}
}

func TestHandlerRejectsForeignOrigin(t *testing.T) {
	h := newTestHandler("Hi.", false, &fakeSynth{}, &fakeRegistry{})
	h.allowOrigin = "https://erp.example.com"

	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{
		HTTPHeader: http.Header{"Origin": []string{"https://evil.example.com"}},
	})
	if err != nil {
		// Rejected during the handshake is also acceptable.
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "test done")

	_, _, err = conn.Read(ctx)
	if websocket.CloseStatus(err) != websocket.StatusPolicyViolation {
		t.Errorf("Expected policy violation close, got %v", err)
	}
}

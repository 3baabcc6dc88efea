package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/ARahim3/ERP-Voice-Assistant/internal/llm"
)

// maxToolIterations bounds one conversation turn; a model stuck in a tool
// loop gets cut off instead of spinning the Groq API forever.
const maxToolIterations = 16

const fallbackReply = "How can I help you?"

// TurnResult is the outcome of one conversation turn.
type TurnResult struct {
	// Reply is the assistant's final spoken answer.
	Reply string
	// Navigated reports whether a navigation instruction was emitted
	// during the turn, so playback can defer the page switch.
	Navigated bool
	// ToolCalls counts tool executions across all iterations of the turn.
	ToolCalls int
}

// Service runs the tool-using conversation loop, keeping a separate message
// history per voice session.
type Service struct {
	client llm.Client
	tools  *Toolset
	prompt string

	mu       sync.Mutex
	sessions map[string][]llm.Message
}

func NewService(client llm.Client, tools *Toolset) *Service {
	return &Service{
		client:   client,
		tools:    tools,
		prompt:   systemPrompt,
		sessions: make(map[string][]llm.Message),
	}
}

// OpenSession starts a fresh history for the given session id, discarding
// any previous one under the same id.
func (s *Service) OpenSession(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = []llm.Message{{Role: llm.RoleSystem, Content: s.prompt}}
}

// CloseSession drops the history for the given session id.
func (s *Service) CloseSession(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// Converse appends the transcript to the session's history, runs the model
// with the full toolset until it stops requesting tools, and returns the
// final reply. The history is only committed once the turn succeeds, so a
// failed turn does not poison later ones.
func (s *Service) Converse(ctx context.Context, sessionID, transcript string) (*TurnResult, error) {
	history := s.snapshot(sessionID)
	history = append(history, llm.Message{Role: llm.RoleUser, Content: transcript})

	ctx, trace := withTrace(ctx)
	result := &TurnResult{}

	for i := 0; i < maxToolIterations; i++ {
		completion, err := s.client.ChatCompletion(ctx, history, s.tools.Tools())
		if err != nil {
			return nil, fmt.Errorf("chat completion: %w", err)
		}

		if len(completion.ToolCalls) == 0 {
			result.Reply = strings.TrimSpace(completion.Content)
			if result.Reply == "" {
				result.Reply = fallbackReply
			}
			history = append(history, llm.Message{Role: llm.RoleAssistant, Content: result.Reply})
			result.Navigated = trace.navigated
			s.commit(sessionID, history)
			return result, nil
		}

		history = append(history, llm.Message{
			Role:      llm.RoleAssistant,
			Content:   completion.Content,
			ToolCalls: completion.ToolCalls,
		})
		for _, call := range completion.ToolCalls {
			output := s.tools.Dispatch(ctx, call)
			result.ToolCalls++
			slog.Debug("tool executed", "session_id", sessionID, "tool", call.Name, "result", output)
			history = append(history, llm.Message{
				Role:       llm.RoleTool,
				Content:    output,
				ToolCallID: call.ID,
			})
		}
	}

	return nil, fmt.Errorf("turn exceeded %d tool iterations", maxToolIterations)
}

func (s *Service) snapshot(sessionID string) []llm.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.sessions[sessionID]
	if !ok {
		stored = []llm.Message{{Role: llm.RoleSystem, Content: s.prompt}}
		s.sessions[sessionID] = stored
	}
	history := make([]llm.Message, len(stored))
	copy(history, stored)
	return history
}

func (s *Service) commit(sessionID string, history []llm.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = history
}

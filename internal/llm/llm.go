// Package llm defines the provider-neutral conversation model shared by the
// agent and the chat client: messages, tool calls, and schema-described tools
// with typed argument structs.
package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Role identifies the author of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one entry of a conversation history.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
}

// ToolCall is a single tool invocation requested by the model. Arguments is
// the raw JSON argument object.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Completion is the model's answer for one request: either a final reply
// (no tool calls) or a batch of tool calls to execute.
type Completion struct {
	Content   string
	ToolCalls []ToolCall
}

// Tool is a named operation the model may invoke. Parameters is the JSON
// schema of the argument object; Execute runs the call and returns a string
// result for the model to speak.
type Tool struct {
	Name        string
	Description string
	Parameters  *jsonschema.Schema
	Execute     func(ctx context.Context, arguments string) (string, error)
}

// NewTool builds a tool whose arguments unmarshal into Args. The parameter
// schema is reflected from Args, so the mapping from model output to the
// executable action is closed and statically typed: malformed arguments fail
// before fn ever runs.
func NewTool[Args any](name, description string, fn func(ctx context.Context, args Args) (string, error)) Tool {
	reflector := jsonschema.Reflector{DoNotReference: true}
	var zero Args
	schema := reflector.Reflect(&zero)
	schema.Version = ""

	return Tool{
		Name:        name,
		Description: description,
		Parameters:  schema,
		Execute: func(ctx context.Context, arguments string) (string, error) {
			var args Args
			if arguments == "" {
				arguments = "{}"
			}
			if err := json.Unmarshal([]byte(arguments), &args); err != nil {
				return "", fmt.Errorf("invalid arguments for %s: %w", name, err)
			}
			return fn(ctx, args)
		},
	}
}

// Client asks the underlying reasoning model for the next assistant message.
type Client interface {
	ChatCompletion(ctx context.Context, messages []Message, tools []Tool) (*Completion, error)
}

package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ARahim3/ERP-Voice-Assistant/internal/broadcast"
	"github.com/ARahim3/ERP-Voice-Assistant/internal/domain"
	"github.com/ARahim3/ERP-Voice-Assistant/internal/llm"
	"github.com/ARahim3/ERP-Voice-Assistant/internal/store"
)

// Broadcaster delivers UI instructions to connected front-ends.
type Broadcaster interface {
	UIInstruction(inst domain.Instruction) error
}

// pageURLs is the fixed mapping from target app to front-end route.
var pageURLs = map[string]string{
	"crm":       "/crm_vue",
	"inventory": "/inventory_vue",
	"orders":    "/orders_vue",
	"hr":        "/hr_vue",
	"finance":   "/finance_vue",
	"dashboard": "/",
}

// Toolset is the closed dispatch table of operations the agent may invoke.
// Every tool returns a natural-language string: the consumer is a language
// model whose reply will be spoken, so results are never raw records.
type Toolset struct {
	store  store.Store
	bc     Broadcaster
	tools  []llm.Tool
	byName map[string]llm.Tool
}

// NewToolset wires the full tool table over the store and broadcaster.
func NewToolset(st store.Store, bc Broadcaster) *Toolset {
	t := &Toolset{store: st, bc: bc}
	t.tools = t.buildTools()
	t.byName = make(map[string]llm.Tool, len(t.tools))
	for _, tool := range t.tools {
		t.byName[tool.Name] = tool
	}
	return t
}

// Tools returns the table in declaration order for the chat request.
func (t *Toolset) Tools() []llm.Tool {
	return t.tools
}

// Dispatch executes one tool call. Dispatch is total: unknown tools and
// malformed arguments produce an error string result rather than an error, so
// a single bad call can never abort the conversation loop.
func (t *Toolset) Dispatch(ctx context.Context, call llm.ToolCall) string {
	tool, ok := t.byName[call.Name]
	if !ok {
		return fmt.Sprintf("Error: unknown tool %q.", call.Name)
	}
	result, err := tool.Execute(ctx, call.Arguments)
	if err != nil {
		slog.Warn("tool call failed", "tool", call.Name, "error", err)
		return fmt.Sprintf("Error running %s: %v", call.Name, err)
	}
	return result
}

// emit broadcasts a UI instruction. A hub without connected clients is not a
// transport failure; the instruction simply had no audience.
func (t *Toolset) emit(inst domain.Instruction) error {
	err := t.bc.UIInstruction(inst)
	if err != nil && !errors.Is(err, broadcast.ErrNoClients) {
		return err
	}
	return nil
}

type navigateArgs struct {
	TargetApp string `json:"target_app" jsonschema:"enum=crm,enum=inventory,enum=orders,enum=hr,enum=finance,enum=dashboard"`
}

type fillFormFieldArgs struct {
	TargetApp string `json:"target_app"`
	FieldID   string `json:"field_id"`
	Value     string `json:"value"`
}

func (t *Toolset) buildTools() []llm.Tool {
	tools := []llm.Tool{
		llm.NewTool("navigate_to_page",
			"Navigates the user to a module page in the ERP UI. Call this first when the user starts a task, e.g. navigate to 'crm' before adding a customer.",
			func(ctx context.Context, args navigateArgs) (string, error) {
				url, ok := pageURLs[args.TargetApp]
				if !ok {
					return fmt.Sprintf("Sorry, I don't know a page called '%s'.", args.TargetApp), nil
				}
				err := t.emit(domain.Instruction{
					Action:    domain.ActionNavigate,
					TargetApp: args.TargetApp,
					URL:       url,
				})
				if err != nil {
					slog.Error("failed to broadcast navigation", "target_app", args.TargetApp, "error", err)
					return "Sorry, I couldn't navigate to that page right now.", nil
				}
				markNavigated(ctx)
				return fmt.Sprintf("Okay, I have navigated to the %s page.", args.TargetApp), nil
			}),
		llm.NewTool("fill_form_field",
			"Fills a single field in a form on the current ERP page for immediate user feedback. Use it once per piece of information the user provides.",
			func(ctx context.Context, args fillFormFieldArgs) (string, error) {
				err := t.emit(domain.Instruction{
					Action:    domain.ActionFillField,
					TargetApp: args.TargetApp,
					FieldID:   args.FieldID,
					Value:     args.Value,
				})
				if err != nil {
					slog.Error("failed to broadcast field fill", "field_id", args.FieldID, "error", err)
					return "There was an error filling that field.", nil
				}
				return fmt.Sprintf("Field %s filled.", args.FieldID), nil
			}),
	}

	tools = append(tools, t.customerTools()...)
	tools = append(tools, t.productTools()...)
	tools = append(tools, t.employeeTools()...)
	tools = append(tools, t.orderTools()...)
	tools = append(tools, t.invoiceTools()...)
	return tools
}

// search lists the kind and matches the query case-insensitively against the
// given columns. Returns the serialized matches or the per-kind "not found"
// sentinel, never an empty list.
func (t *Toolset) search(ctx context.Context, kind domain.Kind, noun, query string, columns []string) string {
	records, err := t.store.List(ctx, kind)
	if err != nil {
		return fmt.Sprintf("Error searching %ss: %v", noun, err)
	}

	q := strings.ToLower(query)
	matches := []domain.Record{}
	for _, rec := range records {
		for _, col := range columns {
			value, _ := rec[col].(string)
			if value != "" && strings.Contains(strings.ToLower(value), q) {
				matches = append(matches, rec)
				break
			}
		}
	}

	if len(matches) == 0 {
		return fmt.Sprintf("No %s found matching that query.", noun)
	}
	serialized, err := json.Marshal(matches)
	if err != nil {
		return fmt.Sprintf("Error searching %ss: %v", noun, err)
	}
	return string(serialized)
}

// setString adds a field only when the value was actually provided, so
// untouched optionals never reach the store (not even as null).
func setString(rec domain.Record, key, value string) {
	if value != "" {
		rec[key] = value
	}
}

func setNumber(rec domain.Record, key string, value *float64) {
	if value != nil {
		rec[key] = *value
	}
}

func missingRequired(pairs ...string) []string {
	var missing []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			missing = append(missing, pairs[i])
		}
	}
	return missing
}

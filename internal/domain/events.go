package domain

import "time"

// Instruction actions understood by the front-end. Consumers must ignore
// unknown actions without failing, so this list can grow.
const (
	ActionNavigate        = "navigate"
	ActionFillField       = "fill_field"
	ActionClearFormFields = "clear_form_fields"
)

// Instruction is a UI command broadcast to every connected client. Action is
// the discriminator; the remaining fields are populated per action.
type Instruction struct {
	Action    string `json:"action"`
	TargetApp string `json:"target_app,omitempty"`
	URL       string `json:"url,omitempty"`
	Params    any    `json:"params,omitempty"`
	FieldID   string `json:"field_id,omitempty"`
	Value     string `json:"value,omitempty"`
	FormID    string `json:"form_id,omitempty"`
}

// DataEvent notifies clients of a store mutation. Type is
// "<prefix>_added|_updated|_deleted" and Data is the full record involved.
type DataEvent struct {
	Type      string `json:"type"`
	Data      Record `json:"data"`
	Timestamp string `json:"timestamp"`
}

// NewDataEvent stamps a data-change event with the current time.
func NewDataEvent(eventType string, data Record) DataEvent {
	return DataEvent{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

package webhook

import "encoding/json"

// Event is the kind of notification the voice assistant sent.
type Event int

const (
	EventUnhandled Event = iota
	EventFunctionCall
	EventStatusUpdate
	EventTranscript
	EventHang
)

var eventNames = map[string]Event{
	"function-call": EventFunctionCall,
	"status-update": EventStatusUpdate,
	"transcript":    EventTranscript,
	"hang":          EventHang,
}

// ParseEvent maps the wire event name to an Event; anything unrecognised
// is EventUnhandled.
func ParseEvent(s string) Event {
	if e, ok := eventNames[s]; ok {
		return e
	}
	return EventUnhandled
}

func (e Event) String() string {
	for name, ev := range eventNames {
		if ev == e {
			return name
		}
	}
	return "unhandled"
}

// Payload is the inbound webhook body.
type Payload struct {
	Event        string          `json:"event"`
	Call         json.RawMessage `json:"call,omitempty"`
	Message      json.RawMessage `json:"message,omitempty"`
	FunctionCall *FunctionCall   `json:"functionCall,omitempty"`
}

// FunctionCall names an assistant function and its parameters.
type FunctionCall struct {
	Name       string          `json:"name"`
	Parameters json.RawMessage `json:"parameters"`
}

// Response bodies.
type (
	ResultBody struct {
		Result any `json:"result"`
	}
	AckBody struct {
		Success bool `json:"success"`
	}
	ErrorBody struct {
		Error string `json:"error"`
	}
)

package storage

import "time"

// Event records one successful exchange of a session.
// Events are appended in chronological order and never rewritten.
type Event struct {
	Timestamp         time.Time `json:"timestamp"`
	SessionID         string    `json:"session_id"`
	Persona           string    `json:"persona"`
	UserMessage       string    `json:"user_message"`
	SentMessage       string    `json:"sent_message"`
	AssistantResponse string    `json:"assistant_response"`
	RequestJSON       string    `json:"request_json,omitempty"`
	ResponseJSON      string    `json:"response_json,omitempty"`
}

// Recorder abstracts persistence of interaction events.
// LoadInteractions returns events in chronological order.
// Implementations must be safe for concurrent use.
type Recorder interface {
	AppendInteraction(event Event) error
	LoadInteractions() ([]Event, error)
}

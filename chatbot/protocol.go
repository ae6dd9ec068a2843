package chatbot

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// DataPrefix is the prefix every event line carries
const DataPrefix = "data: "

// EventType discriminates StreamEvents
type EventType string

// Event types
const (
	EventText  EventType = "text"  // incremental reply delta
	EventTool  EventType = "tool"  // backend invoked a named capability
	EventError EventType = "error" // exchange failed; terminal
	EventDone  EventType = "done"  // exchange completed; terminal
)

// Event is one record of the chat stream
type Event struct {
	Type    EventType `json:"type"`
	Chunk   string    `json:"chunk,omitempty"`   // sent with "text"
	Name    string    `json:"name,omitempty"`    // sent with "tool"
	Message string    `json:"message,omitempty"` // sent with "error"
}

// Terminal reports whether e ends an exchange
func (e Event) Terminal() bool {
	return e.Type == EventError || e.Type == EventDone
}

// ChatRequest is the request body for POST /chat
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// SessionResponse is the response from GET /session
type SessionResponse struct {
	SessionID string `json:"session_id"`
}

// TranscribeResponse is the response from POST /transcribe
type TranscribeResponse struct {
	Text string `json:"text"`
}

// ErrorResponse is the body of a non-2xx response
type ErrorResponse struct {
	Error string `json:"error,omitempty"`
}

// DecodeLine parses a single framed line. ok is false when the line should be
// ignored: no "data: " prefix, a payload that is not a JSON object, or an event
// type this client does not know. Unknown types are skipped so newer backends
// can add event kinds without breaking older clients.
func DecodeLine(line string) (e Event, ok bool) {
	if !strings.HasPrefix(line, DataPrefix) {
		return Event{}, false
	}

	if err := json.Unmarshal([]byte(line[len(DataPrefix):]), &e); err != nil {
		return Event{}, false
	}

	switch e.Type {
	case EventText, EventTool, EventError, EventDone:
		return e, true
	}
	return Event{}, false
}

// EncodeEvent writes e to w as a single protocol record
func EncodeEvent(w io.Writer, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if _, err = fmt.Fprintf(w, "%s%s\n\n", DataPrefix, data); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}

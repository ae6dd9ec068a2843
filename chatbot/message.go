package chatbot

import (
	"time"

	"github.com/google/uuid"
)

// Role is the speaker of a ChatMessage
type Role string

// Roles
const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Prefixes used when generating ChatMessage IDs
const (
	userIDPrefix  = "u-"
	botIDPrefix   = "b-"
	errorIDPrefix = "e-"
)

// GreetingID is the ID of the greeting that opens every transcript
const GreetingID = "welcome"

// ChatMessage is one turn in the visible transcript
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	IsError   bool      `json:"is_error"`
	Timestamp time.Time `json:"timestamp"`
}

func newID(prefix string) string {
	return prefix + uuid.NewString()
}

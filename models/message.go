package models

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn in a conversation transcript. Turns are
// append-only and never mutated after insertion; the optional structured
// payload is shared with the focus panel without copying.
type Message struct {
	ID         uuid.UUID           `json:"id"`
	Role       Role                `json:"role"`
	Content    string              `json:"content"`
	Timestamp  time.Time           `json:"timestamp"`
	Structured *StructuredResponse `json:"structuredData,omitempty"`
}

// HistoryItem is one sidebar history entry derived from a user prompt.
type HistoryItem struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	Category string    `json:"category"`
	Date     time.Time `json:"date"`
}

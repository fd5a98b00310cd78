package service

import (
	"sync"
	"time"

	"idarati-backend/models"

	"github.com/google/uuid"
)

const (
	// maxHistoryItems caps the sidebar history list.
	maxHistoryItems = 10

	// minHistoryPromptRunes is the shortest prompt worth recording in
	// the history list.
	minHistoryPromptRunes = 5
)

// Transcript holds one session's conversation in memory. Turns are
// append-only and never mutated after insertion; nothing survives a
// restart. Safe for concurrent readers.
type Transcript struct {
	mu       sync.RWMutex
	messages []models.Message
	history  []models.HistoryItem
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{}
}

// AppendUser records a user turn and, for prompts long enough to be
// meaningful, prepends a history entry, dropping the oldest beyond the
// cap.
func (t *Transcript) AppendUser(content string) models.Message {
	msg := models.Message{
		ID:        uuid.New(),
		Role:      models.RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, msg)

	if len([]rune(content)) > minHistoryPromptRunes {
		title := content
		if runes := []rune(title); len(runes) > 30 {
			title = string(runes[:30])
		}
		item := models.HistoryItem{
			ID:       uuid.New(),
			Title:    title,
			Category: "عام",
			Date:     msg.Timestamp,
		}
		t.history = append([]models.HistoryItem{item}, t.history...)
		if len(t.history) > maxHistoryItems {
			t.history = t.history[:maxHistoryItems]
		}
	}

	return msg
}

// AppendAssistant records an assistant turn, optionally carrying the
// structured answer that produced it.
func (t *Transcript) AppendAssistant(content string, structured *models.StructuredResponse) models.Message {
	msg := models.Message{
		ID:         uuid.New(),
		Role:       models.RoleAssistant,
		Content:    content,
		Timestamp:  time.Now(),
		Structured: structured,
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, msg)
	return msg
}

// Messages returns a snapshot of the transcript in insertion order.
func (t *Transcript) Messages() []models.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]models.Message(nil), t.messages...)
}

// History returns a snapshot of the history list, newest first.
func (t *Transcript) History() []models.HistoryItem {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]models.HistoryItem(nil), t.history...)
}

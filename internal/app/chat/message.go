package chat

import (
	"time"

	"connect/internal/pkg/randx"
)

const (
	// SystemSenderID marks synthetic notices such as "participant added".
	SystemSenderID = "system"

	// AssistantSenderID marks assistant replies.
	AssistantSenderID = "ai"

	// AssistantName is the sender name of assistant replies.
	AssistantName = "Assistant"

	// SystemName is the sender name of in-conversation notices.
	SystemName = "System"
)

// Message is a single, never-mutated entry of a conversation.
type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	SenderName string    `json:"senderName"`
	Text       string    `json:"text"`
	Timestamp  time.Time `json:"timestamp"`
	IsAI       bool      `json:"isAi,omitempty"`
}

// IsSystem reports whether m is a synthetic notice.
func (m Message) IsSystem() bool {
	return m.SenderID == SystemSenderID
}

// NewMessage builds a message with a fresh id.
func NewMessage(senderID, senderName, text string, at time.Time) Message {
	return Message{
		ID:         randx.MessageID(),
		SenderID:   senderID,
		SenderName: senderName,
		Text:       text,
		Timestamp:  at,
	}
}

// NewSystemMessage builds a synthetic notice.
func NewSystemMessage(text string, at time.Time) Message {
	return NewMessage(SystemSenderID, SystemName, text, at)
}

// NewAssistantMessage builds an assistant reply.
func NewAssistantMessage(text string, at time.Time) Message {
	m := NewMessage(AssistantSenderID, AssistantName, text, at)
	m.IsAI = true
	return m
}

package chat

import (
	"context"
	"time"

	"connect/internal/app/user"
)

// HistorySource supplies the initial messages of a room when it becomes active.
// Implementations must not return messages belonging to other rooms.
type HistorySource interface {
	Load(ctx context.Context, room Room, self user.User, users []user.User) []Message
}

// SecureChannelNotice opens every seeded conversation.
const SecureChannelNotice = "Secure end-to-end communication established."

// SeededHistory reproduces a minimal history without any backing store: a system notice
// an hour old and, when the room has a summary, that text attributed to the first other
// participant a minute ago.
type SeededHistory struct {
	Now func() time.Time
}

// Load implements HistorySource.
func (s SeededHistory) Load(_ context.Context, room Room, self user.User, users []user.User) []Message {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	at := now()

	notice := NewMessage(SystemSenderID, "Acertax System", SecureChannelNotice, at.Add(-time.Hour))
	msgs := []Message{notice}

	if room.LastMessage == "" {
		return msgs
	}

	senderID, senderName := "", "User"
	if others := OtherParticipants(room, self.ID, users); len(others) > 0 {
		senderID, senderName = others[0].ID, others[0].Name
	} else {
		for _, id := range room.Participants {
			if id != self.ID {
				senderID = id
				break
			}
		}
	}

	return append(msgs, NewMessage(senderID, senderName, room.LastMessage, at.Add(-time.Minute)))
}

package chat

import (
	"connect/internal/app/user"
)

// AssistantAvatar is the image shown next to assistant replies.
const AssistantAvatar = "https://www.gstatic.com/lamda/images/gemini_sparkle_v002_d473530465115985961a.svg"

// DisplayRole tells the client how to lay out a message.
type DisplayRole string

const (
	DisplaySystem DisplayRole = "system"
	DisplayOwn    DisplayRole = "own"
	DisplayOther  DisplayRole = "other"
)

// DisplayItem is a message decorated for rendering.
type DisplayItem struct {
	Message

	Role DisplayRole `json:"role"`

	// ShowHeader is set on the first message of a run from the same sender. Own messages and
	// notices never carry a header.
	ShowHeader bool `json:"showHeader"`

	// Avatar is empty for own messages and notices.
	Avatar string `json:"avatar,omitempty"`
}

// Render decorates messages for display from selfID's point of view.
func Render(messages []Message, selfID string, users []user.User) []DisplayItem {
	avatars := make(map[string]string, len(users))
	for _, u := range users {
		avatars[u.ID] = u.Avatar
	}

	items := make([]DisplayItem, 0, len(messages))
	for i, m := range messages {
		item := DisplayItem{Message: m}

		switch {
		case m.IsSystem():
			item.Role = DisplaySystem
		case m.SenderID == selfID:
			item.Role = DisplayOwn
		default:
			item.Role = DisplayOther
			item.ShowHeader = i == 0 || messages[i-1].SenderID != m.SenderID
			item.Avatar = senderAvatar(m, avatars)
		}

		items = append(items, item)
	}
	return items
}

func senderAvatar(m Message, avatars map[string]string) string {
	if m.IsAI {
		return AssistantAvatar
	}
	if a := avatars[m.SenderID]; a != "" {
		return a
	}
	return user.PlaceholderAvatar(m.SenderID)
}

// Render decorates the current messages for display.
func (c *Conversation) Render() []DisplayItem {
	return Render(c.Messages(), c.self.ID, c.users)
}

package workspace

import (
	"encoding/json"

	"connect/internal/app/chat"
	"connect/internal/app/session"
	"connect/internal/app/user"
)

// CommandType names an inbound WebSocket command.
type CommandType string

const (
	CmdSelectColleague CommandType = "SELECT_COLLEAGUE"
	CmdSelectRoom      CommandType = "SELECT_ROOM"
	CmdRequestDelete   CommandType = "REQUEST_DELETE"
	CmdConfirmDelete   CommandType = "CONFIRM_DELETE"
	CmdCancelDelete    CommandType = "CANCEL_DELETE"
	CmdSendMessage     CommandType = "SEND_MESSAGE"
	CmdSummarize       CommandType = "SUMMARIZE"
	CmdCloseSummary    CommandType = "CLOSE_SUMMARY"
	CmdToggleInvite    CommandType = "TOGGLE_INVITE"
	CmdInvite          CommandType = "INVITE"
	CmdLogout          CommandType = "LOGOUT"
)

// Command is an inbound WebSocket frame.
type Command struct {
	Type    CommandType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// UserPayload targets a colleague.
type UserPayload struct {
	UserID string `json:"userId" validate:"required"`
}

// RoomPayload targets a room.
type RoomPayload struct {
	RoomID string `json:"roomId" validate:"required"`
}

// ConfirmationPayload answers a pending confirmation.
type ConfirmationPayload struct {
	ConfirmationID string `json:"confirmationId" validate:"required"`
}

// TextPayload carries message text. Blank text is accepted and ignored downstream.
type TextPayload struct {
	Text string `json:"text"`
}

// EventType names an outbound WebSocket event.
type EventType string

const (
	EvtSnapshot           EventType = "SNAPSHOT"
	EvtDeleteConfirmation EventType = "DELETE_CONFIRMATION"
	EvtError              EventType = "ERROR"
	EvtSessionEnded       EventType = "SESSION_ENDED"
)

// Event is an outbound WebSocket frame.
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload,omitempty"`
}

// ErrorPayload reports a failed command.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// DeleteConfirmationPayload asks the user to confirm a room deletion.
type DeleteConfirmationPayload struct {
	ConfirmationID string `json:"confirmationId"`
	RoomID         string `json:"roomId"`
	RoomName       string `json:"roomName"`
}

// SessionEndedPayload explains why the connection is closing.
type SessionEndedPayload struct {
	Message string `json:"message"`
}

// Colleague is a directory entry with its direct room, if one exists.
type Colleague struct {
	user.User

	RoomID string `json:"roomId,omitempty"`
	Active bool   `json:"active"`
}

// RoomEntry is a room listed in navigation.
type RoomEntry struct {
	chat.Room

	DisplayName string `json:"displayName"`
	Active      bool   `json:"active"`
}

// ActiveRoom is the open conversation.
type ActiveRoom struct {
	RoomEntry

	Members          []user.User        `json:"members"`
	Messages         []chat.DisplayItem `json:"messages"`
	Drafting         bool               `json:"drafting"`
	Summary          string             `json:"summary,omitempty"`
	SummaryOpen      bool               `json:"summaryOpen"`
	InviteOpen       bool               `json:"inviteOpen"`
	InviteCandidates []user.User        `json:"inviteCandidates"`
}

// Snapshot is the complete state the client renders.
type Snapshot struct {
	Auth        session.AuthState `json:"auth"`
	Colleagues  []Colleague       `json:"colleagues"`
	OnlineCount int               `json:"onlineCount"`
	Rooms       []RoomEntry       `json:"rooms"`
	GroupRooms  []RoomEntry       `json:"groupRooms"`
	Active      *ActiveRoom       `json:"active,omitempty"`
}

/*
Package chat contains the conversation state of a workspace: rooms, the registry that owns
them and the active selection, and the per-room message pipeline with its assistant integration.

This file defines the Room value and the pure functions that derive its type, participant set
and display name.
*/
package chat

import (
	"slices"
	"strings"

	"connect/internal/app/user"
)

// RoomType distinguishes two-person conversations from larger ones.
type RoomType string

const (
	// RoomDirect is a conversation with exactly two participants.
	RoomDirect RoomType = "direct"

	// RoomGroup is a conversation with more than two participants.
	RoomGroup RoomType = "group"
)

// Room is an immutable snapshot of a conversation. Updates produce a new Room.
type Room struct {
	// ID uniquely identifies the room within the workspace.
	ID string `json:"id"`

	// Name is the name given at creation (the colleague's name for direct rooms).
	Name string `json:"name"`

	// Type is derived from the participant count and only ever moves from direct to group.
	Type RoomType `json:"type"`

	// Participants holds unique user ids in join order.
	Participants []string `json:"participants"`

	// LastMessage is the raw text of the latest locally sent message. It reflects
	// unconfirmed local state.
	LastMessage string `json:"lastMessage,omitempty"`

	// UnreadCount is never negative.
	UnreadCount int `json:"unreadCount"`
}

// HasParticipant reports whether userID is a member of the room.
func (r Room) HasParticipant(userID string) bool {
	return slices.Contains(r.Participants, userID)
}

// IsDirectBetween reports whether r is the direct room of exactly a and b.
func (r Room) IsDirectBetween(a, b string) bool {
	return r.Type == RoomDirect &&
		len(r.Participants) == 2 &&
		r.HasParticipant(a) &&
		r.HasParticipant(b)
}

// withParticipant returns a copy of r with userID added. The second result is false when
// userID was already present. Crossing two participants turns the room into a group.
func (r Room) withParticipant(userID string) (Room, bool) {
	if r.HasParticipant(userID) {
		return r, false
	}

	next := r
	next.Participants = append(slices.Clone(r.Participants), userID)
	if len(next.Participants) > 2 {
		next.Type = RoomGroup
	}
	return next, true
}

// withLastMessage returns a copy of r with its room summary set to text.
func (r Room) withLastMessage(text string) Room {
	next := r
	next.Participants = slices.Clone(r.Participants)
	next.LastMessage = text
	return next
}

// clone returns a deep copy of r safe to hand to readers.
func (r Room) clone() Room {
	c := r
	c.Participants = slices.Clone(r.Participants)
	return c
}

// firstName returns the first word of a display name.
func firstName(name string) string {
	first, _, _ := strings.Cut(strings.TrimSpace(name), " ")
	return first
}

// DisplayName is the title of r as seen by selfID. Groups list the first names of the other
// participants joined by ", "; direct rooms show the other participant's full name. Unknown
// participants are skipped, and "Chat" is used when nobody is left.
func DisplayName(r Room, selfID string, users []user.User) string {
	others := OtherParticipants(r, selfID, users)

	if len(r.Participants) > 2 {
		names := make([]string, 0, len(others))
		for _, u := range others {
			names = append(names, firstName(u.Name))
		}
		if len(names) > 0 {
			return strings.Join(names, ", ")
		}
	} else if len(others) > 0 {
		return others[0].Name
	}

	if r.Name != "" {
		return r.Name
	}
	return "Chat"
}

// Participants resolves the room's member ids against users, in the order of users.
func Participants(r Room, users []user.User) []user.User {
	out := make([]user.User, 0, len(r.Participants))
	for _, u := range users {
		if r.HasParticipant(u.ID) {
			out = append(out, u)
		}
	}
	return out
}

// OtherParticipants is Participants without selfID.
func OtherParticipants(r Room, selfID string, users []user.User) []user.User {
	members := Participants(r, users)
	out := members[:0]
	for _, u := range members {
		if u.ID != selfID {
			out = append(out, u)
		}
	}
	return out
}

// InviteCandidates returns every known user who is not a participant of r.
func InviteCandidates(r Room, users []user.User) []user.User {
	out := make([]user.User, 0, len(users))
	for _, u := range users {
		if !r.HasParticipant(u.ID) {
			out = append(out, u)
		}
	}
	return out
}

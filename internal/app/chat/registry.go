/*
Package chat contains the conversation state of a workspace.

This file defines the Registry, the single source of truth for a workspace's rooms and
which one is active. Every write swaps in a new room slice, so a slice returned by Rooms
is never modified afterwards.
*/
package chat

import (
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"connect/internal/app/user"
	"connect/internal/pkg/logx"
	"connect/internal/pkg/randx"
)

// Registry owns the rooms of one signed-in user and the active room selection.
type Registry struct {
	// self is the signed-in user; every room created here includes them.
	self user.User

	// rooms is replaced wholesale on every write.
	rooms []Room

	// activeID is the selected room id, or "" for none. It is not validated.
	activeID string

	// mu protects rooms and activeID.
	mu sync.RWMutex

	// newID generates room ids.
	newID func() string

	logger zerolog.Logger
}

// NewRegistry creates an empty registry for self.
func NewRegistry(self user.User) *Registry {
	return &Registry{
		self:   self,
		rooms:  []Room{},
		newID:  randx.RoomID,
		logger: logx.Component("Registry").With().Str("user_id", self.ID).Logger(),
	}
}

// Self returns the user that owns the registry.
func (g *Registry) Self() user.User {
	return g.self
}

// SelectColleague activates the direct room between self and target, creating it when none
// exists, and returns its id. Repeated calls for the same colleague return the same room.
func (g *Registry) SelectColleague(target user.User) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, r := range g.rooms {
		if r.IsDirectBetween(g.self.ID, target.ID) {
			g.activeID = r.ID
			return r.ID
		}
	}

	room := Room{
		ID:           g.newID(),
		Name:         target.Name,
		Type:         RoomDirect,
		Participants: []string{g.self.ID, target.ID},
		UnreadCount:  0,
	}

	next := make([]Room, 0, len(g.rooms)+1)
	next = append(next, g.rooms...)
	g.rooms = append(next, room)
	g.activeID = room.ID

	g.logger.Info().
		Str("room_id", room.ID).
		Str("colleague_id", target.ID).
		Msg("Direct room created.")

	return room.ID
}

// AddParticipant adds userID to the room. Unknown rooms and existing members are ignored.
// A room that ends up with more than two participants becomes a group.
func (g *Registry) AddParticipant(roomID, userID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	idx := g.indexOf(roomID)
	if idx < 0 {
		g.logger.Debug().Str("room_id", roomID).Msg("AddParticipant ignored for unknown room.")
		return
	}

	updated, changed := g.rooms[idx].withParticipant(userID)
	if !changed {
		return
	}

	next := slices.Clone(g.rooms)
	next[idx] = updated
	g.rooms = next

	g.logger.Info().
		Str("room_id", roomID).
		Str("participant_id", userID).
		Str("room_type", string(updated.Type)).
		Int("participants", len(updated.Participants)).
		Msg("Participant added.")
}

// UpdateLastMessage sets the room summary shown in navigation. Unknown rooms are ignored.
func (g *Registry) UpdateLastMessage(roomID, text string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	idx := g.indexOf(roomID)
	if idx < 0 {
		return
	}

	next := slices.Clone(g.rooms)
	next[idx] = g.rooms[idx].withLastMessage(text)
	g.rooms = next
}

// DeleteRoom removes the room and clears the selection if it was active.
// Callers must obtain the user's confirmation first; deletion cannot be undone.
func (g *Registry) DeleteRoom(roomID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.activeID == roomID {
		g.activeID = ""
	}

	idx := g.indexOf(roomID)
	if idx < 0 {
		return
	}

	next := make([]Room, 0, len(g.rooms)-1)
	next = append(next, g.rooms[:idx]...)
	g.rooms = append(next, g.rooms[idx+1:]...)

	g.logger.Info().Str("room_id", roomID).Msg("Room deleted.")
}

// SetActive selects roomID ("" clears the selection). The id is not validated; a stale id
// simply resolves to no active room.
func (g *Registry) SetActive(roomID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.activeID = roomID
}

// ActiveID returns the selected id, which may not match any room.
func (g *Registry) ActiveID() string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.activeID
}

// ActiveRoom resolves the selection against the current rooms.
func (g *Registry) ActiveRoom() (Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if idx := g.indexOf(g.activeID); idx >= 0 {
		return g.rooms[idx].clone(), true
	}
	return Room{}, false
}

// Room looks up a room by id.
func (g *Registry) Room(roomID string) (Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if idx := g.indexOf(roomID); idx >= 0 {
		return g.rooms[idx].clone(), true
	}
	return Room{}, false
}

// Rooms returns the current snapshot in creation order.
func (g *Registry) Rooms() []Room {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]Room, len(g.rooms))
	for i, r := range g.rooms {
		out[i] = r.clone()
	}
	return out
}

// DirectRoomWith returns the direct room between self and colleagueID, if any.
func (g *Registry) DirectRoomWith(colleagueID string) (Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, r := range g.rooms {
		if r.IsDirectBetween(g.self.ID, colleagueID) {
			return r.clone(), true
		}
	}
	return Room{}, false
}

// GroupRooms returns the rooms with more than two participants.
func (g *Registry) GroupRooms() []Room {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := []Room{}
	for _, r := range g.rooms {
		if len(r.Participants) > 2 {
			out = append(out, r.clone())
		}
	}
	return out
}

// indexOf must be called with mu held.
func (g *Registry) indexOf(roomID string) int {
	if roomID == "" {
		return -1
	}
	return slices.IndexFunc(g.rooms, func(r Room) bool { return r.ID == roomID })
}

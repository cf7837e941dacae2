package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"connect/internal/app/user"
)

func TestDisplayName(t *testing.T) {
	users := []user.User{alice, bob, carol, dave}

	tests := []struct {
		name string
		room Room
		want string
	}{
		{
			name: "direct room shows the other participant",
			room: Room{Name: "Bob Jones", Type: RoomDirect, Participants: []string{"u1", "u2"}},
			want: "Bob Jones",
		},
		{
			name: "group room joins first names",
			room: Room{Type: RoomGroup, Participants: []string{"u1", "u2", "u3", "u4"}},
			want: "Bob, Carol, Dave",
		},
		{
			name: "unknown participants fall back to the stored name",
			room: Room{Name: "Ghost", Type: RoomDirect, Participants: []string{"u1", "u9"}},
			want: "Ghost",
		},
		{
			name: "nothing resolvable",
			room: Room{Type: RoomGroup, Participants: []string{"u1", "u8", "u9"}},
			want: "Chat",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayName(tt.room, alice.ID, users))
		})
	}
}

func TestInviteCandidates(t *testing.T) {
	users := []user.User{alice, bob, carol, dave}
	room := Room{Type: RoomGroup, Participants: []string{"u1", "u2", "u3"}}

	got := InviteCandidates(room, users)

	assert.Equal(t, []user.User{dave}, got)
}

func TestRoom_WithParticipantDoesNotAlias(t *testing.T) {
	base := Room{Type: RoomDirect, Participants: make([]string, 2, 8)}
	base.Participants[0], base.Participants[1] = "u1", "u2"

	a, changed := base.withParticipant("u3")
	b, _ := base.withParticipant("u4")

	assert.True(t, changed)
	assert.Equal(t, []string{"u1", "u2", "u3"}, a.Participants)
	assert.Equal(t, []string{"u1", "u2", "u4"}, b.Participants)
	assert.Equal(t, RoomDirect, base.Type)
}

package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"connect/internal/app/identity"
	"connect/internal/app/user"
)

type fakeResolver struct {
	err error
}

func (f fakeResolver) ResolveAvatar(_ context.Context, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "https://signed.example.com/" + key, nil
}

func TestUsers_AppliesDefaults(t *testing.T) {
	profiles := []Profile{
		{ID: "a", Name: "Ann Lee", Email: "ann.lee@acertax.com"},
		{ID: "b", Name: "Ben Ko", Email: "ben.ko@acertax.com", Avatar: "https://img/b.png", Status: "away"},
		{ID: "c", Name: "Cy Do", Email: "cy.do@acertax.com", Avatar: "avatars/c.png", Status: "offline"},
	}

	users := Users(context.Background(), profiles, fakeResolver{})

	require.Len(t, users, 3)
	assert.Equal(t, user.PlaceholderAvatar("Ann Lee"), users[0].Avatar)
	assert.Equal(t, user.StatusOnline, users[0].Status)
	assert.Equal(t, "https://img/b.png", users[1].Avatar)
	assert.Equal(t, user.StatusAway, users[1].Status)
	assert.Equal(t, "https://signed.example.com/avatars/c.png", users[2].Avatar)
	assert.Equal(t, user.StatusOffline, users[2].Status)
}

func TestUsers_UnresolvableKeyFallsBack(t *testing.T) {
	profiles := []Profile{{ID: "c", Name: "Cy Do", Avatar: "avatars/c.png"}}

	withErr := Users(context.Background(), profiles, fakeResolver{err: errors.New("no bucket")})
	noResolver := Users(context.Background(), profiles, nil)

	assert.Equal(t, user.PlaceholderAvatar("Cy Do"), withErr[0].Avatar)
	assert.Equal(t, user.PlaceholderAvatar("Cy Do"), noResolver[0].Avatar)
}

func TestStatic_ExcludesSelf(t *testing.T) {
	s := NewStatic(DemoColleagues)

	profiles, err := s.ListProfiles(context.Background(), "u4")
	require.NoError(t, err)

	assert.Len(t, profiles, len(DemoColleagues)-1)
	for _, p := range profiles {
		assert.NotEqual(t, "u4", p.ID)
	}
}

func TestAccounts_ListProfiles(t *testing.T) {
	store := identity.NewMemoryStore(
		identity.Account{ID: "1", Email: "jane.doe@acertax.com", Name: "Jane Doe", Status: user.StatusOnline},
		identity.Account{ID: "2", Email: "no.name@acertax.com", AvatarURL: "avatars/2.png"},
	)

	profiles, err := NewAccounts(store).ListProfiles(context.Background(), "1")
	require.NoError(t, err)

	require.Len(t, profiles, 1)
	assert.Equal(t, "No Name", profiles[0].Name)
	assert.Equal(t, "avatars/2.png", profiles[0].Avatar)
	assert.Empty(t, profiles[0].Status)
}

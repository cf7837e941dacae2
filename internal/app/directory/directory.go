/*
Package directory lists the colleagues a signed-in user can start conversations with.

Providers return raw profiles with optional avatar and status; Users turns them into
complete user records with placeholder avatars and an online default.
*/
package directory

import (
	"context"
	"strings"

	"connect/internal/app/user"
)

// Profile is a colleague as stored by a directory backend.
type Profile struct {
	ID    string
	Name  string
	Email string

	// Avatar is an absolute URL, an object storage key, or empty.
	Avatar string

	// Status is empty when the backend does not track presence.
	Status string
}

// Provider lists colleague profiles.
type Provider interface {
	// ListProfiles returns every profile except excludingUserID.
	ListProfiles(ctx context.Context, excludingUserID string) ([]Profile, error)
}

// AvatarResolver turns an object storage key into a fetchable URL.
type AvatarResolver interface {
	ResolveAvatar(ctx context.Context, key string) (string, error)
}

// IsURL reports whether avatar is already an absolute http(s) URL.
func IsURL(avatar string) bool {
	return strings.HasPrefix(avatar, "https://") || strings.HasPrefix(avatar, "http://")
}

// Users applies defaults to profiles: a missing avatar becomes a placeholder keyed by the
// colleague's name and a missing status becomes online. Storage keys are resolved through
// resolver when it is non-nil; keys that cannot be resolved fall back to the placeholder.
func Users(ctx context.Context, profiles []Profile, resolver AvatarResolver) []user.User {
	out := make([]user.User, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, user.User{
			ID:     p.ID,
			Name:   p.Name,
			Email:  p.Email,
			Avatar: avatarFor(ctx, p, resolver),
			Status: user.ParseStatus(p.Status),
		})
	}
	return out
}

func avatarFor(ctx context.Context, p Profile, resolver AvatarResolver) string {
	switch {
	case p.Avatar == "":
	case IsURL(p.Avatar):
		return p.Avatar
	case resolver != nil:
		if url, err := resolver.ResolveAvatar(ctx, p.Avatar); err == nil && url != "" {
			return url
		}
	}
	return user.PlaceholderAvatar(p.Name)
}

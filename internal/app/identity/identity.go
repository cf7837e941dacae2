/*
Package identity authenticates Acertax employees and tracks their live sessions.

A Service validates credentials against an AccountStore, issues signed session tokens and
notifies subscribers when a session ends, whether by sign-out or expiry. Each workspace talks
to the Service through a Client, which implements Provider for a single browser session.
*/
package identity

import (
	"context"
	"time"

	"connect/internal/app/user"
)

// Session is an authenticated sign-in.
type Session struct {
	// ID is the session identifier embedded in the token (jti).
	ID string `json:"-"`

	// Token is the signed bearer token.
	Token string `json:"token"`

	// User is the signed-in user.
	User user.User `json:"user"`

	// ExpiresAt is when the token stops being accepted.
	ExpiresAt time.Time `json:"expiresAt"`
}

// Provider is the identity contract of one browser session.
type Provider interface {
	// CurrentSession returns the active session, or nil when signed out.
	CurrentSession(ctx context.Context) (*Session, error)

	// OnSessionChange registers fn for every session change; nil means signed out.
	// The returned function unsubscribes.
	OnSessionChange(fn func(*Session)) (unsubscribe func())

	// SignInWithPassword authenticates and makes the new session current.
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)

	// SignOut ends the current session.
	SignOut(ctx context.Context) error
}

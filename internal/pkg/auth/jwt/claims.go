package jwt

import "github.com/golang-jwt/jwt"

// Payload is the claim set of an Acertax Connect session token.
// The embedded StandardClaims carry expiry, issue time, issuer and the session id (jti).
type Payload struct {
	jwt.StandardClaims

	// UserID is the account identifier of the signed-in user.
	UserID string `json:"uid"`

	// Email is the normalized corporate email the session was issued for.
	Email string `json:"email"`

	// Name is the display name at the time of sign-in.
	Name string `json:"name,omitempty"`
}

// SessionID returns the token's jti.
func (p *Payload) SessionID() string {
	return p.Id
}

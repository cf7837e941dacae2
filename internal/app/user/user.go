/*
Package user contains the identity record shared by every part of the workspace.

It defines the User struct, presence statuses, and the derivation of display names and
placeholder avatars from corporate email addresses.
*/
package user

import (
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Status is the presence of a colleague.
type Status string

const (
	StatusOnline  Status = "online"
	StatusAway    Status = "away"
	StatusOffline Status = "offline"
)

// PlaceholderName is used when no display name can be derived from an email.
const PlaceholderName = "Acertax User"

// User is a participant of the workspace. Identity is ID; the record is immutable once loaded.
type User struct {
	// ID is the unique account identifier.
	ID string `json:"id"`

	// Name is the display name shown in rooms and message headers.
	Name string `json:"name"`

	// Email is the normalized corporate email address.
	Email string `json:"email"`

	// Avatar is an image URL.
	Avatar string `json:"avatar"`

	// Status is the colleague's presence.
	Status Status `json:"status"`
}

// ParseStatus maps a stored presence value to a Status, defaulting to online.
func ParseStatus(raw string) Status {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusAway:
		return StatusAway
	case StatusOffline:
		return StatusOffline
	default:
		return StatusOnline
	}
}

// NormalizeEmail trims surrounding whitespace and lower-cases the address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// DisplayNameFromEmail derives "First Last" from the local part of email.
// The local part is split on "." into a first and a last segment, each capitalized:
// "j.doe@acertax.com" gives "J Doe" and "jdoe@acertax.com" gives "Jdoe". When nothing
// can be derived, PlaceholderName is returned.
func DisplayNameFromEmail(email string) string {
	local, _, _ := strings.Cut(NormalizeEmail(email), "@")

	first, last, _ := strings.Cut(local, ".")
	last, _, _ = strings.Cut(last, ".")

	name := strings.TrimSpace(capitalize(first) + " " + capitalize(last))
	if name == "" {
		return PlaceholderName
	}
	return name
}

// InitialsAvatar returns a generated initials image for a display name.
func InitialsAvatar(name string) string {
	q := url.Values{}
	q.Set("name", name)
	q.Set("background", "ea580c")
	q.Set("color", "fff")
	q.Set("size", "128")
	q.Set("bold", "true")
	return "https://ui-avatars.com/api/?" + q.Encode()
}

// PlaceholderAvatar returns a stable stock avatar keyed by seed.
func PlaceholderAvatar(seed string) string {
	return "https://i.pravatar.cc/150?u=" + url.QueryEscape(seed)
}

// FromSession builds the User of a signed-in session. An empty name is derived from the
// email and an empty avatar becomes a generated initials image. The user starts online.
func FromSession(id, email, name, avatar string) User {
	email = NormalizeEmail(email)
	if strings.TrimSpace(name) == "" {
		name = DisplayNameFromEmail(email)
	}
	if avatar == "" {
		avatar = InitialsAvatar(name)
	}

	return User{
		ID:     id,
		Name:   name,
		Email:  email,
		Avatar: avatar,
		Status: StatusOnline,
	}
}

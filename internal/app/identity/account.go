package identity

import (
	"context"
	"errors"
	"time"

	"connect/internal/app/user"
)

var (
	// ErrAccountNotFound is returned by stores when no account matches.
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountExists is returned by Create when the email is taken.
	ErrAccountExists = errors.New("account already exists")
)

// Account is the stored record behind a User.
type Account struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string

	// AvatarURL is either an absolute URL or an object storage key.
	AvatarURL string

	Status    user.Status
	CreatedAt time.Time
}

// User projects the account into the shared user record. Missing names are derived from the
// email and missing avatars become generated initials.
func (a Account) User() user.User {
	u := user.FromSession(a.ID, a.Email, a.Name, a.AvatarURL)
	if a.Status != "" {
		u.Status = a.Status
	}
	return u
}

// AccountStore persists accounts.
type AccountStore interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id string) (*Account, error)
	Create(ctx context.Context, account *Account) error
	UpdateAvatar(ctx context.Context, id, avatarURL string) error

	// List returns every account ordered by name.
	List(ctx context.Context) ([]Account, error)
}

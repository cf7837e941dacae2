package directory

import (
	"context"
	"fmt"

	"connect/internal/app/identity"
)

// Accounts lists the colleagues registered in an identity account store.
type Accounts struct {
	store identity.AccountStore
}

// NewAccounts returns a provider over store.
func NewAccounts(store identity.AccountStore) *Accounts {
	return &Accounts{store: store}
}

// ListProfiles implements Provider.
func (a *Accounts) ListProfiles(ctx context.Context, excludingUserID string) ([]Profile, error) {
	accounts, err := a.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	out := make([]Profile, 0, len(accounts))
	for _, acc := range accounts {
		if acc.ID == excludingUserID {
			continue
		}
		out = append(out, Profile{
			ID:     acc.ID,
			Name:   acc.User().Name,
			Email:  acc.Email,
			Avatar: acc.AvatarURL,
			Status: string(acc.Status),
		})
	}
	return out, nil
}

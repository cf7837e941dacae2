package identity

import (
	"cmp"
	"context"
	"slices"
	"sync"
)

// MemoryStore is an AccountStore kept in process memory. Accounts vanish on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]Account
	byEmail map[string]string
}

// NewMemoryStore returns a store pre-populated with accounts.
func NewMemoryStore(accounts ...Account) *MemoryStore {
	s := &MemoryStore{
		byID:    make(map[string]Account),
		byEmail: make(map[string]string),
	}
	for _, a := range accounts {
		s.byID[a.ID] = a
		s.byEmail[a.Email] = a.ID
	}
	return s
}

// FindByEmail implements AccountStore.
func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, ErrAccountNotFound
	}
	a := s.byID[id]
	return &a, nil
}

// FindByID implements AccountStore.
func (s *MemoryStore) FindByID(_ context.Context, id string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.byID[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return &a, nil
}

// Create implements AccountStore.
func (s *MemoryStore) Create(_ context.Context, account *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[account.Email]; taken {
		return ErrAccountExists
	}
	s.byID[account.ID] = *account
	s.byEmail[account.Email] = account.ID
	return nil
}

// UpdateAvatar implements AccountStore.
func (s *MemoryStore) UpdateAvatar(_ context.Context, id, avatarURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byID[id]
	if !ok {
		return ErrAccountNotFound
	}
	a.AvatarURL = avatarURL
	s.byID[id] = a
	return nil
}

// List implements AccountStore.
func (s *MemoryStore) List(_ context.Context) ([]Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Account, 0, len(s.byID))
	for _, a := range s.byID {
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b Account) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

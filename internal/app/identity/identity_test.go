package identity

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"connect/internal/app/user"
	"connect/internal/pkg/errs"
)

const testSecret = "test-secret"

func newTestService(t *testing.T, autoEnroll bool, accounts ...Account) *Service {
	t.Helper()

	svc := NewService(Config{
		Secret:        testSecret,
		TTL:           time.Hour,
		AllowedDomain: "@Acertax.com",
		AutoEnroll:    autoEnroll,
	}, NewMemoryStore(accounts...))
	t.Cleanup(svc.Shutdown)
	return svc
}

func seededAccount(t *testing.T) Account {
	t.Helper()

	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	return Account{
		ID:           "6f1c1f0e-0000-4000-8000-000000000001",
		Email:        "jane.doe@acertax.com",
		Name:         "Jane Doe",
		PasswordHash: hash,
		Status:       user.StatusOnline,
	}
}

func TestValidateCredentials(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		code     int
		want     string
	}{
		{name: "missing email", email: "  ", password: "x", code: errs.ErrEmailRequired},
		{name: "missing password", email: "a@acertax.com", password: "", code: errs.ErrPasswordRequired},
		{name: "foreign domain", email: "a@gmail.com", password: "x", code: errs.ErrUnauthorizedDomain},
		{name: "lookalike domain", email: "a@notacertax.com", password: "x", code: errs.ErrUnauthorizedDomain},
		{name: "malformed", email: "@acertax.com", password: "x", code: errs.ErrInvalidEmail},
		{name: "normalized", email: "  J.Doe@ACERTAX.com ", password: "x", want: "j.doe@acertax.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateCredentials(tt.email, tt.password, "acertax.com")
			if tt.code != 0 {
				require.NotNil(t, err)
				assert.Equal(t, tt.code, err.Code)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateCredentials_DomainMessage(t *testing.T) {
	_, err := ValidateCredentials("a@gmail.com", "x", "@acertax.com")

	require.NotNil(t, err)
	assert.Equal(t, "Unauthorized domain. Please use your @acertax.com email.", err.Message)
}

func TestService_SignInWithKnownAccount(t *testing.T) {
	svc := newTestService(t, false, seededAccount(t))

	session, err := svc.SignIn(context.Background(), "Jane.Doe@acertax.com", "hunter22")
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", session.User.Name)
	assert.NotEmpty(t, session.Token)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, user.InitialsAvatar("Jane Doe"), session.User.Avatar)

	payload, err := svc.Verify(context.Background(), session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, payload.UserID)
	assert.Equal(t, session.ID, payload.SessionID())
}

func TestService_SignInRejectsWrongPassword(t *testing.T) {
	svc := newTestService(t, false, seededAccount(t))

	_, err := svc.SignIn(context.Background(), "jane.doe@acertax.com", "nope")

	assert.True(t, errs.HasCode(err, errs.ErrInvalidCredentials))
}

func TestService_SignInUnknownWithoutEnrollment(t *testing.T) {
	svc := newTestService(t, false)

	_, err := svc.SignIn(context.Background(), "new.hire@acertax.com", "pw")

	assert.True(t, errs.HasCode(err, errs.ErrInvalidCredentials))
}

func TestService_AutoEnroll(t *testing.T) {
	svc := newTestService(t, true)

	first, err := svc.SignIn(context.Background(), "new.hire@acertax.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "New Hire", first.User.Name)

	second, err := svc.SignIn(context.Background(), "new.hire@acertax.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, second.User.ID)

	_, err = svc.SignIn(context.Background(), "new.hire@acertax.com", "other")
	assert.True(t, errs.HasCode(err, errs.ErrInvalidCredentials))
}

func TestService_SignInRejectsForeignDomainBeforeStore(t *testing.T) {
	svc := newTestService(t, true)

	_, err := svc.SignIn(context.Background(), "someone@gmail.com", "pw")

	assert.True(t, errs.HasCode(err, errs.ErrUnauthorizedDomain))
	accounts, _ := svc.store.List(context.Background())
	assert.Empty(t, accounts)
}

func TestService_RevokeNotifiesAndInvalidates(t *testing.T) {
	svc := newTestService(t, false, seededAccount(t))
	session, err := svc.SignIn(context.Background(), "jane.doe@acertax.com", "hunter22")
	require.NoError(t, err)

	notified := make(chan *Session, 1)
	svc.Subscribe(session.ID, func(s *Session) { notified <- s })

	require.NoError(t, svc.Revoke(context.Background(), session.ID))

	assert.Nil(t, <-notified)
	_, err = svc.Verify(context.Background(), session.Token)
	assert.True(t, errs.HasCode(err, errs.ErrUnauthorized))

	assert.NoError(t, svc.Revoke(context.Background(), session.ID))
}

func TestService_SessionExpiry(t *testing.T) {
	svc := NewService(Config{Secret: testSecret, TTL: 200 * time.Millisecond, AllowedDomain: "acertax.com"}, NewMemoryStore(seededAccount(t)))
	t.Cleanup(svc.Shutdown)

	session, err := svc.SignIn(context.Background(), "jane.doe@acertax.com", "hunter22")
	require.NoError(t, err)

	ended := make(chan struct{})
	svc.Subscribe(session.ID, func(*Session) { close(ended) })

	select {
	case <-ended:
	case <-time.After(2 * time.Second):
		t.Fatal("session did not expire")
	}
}

func TestService_VerifyRejectsForeignSignature(t *testing.T) {
	svc := newTestService(t, false, seededAccount(t))
	other := NewService(Config{Secret: "other-secret", AllowedDomain: "acertax.com"}, NewMemoryStore(seededAccount(t)))
	t.Cleanup(other.Shutdown)

	session, err := other.SignIn(context.Background(), "jane.doe@acertax.com", "hunter22")
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), session.Token)
	assert.True(t, errs.HasCode(err, errs.ErrUnauthorized))
}

func TestService_UpdateAvatar(t *testing.T) {
	acc := seededAccount(t)
	svc := newTestService(t, false, acc)

	require.NoError(t, svc.UpdateAvatar(context.Background(), acc.ID, "avatars/jane.png"))

	got, err := svc.Account(context.Background(), acc.ID)
	require.NoError(t, err)
	assert.Equal(t, "avatars/jane.png", got.AvatarURL)

	assert.ErrorIs(t, svc.UpdateAvatar(context.Background(), "missing", "x"), ErrAccountNotFound)
}

func TestClient_StartsFromToken(t *testing.T) {
	svc := newTestService(t, false, seededAccount(t))
	session, err := svc.SignIn(context.Background(), "jane.doe@acertax.com", "hunter22")
	require.NoError(t, err)

	c := svc.NewClient(context.Background(), session.Token)
	defer c.Close()

	current, err := c.CurrentSession(context.Background())
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, session.ID, current.ID)

	anon := svc.NewClient(context.Background(), "garbage")
	current, err = anon.CurrentSession(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, current)
}

func TestClient_SignInAndOutNotifyListeners(t *testing.T) {
	svc := newTestService(t, false, seededAccount(t))
	c := svc.NewClient(context.Background(), "")
	defer c.Close()

	var (
		mu     sync.Mutex
		events []*Session
	)
	unsubscribe := c.OnSessionChange(func(s *Session) {
		mu.Lock()
		events = append(events, s)
		mu.Unlock()
	})

	session, err := c.SignInWithPassword(context.Background(), "jane.doe@acertax.com", "hunter22")
	require.NoError(t, err)
	require.NoError(t, c.SignOut(context.Background()))

	mu.Lock()
	require.Len(t, events, 2)
	assert.Equal(t, session.ID, events[0].ID)
	assert.Nil(t, events[1])
	mu.Unlock()

	current, err := c.CurrentSession(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, current)

	unsubscribe()
	_, err = c.SignInWithPassword(context.Background(), "jane.doe@acertax.com", "hunter22")
	require.NoError(t, err)

	mu.Lock()
	assert.Len(t, events, 2)
	mu.Unlock()
}

func TestClient_RevocationElsewhereSignsOut(t *testing.T) {
	svc := newTestService(t, false, seededAccount(t))
	session, err := svc.SignIn(context.Background(), "jane.doe@acertax.com", "hunter22")
	require.NoError(t, err)

	c := svc.NewClient(context.Background(), session.Token)
	defer c.Close()

	ended := make(chan *Session, 1)
	c.OnSessionChange(func(s *Session) { ended <- s })

	require.NoError(t, svc.Revoke(context.Background(), session.ID))

	assert.Nil(t, <-ended)
	current, _ := c.CurrentSession(context.Background())
	assert.Nil(t, current)
}

func TestClient_SignOutWithoutSession(t *testing.T) {
	svc := newTestService(t, false)
	c := svc.NewClient(context.Background(), "")

	assert.NoError(t, c.SignOut(context.Background()))
}

func TestAccount_UserDefaults(t *testing.T) {
	u := Account{ID: "a1", Email: "mary.major@acertax.com"}.User()

	assert.Equal(t, "Mary Major", u.Name)
	assert.Equal(t, user.InitialsAvatar("Mary Major"), u.Avatar)
	assert.Equal(t, user.StatusOnline, u.Status)
}

func TestMemoryStore_ListIsSortedByName(t *testing.T) {
	s := NewMemoryStore(
		Account{ID: "2", Email: "b@acertax.com", Name: "Zed"},
		Account{ID: "1", Email: "a@acertax.com", Name: "Amy"},
	)

	accounts, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "Amy", accounts[0].Name)

	err = s.Create(context.Background(), &Account{ID: "3", Email: "a@acertax.com"})
	assert.ErrorIs(t, err, ErrAccountExists)
}

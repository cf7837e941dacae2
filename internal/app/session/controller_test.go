package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"connect/internal/app/identity"
	"connect/internal/app/user"
	"connect/internal/configs"
	"connect/internal/pkg/errs"
)

// fakeProvider is a scripted identity.Provider.
type fakeProvider struct {
	mu sync.Mutex

	current    *identity.Session
	currentErr error

	// beforeReturn runs inside CurrentSession before it returns, simulating a notification
	// that arrives while the check is in flight.
	beforeReturn func()

	signInErr  error
	signOutErr error

	listeners    map[int]func(*identity.Session)
	next         int
	unsubscribes int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{listeners: make(map[int]func(*identity.Session))}
}

func (f *fakeProvider) CurrentSession(context.Context) (*identity.Session, error) {
	f.mu.Lock()
	current, err, hook := f.current, f.currentErr, f.beforeReturn
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	return current, err
}

func (f *fakeProvider) OnSessionChange(fn func(*identity.Session)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.next++
	key := f.next
	f.listeners[key] = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()

		f.unsubscribes++
		delete(f.listeners, key)
	}
}

func (f *fakeProvider) fire(s *identity.Session) {
	f.mu.Lock()
	fns := make([]func(*identity.Session), 0, len(f.listeners))
	for _, fn := range f.listeners {
		fns = append(fns, fn)
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}

func (f *fakeProvider) SignInWithPassword(_ context.Context, email, _ string) (*identity.Session, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return &identity.Session{ID: "s-" + email, User: user.User{ID: "u-" + email, Email: email}}, nil
}

func (f *fakeProvider) SignOut(context.Context) error {
	return f.signOutErr
}

func janeSession() *identity.Session {
	return &identity.Session{ID: "s1", User: user.User{ID: "u1", Email: "jane.doe@acertax.com"}}
}

func TestController_StartWithoutSession(t *testing.T) {
	p := newFakeProvider()
	var phases []Phase
	c := NewController(p, Options{AllowedDomain: "acertax.com", OnChange: func(s AuthState) { phases = append(phases, s.Phase) }})
	defer c.Close()

	c.Start(context.Background())

	assert.Equal(t, []Phase{PhaseVerifying, PhaseAnonymous}, phases)
	assert.False(t, c.State().IsAuthenticated)
	assert.Nil(t, c.State().User)
}

func TestController_StartWithSession(t *testing.T) {
	p := newFakeProvider()
	p.current = janeSession()
	c := NewController(p, Options{AllowedDomain: "acertax.com"})
	defer c.Close()

	c.Start(context.Background())

	state := c.State()
	require.True(t, state.IsAuthenticated)
	assert.Equal(t, PhaseAuthenticated, state.Phase)
	assert.Equal(t, "Jane Doe", state.User.Name)
	assert.Equal(t, user.InitialsAvatar("Jane Doe"), state.User.Avatar)
}

func TestController_CheckErrorMeansAnonymous(t *testing.T) {
	p := newFakeProvider()
	p.currentErr = errors.New("network down")
	c := NewController(p, Options{})
	defer c.Close()

	c.Start(context.Background())

	assert.Equal(t, PhaseAnonymous, c.State().Phase)
}

func TestController_NotificationBeatsStaleCheck(t *testing.T) {
	p := newFakeProvider()
	p.current = nil
	p.beforeReturn = func() { p.fire(janeSession()) }
	c := NewController(p, Options{})
	defer c.Close()

	c.Start(context.Background())

	assert.True(t, c.State().IsAuthenticated, "stale empty check must not overwrite the notified session")
}

func TestController_SignOutNotificationBeatsStaleCheck(t *testing.T) {
	p := newFakeProvider()
	p.current = janeSession()
	p.beforeReturn = func() { p.fire(nil) }
	c := NewController(p, Options{})
	defer c.Close()

	c.Start(context.Background())

	assert.False(t, c.State().IsAuthenticated)
}

func TestController_ObserversEndOnLatestState(t *testing.T) {
	p := newFakeProvider()
	var (
		mu       sync.Mutex
		observed []AuthState
	)
	c := NewController(p, Options{OnChange: func(s AuthState) {
		mu.Lock()
		observed = append(observed, s)
		mu.Unlock()
	}})
	defer c.Close()

	c.Start(context.Background())

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				p.fire(janeSession())
			} else {
				p.fire(nil)
			}
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, observed)
	assert.Equal(t, c.State(), observed[len(observed)-1])
}

func TestController_SkipsOvertakenStates(t *testing.T) {
	p := newFakeProvider()
	p.beforeReturn = func() { p.fire(janeSession()) }
	var phases []Phase
	c := NewController(p, Options{OnChange: func(s AuthState) { phases = append(phases, s.Phase) }})
	defer c.Close()

	c.Start(context.Background())

	assert.Equal(t, []Phase{PhaseVerifying, PhaseAuthenticated}, phases)
}

func TestController_LoginValidation(t *testing.T) {
	c := NewController(newFakeProvider(), Options{AllowedDomain: "acertax.com"})

	err := c.Login(context.Background(), "", "pw")
	assert.True(t, errs.HasCode(err, errs.ErrEmailRequired))

	err = c.Login(context.Background(), "a@acertax.com", "")
	assert.True(t, errs.HasCode(err, errs.ErrPasswordRequired))

	err = c.Login(context.Background(), "someone@gmail.com", "pw")
	require.True(t, errs.HasCode(err, errs.ErrUnauthorizedDomain))
	assert.Equal(t, "Unauthorized domain. Please use your @acertax.com email.", errs.From(err).Message)

	assert.Equal(t, PhaseAnonymous, c.State().Phase)
}

func TestController_LoginNormalizesEmail(t *testing.T) {
	c := NewController(newFakeProvider(), Options{AllowedDomain: "acertax.com"})

	require.NoError(t, c.Login(context.Background(), "  Jane.Doe@ACERTAX.com ", "pw"))

	u, ok := c.User()
	require.True(t, ok)
	assert.Equal(t, "jane.doe@acertax.com", u.Email)
	assert.Equal(t, "Jane Doe", u.Name)
}

func TestController_LoginProviderError(t *testing.T) {
	p := newFakeProvider()
	p.signInErr = errs.NewError(errs.ErrInvalidCredentials)
	c := NewController(p, Options{AllowedDomain: "acertax.com"})

	err := c.Login(context.Background(), "jane.doe@acertax.com", "pw")

	assert.True(t, errs.HasCode(err, errs.ErrInvalidCredentials))
	assert.False(t, c.State().IsAuthenticated)
}

func TestController_LogoutFailOpen(t *testing.T) {
	p := newFakeProvider()
	p.current = janeSession()
	p.signOutErr = errors.New("provider unreachable")
	c := NewController(p, Options{})
	c.Start(context.Background())

	assert.NoError(t, c.Logout(context.Background()))
	assert.False(t, c.State().IsAuthenticated)
}

func TestController_LogoutFailClosed(t *testing.T) {
	p := newFakeProvider()
	p.current = janeSession()
	p.signOutErr = errors.New("provider unreachable")
	c := NewController(p, Options{LogoutPolicy: configs.LogoutFailClosed})
	c.Start(context.Background())

	err := c.Logout(context.Background())

	assert.True(t, errs.HasCode(err, errs.ErrLogoutFailed))
	assert.True(t, c.State().IsAuthenticated)
}

func TestController_CloseUnsubscribesOnce(t *testing.T) {
	p := newFakeProvider()
	c := NewController(p, Options{})
	c.Start(context.Background())

	c.Close()
	c.Close()

	assert.Equal(t, 1, p.unsubscribes)

	p.fire(janeSession())
	assert.False(t, c.State().IsAuthenticated)
}

/*
Package session holds the authentication state of one workspace connection.

The Controller moves between anonymous, verifying and authenticated by asking an identity
Provider for the current session and by following the Provider's change notifications.
A notification always wins over a check that was started before it.
*/
package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"connect/internal/app/identity"
	"connect/internal/app/user"
	"connect/internal/configs"
	"connect/internal/pkg/errs"
	"connect/internal/pkg/logx"
)

// Phase is the coarse authentication state.
type Phase string

const (
	PhaseAnonymous     Phase = "anonymous"
	PhaseVerifying     Phase = "verifying"
	PhaseAuthenticated Phase = "authenticated"
)

// AuthState is what the workspace renders from. User is set only when authenticated.
type AuthState struct {
	User            *user.User `json:"user"`
	IsAuthenticated bool       `json:"isAuthenticated"`
	Phase           Phase      `json:"phase"`
}

// Options tune a Controller.
type Options struct {
	// AllowedDomain gates Login before the provider is contacted.
	AllowedDomain string

	// LogoutPolicy decides the local outcome of a failed remote sign-out.
	LogoutPolicy configs.LogoutPolicy

	// OnChange receives state changes in the order they were applied. Calls are serialized
	// and a state that was already overtaken is skipped. It must not call Start, Login or
	// Logout synchronously.
	OnChange func(AuthState)
}

// Controller tracks the session of one connection.
type Controller struct {
	provider identity.Provider
	opts     Options

	mu    sync.Mutex
	state AuthState

	// generation increments on every applied change so in-flight checks can detect
	// that they were overtaken.
	generation uint64

	// version increments on every state write; emitted is the last version delivered.
	version uint64
	emitMu  sync.Mutex
	emitted uint64

	unsubscribe func()
	closeOnce   sync.Once

	logger zerolog.Logger
}

// NewController creates an anonymous Controller.
func NewController(provider identity.Provider, opts Options) *Controller {
	if opts.LogoutPolicy == "" {
		opts.LogoutPolicy = configs.LogoutFailOpen
	}

	return &Controller{
		provider: provider,
		opts:     opts,
		state:    AuthState{Phase: PhaseAnonymous},
		logger:   logx.Component("Session"),
	}
}

// emit delivers the latest state to OnChange unless it was delivered already.
func (c *Controller) emit() {
	if c.opts.OnChange == nil {
		return
	}

	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	state, version := c.state, c.version
	c.mu.Unlock()

	if version == c.emitted {
		return
	}
	c.emitted = version
	c.opts.OnChange(state)
}

// Start subscribes to session changes and then checks for an existing session.
// A change notified while the check is in flight takes precedence over its result.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	gen := c.generation
	c.state = AuthState{Phase: PhaseVerifying}
	c.version++
	c.mu.Unlock()
	c.emit()

	unsubscribe := c.provider.OnSessionChange(c.handleChange)
	c.mu.Lock()
	c.unsubscribe = unsubscribe
	c.mu.Unlock()

	session, err := c.provider.CurrentSession(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Session check failed, continuing signed out.")
		session = nil
	}

	c.mu.Lock()
	if c.generation != gen {
		c.mu.Unlock()
		c.logger.Debug().Msg("Session check result discarded; a newer change was applied.")
		return
	}
	c.applyLocked(session)
	c.mu.Unlock()
	c.emit()
}

func (c *Controller) handleChange(session *identity.Session) {
	c.mu.Lock()
	c.applyLocked(session)
	c.mu.Unlock()
	c.emit()
}

// applyLocked replaces the state from session (nil means signed out). mu must be held.
func (c *Controller) applyLocked(session *identity.Session) {
	c.generation++
	c.version++

	if session == nil {
		c.state = AuthState{Phase: PhaseAnonymous}
		return
	}

	u := user.FromSession(session.User.ID, session.User.Email, session.User.Name, session.User.Avatar)
	if session.User.Status != "" {
		u.Status = session.User.Status
	}

	c.state = AuthState{User: &u, IsAuthenticated: true, Phase: PhaseAuthenticated}
}

// Login validates the credentials locally and then signs in through the provider.
// Validation and provider errors are returned for inline display; the state is unchanged
// on failure.
func (c *Controller) Login(ctx context.Context, email, password string) error {
	normalized, verr := identity.ValidateCredentials(email, password, c.opts.AllowedDomain)
	if verr != nil {
		return verr
	}

	session, err := c.provider.SignInWithPassword(ctx, normalized, password)
	if err != nil {
		c.logger.Info().Err(err).Msg("Sign-in failed.")
		return err
	}

	c.handleChange(session)
	return nil
}

// Logout signs out through the provider and clears the local session. Under the fail-open
// policy a provider failure is logged and the session is cleared anyway; under fail-closed
// the session is kept and ErrLogoutFailed is returned.
func (c *Controller) Logout(ctx context.Context) error {
	if err := c.provider.SignOut(ctx); err != nil {
		c.logger.Error().Err(err).Str("policy", string(c.opts.LogoutPolicy)).Msg("Provider sign-out failed.")
		if c.opts.LogoutPolicy == configs.LogoutFailClosed {
			return errs.NewError(errs.ErrLogoutFailed)
		}
	}

	c.handleChange(nil)
	return nil
}

// State returns the current state.
func (c *Controller) State() AuthState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// User returns the signed-in user.
func (c *Controller) User() (user.User, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.User == nil {
		return user.User{}, false
	}
	return *c.state.User, true
}

// Close releases the provider subscription. It is safe to call more than once.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		unsubscribe := c.unsubscribe
		c.unsubscribe = nil
		c.mu.Unlock()

		if unsubscribe != nil {
			unsubscribe()
		}
	})
}

package identity

import (
	"context"
	"sync"

	"connect/internal/pkg/errs"
)

// Client is the Provider of a single browser session. It starts from the token presented on
// connect, follows sign-ins made through it, and relays the Service's end-of-session
// notifications to its own listeners.
type Client struct {
	svc *Service

	mu      sync.Mutex
	session *Session

	// unbind drops the Service subscription of the current session.
	unbind func()

	listeners map[uint64]func(*Session)
	next      uint64
}

// NewClient creates a Client. An empty or invalid token starts signed out.
func (s *Service) NewClient(ctx context.Context, token string) *Client {
	c := &Client{
		svc:       s,
		listeners: make(map[uint64]func(*Session)),
	}

	if token != "" {
		if session, err := s.Resolve(ctx, token); err == nil {
			c.bind(session)
		}
	}
	return c
}

var _ Provider = (*Client)(nil)

// bind makes session current and follows its end.
func (c *Client) bind(session *Session) {
	c.mu.Lock()
	if c.unbind != nil {
		c.unbind()
		c.unbind = nil
	}
	c.session = session
	c.mu.Unlock()

	if session == nil {
		return
	}

	sessionID := session.ID
	unbind := c.svc.Subscribe(sessionID, func(*Session) {
		c.mu.Lock()
		if c.session == nil || c.session.ID != sessionID {
			c.mu.Unlock()
			return
		}
		c.session = nil
		c.unbind = nil
		c.mu.Unlock()

		c.notify(nil)
	})

	c.mu.Lock()
	c.unbind = unbind
	c.mu.Unlock()
}

func (c *Client) notify(session *Session) {
	c.mu.Lock()
	fns := make([]func(*Session), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(session)
	}
}

// CurrentSession implements Provider. A session revoked elsewhere reads as signed out.
func (c *Client) CurrentSession(ctx context.Context) (*Session, error) {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()

	if session == nil {
		return nil, nil
	}

	live, err := c.svc.Resolve(ctx, session.Token)
	if errs.HasCode(err, errs.ErrUnauthorized) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return live, nil
}

// OnSessionChange implements Provider.
func (c *Client) OnSessionChange(fn func(*Session)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.next++
	key := c.next
	c.listeners[key] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		delete(c.listeners, key)
	}
}

// SignInWithPassword implements Provider.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	session, err := c.svc.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}

	c.bind(session)
	c.notify(session)
	return session, nil
}

// SignOut implements Provider. Signing out without a session is a no-op.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()

	if session == nil {
		return nil
	}
	return c.svc.Revoke(ctx, session.ID)
}

// Close detaches the Client from the Service without ending the session.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.unbind != nil {
		c.unbind()
		c.unbind = nil
	}
	c.listeners = make(map[uint64]func(*Session))
}

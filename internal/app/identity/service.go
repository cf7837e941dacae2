package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"connect/internal/app/user"
	"connect/internal/pkg/auth/jwt"
	"connect/internal/pkg/errs"
	"connect/internal/pkg/logx"
	"connect/internal/pkg/randx"
)

// Config tunes a Service.
type Config struct {
	// Secret signs session tokens.
	Secret string

	// TTL is the session lifetime.
	TTL time.Duration

	// AllowedDomain is the only email domain accepted at sign-in.
	AllowedDomain string

	// AutoEnroll creates an account on the first sign-in of an unknown address.
	AutoEnroll bool

	Now func() time.Time
}

// liveSession is a session the Service still honours.
type liveSession struct {
	session Session
	timer   *time.Timer
}

// Service issues, verifies and ends sessions for every connection of the process.
type Service struct {
	cfg   Config
	store AccountStore

	mu       sync.Mutex
	sessions map[string]*liveSession

	// subs holds change callbacks per session id.
	subs    map[string]map[uint64]func(*Session)
	nextSub uint64

	logger zerolog.Logger
}

// NewService creates a Service on top of store.
func NewService(cfg Config, store AccountStore) *Service {
	if cfg.TTL <= 0 {
		cfg.TTL = jwt.DefaultSessionExpiration
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	cfg.AllowedDomain = NormalizeDomain(cfg.AllowedDomain)

	return &Service{
		cfg:      cfg,
		store:    store,
		sessions: make(map[string]*liveSession),
		subs:     make(map[string]map[uint64]func(*Session)),
		logger:   logx.Component("Identity"),
	}
}

// AllowedDomain returns the accepted email domain without "@".
func (s *Service) AllowedDomain() string {
	return s.cfg.AllowedDomain
}

// HashPassword returns the bcrypt hash stored for password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// SignIn validates the credentials, authenticates against the store and starts a session.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email, verr := ValidateCredentials(email, password, s.cfg.AllowedDomain)
	if verr != nil {
		return nil, verr
	}

	account, err := s.authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	return s.issue(account.User())
}

func (s *Service) authenticate(ctx context.Context, email, password string) (*Account, error) {
	account, err := s.store.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, ErrAccountNotFound) && s.cfg.AutoEnroll:
		return s.enroll(ctx, email, password)
	case errors.Is(err, ErrAccountNotFound):
		s.logger.Info().Str("email_domain", s.cfg.AllowedDomain).Msg("Sign-in rejected: unknown account.")
		return nil, errs.NewError(errs.ErrInvalidCredentials)
	case err != nil:
		return nil, fmt.Errorf("find account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		s.logger.Info().Str("user_id", account.ID).Msg("Sign-in rejected: wrong password.")
		return nil, errs.NewError(errs.ErrInvalidCredentials)
	}
	return account, nil
}

// enroll creates the account of a first-time sign-in.
func (s *Service) enroll(ctx context.Context, email, password string) (*Account, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &Account{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         user.DisplayNameFromEmail(email),
		PasswordHash: hash,
		Status:       user.StatusOnline,
		CreatedAt:    s.cfg.Now(),
	}

	if err := s.store.Create(ctx, account); err != nil {
		if errors.Is(err, ErrAccountExists) {
			// Lost a race with a concurrent first sign-in; authenticate against the winner.
			return s.authenticate(ctx, email, password)
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.logger.Info().Str("user_id", account.ID).Msg("Account enrolled.")
	return account, nil
}

// issue signs a token for u and tracks the session until it ends.
func (s *Service) issue(u user.User) (*Session, error) {
	sessionID := randx.SessionID()
	payload := &jwt.Payload{UserID: u.ID, Email: u.Email, Name: u.Name}

	token, expiresAt, err := jwt.GenerateToken(payload, sessionID, s.cfg.Secret, s.cfg.Now(), s.cfg.TTL)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	session := Session{ID: sessionID, Token: token, User: u, ExpiresAt: expiresAt}

	s.mu.Lock()
	s.sessions[sessionID] = &liveSession{
		session: session,
		timer:   time.AfterFunc(s.cfg.TTL, func() { s.end(sessionID, "expired") }),
	}
	s.mu.Unlock()

	s.logger.Info().Str("user_id", u.ID).Str("session_id", sessionID).Time("expires_at", expiresAt).Msg("Session started.")
	return &session, nil
}

// Verify parses token and checks that its session is still live. It matches jwt.VerifyFunc.
func (s *Service) Verify(_ context.Context, token string) (*jwt.Payload, error) {
	payload, err := jwt.ParseToken(token, s.cfg.Secret)
	if err != nil {
		return nil, errs.NewError(errs.ErrUnauthorized)
	}

	s.mu.Lock()
	_, live := s.sessions[payload.SessionID()]
	s.mu.Unlock()

	if !live {
		return nil, errs.NewError(errs.ErrUnauthorized)
	}
	return payload, nil
}

// Resolve returns the live session behind token.
func (s *Service) Resolve(ctx context.Context, token string) (*Session, error) {
	payload, err := s.Verify(ctx, token)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ls, ok := s.sessions[payload.SessionID()]
	if !ok {
		return nil, errs.NewError(errs.ErrUnauthorized)
	}
	session := ls.session
	return &session, nil
}

// Revoke ends the session. Ending an unknown session is not an error.
func (s *Service) Revoke(_ context.Context, sessionID string) error {
	s.end(sessionID, "signed out")
	return nil
}

// end removes the session and notifies its subscribers with nil.
func (s *Service) end(sessionID, reason string) {
	s.mu.Lock()
	ls, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return
	}
	ls.timer.Stop()
	delete(s.sessions, sessionID)

	subs := make([]func(*Session), 0, len(s.subs[sessionID]))
	for _, fn := range s.subs[sessionID] {
		subs = append(subs, fn)
	}
	delete(s.subs, sessionID)
	s.mu.Unlock()

	s.logger.Info().Str("session_id", sessionID).Str("reason", reason).Msg("Session ended.")

	for _, fn := range subs {
		fn(nil)
	}
}

// Subscribe registers fn to be called with nil when the session ends.
func (s *Service) Subscribe(sessionID string, fn func(*Session)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSub++
	key := s.nextSub
	if s.subs[sessionID] == nil {
		s.subs[sessionID] = make(map[uint64]func(*Session))
	}
	s.subs[sessionID][key] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		delete(s.subs[sessionID], key)
		if len(s.subs[sessionID]) == 0 {
			delete(s.subs, sessionID)
		}
	}
}

// Account loads the account of userID.
func (s *Service) Account(ctx context.Context, userID string) (*Account, error) {
	return s.store.FindByID(ctx, userID)
}

// UpdateAvatar stores avatarURL on the account of userID.
func (s *Service) UpdateAvatar(ctx context.Context, userID, avatarURL string) error {
	return s.store.UpdateAvatar(ctx, userID, avatarURL)
}

// Shutdown stops all expiry timers. Live sessions are dropped without notification.
func (s *Service) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, ls := range s.sessions {
		ls.timer.Stop()
		delete(s.sessions, id)
	}
	s.subs = make(map[string]map[uint64]func(*Session))
}

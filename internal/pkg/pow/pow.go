/*
Package pow implements the proof-of-work gate in front of password login.

A client fetches a nonce, searches for a counter whose sha256(nonce+counter) has the required
number of leading hex zeros, and trades the proof for a short-lived, single-use proof token that
the login endpoint accepts. Difficulty 0 disables the gate.
*/
package pow

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// TokenHeaderKey is the HTTP header carrying the proof token.
	TokenHeaderKey = "X-PoW-Token"

	// ProofTokenDuration is how long an issued proof token stays valid.
	ProofTokenDuration = 30 * time.Second

	// NonceExpiryDuration is how long a challenge nonce stays valid.
	NonceExpiryDuration = 5 * time.Minute
)

var (
	ErrNonceInvalid      = errors.New("nonce expired or invalid")
	ErrProofInsufficient = errors.New("proof does not meet difficulty requirement")
)

// Guard issues challenges and proof tokens. It is safe for concurrent use.
type Guard struct {
	// difficulty is the number of leading hex zeros a proof hash needs.
	difficulty int

	// nonces maps outstanding nonces to their expiry.
	nonces map[string]time.Time

	// tokens maps issued proof tokens to their expiry.
	tokens map[string]time.Time

	mu sync.Mutex

	now func() time.Time
}

// NewGuard creates a Guard. The expiry sweeper stops when ctx is done.
func NewGuard(ctx context.Context, difficulty int) *Guard {
	g := &Guard{
		difficulty: difficulty,
		nonces:     make(map[string]time.Time),
		tokens:     make(map[string]time.Time),
		now:        time.Now,
	}

	go g.sweepLoop(ctx)

	return g
}

// Enabled reports whether login requires a proof token.
func (g *Guard) Enabled() bool {
	return g != nil && g.difficulty > 0
}

// Difficulty returns the configured number of leading zeros.
func (g *Guard) Difficulty() int {
	return g.difficulty
}

// Challenge returns a fresh nonce.
func (g *Guard) Challenge() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	nonce := uuid.New().String()
	g.nonces[nonce] = g.now().Add(NonceExpiryDuration)
	return nonce
}

// Meets reports whether nonce+counter hashes to the required number of leading zeros.
func Meets(nonce, counter string, difficulty int) bool {
	hash := sha256.Sum256([]byte(nonce + counter))
	return strings.HasPrefix(hex.EncodeToString(hash[:]), strings.Repeat("0", difficulty))
}

// Verify consumes nonce and, if counter is a valid proof, returns a proof token.
func (g *Guard) Verify(nonce, counter string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	expiry, ok := g.nonces[nonce]
	if !ok || g.now().After(expiry) {
		return "", ErrNonceInvalid
	}

	if !Meets(nonce, counter, g.difficulty) {
		return "", ErrProofInsufficient
	}

	delete(g.nonces, nonce)

	token := uuid.New().String()
	g.tokens[token] = g.now().Add(ProofTokenDuration)
	return token, nil
}

// Redeem checks the proof token carried by r (header or pow_token query parameter)
// and consumes it. A disabled guard accepts every request.
func (g *Guard) Redeem(r *http.Request) bool {
	if !g.Enabled() {
		return true
	}

	token := r.Header.Get(TokenHeaderKey)
	if token == "" {
		token = r.URL.Query().Get("pow_token")
	}
	if token == "" {
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	expiry, ok := g.tokens[token]
	if !ok {
		return false
	}
	delete(g.tokens, token)

	return !g.now().After(expiry)
}

func (g *Guard) sweep() {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	for nonce, expiry := range g.nonces {
		if now.After(expiry) {
			delete(g.nonces, nonce)
		}
	}
	for token, expiry := range g.tokens {
		if now.After(expiry) {
			delete(g.tokens, token)
		}
	}
}

func (g *Guard) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.sweep()
		}
	}
}

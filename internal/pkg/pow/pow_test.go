package pow

import (
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solve(t *testing.T, nonce string, difficulty int) string {
	t.Helper()
	for i := 0; i < 1<<22; i++ {
		counter := strconv.Itoa(i)
		if Meets(nonce, counter, difficulty) {
			return counter
		}
	}
	t.Fatal("no proof found")
	return ""
}

func TestGuard_DisabledAcceptsEverything(t *testing.T) {
	g := NewGuard(t.Context(), 0)

	assert.False(t, g.Enabled())
	assert.True(t, g.Redeem(httptest.NewRequest("POST", "/api/auth/login", nil)))

	var nilGuard *Guard
	assert.False(t, nilGuard.Enabled())
	assert.True(t, nilGuard.Redeem(httptest.NewRequest("POST", "/api/auth/login", nil)))
}

func TestGuard_ChallengeVerifyRedeem(t *testing.T) {
	g := NewGuard(t.Context(), 1)
	nonce := g.Challenge()

	token, err := g.Verify(nonce, solve(t, nonce, 1))
	require.NoError(t, err)

	r := httptest.NewRequest("POST", "/api/auth/login", nil)
	r.Header.Set(TokenHeaderKey, token)
	assert.True(t, g.Redeem(r))
	assert.False(t, g.Redeem(r), "proof tokens are single-use")
}

func TestGuard_VerifyRejects(t *testing.T) {
	g := NewGuard(t.Context(), 2)

	_, err := g.Verify("unknown", "0")
	assert.ErrorIs(t, err, ErrNonceInvalid)

	nonce := g.Challenge()
	bad := "0"
	for Meets(nonce, bad, 2) {
		bad += "0"
	}
	_, err = g.Verify(nonce, bad)
	assert.ErrorIs(t, err, ErrProofInsufficient)

	// A failed proof leaves the nonce usable.
	_, err = g.Verify(nonce, solve(t, nonce, 2))
	assert.NoError(t, err)

	_, err = g.Verify(nonce, solve(t, nonce, 2))
	assert.ErrorIs(t, err, ErrNonceInvalid, "nonces are consumed on success")
}

func TestGuard_Expiry(t *testing.T) {
	g := NewGuard(t.Context(), 1)
	now := time.Now()
	g.now = func() time.Time { return now }

	nonce := g.Challenge()
	token, err := g.Verify(nonce, solve(t, nonce, 1))
	require.NoError(t, err)

	now = now.Add(ProofTokenDuration + time.Second)
	r := httptest.NewRequest("POST", "/api/auth/login?pow_token="+token, nil)
	assert.False(t, g.Redeem(r))

	stale := g.Challenge()
	now = now.Add(NonceExpiryDuration + time.Second)
	g.sweep()
	_, err = g.Verify(stale, solve(t, stale, 1))
	assert.ErrorIs(t, err, ErrNonceInvalid)
}

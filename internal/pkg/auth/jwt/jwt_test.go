package jwt

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func TestGenerateAndParseToken(t *testing.T) {
	now := time.Now()
	token, expiresAt, err := GenerateToken(&Payload{UserID: "u1", Email: "jane.doe@acertax.com", Name: "Jane Doe"}, "s1", secret, now, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), expiresAt)

	payload, err := ParseToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "s1", payload.SessionID())
	assert.Equal(t, "u1", payload.UserID)
	assert.Equal(t, "jane.doe@acertax.com", payload.Email)
	assert.Equal(t, TokenIssuer, payload.Issuer)

	_, err = ParseToken(token, "other-secret")
	assert.Error(t, err)
}

func TestParseToken_Expired(t *testing.T) {
	token, _, err := GenerateToken(&Payload{UserID: "u1"}, "s1", secret, time.Now().Add(-2*time.Hour), time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(token, secret)
	assert.Error(t, err)
}

func TestParseToken_RequiresSessionAndUser(t *testing.T) {
	token, _, err := GenerateToken(&Payload{}, "s1", secret, time.Now(), time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(token, secret)
	assert.Error(t, err)
}

func TestRequestToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/ws?token=from-query", nil)
	assert.Equal(t, "from-query", RequestToken(r))

	r.Header.Set("Authorization", "Bearer from-header")
	assert.Equal(t, "from-header", RequestToken(r))

	r.Header.Set("Authorization", "Basic abc")
	assert.Equal(t, "", BearerToken(r))
}

func TestIdentityExtractorMiddleware(t *testing.T) {
	verify := func(_ context.Context, token string) (*Payload, error) {
		if token != "good" {
			return nil, errors.New("revoked")
		}
		return &Payload{UserID: "u1"}, nil
	}

	var got *Payload
	handler := IdentityExtractorMiddleware(verify)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetPayloadFromContext(r)
	}))

	for token, want := range map[string]bool{"": false, "bad": false, "good": true} {
		got = nil
		r := httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
		if token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
		handler.ServeHTTP(httptest.NewRecorder(), r)

		if want {
			require.NotNil(t, got, token)
			assert.Equal(t, "u1", got.UserID)
		} else {
			assert.Nil(t, got, token)
		}
	}
}

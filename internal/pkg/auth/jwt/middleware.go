package jwt

import (
	"context"
	"net/http"
	"strings"

	"connect/internal/pkg/logx"
)

type contextKey string

const (
	// ContextAuthPayloadKey stores the verified *Payload in the request context.
	ContextAuthPayloadKey contextKey = "auth_payload"

	// TokenQueryParam carries the token on WebSocket upgrades, where browsers cannot set headers.
	TokenQueryParam = "token"
)

// VerifyFunc resolves a raw token into a live session payload.
type VerifyFunc func(ctx context.Context, token string) (*Payload, error)

// BearerToken returns the token from the "Authorization: Bearer" header, or "".
func BearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// RequestToken returns the bearer token, falling back to the token query parameter.
func RequestToken(r *http.Request) string {
	if token := BearerToken(r); token != "" {
		return token
	}
	return r.URL.Query().Get(TokenQueryParam)
}

// IdentityExtractorMiddleware verifies the bearer token when present and injects the payload
// into the request context. Missing or invalid tokens leave the request anonymous; handlers
// decide whether that is acceptable.
func IdentityExtractorMiddleware(verify VerifyFunc) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := BearerToken(r)
			if tokenString == "" {
				next.ServeHTTP(w, r)
				return
			}

			payload, err := verify(r.Context(), tokenString)
			if err != nil {
				logx.Warn("Invalid, expired or revoked token provided, treating as anonymous", "error", err.Error())
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ContextAuthPayloadKey, payload)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetPayloadFromContext returns the verified payload, or nil for anonymous requests.
func GetPayloadFromContext(r *http.Request) *Payload {
	payload, ok := r.Context().Value(ContextAuthPayloadKey).(*Payload)
	if !ok {
		return nil
	}
	return payload
}

package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

const (
	// DefaultSessionExpiration is the lifetime of a session token when none is configured.
	DefaultSessionExpiration = 12 * time.Hour

	// TokenIssuer identifies the issuer of the token.
	TokenIssuer = "Acertax-Connect"
)

// GenerateToken signs payload with HS256. sessionID becomes the jti, and the expiry is
// now+duration. It returns the signed token and its expiry time.
func GenerateToken(payload *Payload, sessionID, secretKey string, now time.Time, duration time.Duration) (string, time.Time, error) {
	expiresAt := now.Add(duration)

	payload.StandardClaims = jwt.StandardClaims{
		Id:        sessionID,
		Subject:   payload.UserID,
		ExpiresAt: expiresAt.Unix(),
		IssuedAt:  now.Unix(),
		Issuer:    TokenIssuer,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)

	signed, err := token.SignedString([]byte(secretKey))
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// ParseToken validates the signature and standard claims of tokenString.
func ParseToken(tokenString string, secretKey string) (*Payload, error) {
	claims := &Payload{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secretKey), nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid || claims.Id == "" || claims.UserID == "" {
		return nil, errors.New("invalid or expired token")
	}

	return claims, nil
}

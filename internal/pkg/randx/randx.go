/*
Package randx generates identifiers for rooms, messages, sessions and confirmations.

Room ids are short Base62 strings drawn from crypto/rand; everything else is a UUID v4.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const (
	// Base62Chars defines the character set used for Base62 encoding (0-9, A-Z, a-z).
	Base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// Base62Len is the total number of characters in the Base62 character set (62).
	Base62Len = int64(len(Base62Chars))

	// RoomIDPrefix marks identifiers of chat rooms.
	RoomIDPrefix = "room_"

	// RoomIDRawLength is the length of the Base62 part of a room id.
	RoomIDRawLength = 10
)

// base62 returns n cryptographically random Base62 characters.
func base62(n int) (string, error) {
	result := make([]byte, n)

	for i := range n {
		num, err := rand.Int(rand.Reader, big.NewInt(Base62Len))
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}

		result[i] = Base62Chars[num.Int64()]
	}

	return string(result), nil
}

// RoomID generates a fresh room identifier such as "room_4fK9aQ01Zx".
// If the system random source fails it falls back to a UUID so creation never fails.
func RoomID() string {
	raw, err := base62(RoomIDRawLength)
	if err != nil {
		return RoomIDPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	return RoomIDPrefix + raw
}

// IsValidRoomID reports whether id has the shape produced by RoomID.
func IsValidRoomID(id string) bool {
	raw, ok := strings.CutPrefix(id, RoomIDPrefix)
	if !ok || raw == "" {
		return false
	}

	for _, char := range raw {
		if !strings.ContainsRune(Base62Chars, char) {
			return false
		}
	}

	return true
}

// MessageID generates a standard UUID v4 string to serve as a unique identifier for a message.
func MessageID() string {
	return uuid.New().String()
}

// SessionID generates the identifier embedded in issued session tokens.
func SessionID() string {
	return uuid.New().String()
}

// ConfirmationID generates the identifier of a pending, cancelable confirmation step.
func ConfirmationID() string {
	return uuid.New().String()
}

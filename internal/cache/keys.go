package cache

import (
	"crypto/md5" //nolint:gosec // non-cryptographic use: stable key digest
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// Key generation policy: every cached lookup maps to
//
//	cards:<userID>:<kind>:<digest>
//
// The user ID sits in the plain-text prefix so that a single
// DeletePattern(UserPrefix(userID)) call invalidates everything cached for
// that user. The trailing digest is a stable 8-hex-digit hash of the
// remaining identifying parameters, so the same logical lookup always maps
// to the same key regardless of call site.

const keyNamespace = "cards"

// UserPrefix returns the key prefix shared by all cache entries for a user.
// It is the pattern to pass to DeletePattern when the user's scheduling
// state changes.
func UserPrefix(userID uuid.UUID) string {
	return keyNamespace + ":" + userID.String() + ":"
}

// Key builds a cache key for a lookup of the given kind scoped to a user.
// parts are the identifying parameters of the lookup (question ID, scope
// ID, limits), hashed into a short stable digest.
func Key(userID uuid.UUID, kind string, parts ...string) string {
	return UserPrefix(userID) + kind + ":" + digest(parts)
}

func digest(parts []string) string {
	sum := md5.Sum([]byte(strings.Join(parts, "|"))) //nolint:gosec
	return hex.EncodeToString(sum[:])[:8]
}

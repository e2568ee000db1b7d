package utils

import (
	"time"

	"github.com/google/uuid"
)

// Lifetimes of the opaque tokens stored on the user document.
const (
	VerificationTokenTTL = 24 * time.Hour
	ResetTokenTTL        = 1 * time.Hour
)

// NewToken returns an opaque single-use token for email verification and
// password reset links.
func NewToken() string {
	return uuid.NewString()
}

// TokenExpired reports whether a stored token expiry has passed. A zero
// expiry counts as expired.
func TokenExpired(expires time.Time) bool {
	return expires.IsZero() || time.Now().After(expires)
}

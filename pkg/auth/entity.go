package auth

import (
	"time"

	"github.com/google/uuid"
)

// User is a domain entity representing a registered account.
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// PendingVerification is an outstanding one-time code bound to an email
// address. At most one exists per email.
type PendingVerification struct {
	Email     string
	Code      string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the code can no longer be accepted at now.
func (p PendingVerification) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

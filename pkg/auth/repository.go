package auth

import (
	"context"
	"errors"
)

// ErrNotFound is returned by repositories when no record matches.
var ErrNotFound = errors.New("not found")

// UserRepository abstracts persistence concerns from the domain layer.
// Implementations may be in-memory, SQL, NoSQL, etc.
type UserRepository interface {
	Create(ctx context.Context, user User) error
	GetByEmail(ctx context.Context, email string) (User, error)
}

// OutcomeRecorder receives one result label per auth operation. Labels are
// "ok" or a short error kind such as "invalid_code".
type OutcomeRecorder interface {
	CodeRequest(result string)
	Verification(result string)
	Registration(result string)
	Login(result string)
}

type nopRecorder struct{}

func (nopRecorder) CodeRequest(string)  {}
func (nopRecorder) Verification(string) {}
func (nopRecorder) Registration(string) {}
func (nopRecorder) Login(string)        {}

// PendingRepository stores pending verifications keyed by normalized email.
// Implementations must drop records some time after ExpiresAt on their own
// (TTL index, key expiry or a background sweep).
type PendingRepository interface {
	// Upsert atomically replaces any record held for p.Email.
	Upsert(ctx context.Context, p PendingVerification) error
	// Get returns ErrNotFound when no record exists for email.
	Get(ctx context.Context, email string) (PendingVerification, error)
	// Consume deletes the record for email only if it still carries code and
	// reports whether a record was removed.
	Consume(ctx context.Context, email, code string) (bool, error)
}

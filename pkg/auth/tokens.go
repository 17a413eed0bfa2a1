package auth

import "context"

// TokenGenerator abstracts session credential creation (e.g., JWT).
// It allows use cases to stay framework-agnostic.
type TokenGenerator interface {
	Generate(ctx context.Context, user User) (string, error)
}

// Notifier delivers a message to an email address over some transport.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

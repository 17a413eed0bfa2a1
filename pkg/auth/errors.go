package auth

import "errors"

// Errors returned by the auth use cases. Handlers map them to responses.
var (
	ErrInvalidInput                = errors.New("invalid input")
	ErrUserAlreadyExists           = errors.New("user already exists")
	ErrUserNotFound                = errors.New("user not found")
	ErrInvalidCredentials          = errors.New("invalid credentials")
	ErrNoPendingRequest            = errors.New("no pending verification for email")
	ErrInvalidCode                 = errors.New("invalid verification code")
	ErrCodeExpired                 = errors.New("verification code expired")
	ErrDeliveryFailed              = errors.New("verification code delivery failed")
	ErrStoreUnavailable            = errors.New("store unavailable")
	ErrPostVerificationWriteFailed = errors.New("account not created after verification")
	ErrUnauthorized                = errors.New("unauthorized")
)

// DeliveryError carries the gateway's reason for a failed delivery.
// It matches ErrDeliveryFailed with errors.Is.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string {
	return ErrDeliveryFailed.Error() + ": " + e.Err.Error()
}

func (e *DeliveryError) Unwrap() []error { return []error{ErrDeliveryFailed, e.Err} }

// Reason is a short, non-secret description of the failure.
func (e *DeliveryError) Reason() string { return e.Err.Error() }

// outcome turns an error into a low-cardinality metrics label.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrUserAlreadyExists):
		return "conflict"
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrNoPendingRequest):
		return "not_found"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrInvalidCode):
		return "invalid_code"
	case errors.Is(err, ErrCodeExpired):
		return "expired"
	case errors.Is(err, ErrDeliveryFailed):
		return "delivery_failed"
	case errors.Is(err, ErrStoreUnavailable):
		return "store_unavailable"
	case errors.Is(err, ErrPostVerificationWriteFailed):
		return "post_verification_write_failed"
	default:
		return "error"
	}
}

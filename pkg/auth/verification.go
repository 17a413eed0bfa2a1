package auth

import (
	"bytes"
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"text/template"
	"time"
)

const (
	// DefaultCodeDigits is the default for VerificationConfig.CodeDigits.
	DefaultCodeDigits = 6

	// DefaultCodeTTL is the default for VerificationConfig.CodeTTL.
	DefaultCodeTTL = 5 * time.Minute

	// DefaultEmailSubject is the default for VerificationConfig.EmailSubject.
	DefaultEmailSubject = "Your OTP Code"

	// DefaultEmailTemplate is the default for VerificationConfig.EmailTemplate.
	DefaultEmailTemplate = `Your OTP is {{.Code}}. It expires in {{printf "%.f" .TTL.Minutes}} minutes.`
)

// VerificationConfig holds code generation and delivery settings.
// A zero value is valid, see constants for default values.
type VerificationConfig struct {
	CodeDigits    int
	CodeTTL       time.Duration
	EmailSubject  string
	EmailTemplate string
	// Recorder is notified of every outcome; nil records nothing.
	Recorder OutcomeRecorder
}

// EmailParams is passed as data when executing the email template.
type EmailParams struct {
	Email string
	Code  string
	TTL   time.Duration
}

// VerificationUseCase manages the request, deliver, verify and consume
// lifecycle of single-use codes bound to an email address.
type VerificationUseCase interface {
	RequestCode(ctx context.Context, email string) error
	VerifyAndConsume(ctx context.Context, email, code string) error
}

type verificationService struct {
	users    UserRepository
	pending  PendingRepository
	notifier Notifier
	cfg      VerificationConfig
	body     *template.Template
	log      *slog.Logger

	now     func() time.Time
	newCode func(digits int) (string, error)
}

// NewVerificationService returns the default VerificationUseCase.
// It fails only if cfg.EmailTemplate does not parse.
func NewVerificationService(
	users UserRepository,
	pending PendingRepository,
	notifier Notifier,
	cfg VerificationConfig,
	logger *slog.Logger,
) (VerificationUseCase, error) {
	return newVerificationService(users, pending, notifier, cfg, logger)
}

func newVerificationService(
	users UserRepository,
	pending PendingRepository,
	notifier Notifier,
	cfg VerificationConfig,
	logger *slog.Logger,
) (*verificationService, error) {
	if cfg.CodeDigits == 0 {
		cfg.CodeDigits = DefaultCodeDigits
	}
	if cfg.CodeTTL == 0 {
		cfg.CodeTTL = DefaultCodeTTL
	}
	if cfg.EmailSubject == "" {
		cfg.EmailSubject = DefaultEmailSubject
	}
	if cfg.EmailTemplate == "" {
		cfg.EmailTemplate = DefaultEmailTemplate
	}
	body, err := template.New("code-email").Parse(cfg.EmailTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse email template: %w", err)
	}
	if cfg.Recorder == nil {
		cfg.Recorder = nopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &verificationService{
		users:    users,
		pending:  pending,
		notifier: notifier,
		cfg:      cfg,
		body:     body,
		log:      logger.With("component", "verification"),
		now:      time.Now,
		newCode:  GenerateCode,
	}, nil
}

// RequestCode issues a fresh code for email, replacing any earlier one, and
// emails it. The code stays valid for the window even if delivery fails.
func (s *verificationService) RequestCode(ctx context.Context, email string) (err error) {
	defer func() { s.cfg.Recorder.CodeRequest(outcome(err)) }()

	email = NormalizeEmail(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if !ValidEmail(email) {
		return fmt.Errorf("%w: email is not valid", ErrInvalidInput)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return ErrUserAlreadyExists
	} else if !errors.Is(err, ErrNotFound) {
		s.log.ErrorContext(ctx, "lookup user failed", "error", err)
		return fmt.Errorf("%w: lookup user: %w", ErrStoreUnavailable, err)
	}

	code, err := s.newCode(s.cfg.CodeDigits)
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}
	var body bytes.Buffer
	if err := s.body.Execute(&body, EmailParams{Email: email, Code: code, TTL: s.cfg.CodeTTL}); err != nil {
		return fmt.Errorf("render email: %w", err)
	}

	now := s.now().UTC()
	p := PendingVerification{
		Email:     email,
		Code:      code,
		ExpiresAt: now.Add(s.cfg.CodeTTL),
		CreatedAt: now,
	}
	if err := s.pending.Upsert(ctx, p); err != nil {
		s.log.ErrorContext(ctx, "save pending verification failed", "error", err)
		return fmt.Errorf("%w: save pending verification: %w", ErrStoreUnavailable, err)
	}

	if err := s.notifier.Send(ctx, email, s.cfg.EmailSubject, body.String()); err != nil {
		s.log.ErrorContext(ctx, "send verification code failed", "error", err)
		return &DeliveryError{Err: err}
	}
	s.log.InfoContext(ctx, "verification code sent", "expires_at", p.ExpiresAt)
	return nil
}

// VerifyAndConsume checks code against the pending record for email and
// deletes the record on success. Both checks run before any mutation; the
// delete is conditional on the code so concurrent attempts succeed once.
func (s *verificationService) VerifyAndConsume(ctx context.Context, email, code string) (err error) {
	defer func() { s.cfg.Recorder.Verification(outcome(err)) }()

	email = NormalizeEmail(email)
	code = strings.TrimSpace(code)

	p, err := s.pending.Get(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNoPendingRequest
		}
		s.log.ErrorContext(ctx, "load pending verification failed", "error", err)
		return fmt.Errorf("%w: load pending verification: %w", ErrStoreUnavailable, err)
	}
	if subtle.ConstantTimeCompare([]byte(p.Code), []byte(code)) != 1 {
		return ErrInvalidCode
	}
	if p.Expired(s.now()) {
		return ErrCodeExpired
	}

	consumed, err := s.pending.Consume(ctx, email, p.Code)
	if err != nil {
		s.log.ErrorContext(ctx, "consume pending verification failed", "error", err)
		return fmt.Errorf("%w: consume pending verification: %w", ErrStoreUnavailable, err)
	}
	if !consumed {
		return ErrNoPendingRequest
	}
	return nil
}

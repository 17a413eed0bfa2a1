package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

// AuthUseCase describes code request, registration and login behavior.
type AuthUseCase interface {
	RequestCode(ctx context.Context, email string) error
	Register(ctx context.Context, in RegisterInput) (AuthResult, error)
	Login(ctx context.Context, email, password string) (AuthResult, error)
}

// RegisterInput is the payload of a verified signup.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Code     string
}

type AuthResult struct {
	User  User
	Token string
}

// Options tune AuthUseCase behavior.
type Options struct {
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	// HideUnknownUsers makes Login answer ErrInvalidCredentials for unknown
	// emails too, instead of ErrUserNotFound.
	HideUnknownUsers bool
	// Recorder is notified of registration and login outcomes.
	Recorder OutcomeRecorder
}

type authService struct {
	repo     UserRepository
	verifier VerificationUseCase
	tokens   TokenGenerator
	opts     Options
	log      *slog.Logger

	// dummyHash is compared against when the email is unknown and hidden,
	// keeping response time close to a wrong-password answer.
	dummyHash []byte
	now       func() time.Time
}

// NewAuthService returns default implementation of AuthUseCase.
func NewAuthService(repo UserRepository, verifier VerificationUseCase, tokens TokenGenerator, opts Options, logger *slog.Logger) (AuthUseCase, error) {
	return newAuthService(repo, verifier, tokens, opts, logger)
}

func newAuthService(repo UserRepository, verifier VerificationUseCase, tokens TokenGenerator, opts Options, logger *slog.Logger) (*authService, error) {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.Recorder == nil {
		opts.Recorder = nopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &authService{
		repo:     repo,
		verifier: verifier,
		tokens:   tokens,
		opts:     opts,
		log:      logger.With("component", "auth"),
		now:      time.Now,
	}
	if opts.HideUnknownUsers {
		h, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), opts.BcryptCost)
		if err != nil {
			return nil, fmt.Errorf("prepare dummy hash: %w", err)
		}
		s.dummyHash = h
	}
	return s, nil
}

func (s *authService) RequestCode(ctx context.Context, email string) error {
	return s.verifier.RequestCode(ctx, email)
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (res AuthResult, err error) {
	defer func() { s.opts.Recorder.Registration(outcome(err)) }()

	name := strings.TrimSpace(in.Name)
	email := NormalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" || strings.TrimSpace(in.Code) == "" {
		return AuthResult{}, fmt.Errorf("%w: name, email, password and otp are required", ErrInvalidInput)
	}
	if len(in.Password) > maxPasswordBytes {
		return AuthResult{}, fmt.Errorf("%w: password must be at most %d bytes", ErrInvalidInput, maxPasswordBytes)
	}

	if err := s.verifier.VerifyAndConsume(ctx, email, in.Code); err != nil {
		return AuthResult{}, err
	}

	// From here on the code is spent: failures must be told apart from a
	// plain store outage so the caller can request a fresh code.
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.opts.BcryptCost)
	if err != nil {
		return AuthResult{}, fmt.Errorf("%w: hash password: %w", ErrPostVerificationWriteFailed, err)
	}
	user := User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: string(passwordHash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, ErrUserAlreadyExists) {
			return AuthResult{}, ErrUserAlreadyExists
		}
		s.log.ErrorContext(ctx, "create user after verification failed", "error", err)
		return AuthResult{}, fmt.Errorf("%w: %w", ErrPostVerificationWriteFailed, err)
	}
	token, err := s.tokens.Generate(ctx, user)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue token: %w", err)
	}
	s.log.InfoContext(ctx, "user registered", "user_id", user.ID)
	return AuthResult{User: user, Token: token}, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (res AuthResult, err error) {
	defer func() { s.opts.Recorder.Login(outcome(err)) }()

	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return AuthResult{}, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.ErrorContext(ctx, "lookup user failed", "error", err)
			return AuthResult{}, fmt.Errorf("%w: lookup user: %w", ErrStoreUnavailable, err)
		}
		if s.opts.HideUnknownUsers {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, ErrUserNotFound
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return AuthResult{}, ErrInvalidCredentials
	}
	token, err := s.tokens.Generate(ctx, user)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue token: %w", err)
	}
	return AuthResult{User: user, Token: token}, nil
}

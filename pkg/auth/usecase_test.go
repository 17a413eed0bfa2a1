package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type authFixture struct {
	users    *memUsers
	pending  *memPending
	notifier *fakeNotifier
	verifier *verificationService
	svc      *authService
}

func newAuthFixture(t *testing.T, opts Options) *authFixture {
	t.Helper()
	f := &authFixture{
		users:    newMemUsers(),
		pending:  newMemPending(),
		notifier: &fakeNotifier{},
	}
	var err error
	f.verifier, err = newVerificationService(f.users, f.pending, f.notifier, VerificationConfig{}, nil)
	require.NoError(t, err)
	f.verifier.newCode = codeSequence("135790")
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.MinCost
	}
	f.svc, err = newAuthService(f.users, f.verifier, subjectTokens{}, opts, nil)
	require.NoError(t, err)
	return f
}

func (f *authFixture) register(t *testing.T, email, password string) AuthResult {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.svc.RequestCode(ctx, email))
	res, err := f.svc.Register(ctx, RegisterInput{Name: "Ann", Email: email, Password: password, Code: "135790"})
	require.NoError(t, err)
	return res
}

func TestRegister_CreatesUserOnceAndIssuesToken(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t, Options{})

	require.NoError(t, f.svc.RequestCode(ctx, "Ann@Example.com"))
	in := RegisterInput{Name: " Ann ", Email: "ann@example.com ", Password: "s3cret", Code: "135790"}
	res, err := f.svc.Register(ctx, in)
	require.NoError(t, err)

	assert.Equal(t, 1, f.users.count())
	assert.Equal(t, "Ann", res.User.Name)
	assert.Equal(t, "ann@example.com", res.User.Email)
	assert.NotEqual(t, uuid.Nil, res.User.ID)
	assert.Equal(t, res.User.ID.String(), res.Token)
	assert.NotEqual(t, "s3cret", res.User.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(res.User.PasswordHash), []byte("s3cret")))

	_, err = f.svc.Register(ctx, in)
	assert.ErrorIs(t, err, ErrNoPendingRequest)
	assert.Equal(t, 1, f.users.count())
}

func TestRegister_VerificationErrorsPropagate(t *testing.T) {
	ctx := context.Background()

	f := newAuthFixture(t, Options{})
	_, err := f.svc.Register(ctx, RegisterInput{Name: "A", Email: "a@b.co", Password: "pw", Code: "135790"})
	assert.ErrorIs(t, err, ErrNoPendingRequest)

	require.NoError(t, f.svc.RequestCode(ctx, "a@b.co"))
	_, err = f.svc.Register(ctx, RegisterInput{Name: "A", Email: "a@b.co", Password: "pw", Code: "000000"})
	assert.ErrorIs(t, err, ErrInvalidCode)
	assert.Equal(t, 0, f.users.count())
}

func TestRegister_InvalidInput(t *testing.T) {
	f := newAuthFixture(t, Options{})
	cases := []RegisterInput{
		{Email: "a@b.co", Password: "pw", Code: "1"},
		{Name: "A", Password: "pw", Code: "1"},
		{Name: "A", Email: "a@b.co", Code: "1"},
		{Name: "A", Email: "a@b.co", Password: "pw"},
		{Name: "A", Email: "a@b.co", Password: strings.Repeat("x", 73), Code: "1"},
	}
	for _, in := range cases {
		_, err := f.svc.Register(context.Background(), in)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}
}

func TestRegister_PostVerificationWriteFailure(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t, Options{})
	require.NoError(t, f.svc.RequestCode(ctx, "a@b.co"))
	f.users.createErr = errDB

	_, err := f.svc.Register(ctx, RegisterInput{Name: "A", Email: "a@b.co", Password: "pw", Code: "135790"})
	require.ErrorIs(t, err, ErrPostVerificationWriteFailed)
	assert.Equal(t, 0, f.pending.count(), "code is spent even though the account was not created")
}

func TestRegister_ConcurrentSignupConflict(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t, Options{})
	require.NoError(t, f.svc.RequestCode(ctx, "a@b.co"))
	f.users.byEmail["a@b.co"] = User{Email: "a@b.co"}

	_, err := f.svc.Register(ctx, RegisterInput{Name: "A", Email: "a@b.co", Password: "pw", Code: "135790"})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestRequestCode_ExistingAccountSendsNothing(t *testing.T) {
	f := newAuthFixture(t, Options{})
	f.register(t, "a@b.co", "pw")
	sent := f.notifier.count()

	err := f.svc.RequestCode(context.Background(), "A@b.co")
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
	assert.Equal(t, sent, f.notifier.count())
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t, Options{})
	reg := f.register(t, "a@b.co", "right")

	res, err := f.svc.Login(ctx, "A@B.co", "right")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, res.User.ID)
	assert.Equal(t, reg.User.ID.String(), res.Token)

	_, err = f.svc.Login(ctx, "a@b.co", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, "nobody@b.co", "right")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = f.svc.Login(ctx, "", "right")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestLogin_HideUnknownUsers(t *testing.T) {
	f := newAuthFixture(t, Options{HideUnknownUsers: true})
	f.register(t, "a@b.co", "right")

	_, err := f.svc.Login(context.Background(), "nobody@b.co", "right")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.NotErrorIs(t, err, ErrUserNotFound)
}

func TestLogin_StoreAndTokenFailures(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t, Options{})
	f.register(t, "a@b.co", "right")

	f.svc.tokens = subjectTokens{err: errors.New("sign failed")}
	_, err := f.svc.Login(ctx, "a@b.co", "right")
	assert.Error(t, err)

	f.users.getErr = errDB
	_, err = f.svc.Login(ctx, "a@b.co", "right")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestOutcomesRecorded(t *testing.T) {
	ctx := context.Background()
	rec := &fakeRecorder{}
	users, pending := newMemUsers(), newMemPending()
	verifier, err := newVerificationService(users, pending, &fakeNotifier{}, VerificationConfig{Recorder: rec}, nil)
	require.NoError(t, err)
	verifier.newCode = codeSequence("135790")
	svc, err := newAuthService(users, verifier, subjectTokens{}, Options{BcryptCost: bcrypt.MinCost, Recorder: rec}, nil)
	require.NoError(t, err)

	require.NoError(t, svc.RequestCode(ctx, "ann@example.com"))
	_, err = svc.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@example.com", Password: "secret", Code: "000000"})
	require.ErrorIs(t, err, ErrInvalidCode)
	_, err = svc.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@example.com", Password: "secret", Code: "135790"})
	require.NoError(t, err)
	_, err = svc.Login(ctx, "ann@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	assert.Equal(t, []string{
		"code_request:ok",
		"verification:invalid_code",
		"registration:invalid_code",
		"verification:ok",
		"registration:ok",
		"login:invalid_credentials",
	}, rec.events)
}

package auth

import (
	"context"
	"errors"
	"sync"
)

type memUsers struct {
	mu        sync.Mutex
	byEmail   map[string]User
	getErr    error
	createErr error
}

func newMemUsers(users ...User) *memUsers {
	m := &memUsers{byEmail: map[string]User{}}
	for _, u := range users {
		m.byEmail[u.Email] = u
	}
	return m
}

func (m *memUsers) Create(_ context.Context, user User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.byEmail[user.Email]; ok {
		return ErrUserAlreadyExists
	}
	m.byEmail[user.Email] = user
	return nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return User{}, m.getErr
	}
	u, ok := m.byEmail[email]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (m *memUsers) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byEmail)
}

type memPending struct {
	mu        sync.Mutex
	byEmail   map[string]PendingVerification
	upsertErr error
}

func newMemPending() *memPending {
	return &memPending{byEmail: map[string]PendingVerification{}}
}

func (m *memPending) Upsert(_ context.Context, p PendingVerification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.byEmail[p.Email] = p
	return nil
}

func (m *memPending) Get(_ context.Context, email string) (PendingVerification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byEmail[email]
	if !ok {
		return PendingVerification{}, ErrNotFound
	}
	return p, nil
}

func (m *memPending) Consume(_ context.Context, email, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byEmail[email]
	if !ok || p.Code != code {
		return false, nil
	}
	delete(m.byEmail, email)
	return true, nil
}

func (m *memPending) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byEmail)
}

type sentMail struct {
	to, subject, body string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeNotifier) Send(_ context.Context, to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return f.err
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// subjectTokens issues the user id as the token so tests can check the subject.
type subjectTokens struct{ err error }

func (t subjectTokens) Generate(_ context.Context, user User) (string, error) {
	if t.err != nil {
		return "", t.err
	}
	return user.ID.String(), nil
}

var errDB = errors.New("db down")

type fakeRecorder struct {
	mu     sync.Mutex
	events []string
}

func (r *fakeRecorder) add(op, result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, op+":"+result)
}

func (r *fakeRecorder) CodeRequest(result string)  { r.add("code_request", result) }
func (r *fakeRecorder) Verification(result string) { r.add("verification", result) }
func (r *fakeRecorder) Registration(result string) { r.add("registration", result) }
func (r *fakeRecorder) Login(result string)        { r.add("login", result) }

package mocks

import (
	"context"
	"sync"

	"github.com/mcoot/loginpage/internal/model"
)

// AuthResult is one scripted authenticator outcome
type AuthResult struct {
	OK    bool
	Err   error
	Panic any
}

// MockAuthenticator is a scriptable authenticator for testing.
// Queued results are consumed in order; once the queue is empty the
// mock accepts exactly the Reference credentials.
type MockAuthenticator struct {
	Reference model.Credentials

	mu      sync.Mutex
	results []AuthResult
	calls   []model.Credentials
	gate    chan struct{}
	entered chan struct{}
}

// NewMockAuthenticator creates a mock accepting testuser/password123
func NewMockAuthenticator() *MockAuthenticator {
	return &MockAuthenticator{
		Reference: model.Credentials{Username: "testuser", Password: "password123"},
		entered:   make(chan struct{}, 64),
	}
}

// Queue adds outcomes to return from subsequent calls
func (m *MockAuthenticator) Queue(results ...AuthResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, results...)
}

// Hold makes subsequent calls block until Release or context cancellation
func (m *MockAuthenticator) Hold() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gate = make(chan struct{})
}

// Release unblocks every held call
func (m *MockAuthenticator) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gate != nil {
		close(m.gate)
		m.gate = nil
	}
}

// Entered receives one value per call, as soon as the call starts
func (m *MockAuthenticator) Entered() <-chan struct{} {
	return m.entered
}

// Calls returns the credentials of every call so far
func (m *MockAuthenticator) Calls() []model.Credentials {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Credentials(nil), m.calls...)
}

// CallCount returns the number of calls so far
func (m *MockAuthenticator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Authenticate records the call and returns the next scripted outcome
func (m *MockAuthenticator) Authenticate(ctx context.Context, creds model.Credentials) (bool, error) {
	m.mu.Lock()
	m.calls = append(m.calls, creds)
	gate := m.gate
	var next *AuthResult
	if len(m.results) > 0 {
		next = &m.results[0]
		m.results = m.results[1:]
	}
	m.mu.Unlock()

	select {
	case m.entered <- struct{}{}:
	default:
	}

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}

	if next == nil {
		return creds == m.Reference, nil
	}
	if next.Panic != nil {
		panic(next.Panic)
	}
	return next.OK, next.Err
}

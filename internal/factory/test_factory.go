package factory

import (
	"time"

	"github.com/mcoot/loginpage/internal/dependencies/mocks"
	"github.com/mcoot/loginpage/internal/services/login"
	"github.com/mcoot/loginpage/internal/storage/memory"
	"github.com/mcoot/loginpage/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock         *mocks.MockClock
	MockRandom        *mocks.MockRandom
	MockAuthenticator *mocks.MockAuthenticator
	MemoryStorage     *memory.Storage
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// The mock authenticator accepts testuser/password123 unless scripted otherwise.
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	mockAuth := mocks.NewMockAuthenticator()

	app := newWithDependencies(store, mockClock, mockRandom, mockAuth, login.DefaultConfig(), "", testutil.NopLogger())

	return &TestApp{
		App:               app,
		MockClock:         mockClock,
		MockRandom:        mockRandom,
		MockAuthenticator: mockAuth,
		MemoryStorage:     store,
	}
}

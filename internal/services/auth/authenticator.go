package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/loginpage/internal/dependencies/clock"
	"github.com/mcoot/loginpage/internal/model"
)

// Authenticator decides whether a set of credentials is accepted.
// It returns true for an affirmative result, false with a nil error for an
// explicit rejection, and a non-nil error when the check itself failed.
type Authenticator interface {
	Authenticate(ctx context.Context, creds model.Credentials) (bool, error)
}

// AuthenticatorFunc adapts a function to the Authenticator interface
type AuthenticatorFunc func(ctx context.Context, creds model.Credentials) (bool, error)

// Authenticate calls f(ctx, creds)
func (f AuthenticatorFunc) Authenticate(ctx context.Context, creds model.Credentials) (bool, error) {
	return f(ctx, creds)
}

// Config holds configuration for the static authenticator
type Config struct {
	// Username and Password form the single accepted pair
	Username string
	Password string

	// Delay simulates the round-trip of a real authentication service
	Delay time.Duration

	// BcryptCost is the cost used to hash the reference password
	BcryptCost int
}

// DefaultConfig returns the stock reference pair and delay
func DefaultConfig() Config {
	return Config{
		Username:   "testuser",
		Password:   "password123",
		Delay:      1500 * time.Millisecond,
		BcryptCost: bcrypt.DefaultCost,
	}
}

// StaticAuthenticator accepts exactly one username/password pair after an
// artificial delay. It stands in for a real authentication service.
type StaticAuthenticator struct {
	clock        clock.Clock
	logger       *slog.Logger
	username     []byte
	passwordHash []byte
	delay        time.Duration
}

// Ensure StaticAuthenticator implements Authenticator
var _ Authenticator = (*StaticAuthenticator)(nil)

// NewStatic creates a StaticAuthenticator. Only a bcrypt hash of the
// reference password is retained.
func NewStatic(clk clock.Clock, cfg Config, logger *slog.Logger) (*StaticAuthenticator, error) {
	if cfg.Username == "" || cfg.Password == "" {
		return nil, errors.New("auth: reference username and password are required")
	}
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), cost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash reference password: %w", err)
	}

	return &StaticAuthenticator{
		clock:        clk,
		logger:       logger.With(slog.String("component", "authenticator")),
		username:     []byte(cfg.Username),
		passwordHash: hash,
		delay:        cfg.Delay,
	}, nil
}

// Authenticate waits for the configured delay, then compares creds with the
// reference pair
func (a *StaticAuthenticator) Authenticate(ctx context.Context, creds model.Credentials) (bool, error) {
	if a.delay > 0 {
		select {
		case <-a.clock.After(a.delay):
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}

	usernameOK := subtle.ConstantTimeCompare([]byte(creds.Username), a.username) == 1

	err := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(creds.Password))
	switch {
	case err == nil:
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword), errors.Is(err, bcrypt.ErrPasswordTooLong):
		a.logger.Debug("password mismatch", slog.String("username", creds.Username))
		return false, nil
	default:
		return false, fmt.Errorf("auth: compare password: %w", err)
	}

	return usernameOK, nil
}

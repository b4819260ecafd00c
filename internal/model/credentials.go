package model

import (
	"log/slog"
	"unicode/utf8"
)

// Credentials is a username/password pair submitted by the login form.
// It only lives for the duration of one submission attempt.
type Credentials struct {
	Username string
	Password string
}

// LogValue keeps the password out of structured logs
func (c Credentials) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("username", c.Username),
		slog.Int("password_length", utf8.RuneCountInString(c.Password)),
	)
}

package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// FormTTL bounds how long an untouched form instance is kept
	FormTTL time.Duration

	// SubmissionTTL expires an in-flight flag left behind by a crashed
	// process. It must outlast the longest authenticator call.
	SubmissionTTL time.Duration
}

// SubmissionMargin is added to the submit timeout to get the flag TTL
const SubmissionMargin = 30 * time.Second

// SubmissionTTLFor derives the in-flight flag TTL for a submit timeout
func SubmissionTTLFor(submitTimeout time.Duration) time.Duration {
	return submitTimeout + SubmissionMargin
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:           "redis://localhost:6379",
		PoolSize:      10,
		MinIdleConns:  2,
		FormTTL:       time.Hour,
		SubmissionTTL: SubmissionTTLFor(10 * time.Second),
	}
}

package redis

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/loginpage/internal/model"
	"github.com/mcoot/loginpage/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Form operations

func (s *Storage) SaveForm(ctx context.Context, form *model.Form) error {
	data, err := json.Marshal(form)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, formKey(form.ID), data, s.cfg.FormTTL).Err()
}

func (s *Storage) GetForm(ctx context.Context, id model.FormID) (*model.Form, error) {
	data, err := s.client.Get(ctx, formKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrFormNotFound
		}
		return nil, err
	}

	var form model.Form
	if err := json.Unmarshal(data, &form); err != nil {
		return nil, err
	}
	return &form, nil
}

func (s *Storage) DeleteForm(ctx context.Context, id model.FormID) error {
	return s.client.Del(ctx, formKey(id), submittingKey(id)).Err()
}

// Submission flag operations

// releaseScript deletes the flag only while it still holds the caller's token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (s *Storage) AcquireSubmission(ctx context.Context, id model.FormID) (string, bool, error) {
	token := rand.Text()
	ok, err := s.client.SetNX(ctx, submittingKey(id), token, s.cfg.SubmissionTTL).Result()
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

func (s *Storage) ReleaseSubmission(ctx context.Context, id model.FormID, token string) error {
	return releaseScript.Run(ctx, s.client, []string{submittingKey(id)}, token).Err()
}

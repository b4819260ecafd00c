package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/mcoot/loginpage/internal/model"
	"github.com/mcoot/loginpage/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	forms      map[model.FormID]*model.Form
	submitting map[model.FormID]string
	tokens     uint64
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		forms:      make(map[model.FormID]*model.Form),
		submitting: make(map[model.FormID]string),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Form operations

func (s *Storage) SaveForm(ctx context.Context, form *model.Form) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forms[form.ID] = form.Clone()
	return nil
}

func (s *Storage) GetForm(ctx context.Context, id model.FormID) (*model.Form, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	form, ok := s.forms[id]
	if !ok {
		return nil, model.ErrFormNotFound
	}
	return form.Clone(), nil
}

func (s *Storage) DeleteForm(ctx context.Context, id model.FormID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.forms, id)
	delete(s.submitting, id)
	return nil
}

// Submission flag operations

func (s *Storage) AcquireSubmission(ctx context.Context, id model.FormID) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, held := s.submitting[id]; held {
		return "", false, nil
	}
	s.tokens++
	token := strconv.FormatUint(s.tokens, 10)
	s.submitting[id] = token
	return token, true, nil
}

func (s *Storage) ReleaseSubmission(ctx context.Context, id model.FormID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitting[id] == token {
		delete(s.submitting, id)
	}
	return nil
}

// PurgeStale drops forms last updated before cutoff, skipping any with a
// submission in flight. It returns how many were removed.
func (s *Storage) PurgeStale(ctx context.Context, cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, form := range s.forms {
		if _, held := s.submitting[id]; held {
			continue
		}
		if form.UpdatedAt.Before(cutoff) {
			delete(s.forms, id)
			removed++
		}
	}
	return removed
}

package storage

import (
	"context"

	"github.com/mcoot/loginpage/internal/model"
)

// Storage defines the interface for login form state
type Storage interface {
	// Form operations
	SaveForm(ctx context.Context, form *model.Form) error
	GetForm(ctx context.Context, id model.FormID) (*model.Form, error)
	DeleteForm(ctx context.Context, id model.FormID) error

	// AcquireSubmission sets the form's in-flight flag and returns the
	// token that owns it. It returns false, without error, if the flag is
	// already set.
	AcquireSubmission(ctx context.Context, id model.FormID) (token string, acquired bool, err error)

	// ReleaseSubmission clears the in-flight flag if token still owns it;
	// a no-op otherwise
	ReleaseSubmission(ctx context.Context, id model.FormID, token string) error
}

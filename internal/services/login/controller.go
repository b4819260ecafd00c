// Package login implements the login form's validation and submission
// state machine: Idle -> Submitting -> {Succeeded, Failed} -> Idle.
package login

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mcoot/loginpage/internal/dependencies/clock"
	"github.com/mcoot/loginpage/internal/dependencies/random"
	"github.com/mcoot/loginpage/internal/model"
	"github.com/mcoot/loginpage/internal/services/auth"
	"github.com/mcoot/loginpage/internal/services/validation"
	"github.com/mcoot/loginpage/internal/storage"
)

// SuccessFunc receives the validated credentials once the authenticator
// affirms them
type SuccessFunc func(ctx context.Context, creds model.Credentials)

// Notifier is told about every state change of a form
type Notifier interface {
	FormChanged(ctx context.Context, form *model.Form)
}

type nopNotifier struct{}

func (nopNotifier) FormChanged(context.Context, *model.Form) {}

// Config holds configuration for the login controller
type Config struct {
	// SubmitTimeout bounds a single authenticator call; zero disables it
	SubmitTimeout time.Duration

	// IDLength is the length of generated form IDs
	IDLength int
}

// DefaultConfig returns default controller configuration
func DefaultConfig() Config {
	return Config{
		SubmitTimeout: 10 * time.Second,
		IDLength:      16,
	}
}

// Controller owns the lifecycle of login form instances
type Controller struct {
	storage  storage.Storage
	authn    auth.Authenticator
	notifier Notifier
	clock    clock.Clock
	random   random.Random
	cfg      Config
	logger   *slog.Logger
}

// NewController creates a new login Controller. A nil notifier is allowed.
func NewController(
	storage storage.Storage,
	authn auth.Authenticator,
	notifier Notifier,
	clock clock.Clock,
	random random.Random,
	cfg Config,
	logger *slog.Logger,
) *Controller {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if cfg.IDLength == 0 {
		cfg.IDLength = DefaultConfig().IDLength
	}
	return &Controller{
		storage:  storage,
		authn:    authn,
		notifier: notifier,
		clock:    clock,
		random:   random,
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "login")),
	}
}

// Config returns the controller's effective configuration
func (c *Controller) Config() Config {
	return c.cfg
}

// NewForm creates a fresh Idle form instance
func (c *Controller) NewForm(ctx context.Context) (*model.Form, error) {
	now := c.clock.Now()
	form := &model.Form{
		ID:        model.FormID(c.random.String(c.cfg.IDLength, random.IDAlphabet)),
		State:     model.StateIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := c.storage.SaveForm(ctx, form); err != nil {
		return nil, fmt.Errorf("save form: %w", err)
	}

	c.logger.Debug("login form created", slog.String("form_id", string(form.ID)))
	return form, nil
}

// GetForm returns the current state of a form
func (c *Controller) GetForm(ctx context.Context, id model.FormID) (*model.Form, error) {
	return c.storage.GetForm(ctx, id)
}

// Submit runs one submission attempt for the form.
//
// Invalid input returns a *model.ValidationError without contacting the
// authenticator. A submission that overlaps one already in flight returns
// model.ErrSubmissionInProgress and changes nothing. A rejected or failed
// authentication returns the form in StateFailed together with
// model.ErrInvalidCredentials, model.ErrAuthTimeout or model.ErrUnexpected.
// onSuccess may be nil.
func (c *Controller) Submit(ctx context.Context, id model.FormID, creds model.Credentials, onSuccess SuccessFunc) (*model.Form, error) {
	logger := c.logger.With(slog.String("form_id", string(id)))

	token, acquired, err := c.storage.AcquireSubmission(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("acquire submission: %w", err)
	}
	if !acquired {
		logger.Info("login submission ignored, already in progress")
		form, err := c.storage.GetForm(ctx, id)
		if err != nil {
			return nil, err
		}
		return form, model.ErrSubmissionInProgress
	}
	defer c.release(ctx, id, token, logger)

	form, err := c.storage.GetForm(ctx, id)
	if err != nil {
		return nil, err
	}
	if form.IsComplete() {
		return form, model.ErrFormCompleted
	}

	logger.Info("login form submitted", slog.Any("credentials", creds))

	if verr := validation.Validate(creds).Err(); verr != nil {
		return c.rejectInvalid(ctx, form, creds, verr, logger)
	}

	form.State = model.StateSubmitting
	form.Username = creds.Username
	form.ClearErrors()
	form.Attempts++
	if err := c.save(ctx, form); err != nil {
		return nil, err
	}

	ok, authErr := c.authenticate(ctx, creds)

	// The outcome is recorded even if the caller has gone away
	ctx = context.WithoutCancel(ctx)

	var outcome error
	switch {
	case authErr == nil && ok:
		form.State = model.StateSucceeded
	case authErr == nil:
		outcome = model.ErrInvalidCredentials
		c.fail(form, model.KindInvalidCredentials, model.MessageInvalidCredentials)
		logger.Warn("login failed: invalid credentials", slog.String("username", creds.Username))
	case errors.Is(authErr, model.ErrAuthTimeout):
		outcome = authErr
		c.fail(form, model.KindTimeout, model.MessageTimeout)
		logger.Error("login failed: authentication timed out", slog.Duration("timeout", c.cfg.SubmitTimeout))
	default:
		outcome = fmt.Errorf("%w: %w", model.ErrUnexpected, authErr)
		c.fail(form, model.KindUnexpected, model.MessageUnexpected)
		logger.Error("login error", slog.String("error", authErr.Error()))
	}

	if err := c.save(ctx, form); err != nil {
		return nil, err
	}

	if outcome != nil {
		return form, outcome
	}

	logger.Info("login successful", slog.String("username", creds.Username), slog.Int("attempt", form.Attempts))
	if onSuccess != nil {
		onSuccess(ctx, creds)
	}
	return form, nil
}

// Reset returns a form to Idle, clearing its errors and terminal state
func (c *Controller) Reset(ctx context.Context, id model.FormID) (*model.Form, error) {
	logger := c.logger.With(slog.String("form_id", string(id)))

	token, acquired, err := c.storage.AcquireSubmission(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("acquire submission: %w", err)
	}
	if !acquired {
		return nil, model.ErrSubmissionInProgress
	}
	defer c.release(ctx, id, token, logger)

	form, err := c.storage.GetForm(ctx, id)
	if err != nil {
		return nil, err
	}

	form.State = model.StateIdle
	form.Username = ""
	form.ClearErrors()
	if err := c.save(ctx, form); err != nil {
		return nil, err
	}

	logger.Info("login form reset")
	return form, nil
}

// Discard removes a form instance. A form with a submission in flight is
// left alone and model.ErrSubmissionInProgress returned.
func (c *Controller) Discard(ctx context.Context, id model.FormID) error {
	logger := c.logger.With(slog.String("form_id", string(id)))

	token, acquired, err := c.storage.AcquireSubmission(ctx, id)
	if err != nil {
		return fmt.Errorf("acquire submission: %w", err)
	}
	if !acquired {
		return model.ErrSubmissionInProgress
	}
	defer c.release(ctx, id, token, logger)

	if _, err := c.storage.GetForm(ctx, id); err != nil {
		return err
	}
	if err := c.storage.DeleteForm(ctx, id); err != nil {
		return fmt.Errorf("delete form: %w", err)
	}

	logger.Info("login form discarded")
	return nil
}

func (c *Controller) rejectInvalid(ctx context.Context, form *model.Form, creds model.Credentials, verr error, logger *slog.Logger) (*model.Form, error) {
	var ve *model.ValidationError
	if !errors.As(verr, &ve) {
		return nil, verr
	}

	form.State = model.StateIdle
	form.Username = creds.Username
	form.ServerError = nil
	form.FieldErrors = ve.Messages()
	if err := c.save(ctx, form); err != nil {
		return nil, err
	}

	logger.Info("login submission blocked by validation", slog.String("error", ve.Error()))
	return form, ve
}

func (c *Controller) fail(form *model.Form, kind model.ErrorKind, message string) {
	form.State = model.StateFailed
	form.ServerError = &model.ServerError{Kind: kind, Message: message}
}

type authResult struct {
	ok  bool
	err error
}

// authenticate calls the authenticator under the submit timeout. A panic in
// the authenticator is reported as an error.
func (c *Controller) authenticate(ctx context.Context, creds model.Credentials) (bool, error) {
	if c.cfg.SubmitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.SubmitTimeout)
		defer cancel()
	}

	done := make(chan authResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- authResult{err: fmt.Errorf("authenticator panic: %v", r)}
			}
		}()
		ok, err := c.authn.Authenticate(ctx, creds)
		done <- authResult{ok: ok, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return false, fmt.Errorf("%w: %w", model.ErrAuthTimeout, res.err)
		}
		return res.ok, res.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return false, model.ErrAuthTimeout
		}
		return false, ctx.Err()
	}
}

func (c *Controller) save(ctx context.Context, form *model.Form) error {
	form.UpdatedAt = c.clock.Now()
	if err := c.storage.SaveForm(ctx, form); err != nil {
		return fmt.Errorf("save form: %w", err)
	}
	c.notifier.FormChanged(ctx, form.Clone())
	return nil
}

func (c *Controller) release(ctx context.Context, id model.FormID, token string, logger *slog.Logger) {
	if err := c.storage.ReleaseSubmission(context.WithoutCancel(ctx), id, token); err != nil {
		logger.Error("failed to release submission flag", slog.String("error", err.Error()))
	}
}

package sse

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/mcoot/loginpage/internal/model"
	"github.com/mcoot/loginpage/internal/web/templates/components"
)

// Broadcaster pushes re-rendered login forms to everyone watching them.
// It satisfies login.Notifier.
type Broadcaster struct {
	hubManager *HubManager
	formClass  string
	logger     *slog.Logger
}

// NewBroadcaster creates a new Broadcaster. formClass is the class hint used
// when rendering the form.
func NewBroadcaster(hubManager *HubManager, formClass string, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		formClass:  formClass,
		logger:     logger.With(slog.String("component", "sse-broadcaster")),
	}
}

// FormChanged broadcasts the form's current rendering as a form-state event
func (b *Broadcaster) FormChanged(ctx context.Context, form *model.Form) {
	hub := b.hubManager.GetHub(form.ID)
	if hub == nil {
		return
	}

	html, err := b.Render(ctx, form)
	if err != nil {
		b.logger.Error("sse failed to render login form",
			slog.String("form_id", string(form.ID)),
			slog.Any("error", err))
		return
	}
	hub.BroadcastEvent(components.FormStateEvent, html)
}

// Render renders the form fragment sent in form-state events
func (b *Broadcaster) Render(ctx context.Context, form *model.Form) (string, error) {
	var buf bytes.Buffer
	err := components.LoginForm(components.LoginFormProps{Form: form, Class: b.formClass}).Render(ctx, &buf)
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

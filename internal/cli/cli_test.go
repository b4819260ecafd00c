package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/loginpage/internal/api"
	"github.com/mcoot/loginpage/internal/factory"
	"github.com/mcoot/loginpage/internal/model"
	"github.com/mcoot/loginpage/internal/testutil"
	"github.com/mcoot/loginpage/internal/web"
)

func startServer(t *testing.T) (*httptest.Server, *factory.TestApp) {
	t.Helper()

	app := factory.NewTestApp()
	logger := testutil.NopLogger()

	mux := http.NewServeMux()
	mux.Handle("/api/", api.NewRouter(api.RouterConfig{
		Logger:     logger,
		Controller: app.LoginController,
		Random:     app.Random,
	}))
	mux.Handle("/", web.NewRouter(web.RouterConfig{
		Logger:      logger,
		Controller:  app.LoginController,
		HubManager:  app.HubManager,
		Broadcaster: app.Broadcaster,
		Random:      app.Random,
	}))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		_ = app.Close()
		server.Close()
	})
	return server, app
}

func runCLI(t *testing.T, serverURL string, args ...string) (string, error) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var buf bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(append([]string{"--server", serverURL}, args...))

	err := cmd.ExecuteContext(ctx)
	return buf.String(), err
}

func TestHealth(t *testing.T) {
	server, _ := startServer(t)

	out, err := runCLI(t, server.URL, "--output", "text", "health")

	require.NoError(t, err)
	assert.Contains(t, out, "Status: ok")
}

func TestFormCreateAndGet(t *testing.T) {
	server, _ := startServer(t)

	out, err := runCLI(t, server.URL, "--output", "json", "form", "create")
	require.NoError(t, err)

	var created Form
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "idle", created.State)

	out, err = runCLI(t, server.URL, "--output", "text", "form", "get", created.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Form: "+created.ID)
	assert.Contains(t, out, "State: idle")
	assert.Contains(t, out, "Attempts: 0")
}

func TestFormGetUnknown(t *testing.T) {
	server, _ := startServer(t)

	_, err := runCLI(t, server.URL, "form", "get", "missing")

	require.Error(t, err)
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusNotFound, reqErr.StatusCode)
	assert.Equal(t, "FORM_NOT_FOUND", reqErr.API.Code)
}

func TestLoginSuccess(t *testing.T) {
	server, _ := startServer(t)

	out, err := runCLI(t, server.URL, "--output", "text", "login", "--user", "testuser", "--pass", "password123")

	require.NoError(t, err)
	assert.Contains(t, out, "State: succeeded")
	assert.Contains(t, out, "Username: testuser")
	assert.Contains(t, out, "Attempts: 1")
}

func TestLoginWrongPasswordPrintsForm(t *testing.T) {
	server, _ := startServer(t)

	out, err := runCLI(t, server.URL, "--output", "text", "login", "-u", "testuser", "-p", "wrongpass")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_CREDENTIALS")
	assert.Contains(t, out, "State: failed")
	assert.Contains(t, out, "Error: Invalid username or password.")
}

func TestLoginValidationErrors(t *testing.T) {
	server, app := startServer(t)

	out, err := runCLI(t, server.URL, "--output", "text", "login", "--pass", "short")

	require.Error(t, err)
	assert.Contains(t, out, "State: idle")
	assert.Contains(t, out, "  - password: Password must be at least 8 characters.")
	assert.Contains(t, out, "  - username: Username is required.")
	assert.Zero(t, app.MockAuthenticator.CallCount())
}

func TestLoginExistingFormThenReset(t *testing.T) {
	server, app := startServer(t)
	form, err := app.LoginController.NewForm(context.Background())
	require.NoError(t, err)
	id := string(form.ID)

	_, err = runCLI(t, server.URL, "login", "--form", id, "--user", "testuser", "--pass", "password123")
	require.NoError(t, err)

	_, err = runCLI(t, server.URL, "login", "--form", id, "--user", "testuser", "--pass", "password123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FORM_COMPLETED")

	out, err := runCLI(t, server.URL, "--output", "json", "form", "reset", id)
	require.NoError(t, err)
	var reset Form
	require.NoError(t, json.Unmarshal([]byte(out), &reset))
	assert.Equal(t, "idle", reset.State)
	assert.Equal(t, 1, reset.Attempts)
}

func TestFormDelete(t *testing.T) {
	server, app := startServer(t)
	form, err := app.LoginController.NewForm(context.Background())
	require.NoError(t, err)
	id := string(form.ID)

	out, err := runCLI(t, server.URL, "--output", "text", "form", "delete", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Form "+id+" discarded")

	_, err = runCLI(t, server.URL, "form", "get", id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FORM_NOT_FOUND")
}

func TestEventsStreamsFormStates(t *testing.T) {
	server, app := startServer(t)
	form, err := app.LoginController.NewForm(context.Background())
	require.NoError(t, err)
	id := string(form.ID)

	type result struct {
		out string
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := runCLI(t, server.URL, "events", id, "--count", "3")
		done <- result{out, err}
	}()

	require.Eventually(t, func() bool {
		hub := app.HubManager.GetHub(model.FormID(id))
		return hub != nil && hub.ClientCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	body := strings.NewReader(`{"username":"testuser","password":"wrongpass"}`)
	resp, err := http.Post(server.URL+"/api/v1/forms/"+id+"/submit", "application/json", body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	select {
	case res := <-done:
		require.NoError(t, res.err)
		assert.Contains(t, res.out, "Connected to form "+id)
		assert.Contains(t, res.out, "form-state: idle")
		assert.Contains(t, res.out, "form-state: submitting")
		assert.Contains(t, res.out, "form-state: failed - Invalid username or password.")
	case <-time.After(5 * time.Second):
		t.Fatal("events command did not finish")
	}
}

func TestEventsUnknownForm(t *testing.T) {
	server, _ := startServer(t)

	_, err := runCLI(t, server.URL, "events", "missing")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

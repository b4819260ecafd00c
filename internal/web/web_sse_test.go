package web_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/loginpage/internal/model"
)

// TestSSE_EndpointHeaders verifies the SSE endpoint returns correct headers
// and starts with the form's current rendering
func TestSSE_EndpointHeaders(t *testing.T) {
	ts := newWebTestServer(t)
	action := ts.openForm()

	req := httptest.NewRequest(http.MethodGet, action+"/events", nil)

	// SSE is long-running, so bound it
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	req = req.WithContext(ctx)

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	assert.Equal(t, "text/event-stream", rr.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rr.Header().Get("Cache-Control"))
	assert.Equal(t, "no", rr.Header().Get("X-Accel-Buffering"))

	body := rr.Body.String()
	assert.Contains(t, body, "event: connected\n")
	assert.Contains(t, body, "event: form-state\n")
	assert.Contains(t, body, `data-state="idle"`)
}

func TestSSE_UnknownForm(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.get("/login/doesnotexist/events")

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

// TestSSE_SubmissionIsStreamed checks a watcher sees the transitions of a
// submission made through the web form
func TestSSE_SubmissionIsStreamed(t *testing.T) {
	ts := newWebTestServer(t)
	action := ts.openForm()
	id := model.FormID(strings.TrimPrefix(action, "/login/"))

	srv := httptest.NewServer(ts.handler)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+action+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Eventually(t, func() bool {
		hub := ts.app.HubManager.GetHub(id)
		return hub != nil && hub.ClientCount() == 1
	}, time.Second, 5*time.Millisecond)

	_, doc := ts.login(action, "testuser", "wrongpass")
	require.Equal(t, "failed", formState(doc))

	var got strings.Builder
	buf := make([]byte, 4096)
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && !strings.Contains(got.String(), `data-state="failed"`) {
		n, err := resp.Body.Read(buf)
		got.Write(buf[:n])
		if err != nil {
			break
		}
	}

	stream := got.String()
	assert.Contains(t, stream, `data-state="submitting"`)
	assert.Contains(t, stream, `data-state="failed"`)
	assert.Contains(t, stream, "Invalid username or password.")
}

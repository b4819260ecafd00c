package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/loginpage/internal/dependencies/mocks"
	"github.com/mcoot/loginpage/internal/testutil"
)

func logLines(t *testing.T, buf *testutil.LogBuffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
}

func TestLogging(t *testing.T) {
	tests := []struct {
		name   string
		status int
		level  string
	}{
		{"ok", http.StatusOK, "INFO"},
		{"client error", http.StatusConflict, "WARN"},
		{"server error", http.StatusBadGateway, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := testutil.CaptureLogger()
			h := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("hello"))
			}))

			req := httptest.NewRequest(http.MethodPost, "/login/abc", nil)
			req.Header.Set("HX-Request", "true")
			h.ServeHTTP(httptest.NewRecorder(), req)

			entries := logLines(t, buf)
			require.Len(t, entries, 1)
			assert.Equal(t, tt.level, entries[0]["level"])
			assert.Equal(t, "http request", entries[0]["msg"])
			assert.Equal(t, "/login/abc", entries[0]["path"])
			assert.Equal(t, float64(tt.status), entries[0]["status"])
			assert.Equal(t, float64(5), entries[0]["size"])
			assert.Equal(t, true, entries[0]["htmx"])
		})
	}
}

func TestRequestID(t *testing.T) {
	logger, buf := testutil.CaptureLogger()
	rnd := mocks.NewMockRandom()
	rnd.QueueString("req123")

	h := RequestID(rnd, logger)(Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Logger(r.Context(), nil).Info("inside")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "req123", rec.Header().Get(RequestIDHeader))
	for _, entry := range logLines(t, buf) {
		assert.Equal(t, "req123", entry["request_id"])
	}
}

func TestRequestIDKeepsIncoming(t *testing.T) {
	logger, _ := testutil.CaptureLogger()
	h := RequestID(mocks.NewMockRandom(), logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "upstream")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "upstream", rec.Header().Get(RequestIDHeader))
}

func TestLoggerFallback(t *testing.T) {
	fallback := testutil.NopLogger()
	assert.Same(t, fallback, Logger(httptest.NewRequest(http.MethodGet, "/", nil).Context(), fallback))
}

func TestRecovery(t *testing.T) {
	logger, buf := testutil.CaptureLogger()
	h := Recovery(logger, DefaultPanicHandler)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(fmt.Errorf("boom"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), "panic recovered")
	assert.Contains(t, buf.String(), "boom")
}

func TestRecoveryReraisesAbort(t *testing.T) {
	h := Recovery(testutil.NopLogger(), DefaultPanicHandler)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

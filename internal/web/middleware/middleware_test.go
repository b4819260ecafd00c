package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/loginpage/internal/testutil"
)

func TestFlashRoundTrip(t *testing.T) {
	set := httptest.NewRecorder()
	SetFlash(set, FlashError, "Sign up is not available yet.")
	cookies := set.Result().Cookies()
	require.Len(t, cookies, 1)

	var got *string
	var gotType string
	h := Flash()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		if f := GetFlash(r.Context()); f != nil {
			got = &f.Message
			gotType = f.Type
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.NotNil(t, got)
	assert.Equal(t, "Sign up is not available yet.", *got)
	assert.Equal(t, FlashError, gotType)

	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, "", cleared[0].Value)
	assert.Less(t, cleared[0].MaxAge, 0)
}

func TestFlashAbsent(t *testing.T) {
	called := false
	h := Flash()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		called = true
		assert.Nil(t, GetFlash(r.Context()))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.True(t, called)
	assert.Empty(t, rec.Result().Cookies())
}

func TestParseFlash(t *testing.T) {
	tests := []struct {
		value   string
		kind    string
		message string
	}{
		{"info:hello", "info", "hello"},
		{"error:a:b", "error", "a:b"},
		{"plain", "info", "plain"},
		{"error%3AForm+expired", "error", "Form expired"},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			f := parseFlash(tt.value)
			assert.Equal(t, tt.kind, f.Type)
			assert.Equal(t, tt.message, f.Message)
		})
	}
}

func TestRecoveryRendersErrorPage(t *testing.T) {
	h := Recovery(testutil.NopLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "<title>Internal Server Error | Login</title>")
	assert.Contains(t, rec.Body.String(), "Something went wrong")
}

func TestRecoveryHTMXFragment(t *testing.T) {
	h := Recovery(testutil.NopLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodPost, "/login/x", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<html")
	assert.Contains(t, rec.Body.String(), `role="alert"`)
}

package web_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/loginpage/internal/factory"
	"github.com/mcoot/loginpage/internal/model"
	"github.com/mcoot/loginpage/internal/testutil"
	"github.com/mcoot/loginpage/internal/web"
)

// webTestServer provides a test server for web interface testing
type webTestServer struct {
	t       *testing.T
	handler http.Handler
	app     *factory.TestApp
	cookies *cookieJar

	mu        sync.Mutex
	successes []model.Credentials
}

// newWebTestServer creates a new test server with all dependencies wired
func newWebTestServer(t *testing.T) *webTestServer {
	return newWebTestServerWithClass(t, "")
}

func newWebTestServerWithClass(t *testing.T, formClass string) *webTestServer {
	t.Helper()

	app := factory.NewTestApp()
	t.Cleanup(func() { _ = app.Close() })

	ts := &webTestServer{
		t:       t,
		app:     app,
		cookies: newCookieJar(),
	}

	ts.handler = web.NewRouter(web.RouterConfig{
		Logger:      testutil.NopLogger(),
		Controller:  app.LoginController,
		HubManager:  app.HubManager,
		Broadcaster: app.Broadcaster,
		Random:      app.Random,
		FormClass:   formClass,
		OnSuccess:   ts.recordSuccess,
		StaticDir:   "", // No static files in tests
	})

	return ts
}

func (ts *webTestServer) recordSuccess(_ context.Context, creds model.Credentials) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.successes = append(ts.successes, creds)
}

func (ts *webTestServer) successCalls() []model.Credentials {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return append([]model.Credentials(nil), ts.successes...)
}

// request makes an HTTP request and returns the response
func (ts *webTestServer) request(method, path string, form url.Values, htmx bool) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if htmx {
		req.Header.Set("HX-Request", "true")
	}

	ts.cookies.addTo(req)

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	ts.cookies.extract(rr)

	return rr
}

// get makes a GET request
func (ts *webTestServer) get(path string) *httptest.ResponseRecorder {
	return ts.request(http.MethodGet, path, nil, false)
}

// post makes a POST request with form data (non-HTMX)
func (ts *webTestServer) post(path string, form url.Values) *httptest.ResponseRecorder {
	return ts.request(http.MethodPost, path, form, false)
}

// postHTMX makes a POST request with form data as an HTMX request
func (ts *webTestServer) postHTMX(path string, form url.Values) *httptest.ResponseRecorder {
	return ts.request(http.MethodPost, path, form, true)
}

// openForm loads the login page and returns the path the form posts to
func (ts *webTestServer) openForm() string {
	ts.t.Helper()
	rr := ts.get("/")
	require.Equal(ts.t, http.StatusOK, rr.Code)

	action, ok := parseHTML(rr.Body).Find("#login-form form").Attr("action")
	require.True(ts.t, ok, "Expected the login form to have an action")
	require.True(ts.t, strings.HasPrefix(action, "/login/"), "unexpected action %q", action)
	return action
}

// login posts credentials to the form as htmx does and parses the fragment
func (ts *webTestServer) login(action, username, password string) (*httptest.ResponseRecorder, *goquery.Document) {
	ts.t.Helper()
	rr := ts.postHTMX(action, credentials(username, password))
	return rr, parseHTML(strings.NewReader(rr.Body.String()))
}

func credentials(username, password string) url.Values {
	return url.Values{"username": {username}, "password": {password}}
}

// followRedirect follows a redirect and returns the response
// Works with both traditional Location headers and HTMX HX-Redirect headers
func (ts *webTestServer) followRedirect(rr *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	ts.t.Helper()
	location := rr.Header().Get("HX-Redirect")
	if location == "" {
		location = rr.Header().Get("Location")
	}
	require.NotEmpty(ts.t, location, "Expected Location or HX-Redirect header for redirect")
	return ts.get(location)
}

// parseHTML parses the response body as HTML
func parseHTML(r io.Reader) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		panic(err)
	}
	return doc
}

// cookieJar maintains cookies across requests (like a browser would)
type cookieJar struct {
	mu      sync.Mutex
	cookies map[string]*http.Cookie
}

func newCookieJar() *cookieJar {
	return &cookieJar{
		cookies: make(map[string]*http.Cookie),
	}
}

// addTo adds all cookies to the request
func (j *cookieJar) addTo(req *http.Request) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, cookie := range j.cookies {
		req.AddCookie(cookie)
	}
}

// extract extracts Set-Cookie headers from response
func (j *cookieJar) extract(rr *httptest.ResponseRecorder) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, cookie := range rr.Result().Cookies() {
		if cookie.MaxAge < 0 {
			delete(j.cookies, cookie.Name)
		} else {
			j.cookies[cookie.Name] = cookie
		}
	}
}

// Assertion helpers

// assertContainsElement asserts that the document contains an element matching the selector
func assertContainsElement(t *testing.T, doc *goquery.Document, selector string) {
	t.Helper()
	if doc.Find(selector).Length() == 0 {
		t.Errorf("Expected to find element matching %q, but none found", selector)
	}
}

// assertNotContainsElement asserts that the document does not contain an element matching the selector
func assertNotContainsElement(t *testing.T, doc *goquery.Document, selector string) {
	t.Helper()
	if doc.Find(selector).Length() > 0 {
		t.Errorf("Expected NOT to find element matching %q, but found %d", selector, doc.Find(selector).Length())
	}
}

// assertContainsText asserts that the element matching the selector contains the text
func assertContainsText(t *testing.T, doc *goquery.Document, selector, text string) {
	t.Helper()
	el := doc.Find(selector)
	if el.Length() == 0 {
		t.Errorf("Expected to find element matching %q, but none found", selector)
		return
	}
	if !strings.Contains(el.Text(), text) {
		t.Errorf("Expected element %q to contain %q, but got %q", selector, text, el.Text())
	}
}

// formState returns the data-state of the rendered login card
func formState(doc *goquery.Document) string {
	state, _ := doc.Find("#login-form").Attr("data-state")
	return state
}

package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/loginpage/internal/api"
	"github.com/mcoot/loginpage/internal/cli"
	"github.com/mcoot/loginpage/internal/factory"
	"github.com/mcoot/loginpage/internal/model"
	"github.com/mcoot/loginpage/internal/services/auth"
	redisstorage "github.com/mcoot/loginpage/internal/storage/redis"
	"github.com/mcoot/loginpage/internal/testutil"
	"github.com/mcoot/loginpage/internal/web"
	webhandler "github.com/mcoot/loginpage/internal/web/handler"
)

// testServer runs the full application on a real listener
type testServer struct {
	app    *factory.App
	server *api.Server
	url    string
	errCh  chan error
}

func startTestServer(t *testing.T, cfg factory.Config) *testServer {
	t.Helper()

	logger := testutil.NopLogger()
	cfg.Logger = logger
	cfg.AuthConfig = auth.DefaultConfig()
	cfg.AuthConfig.Delay = 50 * time.Millisecond
	cfg.AuthConfig.BcryptCost = 4

	app, err := factory.New(cfg)
	if err != nil {
		t.Fatalf("create app: %v", err)
	}

	onSuccess := webhandler.LogSuccess(logger)
	mux := http.NewServeMux()
	mux.Handle("/api/", api.NewRouter(api.RouterConfig{
		Logger:     logger,
		Controller: app.LoginController,
		Random:     app.Random,
		OnSuccess:  onSuccess,
	}))
	mux.Handle("/", web.NewRouter(web.RouterConfig{
		Logger:      logger,
		Controller:  app.LoginController,
		HubManager:  app.HubManager,
		Broadcaster: app.Broadcaster,
		Random:      app.Random,
		OnSuccess:   onSuccess,
	}))

	serverCfg := api.DefaultServerConfig()
	serverCfg.Host = "127.0.0.1"
	serverCfg.Port = 0
	serverCfg.ShutdownTimeout = 2 * time.Second
	server := api.NewServer(mux, serverCfg, logger)
	server.OnShutdown(app.HubManager.Close)
	if err := server.Listen(); err != nil {
		t.Fatalf("listen: %v", err)
	}

	ts := &testServer{
		app:    app,
		server: server,
		url:    "http://" + server.Addr(),
		errCh:  make(chan error, 1),
	}
	go func() { ts.errCh <- server.Start() }()

	t.Cleanup(func() {
		_ = server.Shutdown(context.Background())
		<-ts.errCh
		_ = app.Close()
	})
	return ts
}

// E2ESuite drives the CLI and a browser-style client against a real server
type E2ESuite struct {
	suite.Suite
	storageType string
	srv         *testServer
}

func (s *E2ESuite) SetupTest() {
	cfg := factory.Config{StorageType: s.storageType}
	if s.storageType == factory.StorageTypeRedis {
		mr := miniredis.RunT(s.T())
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = "redis://" + mr.Addr()
		cfg.RedisConfig = &redisCfg
	}
	s.srv = startTestServer(s.T(), cfg)
}

func TestE2EMemory(t *testing.T) {
	suite.Run(t, &E2ESuite{storageType: factory.StorageTypeMemory})
}

func TestE2ERedis(t *testing.T) {
	suite.Run(t, &E2ESuite{storageType: factory.StorageTypeRedis})
}

// run executes the CLI in-process with JSON output
func (s *E2ESuite) run(args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var buf bytes.Buffer
	cmd := cli.NewRootCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--server", s.srv.url, "--output", "json"}, args...))
	err := cmd.ExecuteContext(ctx)
	return buf.String(), err
}

func (s *E2ESuite) runForm(args ...string) (cli.Form, error) {
	out, err := s.run(args...)
	var form cli.Form
	if jsonErr := json.Unmarshal([]byte(out), &form); jsonErr != nil && err == nil {
		return form, jsonErr
	}
	return form, err
}

func (s *E2ESuite) TestHealth() {
	out, err := s.run("health")
	s.Require().NoError(err)
	s.JSONEq(`{"status":"ok"}`, out)
}

func (s *E2ESuite) TestLoginLifecycle() {
	created, err := s.runForm("form", "create")
	s.Require().NoError(err)
	s.Equal("idle", created.State)

	failed, err := s.runForm("login", "--form", created.ID, "--user", "testuser", "--pass", "wrongpass")
	s.Require().Error(err)
	s.Equal("failed", failed.State)
	s.Require().NotNil(failed.Error)
	s.Equal("Invalid username or password.", failed.Error.Message)

	invalid, err := s.runForm("login", "--form", created.ID, "--user", "testuser", "--pass", "short")
	s.Require().Error(err)
	s.Equal("idle", invalid.State)
	s.Nil(invalid.Error)
	s.Equal("Password must be at least 8 characters.", invalid.FieldErrors["password"])

	ok, err := s.runForm("login", "--form", created.ID, "--user", "testuser", "--pass", "password123")
	s.Require().NoError(err)
	s.Equal("succeeded", ok.State)
	s.Equal(2, ok.Attempts)

	got, err := s.runForm("form", "get", created.ID)
	s.Require().NoError(err)
	s.Equal("succeeded", got.State)

	_, err = s.run("login", "--form", created.ID, "--user", "testuser", "--pass", "password123")
	s.Require().Error(err)
	s.Contains(err.Error(), "FORM_COMPLETED")

	reset, err := s.runForm("form", "reset", created.ID)
	s.Require().NoError(err)
	s.Equal("idle", reset.State)
}

func (s *E2ESuite) TestBrowserFlow() {
	client := &http.Client{
		Timeout: 5 * time.Second,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	resp, err := client.Get(s.srv.url + "/")
	s.Require().NoError(err)
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	_ = resp.Body.Close()
	s.Require().NoError(err)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	action, ok := doc.Find("#login-form form").Attr("action")
	s.Require().True(ok, "login form has an action")

	form := url.Values{"username": {"testuser"}, "password": {"password123"}}
	req, err := http.NewRequest(http.MethodPost, s.srv.url+action, strings.NewReader(form.Encode()))
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")

	resp, err = client.Do(req)
	s.Require().NoError(err)
	doc, err = goquery.NewDocumentFromReader(resp.Body)
	_ = resp.Body.Close()
	s.Require().NoError(err)

	s.Equal(http.StatusOK, resp.StatusCode)
	state, _ := doc.Find("#login-form").Attr("data-state")
	s.Equal("succeeded", state)
	s.Contains(doc.Find("#login-success").Text(), "testuser")
}

func (s *E2ESuite) TestEventsFollowSubmission() {
	created, err := s.runForm("form", "create")
	s.Require().NoError(err)

	type result struct {
		out string
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := s.run("events", created.ID, "--count", "3", "--json")
		done <- result{out, err}
	}()

	s.Require().Eventually(func() bool {
		hub := s.srv.app.HubManager.GetHub(model.FormID(created.ID))
		return hub != nil && hub.ClientCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	body := strings.NewReader(`{"username":"testuser","password":"password123"}`)
	resp, err := http.Post(s.srv.url+"/api/v1/forms/"+created.ID+"/submit", "application/json", body)
	s.Require().NoError(err)
	_ = resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var res result
	select {
	case res = <-done:
	case <-time.After(5 * time.Second):
		s.FailNow("events command did not finish")
	}
	s.Require().NoError(res.err)

	var states []string
	for _, line := range strings.Split(strings.TrimSpace(res.out), "\n") {
		var evt cli.SSEEvent
		s.Require().NoError(json.Unmarshal([]byte(line), &evt))
		if evt.Event != "form-state" {
			continue
		}
		snap, err := cli.ParseFormFragment(evt.Data)
		s.Require().NoError(err)
		states = append(states, snap.State)
	}
	s.Equal([]string{"idle", "submitting", "succeeded"}, states)
}

// ABOUTME: Test helpers for end-to-end testing.
// ABOUTME: Starts a seeded development backend and a console in front of it.

package e2e_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pyconkr/console/internal/admin"
	"github.com/pyconkr/console/internal/auth"
	"github.com/pyconkr/console/internal/backend"
	"github.com/pyconkr/console/internal/logging"
	"github.com/pyconkr/console/internal/mockapi"
	"github.com/pyconkr/console/internal/notify"
	"github.com/pyconkr/console/internal/portal"
	"github.com/pyconkr/console/internal/seed"
	"github.com/pyconkr/console/internal/sessions"
	"github.com/pyconkr/console/internal/store"
	_ "github.com/pyconkr/console/plugins/cms" // Register CMS resources
	"github.com/pyconkr/console/plugins/event"
	_ "github.com/pyconkr/console/plugins/sponsor" // Register sponsor resources
)

// TestServer is a console wired to its own development backend.
type TestServer struct {
	Console *httptest.Server
	API     *httptest.Server
	Backend *store.Store
	Local   *store.Store
	Client  *backend.Client

	http *http.Client
}

// StartTestServer seeds a backend on disk and starts a console against it.
func StartTestServer(t *testing.T) *TestServer {
	t.Helper()
	dir := t.TempDir()

	backendStore, err := store.New(filepath.Join(dir, "backend.db"), nil)
	if err != nil {
		t.Fatalf("failed to create backend store: %v", err)
	}
	if _, err := mockapi.Seed(context.Background(), backendStore, seed.NewGenerator(seed.Config{}, nil), "small", nil); err != nil {
		t.Fatalf("failed to seed backend: %v", err)
	}
	api := httptest.NewServer(mockapi.New(backendStore, nil, mockapi.Options{}).Handler())

	local, err := store.New(filepath.Join(dir, "console.db"), nil)
	if err != nil {
		t.Fatalf("failed to create console store: %v", err)
	}
	client, err := backend.NewClient(backend.Config{BaseURL: api.URL}, nil)
	if err != nil {
		t.Fatalf("failed to create backend client: %v", err)
	}
	flash := notify.NewFlash([]byte("0123456789abcdef0123456789abcdef"), false)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(auth.Middleware("csrftoken"))
	r.Use(logging.Middleware(local, nil))

	admin.NewHandlers(admin.Config{
		Client:  client,
		Schemas: backend.NewCachedSchemaProvider(client, local, 0, nil, nil),
		Store:   local,
		Flash:   flash,
		Apps:    admin.RegistryApps(),
	}).RegisterRoutes(r)
	portal.NewHandlers(portal.Config{Client: client, Flash: flash}).RegisterRoutes(r)
	sessions.NewHandlers(sessions.Config{Client: client, Event: event.DefaultEvent, Types: []string{"talk"}}).RegisterRoutes(r)

	ts := &TestServer{
		Console: httptest.NewServer(r),
		API:     api,
		Backend: backendStore,
		Local:   local,
		Client:  client,
		http: &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}},
	}
	t.Cleanup(ts.Close)
	return ts
}

// Close shuts down both servers and their stores.
func (ts *TestServer) Close() {
	ts.Console.Close()
	ts.API.Close()
	ts.Local.Close()
	ts.Backend.Close()
}

// Do sends a request to the console. An empty token sends no credentials.
func (ts *TestServer) Do(t *testing.T, method, path, token string, form url.Values, cookies ...*http.Cookie) (*http.Response, string) {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, ts.Console.URL+path, body)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	resp, err := ts.http.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return resp, string(data)
}

// GET fetches path from the console.
func (ts *TestServer) GET(t *testing.T, path, token string, cookies ...*http.Cookie) (*http.Response, string) {
	t.Helper()
	return ts.Do(t, http.MethodGet, path, token, nil, cookies...)
}

// POSTForm submits a form to the console.
func (ts *TestServer) POSTForm(t *testing.T, path, token string, form url.Values) (*http.Response, string) {
	t.Helper()
	return ts.Do(t, http.MethodPost, path, token, form)
}

// AssertStatusCode fails the test when resp has another status.
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Fatalf("%s %s: status = %d, want %d", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, expected)
	}
}

// AssertContains fails the test when body lacks want.
func AssertContains(t *testing.T, body, want string) {
	t.Helper()
	if !strings.Contains(body, want) {
		t.Errorf("body does not contain %q", want)
	}
}

// FlashCookie returns the flash cookie set on resp.
func FlashCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == notify.FlashCookieName {
			return c
		}
	}
	t.Fatal("no flash cookie set")
	return nil
}

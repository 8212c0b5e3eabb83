// ABOUTME: Tests for the development backend's generic admin API and seeding.
// ABOUTME: Exercises the routes directly and through the console's backend client.

package mockapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyconkr/console/internal/auth"
	"github.com/pyconkr/console/internal/backend"
	apierrors "github.com/pyconkr/console/internal/errors"
	"github.com/pyconkr/console/internal/seed"
	"github.com/pyconkr/console/internal/store"
	_ "github.com/pyconkr/console/plugins/cms"
	_ "github.com/pyconkr/console/plugins/event"
	_ "github.com/pyconkr/console/plugins/sponsor"
)

func newServer(t *testing.T, opts Options) (*store.Store, *httptest.Server) {
	t.Helper()
	s, err := store.New(":memory:", nil)
	require.NoError(t, err)
	srv := httptest.NewServer(New(s, nil, opts).Handler())
	t.Cleanup(func() {
		srv.Close()
		s.Close()
	})
	return s, srv
}

func request(t *testing.T, srv *httptest.Server, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func TestSchemaDocument(t *testing.T) {
	_, srv := newServer(t, Options{})

	resp, body := request(t, srv, http.MethodGet, "/v1/admin-api/sponsor/sponsor/json-schema/", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var info backend.SchemaInfo
	require.NoError(t, json.Unmarshal(body, &info))
	assert.Equal(t, []string{"id", "name", "tier", "logo", "description", "url", "tags", "created_at", "updated_at"}, info.Schema.FieldNames())
	assert.True(t, info.Hints.IsFile("logo"))

	resp, body = request(t, srv, http.MethodGet, "/v1/admin-api/sponsor/badge/json-schema/", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var envelope apierrors.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &envelope))
	assert.Equal(t, apierrors.TypeClient, envelope.Type)
}

func TestResourceLifecycle(t *testing.T) {
	_, srv := newServer(t, Options{})
	base := "/v1/admin-api/sponsor/tier/"

	resp, body := request(t, srv, http.MethodPost, base, `{"order": 1}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var envelope apierrors.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &envelope))
	assert.Equal(t, apierrors.TypeValidation, envelope.Type)
	require.NotEmpty(t, envelope.Errors)
	assert.Equal(t, apierrors.ErrRequired, envelope.Errors[0].Code)
	require.NotNil(t, envelope.Errors[0].Attr)
	assert.Equal(t, "name", *envelope.Errors[0].Attr)

	resp, _ = request(t, srv, http.MethodPost, base, `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = request(t, srv, http.MethodPost, base, `{"name": "Gold", "id": "chosen-by-client", "created_at": "yesterday"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var created map[string]any
	require.NoError(t, json.Unmarshal(body, &created))
	id, _ := created["id"].(string)
	_, err := uuid.Parse(id)
	assert.NoError(t, err, "server assigns the id")
	assert.NotEqual(t, "yesterday", created["created_at"])
	assert.EqualValues(t, 0, created["order"], "schema default applied")

	resp, body = request(t, srv, http.MethodPatch, base+id+"/", `{"name": "Platinum"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, _ = request(t, srv, http.MethodPatch, base+id+"/", `{"name": ""}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = request(t, srv, http.MethodGet, base+id+"/", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched map[string]any
	require.NoError(t, json.Unmarshal(body, &fetched))
	assert.Equal(t, "Platinum", fetched["name"])

	resp, body = request(t, srv, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Len(t, list, 1)

	resp, _ = request(t, srv, http.MethodDelete, base+id+"/", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = request(t, srv, http.MethodDelete, base+id+"/", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = request(t, srv, http.MethodGet, base+id+"/", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRequireAuth(t *testing.T) {
	_, srv := newServer(t, Options{RequireAuth: true})

	resp, _ := request(t, srv, http.MethodGet, "/v1/admin-api/cms/page/", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	client, err := backend.NewClient(backend.Config{BaseURL: srv.URL}, nil)
	require.NoError(t, err)
	_, err = client.List(context.Background(), "cms", "page")
	var ce *backend.ClientError
	require.True(t, errors.As(err, &ce))
	assert.True(t, ce.IsRequiredAuth())

	ctx := auth.WithCredentials(context.Background(), auth.Credentials{Authorization: "Bearer user:admin"})
	pages, err := client.List(ctx, "cms", "page")
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestBackendClientRoundTrip(t *testing.T) {
	_, srv := newServer(t, Options{})
	ctx := context.Background()
	client, err := backend.NewClient(backend.Config{BaseURL: srv.URL}, nil)
	require.NoError(t, err)

	info, err := client.FetchSchema(ctx, "cms", "page")
	require.NoError(t, err)
	assert.True(t, info.Schema.IsRequired("title"))

	created, err := client.Create(ctx, "cms", "page", backend.Resource{"title": "Home", "subtitle": ""})
	require.NoError(t, err)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)

	updated, err := client.Update(ctx, "cms", "page", id, backend.Resource{"id": id, "title": "Welcome", "created_at": "ignored"})
	require.NoError(t, err)
	assert.Equal(t, "Welcome", updated["title"])
	assert.Equal(t, created["created_at"], updated["created_at"], "read-only fields are ignored")

	_, err = client.Create(ctx, "cms", "page", backend.Resource{"title": ""})
	var ce *backend.ClientError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, http.StatusBadRequest, ce.Status)

	require.NoError(t, client.Remove(ctx, "cms", "page", id))
	_, err = client.Retrieve(ctx, "cms", "page", id)
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, http.StatusNotFound, ce.Status)
}

func TestHealth(t *testing.T) {
	_, srv := newServer(t, Options{})
	resp, body := request(t, srv, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		Apps map[string]struct {
			Status string `json:"status"`
		} `json:"apps"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	for _, app := range []string{"cms", "event", "sponsor"} {
		assert.Equal(t, "healthy", out.Apps[app].Status, app)
	}
}

func TestSeed(t *testing.T) {
	s, err := store.New(":memory:", nil)
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()
	gen := seed.NewGenerator(seed.Config{}, nil)

	_, err = Seed(ctx, s, gen, "huge", nil)
	assert.Error(t, err)

	results, err := Seed(ctx, s, gen, "small", nil)
	require.NoError(t, err)
	assert.Equal(t, 6, results["event"].Records["presentation"])
	assert.Equal(t, 5, results["sponsor"].Records["sponsor"])
	assert.Equal(t, 3, results["cms"].Records["page"])

	n, err := s.CountResources(ctx, "sponsor", "tier")
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

// ABOUTME: Tests for the participant portal pages against the development backend.
// ABOUTME: Walks a speaker through requesting, previewing and cancelling a modification.

package portal

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyconkr/console/internal/auth"
	"github.com/pyconkr/console/internal/backend"
	"github.com/pyconkr/console/internal/mockapi"
	"github.com/pyconkr/console/internal/notify"
	"github.com/pyconkr/console/internal/seed"
	"github.com/pyconkr/console/internal/store"
	_ "github.com/pyconkr/console/plugins/cms"
	_ "github.com/pyconkr/console/plugins/event"
	_ "github.com/pyconkr/console/plugins/sponsor"
)

const speakerToken = "Bearer user:speaker"

type fixture struct {
	client *backend.Client
	srv    *httptest.Server
	http   *http.Client
}

func setup(t *testing.T) *fixture {
	t.Helper()
	s, err := store.New(":memory:", nil)
	require.NoError(t, err)
	_, err = mockapi.Seed(context.Background(), s, seed.NewGenerator(seed.Config{}, nil), "small", nil)
	require.NoError(t, err)
	api := httptest.NewServer(mockapi.New(s, nil, mockapi.Options{}).Handler())

	client, err := backend.NewClient(backend.Config{BaseURL: api.URL}, nil)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(auth.Middleware("csrftoken"))
	NewHandlers(Config{
		Client: client,
		Flash:  notify.NewFlash([]byte("0123456789abcdef0123456789abcdef"), false),
	}).RegisterRoutes(r)
	srv := httptest.NewServer(r)

	t.Cleanup(func() {
		srv.Close()
		api.Close()
		s.Close()
	})
	return &fixture{
		client: client,
		srv:    srv,
		http: &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}},
	}
}

func (f *fixture) speakerCtx() context.Context {
	return auth.WithCredentials(context.Background(), auth.Credentials{Authorization: speakerToken})
}

func (f *fixture) do(t *testing.T, method, path, token string, form url.Values, cookies ...*http.Cookie) (*http.Response, string) {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, f.srv.URL+path, body)
	require.NoError(t, err)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := f.http.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(raw)
}

func (f *fixture) mine(t *testing.T) backend.Presentation {
	t.Helper()
	mine, err := f.client.ListPresentations(f.speakerCtx())
	require.NoError(t, err)
	require.Len(t, mine, 1)
	return mine[0]
}

func formOf(d Draft) url.Values {
	v := url.Values{}
	for _, field := range formFields {
		v.Set(field.name, field.get(d))
	}
	return v
}

func flashCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == notify.FlashCookieName {
			return c
		}
	}
	t.Fatal("no flash cookie set")
	return nil
}

func TestOverview(t *testing.T) {
	f := setup(t)

	resp, body := f.do(t, http.MethodGet, "/portal", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, "로그인이 필요합니다.")

	resp, body = f.do(t, http.MethodGet, "/portal", speakerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "김파이")
	assert.Contains(t, body, `href="/portal/presentations/`+f.mine(t).ID+`"`)
	assert.NotContains(t, body, `id="audits"`)

	_, body = f.do(t, http.MethodGet, "/portal?lang=en", speakerToken, nil)
	assert.Contains(t, body, "Pie Kim")
	assert.Contains(t, body, "Participant Portal")
}

func TestEditPage(t *testing.T) {
	f := setup(t)
	p := f.mine(t)

	resp, body := f.do(t, http.MethodGet, "/portal/presentations/"+p.ID, speakerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `value="Django ORM 깊게 들여다보기"`)
	assert.Contains(t, body, `name="biography_ko"`)
	assert.Contains(t, body, `name="speaker_id" value="`+p.Speakers[0].ID+`"`)
	assert.Contains(t, body, `data-preview="description_ko"`)
	assert.NotContains(t, body, `id="locked"`)
	// a declined prompt cancels the post in the browser
	assert.Contains(t, body, `if (!window.confirm(form.dataset.confirm)) {`)
	assert.Contains(t, body, `ev.preventDefault();`)

	others, err := f.client.ListPresentations(auth.WithCredentials(context.Background(), auth.Credentials{Authorization: "Bearer user:speaker2"}))
	require.NoError(t, err)
	require.Len(t, others, 1)
	resp, _ = f.do(t, http.MethodGet, "/portal/presentations/"+others[0].ID, speakerToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSubmitRequiresConfirmation(t *testing.T) {
	f := setup(t)
	p := f.mine(t)

	form := formOf(DraftFrom(p, nil))
	form.Set("title_ko", "ORM 완전 정복")
	resp, body := f.do(t, http.MethodPost, "/portal/presentations/"+p.ID, speakerToken, form)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `value="ORM 완전 정복"`, "the draft survives a declined confirmation")
	assert.False(t, f.mine(t).HasRequestedModificationAudit)

	form.Set("title_en", "")
	form.Set("confirm", "yes")
	resp, body = f.do(t, http.MethodPost, "/portal/presentations/"+p.ID, speakerToken, form)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "field-error")
	assert.Contains(t, body, "입력값을 확인해주세요.")
	assert.False(t, f.mine(t).HasRequestedModificationAudit)
}

func TestModificationFlow(t *testing.T) {
	f := setup(t)
	p := f.mine(t)
	path := "/portal/presentations/" + p.ID

	form := formOf(DraftFrom(p, nil))
	form.Set("title_ko", "ORM 완전 정복")
	form.Set("biography_ko", "새 소개")
	form.Set("confirm", "yes")
	resp, _ := f.do(t, http.MethodPost, path, speakerToken, form)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, path, resp.Header.Get("Location"))

	resp, body := f.do(t, http.MethodGet, path, speakerToken, nil, flashCookie(t, resp))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "발표 정보 수정을 요청했어요. 검토 후 반영될 예정이에요.")
	assert.Contains(t, body, `id="locked"`)
	assert.Contains(t, body, "disabled")
	assert.Contains(t, body, `value="Django ORM 깊게 들여다보기"`, "changes wait for review")

	locked := f.mine(t)
	require.True(t, locked.HasRequestedModificationAudit)
	auditID := *locked.RequestedModificationAuditID
	assert.Contains(t, body, `href="/portal/modification-audits/`+auditID+`"`)

	resp, body = f.do(t, http.MethodPost, path, speakerToken, form)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body, "검토 중인 수정 요청이 있어 편집할 수 없어요.")

	resp, body = f.do(t, http.MethodGet, "/portal/modification-audits/"+auditID, speakerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "ORM 완전 정복")
	assert.Contains(t, body, "새 소개")
	assert.Equal(t, 2, strings.Count(body, `class="changed`))

	_, body = f.do(t, http.MethodGet, "/portal", speakerToken, nil)
	assert.Contains(t, body, `id="audits"`)
	assert.Contains(t, body, "/portal/modification-audits/"+auditID+"/cancel")

	resp, _ = f.do(t, http.MethodPost, "/portal/modification-audits/"+auditID+"/cancel", speakerToken, url.Values{"reason": {"typo"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/portal", resp.Header.Get("Location"))

	_, body = f.do(t, http.MethodGet, "/portal", speakerToken, nil, flashCookie(t, resp))
	assert.Contains(t, body, "수정 요청을 취소했어요.")
	assert.False(t, f.mine(t).HasRequestedModificationAudit)
}

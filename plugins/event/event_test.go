// ABOUTME: Tests for the event app's seeding, portal routes, public session list and approval hook.
// ABOUTME: Runs the routes on a chi router over an in-memory store seeded with static data.

package event

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyconkr/console/internal/auth"
	"github.com/pyconkr/console/internal/backend"
	"github.com/pyconkr/console/internal/seed"
	"github.com/pyconkr/console/internal/store"
	"github.com/pyconkr/console/plugins/core"
)

type fixture struct {
	store  *store.Store
	router chi.Router
	plugin *EventPlugin
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s, err := store.New(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	data, err := seed.NewGenerator(seed.Config{}, nil).Generate(context.Background(), 6, 0)
	require.NoError(t, err)

	p := &EventPlugin{}
	result, err := p.Seed(context.Background(), core.SeedEnv{Store: s, Data: data})
	require.NoError(t, err)
	require.Equal(t, 6, result.Records["presentation"])

	r := chi.NewRouter()
	r.Use(auth.Middleware("csrftoken"))
	p.RegisterRoutes(r, s)
	return &fixture{store: s, router: r, plugin: p}
}

func (f *fixture) do(t *testing.T, method, path, user string, body any, out any) int {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if user != "" {
		req.Header.Set("Authorization", "Bearer user:"+user)
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	if out != nil && rr.Code < 300 {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), out), rr.Body.String())
	}
	return rr.Code
}

func TestSeed_LinksDocuments(t *testing.T) {
	f := newFixture(t)
	d, err := load(context.Background(), f.store)
	require.NoError(t, err)

	assert.Len(t, d.presentations, 6)
	assert.Len(t, d.speakers, 6)
	for _, p := range d.presentations {
		assert.Len(t, d.speakersOf(str(p, "id")), 1)
		for _, cid := range stringList(p, "categories") {
			assert.Contains(t, d.categories, cid)
		}
	}
	assert.True(t, d.ownedBy(str(d.presentations[0], "id"), "speaker"))
}

func TestListSessions(t *testing.T) {
	f := newFixture(t)

	var sessions []backend.Session
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/v1/event/presentation/?event="+DefaultEvent+"&types=talk,keynote", "", nil, &sessions))
	require.Len(t, sessions, 6)
	first := sessions[0]
	assert.Equal(t, "Django ORM 깊게 들여다보기", first.Title)
	require.Len(t, first.Categories, 1)
	assert.Equal(t, "Web", first.Categories[0].Name)
	require.Len(t, first.Speakers, 1)
	assert.Equal(t, "김파이", first.Speakers[0].Nickname)
	require.Len(t, first.RoomSchedules, 1)
	assert.Equal(t, "101", first.RoomSchedules[0].RoomName)

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/v1/event/presentation/?types=tutorial", "", nil, &sessions))
	assert.Empty(t, sessions)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/v1/event/presentation/?event=other", "", nil, &sessions))
	assert.Empty(t, sessions)

	req := httptest.NewRequest(http.MethodGet, "/v1/event/presentation/", nil)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &sessions))
	assert.Equal(t, "A Deep Dive into the Django ORM", sessions[0].Title)
	assert.Equal(t, "Pie Kim", sessions[0].Speakers[0].Nickname)
}

func TestPortal_RequiresUser(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/v1/participant-portal/user/me/", "", nil, nil))

	var me backend.PortalUser
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/v1/participant-portal/user/me/", "speaker", nil, &me))
	assert.Equal(t, "speaker", me.Username)
	require.NotNil(t, me.NicknameKo)
	assert.Equal(t, "김파이", *me.NicknameKo)
}

func TestPortal_ModificationFlow(t *testing.T) {
	f := newFixture(t)

	var mine []backend.Presentation
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/v1/participant-portal/presentation/", "speaker", nil, &mine))
	require.Len(t, mine, 1)
	pres := mine[0]
	assert.False(t, pres.HasRequestedModificationAudit)

	var others []backend.Presentation
	f.do(t, http.MethodGet, "/v1/participant-portal/presentation/", "speaker2", nil, &others)
	require.Len(t, others, 1)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/v1/participant-portal/presentation/"+others[0].ID+"/", "speaker", nil, nil))

	update := backend.PresentationUpdate{
		TitleKo: "ORM 완전 정복", TitleEn: "Mastering the ORM",
		Speakers: []backend.SpeakerUpdate{{ID: pres.Speakers[0].ID, BiographyKo: "새 소개", BiographyEn: "New bio"}},
	}
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPatch, "/v1/participant-portal/presentation/"+pres.ID+"/", "speaker", backend.PresentationUpdate{TitleKo: "x"}, nil))

	var patched backend.Presentation
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPatch, "/v1/participant-portal/presentation/"+pres.ID+"/", "speaker", update, &patched))
	assert.True(t, patched.HasRequestedModificationAudit)
	assert.Equal(t, pres.TitleKo, patched.TitleKo, "changes wait for review")
	require.NotNil(t, patched.RequestedModificationAuditID)
	auditID := *patched.RequestedModificationAuditID

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPatch, "/v1/participant-portal/presentation/"+pres.ID+"/", "speaker", update, nil))

	var preview backend.Presentation
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/v1/participant-portal/presentation/"+pres.ID+"/preview/", "speaker", nil, &preview))
	assert.Equal(t, "ORM 완전 정복", preview.TitleKo)
	assert.Equal(t, "새 소개", preview.Speakers[0].BiographyKo)

	var audits []backend.ModificationAudit
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/v1/participant-portal/modification-audit/", "speaker", nil, &audits))
	require.Len(t, audits, 1)
	assert.Equal(t, backend.AuditRequested, audits[0].Status)

	var auditPreview backend.ModificationAuditPreview
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/v1/participant-portal/modification-audit/"+auditID+"/preview/", "speaker", nil, &auditPreview))
	assert.Equal(t, pres.TitleKo, auditPreview.Original.TitleKo)
	assert.Equal(t, "Mastering the ORM", auditPreview.Modified.TitleEn)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/v1/participant-portal/modification-audit/"+auditID+"/preview/", "speaker2", nil, nil))

	var cancelled backend.ModificationAudit
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPatch, "/v1/participant-portal/modification-audit/"+auditID+"/cancel/", "speaker", map[string]string{"reason": "mistake"}, &cancelled))
	assert.Equal(t, backend.AuditCancelled, cancelled.Status)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPatch, "/v1/participant-portal/modification-audit/"+auditID+"/cancel/", "speaker", nil, nil))

	f.do(t, http.MethodGet, "/v1/participant-portal/presentation/"+pres.ID+"/", "speaker", nil, &pres)
	assert.False(t, pres.HasRequestedModificationAudit)
}

func TestAfterUpdate_ApprovalApplies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var mine []backend.Presentation
	f.do(t, http.MethodGet, "/v1/participant-portal/presentation/", "speaker", nil, &mine)
	pres := mine[0]

	update := backend.PresentationUpdate{
		TitleKo: "승인된 제목", TitleEn: "Approved title",
		Speakers: []backend.SpeakerUpdate{{ID: pres.Speakers[0].ID, BiographyKo: "승인된 소개"}},
	}
	var patched backend.Presentation
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPatch, "/v1/participant-portal/presentation/"+pres.ID+"/", "speaker", update, &patched))

	rec, err := f.store.GetResource(ctx, app, "modification_audit", *patched.RequestedModificationAuditID)
	require.NoError(t, err)
	before := copyDoc(rec.Data)
	after := copyDoc(rec.Data)
	after["status"] = backend.AuditApproved

	require.NoError(t, f.plugin.AfterUpdate(ctx, f.store, "speaker", before, after), "other resources are ignored")
	require.NoError(t, f.plugin.AfterUpdate(ctx, f.store, "modification_audit", before, after))

	presRec, err := f.store.GetResource(ctx, app, "presentation", pres.ID)
	require.NoError(t, err)
	assert.Equal(t, "승인된 제목", presRec.Data["title_ko"])
	speakerRec, err := f.store.GetResource(ctx, app, "speaker", pres.Speakers[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "승인된 소개", speakerRec.Data["biography_ko"])
	assert.Equal(t, "김파이", speakerRec.Data["nickname_ko"])
}

func TestApply_LeavesInputsUntouched(t *testing.T) {
	image := "data:image/png;base64,AAAA"
	pres := map[string]any{"id": "p1", "title_ko": "old", "image": nil}
	speakers := []map[string]any{{"id": "s1", "biography_ko": "old"}, {"id": "s2", "biography_ko": "keep"}}

	p, ss := apply(pres, speakers, backend.PresentationUpdate{
		TitleKo:  "new",
		Image:    &image,
		Speakers: []backend.SpeakerUpdate{{ID: "s1", BiographyKo: "new"}},
	})

	assert.Equal(t, "new", p["title_ko"])
	assert.Equal(t, image, p["image"])
	assert.Nil(t, p["slideshow_url"])
	assert.Equal(t, "new", ss[0]["biography_ko"])
	assert.Equal(t, "keep", ss[1]["biography_ko"])
	assert.Equal(t, "old", pres["title_ko"])
	assert.Equal(t, "old", speakers[0]["biography_ko"])
}

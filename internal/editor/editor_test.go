// ABOUTME: Tests for the resource editor lifecycle against a mocked resource client.
// ABOUTME: Covers create, update, delete, failures, the save chord and pending-state disabling.

package editor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pyconkr/console/internal/backend"
	apierrors "github.com/pyconkr/console/internal/errors"
	"github.com/pyconkr/console/internal/keys"
	"github.com/pyconkr/console/internal/notify"
	"github.com/pyconkr/console/internal/schema"
)

const sponsorSchemaJSON = `{
  "type": "object",
  "required": ["name"],
  "properties": {
    "id": {"type": "string", "readOnly": true},
    "name": {"type": "string", "title": "Name"},
    "logo": {"type": ["string", "null"]},
    "created_at": {"type": "string", "readOnly": true},
    "badge": {"type": ["string", "null"], "readOnly": true}
  }
}`

const sponsorHintsJSON = `{"logo": {"ui:field": "file"}, "badge": {"ui:field": "file"}}`

const badgeURI = "data:image/png;base64,iVBORw0KGgo="

type mockClient struct {
	mock.Mock
}

func (m *mockClient) Retrieve(ctx context.Context, app, resource, id string) (backend.Resource, error) {
	args := m.Called(ctx, app, resource, id)
	r, _ := args.Get(0).(backend.Resource)
	return r, args.Error(1)
}

func (m *mockClient) Create(ctx context.Context, app, resource string, payload backend.Resource) (backend.Resource, error) {
	args := m.Called(ctx, app, resource, payload)
	r, _ := args.Get(0).(backend.Resource)
	return r, args.Error(1)
}

func (m *mockClient) Update(ctx context.Context, app, resource, id string, payload backend.Resource) (backend.Resource, error) {
	args := m.Called(ctx, app, resource, id, payload)
	r, _ := args.Get(0).(backend.Resource)
	return r, args.Error(1)
}

func (m *mockClient) Remove(ctx context.Context, app, resource, id string) error {
	args := m.Called(ctx, app, resource, id)
	return args.Error(0)
}

type stubSchemas struct {
	info backend.SchemaInfo
	err  error
}

func (s stubSchemas) FetchSchema(context.Context, string, string) (backend.SchemaInfo, error) {
	return s.info, s.err
}

func sponsorInfo(t *testing.T) backend.SchemaInfo {
	t.Helper()
	s, err := schema.Parse([]byte(sponsorSchemaJSON))
	require.NoError(t, err)
	var hints schema.LayoutHints
	require.NoError(t, json.Unmarshal([]byte(sponsorHintsJSON), &hints))
	return backend.SchemaInfo{Schema: s, Hints: hints}
}

func storedSponsor() backend.Resource {
	return backend.Resource{
		"id":         "42",
		"name":       "PSF",
		"logo":       nil,
		"created_at": "2025-01-01",
		"badge":      badgeURI,
	}
}

type harness struct {
	client    *mockClient
	relay     *notify.Relay
	logs      *observer.ObservedLogs
	bus       *keys.Bus
	navigated []string
	confirms  []string
	confirm   bool
	editor    *Editor
}

func newHarness(t *testing.T, desc Descriptor, opts Options) *harness {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)

	h := &harness{
		client: &mockClient{},
		relay:  notify.NewRelay(notify.WithLogger(logger)),
		logs:   logs,
		bus:    keys.NewBus(),
	}
	h.editor = New(desc, Deps{
		Client:    h.client,
		Schemas:   stubSchemas{info: sponsorInfo(t)},
		Notifier:  h.relay,
		Navigator: NavigatorFunc(func(path string) { h.navigated = append(h.navigated, path) }),
		Confirmer: ConfirmFunc(func(msg string) bool {
			h.confirms = append(h.confirms, msg)
			return h.confirm
		}),
		Keys:   h.bus,
		Logger: logger,
	}, opts)
	return h
}

func startEdit(t *testing.T, opts Options) *harness {
	t.Helper()
	h := newHarness(t, Descriptor{App: "sponsor", Resource: "sponsor", ID: "42"}, opts)
	h.client.On("Retrieve", mock.Anything, "sponsor", "sponsor", "42").Return(storedSponsor(), nil)
	h.editor.Start(context.Background())
	t.Cleanup(h.editor.Stop)
	require.Equal(t, Ready, h.editor.State())
	return h
}

func validationFailure(detail, attr string) *backend.ClientError {
	return &backend.ClientError{
		Status: http.StatusBadRequest,
		Type:   apierrors.TypeValidation,
		Errors: []apierrors.DetailedError{{Code: apierrors.ErrRequired, Detail: detail, Attr: apierrors.Attr(attr)}},
	}
}

func TestCreateMode_DraftStartsEmpty(t *testing.T) {
	h := newHarness(t, Descriptor{App: "sponsor", Resource: "sponsor"}, Options{})
	h.editor.Start(context.Background())
	defer h.editor.Stop()

	snap := h.editor.Snapshot()
	assert.Equal(t, Ready, snap.State)
	assert.Equal(t, map[string]any{}, snap.Draft)
	h.client.AssertNotCalled(t, "Retrieve", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEditMode_DraftEqualsRetrieved(t *testing.T) {
	h := startEdit(t, Options{})
	assert.Equal(t, map[string]any(storedSponsor()), h.editor.Snapshot().Draft)
}

func TestEditMode_EmptyResponseSeedsEmptyDraft(t *testing.T) {
	h := newHarness(t, Descriptor{App: "sponsor", Resource: "sponsor", ID: "9"}, Options{})
	h.client.On("Retrieve", mock.Anything, "sponsor", "sponsor", "9").Return(nil, nil)
	h.editor.Start(context.Background())
	defer h.editor.Stop()

	snap := h.editor.Snapshot()
	assert.Equal(t, Ready, snap.State)
	assert.Equal(t, map[string]any{}, snap.Draft)
}

func TestCreate_NavigatesToNewID(t *testing.T) {
	h := newHarness(t, Descriptor{App: "sponsor", Resource: "sponsor"}, Options{})
	h.editor.Start(context.Background())
	defer h.editor.Stop()

	require.NoError(t, h.editor.Change(map[string]any{"name": "PSF"}))
	draft := h.editor.Snapshot().Draft

	h.client.On("Create", mock.Anything, "sponsor", "sponsor", backend.Resource(draft)).
		Return(backend.Resource{"id": "7", "name": "PSF"}, nil).Once()

	out, err := h.editor.Submit(context.Background())
	require.NoError(t, err)

	assert.True(t, out.Succeeded())
	assert.Equal(t, "7", out.ID)
	assert.Equal(t, []string{"/sponsor/sponsor/7"}, h.navigated)
	assert.Equal(t, Navigated, h.editor.State())
	h.client.AssertNumberOfCalls(t, "Create", 1)

	active := h.relay.Active()
	require.Len(t, active, 1)
	assert.Equal(t, notify.Success, active[0].Severity)
	assert.Equal(t, "페이지를 생성했습니다.", active[0].Message)
}

func TestCreate_NumericIDAndMissingID(t *testing.T) {
	h := newHarness(t, Descriptor{App: "sponsor", Resource: "sponsor"}, Options{})
	h.editor.Start(context.Background())
	defer h.editor.Stop()

	require.NoError(t, h.editor.Change(map[string]any{"name": "PSF"}))
	h.client.On("Create", mock.Anything, "sponsor", "sponsor", mock.Anything).
		Return(backend.Resource{"name": "PSF"}, nil).Once()

	out, err := h.editor.Submit(context.Background())
	require.NoError(t, err)
	assert.True(t, out.Succeeded())
	assert.Empty(t, h.navigated, "no id in the response means no navigation")
	assert.Equal(t, Ready, h.editor.State())

	h.client.On("Create", mock.Anything, "sponsor", "sponsor", mock.Anything).
		Return(backend.Resource{"id": float64(11)}, nil).Once()
	_, err = h.editor.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"/sponsor/sponsor/11"}, h.navigated)
}

func TestUpdate_SubmitsDraftWithoutNavigation(t *testing.T) {
	h := startEdit(t, Options{})

	next := storedSponsor()
	next["name"] = "Python Software Foundation"
	require.NoError(t, h.editor.Change(next))
	draft := h.editor.Snapshot().Draft

	h.client.On("Update", mock.Anything, "sponsor", "sponsor", "42", backend.Resource(draft)).
		Return(backend.Resource(draft), nil).Once()

	out, err := h.editor.Submit(context.Background())
	require.NoError(t, err)
	assert.True(t, out.Succeeded())
	h.client.AssertNumberOfCalls(t, "Update", 1)
	assert.Empty(t, h.navigated)
	assert.Equal(t, Ready, h.editor.State())

	active := h.relay.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "저장했습니다.", active[0].Message)
}

func TestDelete_Declined(t *testing.T) {
	h := startEdit(t, Options{})
	h.confirm = false

	out, err := h.editor.Delete(context.Background())
	require.NoError(t, err)

	assert.True(t, out.Declined)
	assert.Equal(t, []string{"정말로 삭제하시겠습니까? 이 작업은 되돌릴 수 없습니다."}, h.confirms)
	h.client.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, Ready, h.editor.State())
	assert.Empty(t, h.relay.Active())
	assert.False(t, h.editor.Snapshot().Disabled())
}

func TestDelete_Confirmed(t *testing.T) {
	h := startEdit(t, Options{})
	h.confirm = true
	h.client.On("Remove", mock.Anything, "sponsor", "sponsor", "42").Return(nil).Once()

	out, err := h.editor.Delete(context.Background())
	require.NoError(t, err)

	assert.True(t, out.Succeeded())
	h.client.AssertNumberOfCalls(t, "Remove", 1)
	assert.Equal(t, []string{"/sponsor/sponsor"}, h.navigated)
	assert.Equal(t, Navigated, h.editor.State())

	active := h.relay.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "삭제했습니다.", active[0].Message)
}

func TestDelete_Failure(t *testing.T) {
	h := startEdit(t, Options{})
	h.confirm = true
	h.client.On("Remove", mock.Anything, "sponsor", "sponsor", "42").
		Return(&backend.ClientError{Status: http.StatusForbidden, Type: apierrors.TypeClient,
			Errors: []apierrors.DetailedError{{Code: apierrors.ErrPermissionDenied, Detail: "not allowed"}}})

	out, err := h.editor.Delete(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "not allowed", out.Detail())
	assert.Equal(t, Ready, h.editor.State())
	assert.Empty(t, h.navigated)

	active := h.relay.Active()
	require.Len(t, active, 1)
	assert.Equal(t, notify.Error, active[0].Severity)
	assert.Equal(t, "not allowed", active[0].Detail)
}

func TestSubmitFailure_KeepsDraft(t *testing.T) {
	h := startEdit(t, Options{})

	next := storedSponsor()
	next["name"] = "Renamed"
	require.NoError(t, h.editor.Change(next))
	before := h.editor.Snapshot().Draft

	h.client.On("Update", mock.Anything, "sponsor", "sponsor", "42", mock.Anything).
		Return(nil, validationFailure("Name is required", "name"))

	out, err := h.editor.Submit(context.Background())
	require.NoError(t, err)

	assert.False(t, out.Succeeded())
	assert.Equal(t, "Name is required", out.Detail())
	assert.Equal(t, Ready, h.editor.State())
	assert.Equal(t, before, h.editor.Snapshot().Draft)

	active := h.relay.Active()
	require.Len(t, active, 1)
	assert.Equal(t, notify.Error, active[0].Severity)
	assert.Equal(t, "Name is required", active[0].Detail)
	assert.Equal(t, 1, h.logs.FilterMessage("Submit failed").Len())
}

func TestSubmit_UnknownErrorUsesGenericMessage(t *testing.T) {
	h := startEdit(t, Options{})
	h.client.On("Update", mock.Anything, "sponsor", "sponsor", "42", mock.Anything).
		Return(nil, errors.New("decoder exploded"))

	_, err := h.editor.Submit(context.Background())
	require.NoError(t, err)

	active := h.relay.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "알 수 없는 문제가 발생했습니다, 잠시 후 다시 시도해주세요.", active[0].Message)
}

func TestSubmit_InvalidDraftIsNotSent(t *testing.T) {
	h := newHarness(t, Descriptor{App: "sponsor", Resource: "sponsor"}, Options{})
	h.editor.Start(context.Background())
	defer h.editor.Stop()

	_, err := h.editor.Submit(context.Background())

	var verrs schema.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ByField(), "name")
	h.client.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, Ready, h.editor.State())
	assert.Contains(t, h.editor.View().Errors, "name")
}

func TestChange_ReadOnlyFieldsIgnoreInput(t *testing.T) {
	h := startEdit(t, Options{})

	require.NoError(t, h.editor.Change(map[string]any{"id": "hijack", "name": "X", "badge": "data:,"}))
	draft := h.editor.Snapshot().Draft

	assert.Equal(t, "42", draft["id"])
	assert.Equal(t, badgeURI, draft["badge"])
	assert.Equal(t, "X", draft["name"])
}

func TestApplyForm(t *testing.T) {
	h := startEdit(t, Options{})

	err := h.editor.ApplyForm(map[string]schema.Input{
		"name": {Values: []string{"PyCon KR"}},
	})
	require.NoError(t, err)
	draft := h.editor.Snapshot().Draft
	assert.Equal(t, "PyCon KR", draft["name"])
	assert.Nil(t, draft["logo"], "file without upload keeps its value")

	err = h.editor.ApplyForm(map[string]schema.Input{
		"name": {Values: []string{"PyCon KR"}},
		"logo": {File: &schema.Upload{ContentType: "image/png", Data: []byte("\x89PNG\r\n\x1a\n")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,iVBORw0KGgo=", h.editor.Snapshot().Draft["logo"])
}

func TestPendingMutationDisablesActions(t *testing.T) {
	h := startEdit(t, Options{})

	started := make(chan struct{})
	release := make(chan struct{})
	h.client.On("Update", mock.Anything, "sponsor", "sponsor", "42", mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(storedSponsor(), nil).Once()

	done := make(chan Outcome)
	go func() {
		out, _ := h.editor.Submit(context.Background())
		done <- out
	}()
	<-started

	snap := h.editor.Snapshot()
	assert.True(t, snap.Updating)
	assert.True(t, snap.Disabled())
	for _, b := range h.editor.View().Buttons {
		assert.True(t, b.Disabled, "%s should be disabled", b.Kind)
	}

	_, err := h.editor.Submit(context.Background())
	assert.ErrorIs(t, err, ErrBusy)
	_, err = h.editor.Delete(context.Background())
	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, h.editor.CreateNew(), ErrBusy)
	assert.ErrorIs(t, h.editor.Change(map[string]any{"name": "x"}), ErrBusy)

	close(release)
	select {
	case out := <-done:
		assert.True(t, out.Succeeded())
	case <-time.After(5 * time.Second):
		t.Fatal("submit did not finish")
	}

	assert.False(t, h.editor.Snapshot().Disabled())
	h.client.AssertNumberOfCalls(t, "Update", 1)
}

func TestStaleResultIsIgnored(t *testing.T) {
	h := newHarness(t, Descriptor{App: "sponsor", Resource: "sponsor"}, Options{})
	h.editor.Start(context.Background())
	require.NoError(t, h.editor.Change(map[string]any{"name": "PSF"}))

	started := make(chan struct{})
	release := make(chan struct{})
	h.client.On("Create", mock.Anything, "sponsor", "sponsor", mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(backend.Resource{"id": "1"}, nil)

	done := make(chan error)
	go func() {
		_, err := h.editor.Submit(context.Background())
		done <- err
	}()
	<-started
	h.editor.Stop()
	close(release)

	assert.ErrorIs(t, <-done, ErrStale)
	assert.Empty(t, h.navigated)
	assert.Empty(t, h.relay.Active())
}

func TestStoppedEditorRefusesInput(t *testing.T) {
	h := startEdit(t, Options{})
	h.editor.Stop()

	assert.Equal(t, Stopped, h.editor.State())
	assert.False(t, h.editor.View().ShowForm)

	_, err := h.editor.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNotReady)
	assert.ErrorIs(t, h.editor.Change(map[string]any{"name": "x"}), ErrNotReady)
	_, err = h.editor.Delete(context.Background())
	assert.ErrorIs(t, err, ErrNotReady)
	assert.ErrorIs(t, h.editor.CreateNew(), ErrNotReady)

	h.client.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	h.client.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, h.navigated)

	// starting again reloads and accepts input
	h.editor.Start(context.Background())
	assert.Equal(t, Ready, h.editor.State())
}

func TestSaveChord(t *testing.T) {
	h := startEdit(t, Options{})
	h.client.On("Update", mock.Anything, "sponsor", "sponsor", "42", mock.Anything).
		Return(storedSponsor(), nil)

	ev := &keys.Event{Key: "s", Ctrl: true}
	assert.True(t, h.bus.Dispatch(ev), "default action suppressed")
	assert.True(t, ev.PropagationStopped())
	h.client.AssertNumberOfCalls(t, "Update", 1)

	assert.False(t, h.bus.Dispatch(&keys.Event{Key: "a", Ctrl: true}))
	h.client.AssertNumberOfCalls(t, "Update", 1)

	h.editor.Stop()
	assert.Equal(t, 0, h.bus.Len())
	assert.False(t, h.bus.Dispatch(&keys.Event{Key: "s", Meta: true}))
	h.client.AssertNumberOfCalls(t, "Update", 1)
}

func TestLoadFailure(t *testing.T) {
	h := newHarness(t, Descriptor{App: "sponsor", Resource: "sponsor", ID: "404"}, Options{})
	h.client.On("Retrieve", mock.Anything, "sponsor", "sponsor", "404").
		Return(nil, &backend.ClientError{Status: http.StatusNotFound, Type: apierrors.TypeClient,
			Errors: []apierrors.DetailedError{{Code: apierrors.ErrNotFound, Detail: "Not found."}}})

	h.editor.Start(context.Background())
	assert.Equal(t, LoadFailed, h.editor.State())
	assert.True(t, h.editor.View().Failed)

	_, err := h.editor.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNotReady)

	active := h.relay.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "Not found.", active[0].Detail)

	h.editor.Stop()
	assert.Equal(t, 0, h.bus.Len(), "key listener released after a failed load")
}

func TestReset_LoadsNewIdentity(t *testing.T) {
	h := startEdit(t, Options{})
	h.client.On("Retrieve", mock.Anything, "sponsor", "sponsor", "43").
		Return(backend.Resource{"id": "43", "name": "PSF Korea"}, nil)

	h.editor.Reset(context.Background(), Descriptor{App: "sponsor", Resource: "sponsor", ID: "43"})
	snap := h.editor.Snapshot()
	assert.Equal(t, "43", snap.Descriptor.ID)
	assert.Equal(t, "PSF Korea", snap.Draft["name"])
	assert.Equal(t, 1, h.bus.Len())
}

func TestOptions(t *testing.T) {
	var before, after map[string]any
	h := startEdit(t, Options{
		NotModifiable: true,
		NotDeletable:  true,
		BeforeSubmit:  func(d map[string]any) { before = d },
		AfterSubmit:   func(d map[string]any, _ backend.Resource) { after = d },
	})

	_, err := h.editor.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNotModifiable)
	_, err = h.editor.Delete(context.Background())
	assert.ErrorIs(t, err, ErrNotDeletable)
	assert.Nil(t, before)
	assert.Nil(t, after)

	var kinds []ButtonKind
	for _, b := range h.editor.View().Buttons {
		kinds = append(kinds, b.Kind)
	}
	assert.Equal(t, []ButtonKind{ButtonCreateNew}, kinds)
}

func TestHooks(t *testing.T) {
	var before, after map[string]any
	h := startEdit(t, Options{
		BeforeSubmit: func(d map[string]any) { before = d },
		AfterSubmit:  func(d map[string]any, _ backend.Resource) { after = d },
	})
	h.client.On("Update", mock.Anything, "sponsor", "sponsor", "42", mock.Anything).
		Return(storedSponsor(), nil)

	_, err := h.editor.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "PSF", before["name"])
	assert.Equal(t, before, after)
}

func TestCreateNew(t *testing.T) {
	h := startEdit(t, Options{})
	require.NoError(t, h.editor.CreateNew())
	assert.Equal(t, []string{"/sponsor/sponsor/create"}, h.navigated)
}

func TestView_EditMode(t *testing.T) {
	h := startEdit(t, Options{ExtraActions: []Action{{Label: "미리보기", Path: "/preview/42"}}})
	v := h.editor.View()

	assert.Equal(t, "SPONSOR > SPONSOR > 편집: 42", v.Title)
	assert.Equal(t, "필드", v.FieldHeader)
	assert.Equal(t, "값", v.ValueHeader)
	assert.True(t, v.ShowForm)

	wantRows := []Row{
		{Name: "id", Value: "42"},
		{Name: "created_at", Value: "2025-01-01"},
		{Name: "badge", Image: badgeURI, Link: badgeURI, LinkLabel: "링크"},
	}
	if diff := cmp.Diff(wantRows, v.ReadOnly); diff != "" {
		t.Errorf("read-only rows mismatch (-want +got):\n%s", diff)
	}

	wantButtons := []Button{
		{Kind: ButtonExtra, Label: "미리보기", Path: "/preview/42"},
		{Kind: ButtonCreateNew, Label: "새 객체 추가", Path: "/sponsor/sponsor/create"},
		{Kind: ButtonDelete, Label: "삭제"},
		{Kind: ButtonSubmit, Label: "수정"},
	}
	if diff := cmp.Diff(wantButtons, v.Buttons); diff != "" {
		t.Errorf("buttons mismatch (-want +got):\n%s", diff)
	}

	var names []string
	for _, c := range v.Controls {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"name", "logo"}, names)
}

func TestView_CreateModeAndLoading(t *testing.T) {
	d := Descriptor{App: "cms", Resource: "page"}

	loading := Project(Snapshot{Descriptor: d, State: Loading}, "ko")
	assert.True(t, loading.Spinner)
	assert.False(t, loading.ShowForm)
	assert.Empty(t, loading.Controls)

	h := newHarness(t, Descriptor{App: "sponsor", Resource: "sponsor"}, Options{})
	h.editor.Start(context.Background())
	defer h.editor.Stop()

	v := h.editor.View()
	assert.Equal(t, "SPONSOR > SPONSOR > 새 객체 추가", v.Title)
	assert.Empty(t, v.ReadOnly, "read-only table only in edit mode")
	if diff := cmp.Diff([]Button{{Kind: ButtonSubmit, Label: "새 객체 추가"}}, v.Buttons); diff != "" {
		t.Errorf("buttons mismatch (-want +got):\n%s", diff)
	}
}

// ABOUTME: Generic schema-driven resource editor: load, edit, validate, submit, delete, navigate.
// ABOUTME: One in-flight request per mutation kind; stale results are dropped by generation.

package editor

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"go.uber.org/zap"

	"github.com/pyconkr/console/internal/backend"
	"github.com/pyconkr/console/internal/i18n"
	"github.com/pyconkr/console/internal/keys"
	"github.com/pyconkr/console/internal/notify"
	"github.com/pyconkr/console/internal/schema"
)

var (
	ErrBusy          = errors.New("editor: a request of this kind is already in flight")
	ErrNotReady      = errors.New("editor: not ready for input")
	ErrNotModifiable = errors.New("editor: resource is not modifiable")
	ErrNotDeletable  = errors.New("editor: resource is not deletable")
	ErrStale         = errors.New("editor: result arrived after the session changed")
)

// Mutation is a kind of write request.
type Mutation string

const (
	MutationCreate Mutation = "create"
	MutationUpdate Mutation = "update"
	MutationDelete Mutation = "delete"
)

// Descriptor identifies the edited instance. An empty ID means create mode.
type Descriptor struct {
	App      string
	Resource string
	ID       string
}

// CreateMode reports whether the editor creates a new instance.
func (d Descriptor) CreateMode() bool { return d.ID == "" }

// CollectionPath is the route listing the resource.
func (d Descriptor) CollectionPath() string {
	return "/" + url.PathEscape(d.App) + "/" + url.PathEscape(d.Resource)
}

// InstancePath is the edit route for id.
func (d Descriptor) InstancePath(id string) string {
	return d.CollectionPath() + "/" + url.PathEscape(id)
}

// CreatePath is the route of a blank editor.
func (d Descriptor) CreatePath() string {
	return d.CollectionPath() + "/create"
}

// ResourceClient performs the editor's backend calls.
type ResourceClient interface {
	Retrieve(ctx context.Context, app, resource, id string) (backend.Resource, error)
	Create(ctx context.Context, app, resource string, payload backend.Resource) (backend.Resource, error)
	Update(ctx context.Context, app, resource, id string, payload backend.Resource) (backend.Resource, error)
	Remove(ctx context.Context, app, resource, id string) error
}

// Notifier surfaces outcomes to the user.
type Notifier interface {
	Success(message string) notify.Notification
	Error(err error) notify.Notification
}

// Navigator moves the user to another route.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a func to Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(message string) bool
}

// ConfirmFunc adapts a func to Confirmer.
type ConfirmFunc func(message string) bool

func (f ConfirmFunc) Confirm(message string) bool { return f(message) }

// Action is a caller-supplied button shown in edit mode.
type Action struct {
	Label string
	Path  string
}

// Options tune one editor session.
type Options struct {
	NotModifiable bool
	NotDeletable  bool
	ExtraActions  []Action
	Language      i18n.Language

	// BeforeSubmit sees the payload right before it is sent. It cannot stop
	// the request.
	BeforeSubmit func(draft map[string]any)
	// AfterSubmit runs after a successful create or update.
	AfterSubmit func(draft map[string]any, result backend.Resource)
}

// Deps are the editor's collaborators.
type Deps struct {
	Client    ResourceClient
	Schemas   backend.SchemaFetcher
	Notifier  Notifier
	Navigator Navigator
	Confirmer Confirmer
	Keys      *keys.Bus
	Logger    *zap.Logger
}

// Outcome is the result of a submit or delete.
type Outcome struct {
	Mutation Mutation
	ID       string
	Result   backend.Resource
	Err      error
	Declined bool
}

// Succeeded reports whether the mutation went through.
func (o Outcome) Succeeded() bool { return o.Err == nil && !o.Declined }

// Detail is the error text shown for a failed outcome.
func (o Outcome) Detail() string {
	if o.Err == nil {
		return ""
	}
	if cerr, ok := backend.AsClientError(o.Err); ok {
		return cerr.Detail()
	}
	return o.Err.Error()
}

// Editor owns the draft of one resource instance.
type Editor struct {
	deps   Deps
	opts   Options
	logger *zap.Logger

	mu        sync.Mutex
	desc      Descriptor
	state     State
	gen       uint64
	ctx       context.Context
	release   func()
	draft     map[string]any
	hints     schema.LayoutHints
	writable  schema.ResourceSchema
	readOnly  schema.ResourceSchema
	fields    []schema.Field
	validator *schema.Validator
	errs      schema.ValidationErrors
	inFlight  map[Mutation]bool
}

// New returns an editor for desc. Call Start to load it.
func New(desc Descriptor, deps Deps, opts Options) *Editor {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Keys == nil {
		deps.Keys = keys.Default
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.NewRelay(notify.WithLogger(deps.Logger), notify.WithLanguage(opts.Language))
	}
	if deps.Navigator == nil {
		deps.Navigator = NavigatorFunc(func(string) {})
	}
	if deps.Confirmer == nil {
		deps.Confirmer = ConfirmFunc(func(string) bool { return false })
	}
	if opts.Language == "" {
		opts.Language = i18n.Korean
	}

	return &Editor{
		deps:     deps,
		opts:     opts,
		logger:   deps.Logger.Named("editor").With(zap.String("app", desc.App), zap.String("resource", desc.Resource)),
		desc:     desc,
		state:    Loading,
		inFlight: map[Mutation]bool{},
		ctx:      context.Background(),
	}
}

// Start attaches the save chord and loads the schema and instance. Load
// failures are reported through the notifier and leave the editor in
// LoadFailed.
func (e *Editor) Start(ctx context.Context) {
	e.mu.Lock()
	if e.release == nil {
		e.release = e.deps.Keys.Attach(e.handleKey)
	}
	e.ctx = ctx
	gen := e.remount()
	desc := e.desc
	e.mu.Unlock()

	e.load(ctx, gen, desc)
}

// Reset switches the editor to another instance, discarding the draft.
func (e *Editor) Reset(ctx context.Context, desc Descriptor) {
	e.mu.Lock()
	e.desc = desc
	e.ctx = ctx
	e.logger = e.deps.Logger.Named("editor").With(zap.String("app", desc.App), zap.String("resource", desc.Resource))
	gen := e.remount()
	e.mu.Unlock()

	e.load(ctx, gen, desc)
}

// Stop detaches the save chord and drops any pending results. A stopped
// editor refuses input until it is started again.
func (e *Editor) Stop() {
	e.mu.Lock()
	e.gen++
	e.state = Transition(e.state, EvStop)
	e.inFlight = map[Mutation]bool{}
	e.draft = nil
	release := e.release
	e.release = nil
	e.mu.Unlock()

	if release != nil {
		release()
	}
}

// remount starts a new generation. Caller holds mu.
func (e *Editor) remount() uint64 {
	e.gen++
	e.state = Transition(e.state, EvRemount)
	e.draft = nil
	e.errs = nil
	e.inFlight = map[Mutation]bool{}
	return e.gen
}

func (e *Editor) load(ctx context.Context, gen uint64, desc Descriptor) {
	info, err := e.deps.Schemas.FetchSchema(ctx, desc.App, desc.Resource)

	var instance backend.Resource
	if err == nil && !desc.CreateMode() {
		instance, err = e.deps.Client.Retrieve(ctx, desc.App, desc.Resource, desc.ID)
	}

	var (
		writable, readOnly schema.ResourceSchema
		validator          *schema.Validator
	)
	if err == nil {
		writable, readOnly = schema.Partition(info.Schema)
		validator, err = schema.NewValidator(writable, info.Hints)
	}

	e.mu.Lock()
	if gen != e.gen {
		e.mu.Unlock()
		return
	}
	if err != nil {
		e.state = Transition(e.state, EvLoadFailed)
		logger := e.logger
		e.mu.Unlock()

		loadsTotal.WithLabelValues("error").Inc()
		logger.Error("Failed to load resource", zap.String("id", desc.ID), zap.Error(err))
		e.deps.Notifier.Error(err)
		return
	}

	if instance == nil {
		instance = backend.Resource{}
	}
	e.draft = instance
	e.hints = info.Hints
	e.writable = writable
	e.readOnly = readOnly
	e.fields = schema.Compile(writable, info.Hints)
	e.validator = validator
	e.state = Transition(e.state, EvLoaded)
	e.mu.Unlock()

	loadsTotal.WithLabelValues("ok").Inc()
}

func (e *Editor) anyInFlight() bool {
	return e.inFlight[MutationCreate] || e.inFlight[MutationUpdate] || e.inFlight[MutationDelete]
}

// guard reports why input is refused. Caller holds mu.
func (e *Editor) guard() error {
	if e.state == Ready {
		return nil
	}
	if e.anyInFlight() {
		return ErrBusy
	}
	return ErrNotReady
}

// Change replaces the draft with next. Read-only fields keep their loaded
// values whatever next holds.
func (e *Editor) Change(next map[string]any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.guard(); err != nil {
		return err
	}
	e.replaceDraft(next)
	return nil
}

// ApplyForm serializes raw form input through the compiled writable fields
// and replaces the draft with the result. File fields without a new upload
// or carried value keep their current value; blank numbers on non-nullable
// fields are left out.
func (e *Editor) ApplyForm(inputs map[string]schema.Input) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.guard(); err != nil {
		return err
	}

	next := make(map[string]any, len(e.fields))
	var errs schema.ValidationErrors
	for _, f := range e.fields {
		in, ok := inputs[f.Name()]
		if f.Kind() == schema.KindFile && (!ok || (in.File == nil && len(in.Values) == 0)) {
			if v, had := e.draft[f.Name()]; had {
				next[f.Name()] = v
			}
			continue
		}
		v, err := f.Serialize(in)
		if err != nil {
			errs = append(errs, schema.FieldError{Field: f.Name(), Message: err.Error()})
			continue
		}
		if v == nil {
			// an empty input for a non-nullable field means "not set"
			if p, ok := e.writable.Property(f.Name()); ok && !p.Nullable {
				continue
			}
		}
		next[f.Name()] = v
	}
	if len(errs) > 0 {
		e.errs = errs
		return errs
	}

	e.replaceDraft(next)
	return nil
}

// replaceDraft installs a fresh draft and revalidates it. Caller holds mu.
func (e *Editor) replaceDraft(next map[string]any) {
	draft := make(map[string]any, len(next)+len(e.readOnly.Properties))
	for k, v := range next {
		if _, ro := e.readOnly.Property(k); ro {
			continue
		}
		draft[k] = v
	}
	for _, p := range e.readOnly.Properties {
		if v, ok := e.draft[p.Name]; ok {
			draft[p.Name] = v
		}
	}
	e.draft = draft
	e.errs = validationErrors(e.validator.Validate(draft))
}

func validationErrors(err error) schema.ValidationErrors {
	var verrs schema.ValidationErrors
	if errors.As(err, &verrs) {
		return verrs
	}
	if err != nil {
		return schema.ValidationErrors{{Message: err.Error()}}
	}
	return nil
}

// Submit creates or updates the instance from the current draft. Synchronous
// rejections (busy, not ready, invalid draft) are returned as errors; backend
// failures end in a notification and are reported in the Outcome.
func (e *Editor) Submit(ctx context.Context) (Outcome, error) {
	e.mu.Lock()
	if err := e.guard(); err != nil {
		e.mu.Unlock()
		return Outcome{}, err
	}

	desc := e.desc
	kind := MutationUpdate
	if desc.CreateMode() {
		kind = MutationCreate
	} else if e.opts.NotModifiable {
		e.mu.Unlock()
		return Outcome{}, ErrNotModifiable
	}

	if err := e.validator.Validate(e.draft); err != nil {
		e.errs = validationErrors(err)
		errs := e.errs
		e.mu.Unlock()
		mutationsTotal.WithLabelValues(string(kind), "invalid").Inc()
		return Outcome{Mutation: kind}, errs
	}

	payload := make(map[string]any, len(e.draft))
	for k, v := range e.draft {
		payload[k] = v
	}
	e.errs = nil
	e.inFlight[kind] = true
	e.state = Transition(e.state, EvSubmit)
	gen := e.gen
	logger := e.logger
	e.mu.Unlock()

	if e.opts.BeforeSubmit != nil {
		e.opts.BeforeSubmit(payload)
	}

	var (
		result backend.Resource
		err    error
	)
	if kind == MutationCreate {
		result, err = e.deps.Client.Create(ctx, desc.App, desc.Resource, payload)
	} else {
		result, err = e.deps.Client.Update(ctx, desc.App, desc.Resource, desc.ID, payload)
	}

	e.mu.Lock()
	if gen != e.gen {
		e.mu.Unlock()
		logger.Debug("Dropping stale submit result", zap.String("kind", string(kind)))
		return Outcome{Mutation: kind}, ErrStale
	}
	e.inFlight[kind] = false

	if err != nil {
		e.state = Transition(e.state, EvSubmitFailed)
		e.mu.Unlock()

		mutationsTotal.WithLabelValues(string(kind), "error").Inc()
		logger.Error("Submit failed", zap.String("kind", string(kind)), zap.String("id", desc.ID), zap.Error(err))
		e.deps.Notifier.Error(err)
		return Outcome{Mutation: kind, Err: err}, nil
	}

	out := Outcome{Mutation: kind, Result: result, ID: desc.ID}
	var target string
	if kind == MutationCreate {
		out.ID = schema.Stringify(result["id"])
		if out.ID != "" {
			target = desc.InstancePath(out.ID)
		}
	} else if len(result) > 0 {
		e.draft = result
	}

	if target != "" {
		e.state = Transition(e.state, EvSubmitSucceededNavigate)
	} else {
		e.state = Transition(e.state, EvSubmitSucceeded)
	}
	e.mu.Unlock()

	mutationsTotal.WithLabelValues(string(kind), "ok").Inc()
	msg := i18n.MsgSaved
	if kind == MutationCreate {
		msg = i18n.MsgCreated
	}
	e.deps.Notifier.Success(i18n.T(e.opts.Language, msg))
	if e.opts.AfterSubmit != nil {
		e.opts.AfterSubmit(payload, result)
	}
	if target != "" {
		e.deps.Navigator.Navigate(target)
	}
	return out, nil
}

// Delete removes the instance after the user confirms. A declined
// confirmation sends nothing and notifies nothing.
func (e *Editor) Delete(ctx context.Context) (Outcome, error) {
	e.mu.Lock()
	desc := e.desc
	if desc.CreateMode() || e.opts.NotDeletable {
		e.mu.Unlock()
		return Outcome{}, ErrNotDeletable
	}
	if err := e.guard(); err != nil {
		e.mu.Unlock()
		return Outcome{}, err
	}
	e.inFlight[MutationDelete] = true
	e.state = Transition(e.state, EvDelete)
	gen := e.gen
	logger := e.logger
	e.mu.Unlock()

	if !e.deps.Confirmer.Confirm(i18n.T(e.opts.Language, i18n.MsgConfirmDelete)) {
		e.mu.Lock()
		if gen == e.gen {
			e.inFlight[MutationDelete] = false
			e.state = Transition(e.state, EvDeleteDeclined)
		}
		e.mu.Unlock()
		return Outcome{Mutation: MutationDelete, ID: desc.ID, Declined: true}, nil
	}

	err := e.deps.Client.Remove(ctx, desc.App, desc.Resource, desc.ID)

	e.mu.Lock()
	if gen != e.gen {
		e.mu.Unlock()
		logger.Debug("Dropping stale delete result")
		return Outcome{Mutation: MutationDelete}, ErrStale
	}
	e.inFlight[MutationDelete] = false

	if err != nil {
		e.state = Transition(e.state, EvDeleteFailed)
		e.mu.Unlock()

		mutationsTotal.WithLabelValues(string(MutationDelete), "error").Inc()
		logger.Error("Delete failed", zap.String("id", desc.ID), zap.Error(err))
		e.deps.Notifier.Error(err)
		return Outcome{Mutation: MutationDelete, ID: desc.ID, Err: err}, nil
	}

	e.state = Transition(e.state, EvDeleteSucceeded)
	e.mu.Unlock()

	mutationsTotal.WithLabelValues(string(MutationDelete), "ok").Inc()
	e.deps.Notifier.Success(i18n.T(e.opts.Language, i18n.MsgDeleted))
	e.deps.Navigator.Navigate(desc.CollectionPath())
	return Outcome{Mutation: MutationDelete, ID: desc.ID}, nil
}

// CreateNew navigates to a blank editor for the same resource.
func (e *Editor) CreateNew() error {
	e.mu.Lock()
	desc := e.desc
	busy := e.anyInFlight()
	stopped := e.state == Stopped
	e.mu.Unlock()
	if stopped {
		return ErrNotReady
	}
	if busy {
		return ErrBusy
	}
	e.deps.Navigator.Navigate(desc.CreatePath())
	return nil
}

func (e *Editor) handleKey(ev *keys.Event) {
	if !keys.IsSaveChord(ev) {
		return
	}
	ev.PreventDefault()
	ev.StopPropagation()

	e.mu.Lock()
	ctx := e.ctx
	logger := e.logger
	e.mu.Unlock()

	if _, err := e.Submit(ctx); err != nil {
		logger.Debug("Save chord ignored", zap.Error(err))
	}
}

// Snapshot is a copy of the editor's observable state.
type Snapshot struct {
	Descriptor Descriptor
	State      State
	Draft      map[string]any
	Writable   schema.ResourceSchema
	ReadOnly   schema.ResourceSchema
	Hints      schema.LayoutHints
	Fields     []schema.Field
	Errors     schema.ValidationErrors
	Creating   bool
	Updating   bool
	Deleting   bool
	Options    Options
}

// Disabled reports whether any mutation is pending.
func (s Snapshot) Disabled() bool {
	return s.Creating || s.Updating || s.Deleting
}

// Snapshot returns the current state.
func (e *Editor) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	var draft map[string]any
	if e.draft != nil {
		draft = make(map[string]any, len(e.draft))
		for k, v := range e.draft {
			draft[k] = v
		}
	}

	return Snapshot{
		Descriptor: e.desc,
		State:      e.state,
		Draft:      draft,
		Writable:   e.writable,
		ReadOnly:   e.readOnly,
		Hints:      e.hints,
		Fields:     e.fields,
		Errors:     append(schema.ValidationErrors(nil), e.errs...),
		Creating:   e.inFlight[MutationCreate],
		Updating:   e.inFlight[MutationUpdate],
		Deleting:   e.inFlight[MutationDelete],
		Options:    e.opts,
	}
}

// State returns the current lifecycle state.
func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// View projects the current state for rendering.
func (e *Editor) View() View {
	return Project(e.Snapshot(), e.opts.Language)
}

// ABOUTME: Editor pages: one editor session per request, driven by form posts.
// ABOUTME: Outcomes travel to the next page through the flash cookie.

package admin

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/pyconkr/console/internal/backend"
	"github.com/pyconkr/console/internal/editor"
	"github.com/pyconkr/console/internal/i18n"
	"github.com/pyconkr/console/internal/keys"
	"github.com/pyconkr/console/internal/notify"
)

// navigator records where the editor wants to go; the handler redirects there.
type navigator struct {
	target string
}

func (n *navigator) Navigate(path string) { n.target = path }

// confirmer answers with what the submitted form said.
type confirmer bool

func (c confirmer) Confirm(string) bool { return bool(c) }

// recorder keeps the last reported error so the response status can follow it.
type recorder struct {
	*notify.Relay
	err error
}

func (r *recorder) Error(err error) notify.Notification {
	r.err = err
	return r.Relay.Error(err)
}

type session struct {
	desc  editor.Descriptor
	lang  i18n.Language
	ed    *editor.Editor
	notes *recorder
	nav   *navigator
}

func (h *Handlers) relay(lang i18n.Language) *notify.Relay {
	return notify.NewRelay(
		notify.WithLanguage(lang),
		notify.WithLogger(h.cfg.Logger),
		notify.WithTTL(h.cfg.NotificationTTL),
	)
}

// open starts an editor for the addressed instance and loads it.
func (h *Handlers) open(r *http.Request, confirmed bool) *session {
	s := &session{
		desc: descriptorFrom(r),
		lang: h.language(r),
		nav:  &navigator{},
	}
	s.notes = &recorder{Relay: h.relay(s.lang)}
	s.ed = editor.New(s.desc, editor.Deps{
		Client:    h.cfg.Client,
		Schemas:   h.cfg.Schemas,
		Notifier:  s.notes,
		Navigator: s.nav,
		Confirmer: confirmer(confirmed),
		Keys:      keys.NewBus(),
		Logger:    h.cfg.Logger,
	}, editor.Options{Language: s.lang})
	s.ed.Start(r.Context())
	return s
}

type editorPage struct {
	page
	View          editor.View
	Action        string
	DeleteAction  string
	Collection    string
	ConfirmDelete string
	FailedMessage string
}

func (h *Handlers) renderEditor(w http.ResponseWriter, r *http.Request, s *session, status int) {
	view := s.ed.View()
	if cerr, ok := backend.AsClientError(s.notes.err); ok && len(view.Errors) == 0 {
		if fe := cerr.FieldErrors(); len(fe) > 0 {
			view.Errors = fe
		}
	}

	action := s.desc.CreatePath()
	if !s.desc.CreateMode() {
		action = s.desc.InstancePath(s.desc.ID)
	}

	data := editorPage{
		page:          h.newPage(w, r, view.Title),
		View:          view,
		Action:        action,
		DeleteAction:  action + "/delete",
		Collection:    s.desc.CollectionPath(),
		ConfirmDelete: i18n.T(s.lang, i18n.MsgConfirmDelete),
		FailedMessage: i18n.T(s.lang, i18n.MsgUnknownError),
	}
	data.Notifications = append(data.Notifications, s.notes.Active()...)
	h.render(w, status, "editor", data)
}

func (h *Handlers) loadStatus(s *session) int {
	if s.ed.State() == editor.LoadFailed {
		return statusFor(s.notes.err)
	}
	return http.StatusOK
}

func (h *Handlers) editPage(w http.ResponseWriter, r *http.Request) {
	s := h.open(r, false)
	defer s.ed.Stop()
	h.renderEditor(w, r, s, h.loadStatus(s))
}

func (h *Handlers) finish(w http.ResponseWriter, r *http.Request, s *session, fallback string) {
	if err := h.cfg.Flash.Write(w, s.notes.Drain()); err != nil {
		h.logger.Warn("Failed to write flash cookie", zap.Error(err))
	}
	target := s.nav.target
	if target == "" {
		target = fallback
	}
	redirect(w, r, target)
}

func (h *Handlers) submit(w http.ResponseWriter, r *http.Request) {
	s := h.open(r, false)
	defer s.ed.Stop()
	if s.ed.State() == editor.LoadFailed {
		h.renderEditor(w, r, s, h.loadStatus(s))
		return
	}

	inputs, err := readInputs(r)
	if err != nil {
		s.notes.Error(err)
		h.renderEditor(w, r, s, http.StatusBadRequest)
		return
	}
	if err := s.ed.ApplyForm(inputs); err != nil {
		h.rejected(w, r, s, err)
		return
	}

	outcome, err := s.ed.Submit(r.Context())
	if err != nil {
		h.rejected(w, r, s, err)
		return
	}
	if !outcome.Succeeded() {
		h.renderEditor(w, r, s, statusFor(outcome.Err))
		return
	}

	fallback := s.desc.CollectionPath()
	if !s.desc.CreateMode() {
		fallback = s.desc.InstancePath(s.desc.ID)
	}
	h.finish(w, r, s, fallback)
}

// rejected re-renders the form after a submission the editor refused to send.
func (h *Handlers) rejected(w http.ResponseWriter, r *http.Request, s *session, err error) {
	status := http.StatusUnprocessableEntity
	switch {
	case errors.Is(err, editor.ErrNotModifiable):
		status = http.StatusForbidden
	case errors.Is(err, editor.ErrBusy):
		status = http.StatusConflict
		s.notes.Notify(notify.Warning, i18n.T(s.lang, i18n.MsgBusy))
	default:
		s.notes.Notify(notify.Error, i18n.T(s.lang, i18n.MsgInvalidForm))
	}
	h.logger.Debug("Submission rejected", zap.String("app", s.desc.App), zap.String("resource", s.desc.Resource), zap.Error(err))
	h.renderEditor(w, r, s, status)
}

func (h *Handlers) remove(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s := h.open(r, r.PostForm.Get("confirm") == "yes")
	defer s.ed.Stop()

	outcome, err := s.ed.Delete(r.Context())
	switch {
	case err != nil:
		h.renderEditor(w, r, s, h.loadStatus(s))
	case outcome.Declined:
		h.renderEditor(w, r, s, http.StatusOK)
	case outcome.Err != nil:
		h.renderEditor(w, r, s, statusFor(outcome.Err))
	default:
		h.finish(w, r, s, s.desc.CollectionPath())
	}
}

// ABOUTME: HTTP pages of the participant portal: overview, session editor and audit preview.
// ABOUTME: Requests carry the speaker's own credentials through to the backend.

package portal

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pyconkr/console/internal/backend"
	"github.com/pyconkr/console/internal/i18n"
	"github.com/pyconkr/console/internal/notify"
)

// Config wires the portal's collaborators.
type Config struct {
	Client          Client
	Flash           *notify.Flash
	Language        i18n.Language
	NotificationTTL time.Duration
	Logger          *zap.Logger
}

type Handlers struct {
	cfg     Config
	service *Service
	logger  *zap.Logger
}

func NewHandlers(cfg Config) *Handlers {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Language == "" {
		cfg.Language = i18n.Korean
	}
	if cfg.Flash == nil {
		cfg.Flash = notify.NewFlash(nil, false)
	}
	return &Handlers{
		cfg:     cfg,
		service: NewService(cfg.Client, cfg.Logger),
		logger:  cfg.Logger.Named("portal"),
	}
}

func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/portal", func(r chi.Router) {
		r.Use(i18n.Middleware(h.cfg.Language))
		r.Get("/", h.overview)
		r.Get("/presentations/{id}", h.editPage)
		r.Post("/presentations/{id}", h.submit)
		r.Get("/modification-audits/{id}", h.auditPage)
		r.Post("/modification-audits/{id}/cancel", h.cancel)
	})
}

// formConfirmer answers with what the submitted form said.
type formConfirmer bool

func (c formConfirmer) Confirm(string) bool { return bool(c) }

func (h *Handlers) language(r *http.Request) i18n.Language {
	return i18n.FromContext(r.Context(), h.cfg.Language)
}

func (h *Handlers) ui(r *http.Request, confirmed bool) (UI, *notify.Relay) {
	lang := h.language(r)
	relay := notify.NewRelay(
		notify.WithLanguage(lang),
		notify.WithLogger(h.cfg.Logger),
		notify.WithTTL(h.cfg.NotificationTTL),
	)
	return UI{Notifier: relay, Confirmer: formConfirmer(confirmed), Language: lang}, relay
}

type page struct {
	Title         string
	Lang          i18n.Language
	Notifications []notify.Notification
}

func (h *Handlers) newPage(w http.ResponseWriter, r *http.Request, title string) page {
	p := page{Title: title, Lang: h.language(r)}
	flashed, err := h.cfg.Flash.Read(w, r)
	if err != nil {
		h.logger.Warn("Dropping unreadable flash cookie", zap.Error(err))
	}
	p.Notifications = flashed
	return p
}

func (h *Handlers) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := renderPage(w, name, data); err != nil {
		h.logger.Error("Failed to render page", zap.String("page", name), zap.Error(err))
	}
}

func statusFor(err error) int {
	if cerr, ok := backend.AsClientError(err); ok && cerr.Status >= 400 && cerr.Status < 500 {
		return cerr.Status
	}
	return http.StatusBadGateway
}

type messagePage struct {
	page
	Message string
}

// fail renders a backend failure, asking the user to sign in on 401/403.
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	lang := h.language(r)
	msg := i18n.T(lang, i18n.MsgUnknownError)
	if cerr, ok := backend.AsClientError(err); ok {
		switch {
		case cerr.IsRequiredAuth():
			msg = i18n.T(lang, i18n.MsgSignInRequired)
		case cerr.Detail() != "":
			msg = cerr.Detail()
		}
	}
	h.logger.Warn("Portal request failed", zap.String("path", r.URL.Path), zap.Error(err))
	h.render(w, statusFor(err), "message", messagePage{page: h.newPage(w, r, i18n.T(lang, i18n.MsgPortalTitle)), Message: msg})
}

type overviewPage struct {
	page
	User          backend.PortalUser
	DisplayName   string
	Presentations []backend.Presentation
	Audits        []backend.ModificationAudit
}

func displayName(u backend.PortalUser, lang i18n.Language) string {
	name := i18n.Localized{Ko: deref(u.NicknameKo), En: deref(u.NicknameEn)}.Get(lang)
	if name == "" {
		return u.Username
	}
	return name
}

func (h *Handlers) overview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	me, err := h.cfg.Client.Me(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	presentations, err := h.cfg.Client.ListPresentations(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	audits, err := h.cfg.Client.ListModificationAudits(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	lang := h.language(r)
	h.render(w, http.StatusOK, "overview", overviewPage{
		page:          h.newPage(w, r, i18n.T(lang, i18n.MsgPortalTitle)),
		User:          me,
		DisplayName:   displayName(me, lang),
		Presentations: presentations,
		Audits:        audits,
	})
}

func (h *Handlers) editPage(w http.ResponseWriter, r *http.Request) {
	p, err := h.cfg.Client.RetrievePresentation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	data := h.editorData(w, r, p, DraftFrom(p, h.logger), nil)
	h.render(w, http.StatusOK, "presentation", data)
}

func (h *Handlers) submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	p, err := h.cfg.Client.RetrievePresentation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	draft := DraftFromForm(r.PostForm)
	ui, relay := h.ui(r, r.PostForm.Get("confirm") == "yes")
	outcome, err := h.service.Submit(r.Context(), p, draft, ui)

	var fieldErrs FieldErrors
	status := http.StatusOK
	switch {
	case errors.As(err, &fieldErrs):
		status = http.StatusUnprocessableEntity
		relay.Notify(notify.Error, i18n.T(ui.Language, i18n.MsgInvalidForm))
	case errors.Is(err, ErrLocked):
		status = http.StatusConflict
		relay.Notify(notify.Warning, i18n.T(ui.Language, i18n.MsgModificationLocked))
	case errors.Is(err, ErrBusy):
		status = http.StatusConflict
		relay.Notify(notify.Warning, i18n.T(ui.Language, i18n.MsgBusy))
	case err != nil:
		status = http.StatusInternalServerError
		relay.Error(err)
	case outcome.Err != nil:
		status = statusFor(outcome.Err)
		if cerr, ok := backend.AsClientError(outcome.Err); ok {
			fieldErrs = cerr.FieldErrors()
		}
	case outcome.Declined:
	default:
		if err := h.cfg.Flash.Write(w, relay.Drain()); err != nil {
			h.logger.Warn("Failed to write flash cookie", zap.Error(err))
		}
		redirect(w, r, "/portal/presentations/"+p.ID)
		return
	}

	data := h.editorData(w, r, p, draft, fieldErrs)
	data.Notifications = append(data.Notifications, relay.Active()...)
	h.render(w, status, "presentation", data)
}

// auditRow is one field of a modification preview.
type auditRow struct {
	Label    string
	Original string
	Modified string
	Markdown bool
	Changed  bool
}

type auditPage struct {
	page
	Preview backend.ModificationAuditPreview
	Rows    []auditRow
}

func (h *Handlers) auditPage(w http.ResponseWriter, r *http.Request) {
	preview, err := h.cfg.Client.PreviewModificationAudit(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	lang := h.language(r)
	original := DraftFrom(preview.Original, nil)
	modified := DraftFrom(preview.Modified, nil)

	var rows []auditRow
	for _, f := range formFields {
		if f.name == "speaker_id" {
			continue
		}
		before, after := f.get(original), f.get(modified)
		rows = append(rows, auditRow{
			Label:    f.label.Get(lang),
			Original: before,
			Modified: after,
			Markdown: f.markdown,
			Changed:  before != after,
		})
	}
	title := preview.Modified.TitleKo
	if lang == i18n.English {
		title = preview.Modified.TitleEn
	}
	h.render(w, http.StatusOK, "audit", auditPage{
		page:    h.newPage(w, r, title),
		Preview: preview,
		Rows:    rows,
	})
}

func (h *Handlers) cancel(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ui, relay := h.ui(r, true)
	if _, err := h.service.Cancel(r.Context(), chi.URLParam(r, "id"), r.PostForm.Get("reason"), ui); err != nil {
		h.logger.Warn("Failed to cancel modification request", zap.Error(err))
	}
	if err := h.cfg.Flash.Write(w, relay.Drain()); err != nil {
		h.logger.Warn("Failed to write flash cookie", zap.Error(err))
	}
	redirect(w, r, "/portal")
}

func redirect(w http.ResponseWriter, r *http.Request, path string) {
	if lang := r.URL.Query().Get("lang"); lang != "" {
		path += "?" + url.Values{"lang": {lang}}.Encode()
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

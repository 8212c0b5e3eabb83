// ABOUTME: HTTP page listing public sessions with category filter buttons.
// ABOUTME: Category selection travels in the query string so every filter state is linkable.

package sessions

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pyconkr/console/internal/backend"
	"github.com/pyconkr/console/internal/i18n"
	"github.com/pyconkr/console/internal/schema"
)

//go:embed templates/*
var templateFS embed.FS

var listTmpl = template.Must(template.New("list.html").Funcs(template.FuncMap{
	"imageURL": schema.ImageURL,
}).ParseFS(templateFS, "templates/list.html"))

// Lister fetches the public session list.
type Lister interface {
	ListSessions(ctx context.Context, q backend.SessionQuery) ([]backend.Session, error)
}

// Config configures the session list page.
type Config struct {
	Client Lister
	// Event and Types are the defaults when the query string names none.
	Event      string
	Types      []string
	EnableLink bool
	Language   i18n.Language
	Logger     *zap.Logger
}

type Handlers struct {
	cfg    Config
	logger *zap.Logger
}

func NewHandlers(cfg Config) *Handlers {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Language == "" {
		cfg.Language = i18n.Korean
	}
	return &Handlers{cfg: cfg, logger: cfg.Logger.Named("sessions")}
}

func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(i18n.Middleware(h.cfg.Language))
		r.Get("/sessions", h.list)
	})
}

// Card is one rendered session.
type Card struct {
	ID         string
	Title      string
	Summary    string
	Image      string
	URL        string
	Speakers   []string
	Categories []string
}

// CardFor computes the display values of s.
func CardFor(s backend.Session) Card {
	c := Card{
		ID:    s.ID,
		Title: DisplayTitle(s.Title),
		Image: Image(s),
		URL:   DetailURL(s),
	}
	if s.Summary != nil {
		c.Summary = *s.Summary
	}
	for _, sp := range s.Speakers {
		c.Speakers = append(c.Speakers, sp.Nickname)
	}
	for _, cat := range s.Categories {
		c.Categories = append(c.Categories, cat.Name)
	}
	return c
}

type button struct {
	Name     string
	Href     string
	Selected bool
}

type listPage struct {
	Lang       i18n.Language
	Title      string
	Warning    string
	Buttons    []button
	Sessions   []Card
	EnableLink bool
	Error      string
}

func (h *Handlers) query(r *http.Request) backend.SessionQuery {
	q := backend.SessionQuery{Event: h.cfg.Event, Types: h.cfg.Types}
	if event := r.URL.Query().Get("event"); event != "" {
		q.Event = event
	}
	if raw := r.URL.Query().Get("types"); raw != "" {
		q.Types = nil
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				q.Types = append(q.Types, t)
			}
		}
	}
	return q
}

// toggleHref links to the current page with id's selection flipped.
func toggleHref(r *http.Request, selected []string, id string) string {
	v := url.Values{}
	for _, key := range []string{"event", "types", "lang"} {
		if val := r.URL.Query().Get(key); val != "" {
			v.Set(key, val)
		}
	}
	for _, c := range Toggle(selected, id) {
		v.Add("category", c)
	}
	if len(v) == 0 {
		return r.URL.Path
	}
	return r.URL.Path + "?" + v.Encode()
}

func (h *Handlers) list(w http.ResponseWriter, r *http.Request) {
	lang := i18n.FromContext(r.Context(), h.cfg.Language)
	data := listPage{
		Lang:       lang,
		Title:      i18n.T(lang, i18n.MsgSessionsTitle),
		Warning:    i18n.T(lang, i18n.MsgSessionWarning),
		EnableLink: h.cfg.EnableLink,
	}

	status := http.StatusOK
	all, err := h.cfg.Client.ListSessions(r.Context(), h.query(r))
	if err != nil {
		h.logger.Error("Failed to list sessions", zap.Error(err))
		status = http.StatusBadGateway
		if cerr, ok := backend.AsClientError(err); ok && cerr.Status >= 400 && cerr.Status < 500 {
			status = cerr.Status
		}
		data.Error = i18n.T(lang, i18n.MsgUnknownError)
	}

	selected := r.URL.Query()["category"]
	categories := Categories(all)
	if ShowCategoryButtons(categories) {
		for _, c := range categories {
			data.Buttons = append(data.Buttons, button{
				Name:     c.Name,
				Href:     toggleHref(r, selected, c.ID),
				Selected: contains(selected, c.ID),
			})
		}
	}
	for _, s := range Filter(all, selected) {
		data.Sessions = append(data.Sessions, CardFor(s))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := listTmpl.ExecuteTemplate(w, "list.html", data); err != nil {
		h.logger.Error("Failed to render session list", zap.Error(err))
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

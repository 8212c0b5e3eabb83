// ABOUTME: HTTP handlers for the admin console: dashboard, resource lists, editor pages and logs.
// ABOUTME: Each editor request runs one editor session against the backend and renders its view.

package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pyconkr/console/internal/backend"
	"github.com/pyconkr/console/internal/editor"
	"github.com/pyconkr/console/internal/i18n"
	"github.com/pyconkr/console/internal/notify"
	"github.com/pyconkr/console/internal/schema"
	"github.com/pyconkr/console/internal/store"
)

// maxUploadSize bounds multipart forms carrying file fields.
const maxUploadSize = 32 << 20

// Client is the backend surface the console needs.
type Client interface {
	editor.ResourceClient
	List(ctx context.Context, app, resource string) ([]backend.Resource, error)
}

// Resource is one editable resource of an app.
type Resource struct {
	Slug string
	Name string
}

// App groups the resources shown in navigation.
type App struct {
	Name      string
	Resources []Resource
}

// Config wires the console's collaborators.
type Config struct {
	Client          Client
	Schemas         backend.SchemaFetcher
	Store           *store.Store
	Flash           *notify.Flash
	Apps            []App
	Language        i18n.Language
	NotificationTTL time.Duration
	Logger          *zap.Logger
}

// Handlers serves the admin console.
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
	if cfg.Flash == nil {
		cfg.Flash = notify.NewFlash(nil, false)
	}
	return &Handlers{cfg: cfg, logger: cfg.Logger.Named("admin")}
}

func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(i18n.Middleware(h.cfg.Language))

		r.Get("/", h.dashboard)
		r.Get("/logs", h.logsList)
		r.Get("/healthz", h.health)
		r.Handle("/metrics", promhttp.Handler())
		r.Get("/api/schema/{app}/{resource}", h.schemaFields)

		r.Route("/{app}/{resource}", func(r chi.Router) {
			r.Get("/", h.list)
			r.Get("/create", h.editPage)
			r.Post("/create", h.submit)
			r.Get("/{id}", h.editPage)
			r.Post("/{id}", h.submit)
			r.Post("/{id}/delete", h.remove)
		})
	})
}

func (h *Handlers) language(r *http.Request) i18n.Language {
	return i18n.FromContext(r.Context(), h.cfg.Language)
}

// page carries what the layout needs.
type page struct {
	Title         string
	Lang          i18n.Language
	Apps          []App
	Notifications []notify.Notification
}

func (h *Handlers) newPage(w http.ResponseWriter, r *http.Request, title string) page {
	p := page{Title: title, Lang: h.language(r), Apps: h.cfg.Apps}
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

func (h *Handlers) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// AppDashboardData is one app's card on the dashboard.
type AppDashboardData struct {
	Name           string
	RequestCount   int
	ErrorRate      float64
	RecentRequests []*store.RequestLog
	Resources      []ResourceLink
}

// ResourceLink is a quick link to a resource list.
type ResourceLink struct {
	Name string
	Slug string
	URL  string
}

type dashboardPage struct {
	page
	Stats     *store.RequestLogStats
	Dashboard []AppDashboardData
}

func (h *Handlers) dashboard(w http.ResponseWriter, r *http.Request) {
	data := dashboardPage{page: h.newPage(w, r, "Dashboard")}
	data.Dashboard = h.dashboardData(r.Context())
	if h.cfg.Store != nil {
		stats, err := h.cfg.Store.GetRequestLogStats(r.Context())
		if err != nil {
			h.logger.Warn("Failed to load request stats", zap.Error(err))
		}
		data.Stats = stats
	}
	h.render(w, http.StatusOK, "dashboard", data)
}

func (h *Handlers) dashboardData(ctx context.Context) []AppDashboardData {
	yesterday := time.Now().Add(-24 * time.Hour)
	out := make([]AppDashboardData, 0, len(h.cfg.Apps))

	for _, app := range h.cfg.Apps {
		d := AppDashboardData{Name: app.Name}
		for _, res := range app.Resources {
			d.Resources = append(d.Resources, ResourceLink{
				Name: res.Name,
				Slug: res.Slug,
				URL:  editor.Descriptor{App: app.Name, Resource: res.Slug}.CollectionPath(),
			})
		}
		if h.cfg.Store != nil {
			d.RequestCount, _ = h.cfg.Store.GetAppRequestCount(ctx, app.Name, yesterday)
			d.ErrorRate, _ = h.cfg.Store.GetAppErrorRate(ctx, app.Name, yesterday)
			d.RecentRequests, _ = h.cfg.Store.GetRecentRequests(ctx, app.Name, 5)
		}
		out = append(out, d)
	}
	return out
}

type listRow struct {
	ID    string
	Path  string
	Cells []string
}

type listPage struct {
	page
	CreatePath    string
	CreateLabel   string
	Columns       []string
	Rows          []listRow
	Failed        bool
	FailedMessage string
}

func descriptorFrom(r *http.Request) editor.Descriptor {
	return editor.Descriptor{
		App:      chi.URLParam(r, "app"),
		Resource: chi.URLParam(r, "resource"),
		ID:       chi.URLParam(r, "id"),
	}
}

func (h *Handlers) list(w http.ResponseWriter, r *http.Request) {
	desc := descriptorFrom(r)
	lang := h.language(r)
	data := listPage{
		page:        h.newPage(w, r, resourceTitle(desc)),
		CreatePath:  desc.CreatePath(),
		CreateLabel: i18n.T(lang, i18n.MsgCreateNew),
	}

	info, err := h.cfg.Schemas.FetchSchema(r.Context(), desc.App, desc.Resource)
	if err == nil {
		var items []backend.Resource
		items, err = h.cfg.Client.List(r.Context(), desc.App, desc.Resource)
		if err == nil {
			data.Columns = listColumns(info)
			for _, item := range items {
				id := schema.Stringify(item["id"])
				row := listRow{ID: id, Path: desc.InstancePath(id)}
				for _, col := range data.Columns {
					row.Cells = append(row.Cells, schema.Stringify(item[col]))
				}
				data.Rows = append(data.Rows, row)
			}
		}
	}
	if err != nil {
		h.logger.Error("Failed to load resource list", zap.String("app", desc.App), zap.String("resource", desc.Resource), zap.Error(err))
		relay := h.relay(lang)
		relay.Error(err)
		data.Notifications = append(data.Notifications, relay.Active()...)
		data.Failed = true
		data.FailedMessage = i18n.T(lang, i18n.MsgUnknownError)
		h.render(w, statusFor(err), "list", data)
		return
	}
	h.render(w, http.StatusOK, "list", data)
}

// listColumns uses the ui:list_columns hint, or the first few writable fields.
func listColumns(info backend.SchemaInfo) []string {
	if len(info.Hints.ListColumns) > 0 {
		return info.Hints.ListColumns
	}
	writable, _ := schema.Partition(info.Schema)
	cols := writable.FieldNames()
	if len(cols) > 3 {
		cols = cols[:3]
	}
	return cols
}

func resourceTitle(d editor.Descriptor) string {
	return fmt.Sprintf("%s > %s", d.App, d.Resource)
}

// statusFor mirrors backend client errors; transport and server failures map to 502.
func statusFor(err error) int {
	if cerr, ok := backend.AsClientError(err); ok && cerr.Status >= 400 && cerr.Status < 500 {
		return cerr.Status
	}
	return http.StatusBadGateway
}

type schemaFieldsResponse struct {
	App      string           `json:"app"`
	Resource string           `json:"resource"`
	Fields   []schema.Control `json:"fields"`
	ReadOnly []string         `json:"read_only"`
}

func (h *Handlers) schemaFields(w http.ResponseWriter, r *http.Request) {
	app, resource := chi.URLParam(r, "app"), chi.URLParam(r, "resource")
	info, err := h.cfg.Schemas.FetchSchema(r.Context(), app, resource)
	if err != nil {
		writeJSONError(w, statusFor(err), err)
		return
	}

	writable, readOnly := schema.Partition(info.Schema)
	resp := schemaFieldsResponse{App: app, Resource: resource, ReadOnly: readOnly.FieldNames()}
	for _, f := range schema.Compile(writable, info.Hints) {
		resp.Fields = append(resp.Fields, f.Render(nil))
	}
	if resp.ReadOnly == nil {
		resp.ReadOnly = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func writeJSONError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

type logsPage struct {
	page
	Logs         []*store.RequestLog
	Stats        *store.RequestLogStats
	TopEndpoints []store.EndpointStat
	AppNames     []string
	SelectedApp  string
	Query        store.RequestLogQuery
}

func (h *Handlers) logsList(w http.ResponseWriter, r *http.Request) {
	if h.cfg.Store == nil {
		http.NotFound(w, r)
		return
	}
	ctx := r.Context()
	q := store.RequestLogQuery{
		Limit:      100,
		App:        r.URL.Query().Get("app"),
		Method:     r.URL.Query().Get("method"),
		PathPrefix: r.URL.Query().Get("path"),
		UserID:     r.URL.Query().Get("user"),
	}
	if sc := r.URL.Query().Get("status"); sc != "" {
		q.StatusCode, _ = strconv.Atoi(sc)
	}

	logs, err := h.cfg.Store.GetRequestLogs(ctx, &q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	for _, log := range logs {
		log.RequestBody = prettyJSON(log.RequestBody)
		log.ResponseBody = prettyJSON(log.ResponseBody)
	}

	stats, err := h.cfg.Store.GetRequestLogStats(ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	top, err := h.cfg.Store.GetTopEndpoints(ctx, 10)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	names := make([]string, 0, len(h.cfg.Apps))
	for _, app := range h.cfg.Apps {
		names = append(names, app.Name)
	}

	h.render(w, http.StatusOK, "logs", logsPage{
		page:         h.newPage(w, r, "Logs"),
		Logs:         logs,
		Stats:        stats,
		TopEndpoints: top,
		AppNames:     names,
		SelectedApp:  q.App,
		Query:        q,
	})
}

// prettyJSON formats JSON with indentation, or returns the original string if not valid JSON
func prettyJSON(s string) string {
	if s == "" {
		return s
	}
	var obj any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return s
	}
	formatted, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return s
	}
	return string(formatted)
}

// readInputs turns a urlencoded or multipart form into per-field inputs.
func readInputs(r *http.Request) (map[string]schema.Input, error) {
	err := r.ParseMultipartForm(maxUploadSize)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse form: %w", err)
	}

	inputs := make(map[string]schema.Input, len(r.PostForm))
	for name, values := range r.PostForm {
		inputs[name] = schema.Input{Values: values}
	}
	if r.MultipartForm == nil {
		return inputs, nil
	}

	for name, headers := range r.MultipartForm.File {
		if len(headers) == 0 || headers[0].Size == 0 {
			continue
		}
		fh := headers[0]
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open upload %s: %w", name, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read upload %s: %w", name, err)
		}

		in := inputs[name]
		in.File = &schema.Upload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		}
		inputs[name] = in
	}
	return inputs, nil
}

func redirect(w http.ResponseWriter, r *http.Request, path string) {
	if lang := r.URL.Query().Get("lang"); lang != "" {
		path += "?" + url.Values{"lang": {lang}}.Encode()
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

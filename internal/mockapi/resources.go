// ABOUTME: Generic admin API handlers: schema document, list, create, retrieve, update, delete.
// ABOUTME: Payloads are reduced to writable fields and validated against the resource schema.

package mockapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apierrors "github.com/pyconkr/console/internal/errors"
	"github.com/pyconkr/console/internal/schema"
	"github.com/pyconkr/console/internal/store"
	"github.com/pyconkr/console/plugins/core"
)

type compiled struct {
	plugin    core.Plugin
	resource  core.Resource
	writable  schema.ResourceSchema
	validator *schema.Validator
}

type ctxKey struct{}

func (s *Server) compile(app, slug string) (*compiled, error) {
	key := app + "/" + slug
	if c, ok := s.validators.Load(key); ok {
		return c.(*compiled), nil
	}

	p, _ := core.Get(app)
	res, _ := core.Lookup(app, slug)
	full, hints, err := res.Decode()
	if err != nil {
		return nil, err
	}
	writable, _ := schema.Partition(full)
	v, err := schema.NewValidator(writable, hints)
	if err != nil {
		return nil, err
	}

	c := &compiled{plugin: p, resource: res, writable: writable, validator: v}
	s.validators.Store(key, c)
	return c, nil
}

// resolve looks up the addressed resource and stores it in the request context.
func (s *Server) resolve(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app, slug := chi.URLParam(r, "app"), chi.URLParam(r, "resource")
		if _, ok := core.Lookup(app, slug); !ok {
			apierrors.WriteError(w, http.StatusNotFound, apierrors.ErrNotFound, "찾을 수 없습니다.")
			return
		}
		c, err := s.compile(app, slug)
		if err != nil {
			s.logger.Error("Invalid resource declaration", zap.String("app", app), zap.String("resource", slug), zap.Error(err))
			apierrors.WriteError(w, http.StatusInternalServerError, apierrors.ErrInternal, err.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, c)))
	})
}

func resourceFrom(r *http.Request) *compiled {
	return r.Context().Value(ctxKey{}).(*compiled)
}

func (s *Server) schemaDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := resourceFrom(r).resource.Document()
	if err != nil {
		apierrors.WriteError(w, http.StatusInternalServerError, apierrors.ErrInternal, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(doc)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	c := resourceFrom(r)
	docs, err := core.Documents(r.Context(), s.store, c.plugin.Name(), c.resource.Slug)
	if err != nil {
		apierrors.WriteError(w, http.StatusInternalServerError, apierrors.ErrInternal, err.Error())
		return
	}
	core.WriteJSON(w, http.StatusOK, docs)
}

func (s *Server) retrieve(w http.ResponseWriter, r *http.Request) {
	c := resourceFrom(r)
	rec, ok := s.find(w, r, c)
	if !ok {
		return
	}
	core.WriteJSON(w, http.StatusOK, rec.Data)
}

func (s *Server) find(w http.ResponseWriter, r *http.Request, c *compiled) (*store.Record, bool) {
	rec, err := s.store.GetResource(r.Context(), c.plugin.Name(), c.resource.Slug, chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		apierrors.WriteError(w, http.StatusNotFound, apierrors.ErrNotFound, "찾을 수 없습니다.")
		return nil, false
	}
	if err != nil {
		apierrors.WriteError(w, http.StatusInternalServerError, apierrors.ErrInternal, err.Error())
		return nil, false
	}
	return rec, true
}

// payload decodes the body and keeps only writable fields.
func (s *Server) payload(w http.ResponseWriter, r *http.Request, c *compiled) (map[string]any, bool) {
	var body map[string]any
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(&body); err != nil {
		apierrors.WriteError(w, http.StatusBadRequest, apierrors.ErrParse, "JSON 형식이 올바르지 않습니다.")
		return nil, false
	}
	out := make(map[string]any, len(body))
	for _, name := range c.writable.FieldNames() {
		if v, ok := body[name]; ok {
			out[name] = v
		}
	}
	return out, true
}

func writable(c *compiled, doc map[string]any) map[string]any {
	out := map[string]any{}
	for _, name := range c.writable.FieldNames() {
		if v, ok := doc[name]; ok {
			out[name] = v
		}
	}
	return out
}

func (s *Server) validate(w http.ResponseWriter, c *compiled, draft map[string]any) bool {
	err := c.validator.Validate(draft)
	if err == nil {
		return true
	}
	var verrs schema.ValidationErrors
	if !errors.As(err, &verrs) {
		apierrors.WriteError(w, http.StatusBadRequest, apierrors.ErrInvalid, err.Error())
		return false
	}
	details := make([]apierrors.DetailedError, 0, len(verrs))
	for _, fe := range verrs {
		d := apierrors.DetailedError{Code: apierrors.ErrInvalid, Detail: fe.Message}
		if strings.Contains(fe.Message, "required") {
			d.Code = apierrors.ErrRequired
		}
		if fe.Field != "" {
			d.Attr = apierrors.Attr(fe.Field)
		}
		details = append(details, d)
	}
	apierrors.WriteValidationErrors(w, details)
	return false
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	c := resourceFrom(r)
	draft, ok := s.payload(w, r, c)
	if !ok {
		return
	}
	for _, p := range c.writable.Properties {
		if _, set := draft[p.Name]; !set && p.Default != nil {
			draft[p.Name] = p.Default
		}
	}
	if !s.validate(w, c, draft) {
		return
	}

	doc, err := core.Insert(r.Context(), s.store, c.plugin.Name(), c.resource.Slug, draft)
	if err != nil {
		apierrors.WriteError(w, http.StatusInternalServerError, apierrors.ErrInternal, err.Error())
		return
	}
	s.logger.Info("Resource created", zap.String("app", c.plugin.Name()), zap.String("resource", c.resource.Slug), zap.Any("id", doc["id"]))
	core.WriteJSON(w, http.StatusCreated, doc)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	c := resourceFrom(r)
	rec, ok := s.find(w, r, c)
	if !ok {
		return
	}
	changes, ok := s.payload(w, r, c)
	if !ok {
		return
	}

	before := rec.Data
	after := make(map[string]any, len(before)+len(changes))
	for k, v := range before {
		after[k] = v
	}
	for k, v := range changes {
		after[k] = v
	}
	if !s.validate(w, c, writable(c, after)) {
		return
	}

	doc, err := core.Save(r.Context(), s.store, c.plugin.Name(), c.resource.Slug, rec.ID, after)
	if err != nil {
		apierrors.WriteError(w, http.StatusInternalServerError, apierrors.ErrInternal, err.Error())
		return
	}
	if hook, ok := c.plugin.(core.UpdateHook); ok {
		if err := hook.AfterUpdate(r.Context(), s.store, c.resource.Slug, before, doc); err != nil {
			s.logger.Error("Update hook failed", zap.String("app", c.plugin.Name()), zap.String("resource", c.resource.Slug), zap.Error(err))
			apierrors.WriteError(w, http.StatusInternalServerError, apierrors.ErrInternal, err.Error())
			return
		}
	}
	core.WriteJSON(w, http.StatusOK, doc)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	c := resourceFrom(r)
	err := s.store.DeleteResource(r.Context(), c.plugin.Name(), c.resource.Slug, chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		apierrors.WriteError(w, http.StatusNotFound, apierrors.ErrNotFound, "찾을 수 없습니다.")
		return
	}
	if err != nil {
		apierrors.WriteError(w, http.StatusInternalServerError, apierrors.ErrInternal, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

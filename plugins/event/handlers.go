// ABOUTME: HTTP handlers for the participant portal and the public session list.
// ABOUTME: Portal routes require a signed-in user and only expose that user's presentations.

package event

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pyconkr/console/internal/auth"
	"github.com/pyconkr/console/internal/backend"
	apierrors "github.com/pyconkr/console/internal/errors"
	"github.com/pyconkr/console/plugins/core"
)

type handlers struct {
	store core.ResourceStore
}

func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.UserFromContext(r.Context()) == auth.Anonymous {
			apierrors.WriteError(w, http.StatusUnauthorized, apierrors.ErrNotAuthenticated, "자격 인증데이터(authentication credentials)가 제공되지 않았습니다.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *handlers) load(w http.ResponseWriter, r *http.Request) (*eventData, bool) {
	d, err := load(r.Context(), h.store)
	if err != nil {
		apierrors.WriteError(w, http.StatusInternalServerError, apierrors.ErrInternal, err.Error())
		return nil, false
	}
	return d, true
}

// owned loads the presentation named in the URL if the caller speaks in it.
func (h *handlers) owned(w http.ResponseWriter, r *http.Request) (*eventData, map[string]any, bool) {
	d, ok := h.load(w, r)
	if !ok {
		return nil, nil, false
	}
	id := chi.URLParam(r, "id")
	pres := d.presentation(id)
	if pres == nil || !d.ownedBy(id, auth.UserFromContext(r.Context())) {
		apierrors.WriteError(w, http.StatusNotFound, apierrors.ErrNotFound, "찾을 수 없습니다.")
		return nil, nil, false
	}
	return d, pres, true
}

func (h *handlers) listSessions(w http.ResponseWriter, r *http.Request) {
	d, ok := h.load(w, r)
	if !ok {
		return
	}
	english := strings.HasPrefix(strings.ToLower(r.Header.Get("Accept-Language")), "en")

	event := r.URL.Query().Get("event")
	var types map[string]bool
	if raw := r.URL.Query().Get("types"); raw != "" {
		types = map[string]bool{}
		for _, t := range strings.Split(raw, ",") {
			types[strings.TrimSpace(t)] = true
		}
	}

	sessions := []backend.Session{}
	for _, p := range d.presentations {
		if event != "" && str(p, "event") != event {
			continue
		}
		if types != nil && !types[str(p, "type")] {
			continue
		}
		sessions = append(sessions, d.session(p, english))
	}
	core.WriteJSON(w, http.StatusOK, sessions)
}

func (h *handlers) me(w http.ResponseWriter, r *http.Request) {
	d, ok := h.load(w, r)
	if !ok {
		return
	}
	username := auth.UserFromContext(r.Context())
	u := backend.PortalUser{ID: userID(username), Email: username + "@example.com", Username: username}
	for _, s := range d.speakers {
		if str(s, "user") == username {
			u.Email = str(s, "email")
			u.NicknameKo = strPtr(s, "nickname_ko")
			u.NicknameEn = strPtr(s, "nickname_en")
			break
		}
	}
	core.WriteJSON(w, http.StatusOK, u)
}

func (h *handlers) listPresentations(w http.ResponseWriter, r *http.Request) {
	d, ok := h.load(w, r)
	if !ok {
		return
	}
	username := auth.UserFromContext(r.Context())
	out := []backend.Presentation{}
	for _, p := range d.presentations {
		if d.ownedBy(str(p, "id"), username) {
			out = append(out, d.portalPresentation(p))
		}
	}
	core.WriteJSON(w, http.StatusOK, out)
}

func (h *handlers) getPresentation(w http.ResponseWriter, r *http.Request) {
	d, pres, ok := h.owned(w, r)
	if !ok {
		return
	}
	core.WriteJSON(w, http.StatusOK, d.portalPresentation(pres))
}

func (h *handlers) previewPresentation(w http.ResponseWriter, r *http.Request) {
	d, pres, ok := h.owned(w, r)
	if !ok {
		return
	}
	id := str(pres, "id")
	if a := d.pendingAudit(id); a != nil {
		u, err := updateOf(a)
		if err != nil {
			apierrors.WriteError(w, http.StatusInternalServerError, apierrors.ErrInternal, err.Error())
			return
		}
		modified, speakers := apply(pres, d.speakersOf(id), u)
		preview := &eventData{presentations: []map[string]any{modified}, speakers: speakers, categories: d.categories, audits: d.audits}
		core.WriteJSON(w, http.StatusOK, preview.portalPresentation(modified))
		return
	}
	core.WriteJSON(w, http.StatusOK, d.portalPresentation(pres))
}

func (h *handlers) patchPresentation(w http.ResponseWriter, r *http.Request) {
	d, pres, ok := h.owned(w, r)
	if !ok {
		return
	}
	id := str(pres, "id")

	var u backend.PresentationUpdate
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		apierrors.WriteError(w, http.StatusBadRequest, apierrors.ErrParse, "JSON 형식이 올바르지 않습니다.")
		return
	}
	u.ID = id

	var errs []apierrors.DetailedError
	if strings.TrimSpace(u.TitleKo) == "" {
		errs = append(errs, apierrors.DetailedError{Code: apierrors.ErrRequired, Detail: "발표 제목(한국어)을 입력해주세요.", Attr: apierrors.Attr("title_ko")})
	}
	if strings.TrimSpace(u.TitleEn) == "" {
		errs = append(errs, apierrors.DetailedError{Code: apierrors.ErrRequired, Detail: "발표 제목(영어)을 입력해주세요.", Attr: apierrors.Attr("title_en")})
	}
	if len(errs) > 0 {
		apierrors.WriteValidationErrors(w, errs)
		return
	}
	if d.pendingAudit(id) != nil {
		apierrors.WriteError(w, http.StatusBadRequest, apierrors.ErrInvalid, "이미 검토 중인 수정 요청이 있습니다.")
		return
	}

	var modified map[string]any
	raw, _ := json.Marshal(u)
	json.Unmarshal(raw, &modified)

	audit, err := core.Insert(r.Context(), h.store, app, "modification_audit", map[string]any{
		"status":        backend.AuditRequested,
		"instance_type": "presentation",
		"instance_id":   id,
		"user":          auth.UserFromContext(r.Context()),
		"reason":        "",
		"modified":      modified,
	})
	if err != nil {
		apierrors.WriteError(w, http.StatusInternalServerError, apierrors.ErrInternal, err.Error())
		return
	}
	d.audits = append(d.audits, audit)
	core.WriteJSON(w, http.StatusOK, d.portalPresentation(pres))
}

func (h *handlers) userAudits(d *eventData, username string) []map[string]any {
	var out []map[string]any
	for _, a := range d.audits {
		if str(a, "user") == username {
			out = append(out, a)
		}
	}
	return out
}

func (h *handlers) listAudits(w http.ResponseWriter, r *http.Request) {
	d, ok := h.load(w, r)
	if !ok {
		return
	}
	out := []backend.ModificationAudit{}
	for _, a := range h.userAudits(d, auth.UserFromContext(r.Context())) {
		out = append(out, auditOf(a))
	}
	core.WriteJSON(w, http.StatusOK, out)
}

func (h *handlers) ownedAudit(w http.ResponseWriter, r *http.Request) (*eventData, map[string]any, bool) {
	d, ok := h.load(w, r)
	if !ok {
		return nil, nil, false
	}
	a := d.audit(chi.URLParam(r, "id"))
	if a == nil || str(a, "user") != auth.UserFromContext(r.Context()) {
		apierrors.WriteError(w, http.StatusNotFound, apierrors.ErrNotFound, "찾을 수 없습니다.")
		return nil, nil, false
	}
	return d, a, true
}

func (h *handlers) previewAudit(w http.ResponseWriter, r *http.Request) {
	d, a, ok := h.ownedAudit(w, r)
	if !ok {
		return
	}
	pres := d.presentation(str(a, "instance_id"))
	if pres == nil {
		apierrors.WriteError(w, http.StatusNotFound, apierrors.ErrNotFound, "발표를 찾을 수 없습니다.")
		return
	}
	u, err := updateOf(a)
	if err != nil {
		apierrors.WriteError(w, http.StatusInternalServerError, apierrors.ErrInternal, err.Error())
		return
	}
	modified, speakers := apply(pres, d.speakersOf(str(pres, "id")), u)
	preview := &eventData{presentations: []map[string]any{modified}, speakers: speakers, categories: d.categories}

	core.WriteJSON(w, http.StatusOK, backend.ModificationAuditPreview{
		ModificationAudit: auditOf(a),
		Original:          d.portalPresentation(pres),
		Modified:          preview.portalPresentation(modified),
	})
}

func (h *handlers) cancelAudit(w http.ResponseWriter, r *http.Request) {
	_, a, ok := h.ownedAudit(w, r)
	if !ok {
		return
	}
	if str(a, "status") != backend.AuditRequested {
		apierrors.WriteError(w, http.StatusBadRequest, apierrors.ErrInvalid, "검토 중인 요청만 취소할 수 있습니다.")
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	json.NewDecoder(r.Body).Decode(&body)

	a = copyDoc(a)
	a["status"] = backend.AuditCancelled
	a["reason"] = body.Reason
	saved, err := core.Save(r.Context(), h.store, app, "modification_audit", str(a, "id"), a)
	if err != nil {
		apierrors.WriteError(w, http.StatusInternalServerError, apierrors.ErrInternal, err.Error())
		return
	}
	core.WriteJSON(w, http.StatusOK, auditOf(saved))
}

func (h *handlers) listPublicFiles(w http.ResponseWriter, r *http.Request) {
	core.WriteJSON(w, http.StatusOK, []backend.PublicFile{})
}

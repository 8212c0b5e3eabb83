// ABOUTME: Conversions between stored event documents and the backend wire types.
// ABOUTME: Applies modification requests to presentations and their speakers.

package event

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"sort"
	"strings"

	"github.com/pyconkr/console/internal/backend"
	"github.com/pyconkr/console/plugins/core"
)

func str(doc map[string]any, key string) string {
	s, _ := doc[key].(string)
	return s
}

func strPtr(doc map[string]any, key string) *string {
	s, ok := doc[key].(string)
	if !ok || s == "" {
		return nil
	}
	return &s
}

func stringList(doc map[string]any, key string) []string {
	items, _ := doc[key].([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func order(doc map[string]any) float64 {
	n, _ := doc["order"].(float64)
	return n
}

// userID derives a stable numeric id for a username.
func userID(username string) int {
	return int(crc32.ChecksumIEEE([]byte(username)) % 1_000_000)
}

// eventData is a snapshot of the event app's documents.
type eventData struct {
	presentations []map[string]any
	speakers      []map[string]any
	categories    map[string]map[string]any
	audits        []map[string]any
}

func load(ctx context.Context, s core.ResourceStore) (*eventData, error) {
	d := &eventData{categories: map[string]map[string]any{}}
	var err error
	if d.presentations, err = core.Documents(ctx, s, app, "presentation"); err != nil {
		return nil, err
	}
	if d.speakers, err = core.Documents(ctx, s, app, "speaker"); err != nil {
		return nil, err
	}
	if d.audits, err = core.Documents(ctx, s, app, "modification_audit"); err != nil {
		return nil, err
	}
	categories, err := core.Documents(ctx, s, app, "category")
	if err != nil {
		return nil, err
	}
	for _, c := range categories {
		d.categories[str(c, "id")] = c
	}
	return d, nil
}

func (d *eventData) presentation(id string) map[string]any {
	for _, p := range d.presentations {
		if str(p, "id") == id {
			return p
		}
	}
	return nil
}

// speakersOf returns the speakers of a presentation in display order.
func (d *eventData) speakersOf(id string) []map[string]any {
	var out []map[string]any
	for _, s := range d.speakers {
		if str(s, "presentation") == id {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return order(out[i]) < order(out[j]) })
	return out
}

// ownedBy reports whether username is one of the presentation's speakers.
func (d *eventData) ownedBy(id, username string) bool {
	for _, s := range d.speakersOf(id) {
		if str(s, "user") == username {
			return true
		}
	}
	return false
}

func (d *eventData) pendingAudit(id string) map[string]any {
	for _, a := range d.audits {
		if str(a, "instance_id") == id && str(a, "status") == backend.AuditRequested {
			return a
		}
	}
	return nil
}

func (d *eventData) audit(id string) map[string]any {
	for _, a := range d.audits {
		if str(a, "id") == id {
			return a
		}
	}
	return nil
}

func (d *eventData) portalPresentation(doc map[string]any) backend.Presentation {
	id := str(doc, "id")
	p := backend.Presentation{
		ID:            id,
		TitleKo:       str(doc, "title_ko"),
		TitleEn:       str(doc, "title_en"),
		SummaryKo:     str(doc, "summary_ko"),
		SummaryEn:     str(doc, "summary_en"),
		DescriptionKo: str(doc, "description_ko"),
		DescriptionEn: str(doc, "description_en"),
		SlideshowURL:  strPtr(doc, "slideshow_url"),
		Image:         strPtr(doc, "image"),
		Speakers:      []backend.PresentationSpeaker{},
	}
	for _, s := range d.speakersOf(id) {
		speaker := backend.PresentationSpeaker{
			ID:          str(s, "id"),
			BiographyKo: str(s, "biography_ko"),
			BiographyEn: str(s, "biography_en"),
			Image:       strPtr(s, "image"),
		}
		if user := str(s, "user"); user != "" {
			speaker.User = &backend.SpeakerUser{
				ID:         userID(user),
				Email:      str(s, "email"),
				NicknameKo: strPtr(s, "nickname_ko"),
				NicknameEn: strPtr(s, "nickname_en"),
			}
		}
		p.Speakers = append(p.Speakers, speaker)
	}
	if a := d.pendingAudit(id); a != nil {
		auditID := str(a, "id")
		p.HasRequestedModificationAudit = true
		p.RequestedModificationAuditID = &auditID
	}
	return p
}

func localized(doc map[string]any, key string, english bool) string {
	if english {
		if v := str(doc, key+"_en"); v != "" {
			return v
		}
	}
	return str(doc, key+"_ko")
}

func (d *eventData) session(doc map[string]any, english bool) backend.Session {
	id := str(doc, "id")
	s := backend.Session{
		ID:            id,
		Title:         localized(doc, "title", english),
		Description:   localized(doc, "description", english),
		SlideshowURL:  strPtr(doc, "slideshow_url"),
		Image:         strPtr(doc, "image"),
		Categories:    []backend.Category{},
		Speakers:      []backend.SessionSpeaker{},
		RoomSchedules: []backend.RoomSchedule{},
	}
	if summary := localized(doc, "summary", english); summary != "" {
		s.Summary = &summary
	}
	for _, cid := range stringList(doc, "categories") {
		if c, ok := d.categories[cid]; ok {
			s.Categories = append(s.Categories, backend.Category{ID: cid, Name: localized(c, "name", english)})
		}
	}
	for _, sp := range d.speakersOf(id) {
		s.Speakers = append(s.Speakers, backend.SessionSpeaker{
			ID:        str(sp, "id"),
			Nickname:  localized(sp, "nickname", english),
			Biography: localized(sp, "biography", english),
			Image:     strPtr(sp, "image"),
		})
	}
	if room := str(doc, "room_name"); room != "" {
		s.RoomSchedules = append(s.RoomSchedules, backend.RoomSchedule{
			ID:       id + "-schedule",
			RoomName: room,
			StartAt:  str(doc, "start_at"),
			EndAt:    str(doc, "end_at"),
		})
	}
	return s
}

func auditOf(doc map[string]any) backend.ModificationAudit {
	return backend.ModificationAudit{
		ID:           str(doc, "id"),
		Status:       str(doc, "status"),
		InstanceType: str(doc, "instance_type"),
		InstanceID:   str(doc, "instance_id"),
		CreatedAt:    str(doc, "created_at"),
		UpdatedAt:    str(doc, "updated_at"),
	}
}

// updateOf decodes the modification payload stored on an audit.
func updateOf(audit map[string]any) (backend.PresentationUpdate, error) {
	var u backend.PresentationUpdate
	raw, err := json.Marshal(audit["modified"])
	if err != nil {
		return u, err
	}
	if err := json.Unmarshal(raw, &u); err != nil {
		return u, fmt.Errorf("audit %s carries an invalid modification: %w", str(audit, "id"), err)
	}
	return u, nil
}

func copyDoc(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

func setNullable(doc map[string]any, key string, v *string) {
	if v == nil || strings.TrimSpace(*v) == "" {
		doc[key] = nil
		return
	}
	doc[key] = *v
}

// apply returns copies of the presentation and its speakers with u applied.
// Speakers not named in u are returned unchanged.
func apply(pres map[string]any, speakers []map[string]any, u backend.PresentationUpdate) (map[string]any, []map[string]any) {
	p := copyDoc(pres)
	p["title_ko"] = u.TitleKo
	p["title_en"] = u.TitleEn
	p["summary_ko"] = u.SummaryKo
	p["summary_en"] = u.SummaryEn
	p["description_ko"] = u.DescriptionKo
	p["description_en"] = u.DescriptionEn
	setNullable(p, "slideshow_url", u.SlideshowURL)
	setNullable(p, "image", u.Image)

	byID := make(map[string]backend.SpeakerUpdate, len(u.Speakers))
	for _, su := range u.Speakers {
		byID[su.ID] = su
	}
	out := make([]map[string]any, 0, len(speakers))
	for _, s := range speakers {
		s = copyDoc(s)
		if su, ok := byID[str(s, "id")]; ok {
			s["biography_ko"] = su.BiographyKo
			s["biography_en"] = su.BiographyEn
			setNullable(s, "image", su.Image)
		}
		out = append(out, s)
	}
	return p, out
}

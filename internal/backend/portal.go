// ABOUTME: Participant portal API: current user, presentations and modification audits.
// ABOUTME: Speakers edit their own presentation through audited modification requests.

package backend

import (
	"context"
	"net/http"
)

// PortalUser is the signed-in participant.
type PortalUser struct {
	ID         int     `json:"id"`
	Email      string  `json:"email"`
	Username   string  `json:"username"`
	NicknameKo *string `json:"nickname_ko"`
	NicknameEn *string `json:"nickname_en"`
}

// SpeakerUser is the account attached to a presentation speaker.
type SpeakerUser struct {
	ID         int     `json:"id"`
	Email      string  `json:"email"`
	NicknameKo *string `json:"nickname_ko"`
	NicknameEn *string `json:"nickname_en"`
}

// PresentationSpeaker is a speaker entry on a presentation.
type PresentationSpeaker struct {
	ID          string       `json:"id"`
	BiographyKo string       `json:"biography_ko"`
	BiographyEn string       `json:"biography_en"`
	Image       *string      `json:"image"`
	User        *SpeakerUser `json:"user,omitempty"`
}

// Presentation is a presentation as seen by its speaker.
type Presentation struct {
	ID            string                `json:"id"`
	TitleKo       string                `json:"title_ko"`
	TitleEn       string                `json:"title_en"`
	SummaryKo     string                `json:"summary_ko"`
	SummaryEn     string                `json:"summary_en"`
	DescriptionKo string                `json:"description_ko"`
	DescriptionEn string                `json:"description_en"`
	SlideshowURL  *string               `json:"slideshow_url"`
	Image         *string               `json:"image"`
	Speakers      []PresentationSpeaker `json:"speakers"`

	HasRequestedModificationAudit bool    `json:"has_requested_modification_audit"`
	RequestedModificationAuditID  *string `json:"requested_modification_audit_id"`
}

// SpeakerUpdate is the writable part of a speaker entry.
type SpeakerUpdate struct {
	ID          string  `json:"id"`
	BiographyKo string  `json:"biography_ko"`
	BiographyEn string  `json:"biography_en"`
	Image       *string `json:"image"`
}

// PresentationUpdate is a modification request payload.
type PresentationUpdate struct {
	ID            string          `json:"id"`
	TitleKo       string          `json:"title_ko"`
	TitleEn       string          `json:"title_en"`
	SummaryKo     string          `json:"summary_ko"`
	SummaryEn     string          `json:"summary_en"`
	DescriptionKo string          `json:"description_ko"`
	DescriptionEn string          `json:"description_en"`
	SlideshowURL  *string         `json:"slideshow_url"`
	Image         *string         `json:"image"`
	Speakers      []SpeakerUpdate `json:"speakers"`
}

// ModificationAudit is a pending or settled modification request.
type ModificationAudit struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	InstanceType string `json:"instance_type"`
	InstanceID   string `json:"instance_id"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// Modification audit statuses.
const (
	AuditRequested = "requested"
	AuditApproved  = "approved"
	AuditRejected  = "rejected"
	AuditCancelled = "cancelled"
)

// ModificationAuditPreview shows a request next to the current data.
type ModificationAuditPreview struct {
	ModificationAudit ModificationAudit `json:"modification_audit"`
	Original          Presentation      `json:"original"`
	Modified          Presentation      `json:"modified"`
}

// PublicFile is an uploaded file usable as an image reference.
type PublicFile struct {
	ID   string `json:"id"`
	File string `json:"file"`
	Name string `json:"name"`
}

const portalPrefix = "v1/participant-portal/"

// Me returns the signed-in participant.
func (c *Client) Me(ctx context.Context) (PortalUser, error) {
	var u PortalUser
	err := c.do(ctx, http.MethodGet, portalPrefix+"user/me/", nil, nil, &u)
	return u, err
}

// ListPresentations returns the caller's presentations.
func (c *Client) ListPresentations(ctx context.Context) ([]Presentation, error) {
	var out []Presentation
	err := c.do(ctx, http.MethodGet, portalPrefix+"presentation/", nil, nil, &out)
	return out, err
}

// RetrievePresentation returns one of the caller's presentations.
func (c *Client) RetrievePresentation(ctx context.Context, id string) (Presentation, error) {
	var p Presentation
	err := c.do(ctx, http.MethodGet, portalPrefix+"presentation/"+segment(id)+"/", nil, nil, &p)
	return p, err
}

// PreviewPresentation returns the presentation with its pending modification applied.
func (c *Client) PreviewPresentation(ctx context.Context, id string) (Presentation, error) {
	var p Presentation
	err := c.do(ctx, http.MethodGet, portalPrefix+"presentation/"+segment(id)+"/preview/", nil, nil, &p)
	return p, err
}

// PatchPresentation submits a modification request.
func (c *Client) PatchPresentation(ctx context.Context, update PresentationUpdate) (Presentation, error) {
	var p Presentation
	err := c.do(ctx, http.MethodPatch, portalPrefix+"presentation/"+segment(update.ID)+"/", nil, update, &p)
	return p, err
}

// ListModificationAudits returns the caller's modification requests.
func (c *Client) ListModificationAudits(ctx context.Context) ([]ModificationAudit, error) {
	var out []ModificationAudit
	err := c.do(ctx, http.MethodGet, portalPrefix+"modification-audit/", nil, nil, &out)
	return out, err
}

// PreviewModificationAudit returns a request next to the original data.
func (c *Client) PreviewModificationAudit(ctx context.Context, id string) (ModificationAuditPreview, error) {
	var out ModificationAuditPreview
	err := c.do(ctx, http.MethodGet, portalPrefix+"modification-audit/"+segment(id)+"/preview/", nil, nil, &out)
	return out, err
}

// CancelModificationAudit withdraws a pending request.
func (c *Client) CancelModificationAudit(ctx context.Context, id, reason string) (ModificationAudit, error) {
	var out ModificationAudit
	body := map[string]string{"id": id, "reason": reason}
	err := c.do(ctx, http.MethodPatch, portalPrefix+"modification-audit/"+segment(id)+"/cancel/", nil, body, &out)
	return out, err
}

// ListPublicFiles returns the caller's uploaded files.
func (c *Client) ListPublicFiles(ctx context.Context) ([]PublicFile, error) {
	var out []PublicFile
	err := c.do(ctx, http.MethodGet, portalPrefix+"public-file/", nil, nil, &out)
	return out, err
}

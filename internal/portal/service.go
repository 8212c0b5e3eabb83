// ABOUTME: Modification requests for a speaker's presentation and audit cancellation.
// ABOUTME: Guards submissions against pending audits, invalid drafts and double sends.

package portal

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/pyconkr/console/internal/backend"
	"github.com/pyconkr/console/internal/editor"
	"github.com/pyconkr/console/internal/i18n"
	"github.com/pyconkr/console/internal/notify"
)

var (
	// ErrLocked is returned while a modification request awaits review.
	ErrLocked = errors.New("a modification request is pending review")
	// ErrBusy is returned while a request for the same presentation is in flight.
	ErrBusy = errors.New("a modification request is already being sent")
)

// Client is the participant portal API.
type Client interface {
	Me(ctx context.Context) (backend.PortalUser, error)
	ListPresentations(ctx context.Context) ([]backend.Presentation, error)
	RetrievePresentation(ctx context.Context, id string) (backend.Presentation, error)
	PreviewPresentation(ctx context.Context, id string) (backend.Presentation, error)
	PatchPresentation(ctx context.Context, update backend.PresentationUpdate) (backend.Presentation, error)
	ListModificationAudits(ctx context.Context) ([]backend.ModificationAudit, error)
	PreviewModificationAudit(ctx context.Context, id string) (backend.ModificationAuditPreview, error)
	CancelModificationAudit(ctx context.Context, id, reason string) (backend.ModificationAudit, error)
	ListPublicFiles(ctx context.Context) ([]backend.PublicFile, error)
}

// Notifier receives user-visible outcomes.
type Notifier interface {
	Notify(sev notify.Severity, message string) notify.Notification
	Error(err error) notify.Notification
}

// UI is the per-interaction side of a submission.
type UI struct {
	Notifier  Notifier
	Confirmer editor.Confirmer
	Language  i18n.Language
}

// Outcome reports a submission that got past the local checks.
type Outcome struct {
	Presentation backend.Presentation
	Declined     bool
	Err          error
}

func (o Outcome) Succeeded() bool { return !o.Declined && o.Err == nil }

// Service sends modification requests.
type Service struct {
	client Client
	logger *zap.Logger

	mu       sync.Mutex
	inFlight map[string]bool
}

func NewService(client Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{client: client, logger: logger.Named("portal"), inFlight: map[string]bool{}}
}

// Locked reports whether p can't be edited until its audit is settled.
func Locked(p backend.Presentation) bool {
	return p.HasRequestedModificationAudit
}

func (s *Service) acquire(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[id] {
		return false
	}
	s.inFlight[id] = true
	return true
}

func (s *Service) release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, id)
}

// Submit asks for confirmation and sends d as a modification request for p.
// Refusals before anything is sent come back as errors: ErrLocked,
// FieldErrors or ErrBusy.
func (s *Service) Submit(ctx context.Context, p backend.Presentation, d Draft, ui UI) (Outcome, error) {
	if Locked(p) {
		return Outcome{}, ErrLocked
	}
	if err := d.Validate(ui.Language); err != nil {
		return Outcome{}, err
	}
	if !ui.Confirmer.Confirm(i18n.T(ui.Language, i18n.MsgConfirmModify)) {
		return Outcome{Declined: true}, nil
	}
	if !s.acquire(p.ID) {
		return Outcome{}, ErrBusy
	}
	defer s.release(p.ID)

	updated, err := s.client.PatchPresentation(ctx, d.Update(p.ID))
	if err != nil {
		modificationRequests.WithLabelValues("error").Inc()
		s.logger.Warn("Modification request failed", zap.String("presentation", p.ID), zap.Error(err))
		ui.Notifier.Error(err)
		return Outcome{Err: err}, nil
	}
	modificationRequests.WithLabelValues("requested").Inc()
	s.logger.Info("Modification requested", zap.String("presentation", p.ID))
	ui.Notifier.Notify(notify.Success, i18n.T(ui.Language, i18n.MsgModificationSent))
	return Outcome{Presentation: updated}, nil
}

// Cancel withdraws a pending modification request.
func (s *Service) Cancel(ctx context.Context, auditID, reason string, ui UI) (backend.ModificationAudit, error) {
	audit, err := s.client.CancelModificationAudit(ctx, auditID, reason)
	if err != nil {
		ui.Notifier.Error(err)
		return audit, err
	}
	s.logger.Info("Modification request cancelled", zap.String("audit", auditID))
	ui.Notifier.Notify(notify.Success, i18n.T(ui.Language, i18n.MsgAuditCancelled))
	return audit, nil
}

// ABOUTME: Notification relay turning outcomes and errors into transient, auto-dismissing messages.
// ABOUTME: Error notifications carry a localized wrapper plus the raw detail and log the original error.

package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pyconkr/console/internal/backend"
	"github.com/pyconkr/console/internal/i18n"
)

// Severity categorizes a notification.
type Severity string

const (
	Success Severity = "success"
	Error   Severity = "error"
	Info    Severity = "info"
	Warning Severity = "warning"
)

// Anchor is where notifications are displayed.
const Anchor = "bottom-center"

// DefaultTTL is how long a notification stays visible.
const DefaultTTL = 5 * time.Second

// Notification is one displayed message.
type Notification struct {
	ID        string    `json:"id"`
	Severity  Severity  `json:"severity"`
	Message   string    `json:"message"`
	Detail    string    `json:"detail,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Relay holds the queue of currently displayed notifications.
type Relay struct {
	mu     sync.Mutex
	queue  []Notification
	ttl    time.Duration
	lang   i18n.Language
	now    func() time.Time
	logger *zap.Logger
}

// Option configures a Relay.
type Option func(*Relay)

// WithTTL sets the auto-dismiss delay.
func WithTTL(ttl time.Duration) Option {
	return func(r *Relay) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithLanguage sets the language of generated messages.
func WithLanguage(lang i18n.Language) Option {
	return func(r *Relay) { r.lang = lang }
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Relay) { r.now = now }
}

// WithLogger sets the logger errors are reported to.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Relay) {
		if logger != nil {
			r.logger = logger.Named("notify")
		}
	}
}

// NewRelay returns an empty relay.
func NewRelay(opts ...Option) *Relay {
	r := &Relay{
		ttl:    DefaultTTL,
		lang:   i18n.Korean,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Notify queues a message and returns it.
func (r *Relay) Notify(sev Severity, message string) Notification {
	return r.push(Notification{Severity: sev, Message: message})
}

// Success queues a success message.
func (r *Relay) Success(message string) Notification {
	return r.Notify(Success, message)
}

// Error converts err into an error notification. Structured backend errors
// show the translated wrapper and the raw detail; anything else becomes the
// generic localized message. The original error is always logged.
func (r *Relay) Error(err error) Notification {
	if err == nil {
		return Notification{}
	}

	n := Notification{Severity: Error}
	if cerr, ok := backend.AsClientError(err); ok && cerr.Detail() != "" {
		n.Message = i18n.T(r.lang, i18n.MsgErrorWrapper)
		n.Detail = cerr.Detail()
		r.logger.Error("Request failed",
			zap.Int("status", cerr.Status),
			zap.String("type", cerr.Type),
			zap.String("detail", cerr.Detail()),
			zap.Error(err))
	} else {
		n.Message = i18n.T(r.lang, i18n.MsgUnknownError)
		r.logger.Error("Unexpected error", zap.Error(err))
	}
	return r.push(n)
}

func (r *Relay) push(n Notification) Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	n.ID = uuid.NewString()
	n.ExpiresAt = r.now().Add(r.ttl)
	r.queue = append(r.prune(), n)
	notificationsTotal.WithLabelValues(string(n.Severity)).Inc()
	return n
}

// prune drops expired notifications. Caller holds mu.
func (r *Relay) prune() []Notification {
	now := r.now()
	kept := r.queue[:0]
	for _, n := range r.queue {
		if now.Before(n.ExpiresAt) {
			kept = append(kept, n)
		}
	}
	return kept
}

// Active returns the notifications that have not yet expired, oldest first.
func (r *Relay) Active() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queue = r.prune()
	return append([]Notification(nil), r.queue...)
}

// Dismiss removes a notification before it expires.
func (r *Relay) Dismiss(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.queue[:0]
	for _, n := range r.queue {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	r.queue = kept
}

// Drain returns the active notifications and empties the queue.
func (r *Relay) Drain() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]Notification(nil), r.prune()...)
	r.queue = nil
	return out
}

// Restore re-queues notifications carried over from a previous request,
// keeping their ids and expiry.
func (r *Relay) Restore(ns []Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queue = append(r.queue, ns...)
	r.queue = r.prune()
}

// ABOUTME: Signed flash cookie carrying notifications across redirects.
// ABOUTME: HMAC-SHA256 over the JSON payload; the cookie is cleared once read.

package notify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// FlashCookieName is the cookie notifications travel in.
const FlashCookieName = "console_flash"

const flashCookieTTL = 30 * time.Second

// Flash reads and writes signed notification cookies.
type Flash struct {
	secret []byte
	secure bool
}

// NewFlash returns a codec signing with secret. secure marks cookies HTTPS-only.
func NewFlash(secret []byte, secure bool) *Flash {
	return &Flash{secret: secret, secure: secure}
}

func (f *Flash) sign(data []byte) []byte {
	mac := hmac.New(sha256.New, f.secret)
	mac.Write(data)
	return mac.Sum(nil)
}

// Write stores ns in the flash cookie. Writing nothing leaves cookies untouched.
func (f *Flash) Write(w http.ResponseWriter, ns []Notification) error {
	if len(ns) == 0 {
		return nil
	}
	payload, err := json.Marshal(ns)
	if err != nil {
		return fmt.Errorf("failed to marshal flash notifications: %w", err)
	}

	signed := append(f.sign(payload), payload...)
	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookieName,
		Value:    base64.URLEncoding.EncodeToString(signed),
		Path:     "/",
		MaxAge:   int(flashCookieTTL.Seconds()),
		Secure:   f.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Read returns the notifications in the flash cookie and clears it. A missing
// cookie yields nil without error.
func (f *Flash) Read(w http.ResponseWriter, r *http.Request) ([]Notification, error) {
	cookie, err := r.Cookie(FlashCookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get flash cookie: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   f.secure,
		HttpOnly: true,
	})

	signed, err := base64.URLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil, fmt.Errorf("failed to decode flash cookie: %w", err)
	}
	if len(signed) < sha256.Size {
		return nil, fmt.Errorf("invalid flash cookie length")
	}

	sig, payload := signed[:sha256.Size], signed[sha256.Size:]
	if !hmac.Equal(sig, f.sign(payload)) {
		return nil, fmt.Errorf("invalid flash cookie signature")
	}

	var ns []Notification
	if err := json.Unmarshal(payload, &ns); err != nil {
		return nil, fmt.Errorf("failed to unmarshal flash notifications: %w", err)
	}
	return ns, nil
}

// ABOUTME: Credential pass-through middleware for backend API requests.
// ABOUTME: Captures the caller's authorization, cookies and CSRF token into the request context.

package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const credentialsContextKey contextKey = "credentials"

// SessionCookieName is the backend's session cookie.
const SessionCookieName = "sessionid"

// Anonymous is reported when a request carries no identity.
const Anonymous = "anonymous"

// Credentials are forwarded to the backend as received; the console never
// interprets them beyond picking a display identity for logs.
type Credentials struct {
	Authorization string
	Cookies       []*http.Cookie
	CSRFToken     string
}

// Middleware stores the caller's credentials in the request context.
// csrfCookieName is the cookie the CSRF token is read from when the request
// has no X-CSRFToken header.
func Middleware(csrfCookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			creds := Credentials{
				Authorization: r.Header.Get("Authorization"),
				Cookies:       r.Cookies(),
				CSRFToken:     r.Header.Get("X-CSRFToken"),
			}
			if creds.CSRFToken == "" && csrfCookieName != "" {
				if c, err := r.Cookie(csrfCookieName); err == nil {
					creds.CSRFToken = c.Value
				}
			}
			next.ServeHTTP(w, r.WithContext(WithCredentials(r.Context(), creds)))
		})
	}
}

// WithCredentials returns a context carrying creds.
func WithCredentials(ctx context.Context, creds Credentials) context.Context {
	return context.WithValue(ctx, credentialsContextKey, creds)
}

// CredentialsFromContext returns the credentials captured by Middleware.
func CredentialsFromContext(ctx context.Context) Credentials {
	creds, _ := ctx.Value(credentialsContextKey).(Credentials)
	return creds
}

// UserFromContext returns a display identity for the caller.
func UserFromContext(ctx context.Context) string {
	creds := CredentialsFromContext(ctx)
	if user := extractUser(creds.Authorization); user != "" {
		return user
	}
	for _, c := range creds.Cookies {
		if c.Name == SessionCookieName && c.Value != "" {
			return sessionUser(c.Value)
		}
	}
	return Anonymous
}

func extractUser(authHeader string) string {
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return ""
	}

	// "user:" tokens name the user explicitly
	if strings.HasPrefix(token, "user:") {
		return strings.TrimPrefix(token, "user:")
	}
	return "token"
}

func sessionUser(value string) string {
	if strings.HasPrefix(value, "user:") {
		return strings.TrimPrefix(value, "user:")
	}
	return "session"
}

// ABOUTME: Tests for credential pass-through middleware.
// ABOUTME: Verifies credential capture, CSRF lookup and identity extraction.

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMiddleware_ExtractsUser(t *testing.T) {
	tests := []struct {
		name       string
		authHeader string
		cookie     *http.Cookie
		wantUser   string
	}{
		{"user prefix", "Bearer user:speaker1", nil, "speaker1"},
		{"no header", "", nil, Anonymous},
		{"empty bearer", "Bearer ", nil, Anonymous},
		{"opaque token", "Bearer abcdef", nil, "token"},
		{"session cookie", "", &http.Cookie{Name: SessionCookieName, Value: "s3cr3t"}, "session"},
		{"session cookie naming user", "", &http.Cookie{Name: SessionCookieName, Value: "user:organizer"}, "organizer"},
		{"header wins over cookie", "Bearer user:a", &http.Cookie{Name: SessionCookieName, Value: "user:b"}, "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUser string
			handler := Middleware("csrftoken")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUser = UserFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest("GET", "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			if gotUser != tt.wantUser {
				t.Errorf("UserFromContext() = %q, want %q", gotUser, tt.wantUser)
			}
		})
	}
}

func TestMiddleware_CapturesCredentials(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		cookie    string
		wantToken string
	}{
		{"header token", "from-header", "", "from-header"},
		{"cookie token", "", "from-cookie", "from-cookie"},
		{"header preferred", "from-header", "from-cookie", "from-header"},
		{"none", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Credentials
			handler := Middleware("csrftoken")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = CredentialsFromContext(r.Context())
			}))

			req := httptest.NewRequest("POST", "/cms/page/1", nil)
			req.Header.Set("Authorization", "Bearer user:x")
			if tt.header != "" {
				req.Header.Set("X-CSRFToken", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "csrftoken", Value: tt.cookie})
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)

			if got.CSRFToken != tt.wantToken {
				t.Errorf("CSRFToken = %q, want %q", got.CSRFToken, tt.wantToken)
			}
			if got.Authorization != "Bearer user:x" {
				t.Errorf("Authorization = %q", got.Authorization)
			}
		})
	}
}

func TestCredentialsFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	if creds := CredentialsFromContext(req.Context()); creds.Authorization != "" || len(creds.Cookies) != 0 {
		t.Errorf("expected zero credentials, got %+v", creds)
	}
	if user := UserFromContext(req.Context()); user != Anonymous {
		t.Errorf("expected %q, got %q", Anonymous, user)
	}
}

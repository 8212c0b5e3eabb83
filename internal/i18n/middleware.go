// ABOUTME: HTTP middleware resolving the display language of a request.
// ABOUTME: Looks at ?lang=, the lang cookie and Accept-Language, in that order.

package i18n

import "net/http"

// CookieName is the cookie remembering a chosen language.
const CookieName = "lang"

// Middleware stores the request's display language in its context.
func Middleware(fallback Language) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := fallback
			if q := r.URL.Query().Get("lang"); q != "" {
				lang = Parse(q)
			} else if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
				lang = Parse(c.Value)
			} else if al := r.Header.Get("Accept-Language"); al != "" {
				lang = Parse(al)
			}
			next.ServeHTTP(w, r.WithContext(WithLanguage(r.Context(), lang)))
		})
	}
}

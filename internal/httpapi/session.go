package httpapi

import (
	"net/http"

	"commandcenter/internal/session"
)

// sessionFor resolves the caller's session, issuing a cookie when a new one
// is created.
func sessionFor(m *session.Manager, w http.ResponseWriter, r *http.Request) *session.Session {
	id := ""
	if c, err := r.Cookie(session.CookieName); err == nil {
		id = c.Value
	}
	s, created := m.Get(id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     session.CookieName,
			Value:    s.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return s
}

package sessions

import (
	"net/http"

	"recipegen/internal/generation"

	"github.com/google/uuid"
)

const CookieName = "recipegen_session"

// FromRequest returns the orchestrator for the request's session cookie,
// starting a new session and setting the cookie when there is none or it is
// unknown.
func (s *Store) FromRequest(w http.ResponseWriter, r *http.Request) (string, *generation.Orchestrator) {
	if id, ok := cookieID(r); ok {
		if o, ok := s.Lookup(id); ok {
			return id, o
		}
	}
	id := uuid.NewString()
	o := s.Create(id)
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	return id, o
}

// Existing returns the session's orchestrator without creating one.
func (s *Store) Existing(r *http.Request) (string, *generation.Orchestrator, bool) {
	id, ok := cookieID(r)
	if !ok {
		return "", nil, false
	}
	o, ok := s.Lookup(id)
	return id, o, ok
}

func cookieID(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	id, err := uuid.Parse(cookie.Value)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

package server

import (
	"fmt"
	"net/http"

	"foodshare/internal/utils"
)

func (s *Service) readSessionID(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(s.config.CookieName)
	if err != nil {
		return "", false
	}

	var id string
	if err := s.cookie.Decode(s.config.CookieName, cookie.Value, &id); err != nil {
		s.logger.WithError(err).Debug("ignoring invalid session cookie")
		return "", false
	}

	return id, id != ""
}

func (s *Service) issueSessionID(w http.ResponseWriter) (string, error) {
	id := utils.NanoID()

	encoded, err := s.cookie.Encode(s.config.CookieName, id)
	if err != nil {
		return "", fmt.Errorf("failed to encode session cookie: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.config.CookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   s.config.SessionMaxAgeSec,
		HttpOnly: true,
		Secure:   s.config.Environment == "production",
		SameSite: http.SameSiteLaxMode,
	})

	return id, nil
}

// sessionID returns the caller's session id, starting a new session when the
// request carries none.
func (s *Service) sessionID(w http.ResponseWriter, r *http.Request) (string, error) {
	if id, ok := s.readSessionID(r); ok {
		return id, nil
	}
	return s.issueSessionID(w)
}

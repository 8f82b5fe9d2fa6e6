package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/mwells/saasdash/internal/config"
)

func setSessionCookie(w http.ResponseWriter, r *http.Request, cfg *config.Config, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.SessionCookieName,
		Value:    token,
		Path:     "/",
		Domain:   cfg.SessionCookieDomain,
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   cookieSecure(r, cfg),
		SameSite: http.SameSiteStrictMode,
	})
}

func clearSessionCookie(w http.ResponseWriter, r *http.Request, cfg *config.Config) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   cfg.SessionCookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cookieSecure(r, cfg),
		SameSite: http.SameSiteStrictMode,
	})
}

func cookieSecure(r *http.Request, cfg *config.Config) bool {
	if cfg.SessionCookieSecure != nil {
		return *cfg.SessionCookieSecure
	}
	// Local development runs without TLS.
	return !strings.Contains(r.Host, "localhost") && !strings.HasPrefix(r.Host, "127.0.0.1")
}

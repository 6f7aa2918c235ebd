package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// CSRFHeader carries the token on widget requests. static/js/calview.js
// copies it from the csrf-token meta tag on every HTMX request.
const CSRFHeader = "X-CSRF-Token"

const csrfContextKey = "csrf_token"

// CSRFConfig configures the widget's double-submit cookie.
type CSRFConfig struct {
	// CookieName holds the token. calview.js falls back to reading it, so
	// it is not HttpOnly.
	CookieName string

	// Secure marks the cookie HTTPS-only.
	Secure bool
}

// CSRF guards the widget's POST routes with a double-submit cookie: the
// X-CSRF-Token header must equal the cookie. /api/ paths are exempt because
// the API never reads a cookie, so a forged request carries no ambient
// authority.
func CSRF(cfg CSRFConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if strings.HasPrefix(req.URL.Path, "/api/") {
				return next(c)
			}

			var token string
			if ck, err := req.Cookie(cfg.CookieName); err == nil && ck.Value != "" {
				token = ck.Value
			} else {
				fresh, err := newCSRFToken()
				if err != nil {
					return echo.NewHTTPError(http.StatusInternalServerError, "failed to generate CSRF token")
				}
				c.SetCookie(&http.Cookie{
					Name:     cfg.CookieName,
					Value:    fresh,
					Path:     "/",
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				})
				// A request without the cookie cannot pass the check below,
				// but the page it renders carries the new token.
				token = fresh
			}
			c.Set(csrfContextKey, token)

			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			sent := req.Header.Get(CSRFHeader)
			if _, err := req.Cookie(cfg.CookieName); err != nil || sent == "" ||
				subtle.ConstantTimeCompare([]byte(sent), []byte(token)) != 1 {
				return echo.NewHTTPError(http.StatusForbidden, "invalid or missing CSRF token")
			}
			return next(c)
		}
	}
}

// GetCSRFToken returns the token for the page layout's meta tag.
func GetCSRFToken(c echo.Context) string {
	if token, ok := c.Get(csrfContextKey).(string); ok {
		return token
	}
	return ""
}

func newCSRFToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

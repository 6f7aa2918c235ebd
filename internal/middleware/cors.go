package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// apiMethods and apiHeaders are what the JSON API accepts from a browser on
// another origin. The API reads no cookies, so credentials are never allowed.
const (
	apiMethods = "GET, POST, PATCH, DELETE"
	apiHeaders = "Content-Type"
)

// APICORS answers cross-origin requests to /api/ paths from the listed
// origins; "*" allows any. It is registered globally rather than on the
// API group so preflights for paths and methods the router does not know
// still get an answer instead of a 405.
func APICORS(origins []string) echo.MiddlewareFunc {
	allowAll := false
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[strings.TrimRight(o, "/")] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			origin := req.Header.Get(echo.HeaderOrigin)
			if origin == "" || !strings.HasPrefix(req.URL.Path, "/api/") {
				return next(c)
			}

			h := c.Response().Header()
			h.Add(echo.HeaderVary, echo.HeaderOrigin)
			preflight := req.Method == http.MethodOptions &&
				req.Header.Get(echo.HeaderAccessControlRequestMethod) != ""

			if !allowAll && !allowed[origin] {
				// The browser blocks the response without the allow header.
				if preflight {
					return c.NoContent(http.StatusNoContent)
				}
				return next(c)
			}

			if allowAll {
				h.Set(echo.HeaderAccessControlAllowOrigin, "*")
			} else {
				h.Set(echo.HeaderAccessControlAllowOrigin, origin)
			}

			if preflight {
				h.Set(echo.HeaderAccessControlAllowMethods, apiMethods)
				h.Set(echo.HeaderAccessControlAllowHeaders, apiHeaders)
				h.Set(echo.HeaderAccessControlMaxAge, "3600")
				return c.NoContent(http.StatusNoContent)
			}

			// Clients read Content-Disposition when exporting calendar.ics.
			h.Set(echo.HeaderAccessControlExposeHeaders, echo.HeaderContentDisposition)
			return next(c)
		}
	}
}

// Package middleware provides HTTP middleware for the calview Echo server.
// See internal/app/app.go for registration.
package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/calview/internal/apperror"
)

// RequestLogger logs one line per request to logger. Widget requests are
// tagged htmx, with the HX-Trigger element id when the element has one.
// Static assets and health checks log at debug.
func RequestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			req := c.Request()
			status := c.Response().Status
			if err != nil {
				// The error handler has not written yet; log what it will send.
				status = errorStatus(err)
			}

			attrs := []slog.Attr{
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.Int("status", status),
				slog.Duration("latency", time.Since(start)),
				slog.String("remote_ip", c.RealIP()),
			}
			if IsHTMX(c) {
				attrs = append(attrs, slog.Bool("htmx", true))
				if trigger := req.Header.Get("HX-Trigger"); trigger != "" {
					attrs = append(attrs, slog.String("trigger", trigger))
				}
			}
			if req.URL.RawQuery != "" {
				attrs = append(attrs, slog.String("query", req.URL.RawQuery))
			}

			level := slog.LevelInfo
			switch {
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			case strings.HasPrefix(req.URL.Path, "/static/") || req.URL.Path == "/healthz":
				level = slog.LevelDebug
			}
			logger.LogAttrs(req.Context(), level, "request", attrs...)
			return err
		}
	}
}

// errorStatus is the code a handler error will be rendered with.
func errorStatus(err error) int {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code
	}
	return http.StatusInternalServerError
}

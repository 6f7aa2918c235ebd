// Package app is the application bootstrap and dependency injection root.
// It holds the shared infrastructure (optional DB pool, optional Redis
// client, Echo instance) and wires the calendar plugin onto it.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/keyxmakerx/calview/internal/apperror"
	"github.com/keyxmakerx/calview/internal/config"
	"github.com/keyxmakerx/calview/internal/middleware"
	"github.com/keyxmakerx/calview/internal/plugins/calendar"
	"github.com/keyxmakerx/calview/internal/templates/pages"
)

// App holds all shared dependencies and the Echo HTTP server instance.
// Created once at startup in main.go and used to register all routes.
type App struct {
	// Config holds the loaded application configuration.
	Config *config.Config

	// DB is the MariaDB pool. Nil when events are kept in memory.
	DB *sql.DB

	// Redis backs widget sessions. Nil keeps sessions in process memory.
	Redis *redis.Client

	// Echo is the HTTP server instance.
	Echo *echo.Echo

	// Clock supplies "today" to the widget and API.
	Clock calendar.Clock

	// Scheduler writes periodic ICS snapshots. Nil when disabled.
	Scheduler *calendar.Scheduler

	limiter    *middleware.RateLimiter
	stopSweep  context.CancelFunc
	sweepEvery time.Duration
}

// New creates a new App instance with the given dependencies and configures
// the Echo server with global middleware and error handling.
func New(cfg *config.Config, db *sql.DB, rdb *redis.Client) *App {
	e := echo.New()

	// Disable Echo's default banner and startup message -- we log our own.
	e.HideBanner = true
	e.HidePort = true

	middleware.TrustProxies(e, cfg.TrustedProxies)

	app := &App{
		Config:     cfg,
		DB:         db,
		Redis:      rdb,
		Echo:       e,
		Clock:      calendar.SystemClock{},
		limiter:    middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute),
		sweepEvery: time.Minute,
	}

	app.setupMiddleware()

	// Register the custom error handler that maps AppErrors to HTTP responses.
	e.HTTPErrorHandler = app.errorHandler

	// Serve static files (CSS, JS).
	e.Static("/static", "static")

	return app
}

// setupMiddleware registers global middleware on the Echo instance.
// Order matters: outermost (recovery) runs first, innermost (CSRF) runs last.
func (a *App) setupMiddleware() {
	logger := slog.Default()

	// Panic recovery -- must be outermost to catch panics from all other middleware.
	a.Echo.Use(middleware.Recovery(logger))

	a.Echo.Use(middleware.RequestLogger(logger))

	// CSP, X-Frame-Options, X-Content-Type-Options, etc.
	a.Echo.Use(middleware.SecurityHeaders())

	// CORS for /api/ only. Global so preflights never reach the router's 405.
	origins := append([]string{a.Config.BaseURL}, a.Config.CORSOrigins...)
	a.Echo.Use(middleware.APICORS(origins))

	// Double-submit cookie on widget POSTs. The JSON API is skipped.
	a.Echo.Use(middleware.CSRF(middleware.CSRFConfig{
		CookieName: "calview_csrf",
		Secure:     !a.Config.IsDevelopment(),
	}))
}

// apiMiddleware wraps the /api/v1 group only.
func (a *App) apiMiddleware() []echo.MiddlewareFunc {
	if a.Config.RateLimitPerMinute <= 0 {
		return nil
	}
	return []echo.MiddlewareFunc{a.limiter.Middleware()}
}

// errorHandler is the custom Echo error handler. API requests get the
// AppError as JSON, including field errors. Browser and HTMX requests get
// the error page; for HTMX the response is retargeted to the body so it
// does not land inside the widget.
func (a *App) errorHandler(err error, c echo.Context) {
	// Don't double-write if response is already committed.
	if c.Response().Committed {
		return
	}

	appErr := toAppError(err, c.Request().URL.Path)

	if isAPIRequest(c) {
		if err := c.JSON(appErr.Code, appErr); err != nil {
			slog.Error("writing error response", slog.Any("error", err))
		}
		return
	}

	if middleware.IsHTMX(c) {
		c.Response().Header().Set("HX-Retarget", "body")
		c.Response().Header().Set("HX-Reswap", "innerHTML")
	}

	if err := middleware.Render(c, appErr.Code, pages.ErrorPage(appErr.Code, appErr.Message)); err != nil {
		slog.Error("rendering error page", slog.Any("error", err))
	}
}

// toAppError normalizes any handler error into an AppError, logging the
// ones that carry an internal cause.
func toAppError(err error, path string) *apperror.AppError {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			slog.Error("internal error",
				slog.String("type", appErr.Type),
				slog.String("message", appErr.Message),
				slog.Any("internal", appErr.Internal),
				slog.String("path", path),
			)
		}
		return appErr
	}

	// Echo's built-in HTTP errors (404 from the router, 403 from CSRF).
	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		message, ok := echoErr.Message.(string)
		if !ok || message == "" {
			message = defaultErrorMessage(echoErr.Code)
		}
		return &apperror.AppError{
			Code:    echoErr.Code,
			Type:    strings.ReplaceAll(strings.ToLower(http.StatusText(echoErr.Code)), " ", "_"),
			Message: message,
		}
	}

	slog.Error("unhandled error",
		slog.Any("error", err),
		slog.String("path", path),
	)
	return apperror.NewInternal(err)
}

// defaultErrorMessage returns a user-friendly message for common HTTP status codes
// when no specific message was provided by the error.
func defaultErrorMessage(code int) string {
	switch code {
	case http.StatusBadRequest:
		return "The request was invalid or cannot be processed."
	case http.StatusForbidden:
		return "You don't have permission to perform this action."
	case http.StatusNotFound:
		return "The page you're looking for doesn't exist or has been moved."
	case http.StatusMethodNotAllowed:
		return "This action is not allowed."
	case http.StatusConflict:
		return "This action conflicts with the current state."
	case http.StatusRequestEntityTooLarge:
		return "The uploaded file is too large."
	case http.StatusUnprocessableEntity:
		return "The submitted data could not be processed."
	case http.StatusTooManyRequests:
		return "You're making too many requests. Please slow down."
	case http.StatusInternalServerError:
		return "Something went wrong on our end. Please try again."
	default:
		return "An unexpected error occurred."
	}
}

// isAPIRequest returns true if the request is targeting the API (JSON response expected).
func isAPIRequest(c echo.Context) bool {
	return strings.HasPrefix(c.Request().URL.Path, "/api/")
}

// Start begins background jobs and listens for HTTP requests on the
// configured port.
func (a *App) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	a.stopSweep = cancel
	go a.limiter.Run(ctx, a.sweepEvery)

	if a.Scheduler != nil {
		a.Scheduler.Start()
	}

	addr := fmt.Sprintf(":%d", a.Config.Port)
	slog.Info("starting calview server",
		slog.String("addr", addr),
		slog.String("env", a.Config.Env),
		slog.String("storage", a.Config.Storage),
	)
	return a.Echo.Start(addr)
}

// Shutdown drains in-flight requests and stops background jobs.
func (a *App) Shutdown(ctx context.Context) error {
	if a.stopSweep != nil {
		a.stopSweep()
	}
	if a.Scheduler != nil {
		a.Scheduler.Stop(ctx)
	}
	return a.Echo.Shutdown(ctx)
}

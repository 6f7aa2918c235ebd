package app

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/calview/internal/middleware"
	"github.com/keyxmakerx/calview/internal/plugins/calendar"
	"github.com/keyxmakerx/calview/internal/templates/layouts"
)

// RegisterRoutes builds the calendar plugin from the configured backends
// and registers every route. It is the single place where storage and
// session backends are chosen.
func (a *App) RegisterRoutes() error {
	e := a.Echo

	middleware.LayoutInjector = func(c echo.Context, ctx context.Context) context.Context {
		ctx = layouts.SetCSRFToken(ctx, middleware.GetCSRFToken(c))
		return layouts.SetActivePath(ctx, c.Request().URL.Path)
	}

	// Health check endpoint for container health monitoring.
	e.GET("/healthz", a.healthz)

	opts := calendar.OptionsFromConfig(a.Config.Widget)
	view, err := calendar.ParseView(a.Config.Widget.InitialView)
	if err != nil {
		return err
	}

	var repo calendar.EventRepository
	if a.DB != nil {
		repo = calendar.NewEventRepository(a.DB)
	} else {
		repo = calendar.NewMemoryEventRepository()
	}

	var sessions calendar.SessionStore
	if a.Redis != nil {
		sessions = calendar.NewRedisSessionStore(a.Redis, a.Config.Session.TTL)
	} else {
		sessions = calendar.NewMemorySessionStore(a.Config.Session.TTL, a.Clock)
	}

	svc := calendar.NewEventService(repo, opts, uuid.NewString)
	ctrl := calendar.NewController(a.Clock, opts).WithIDGenerator(uuid.NewString)

	hcfg := calendar.HandlerConfig{
		CookieName:   a.Config.Session.CookieName,
		TTL:          a.Config.Session.TTL,
		SecureCookie: !a.Config.IsDevelopment(),
		InitialView:  view,
	}
	if t, ok := a.Config.Widget.InitialTime(); ok {
		hcfg.InitialDate = &t
	}

	calendar.RegisterRoutes(e,
		calendar.NewHandler(ctrl, svc, sessions, hcfg),
		calendar.NewAPIHandler(svc, a.Clock, opts),
		a.apiMiddleware()...,
	)

	if a.Config.Snapshot.Cron != "" {
		a.Scheduler, err = calendar.NewScheduler(svc, a.Config.Snapshot.Cron, a.Config.Snapshot.Path, a.Clock)
		if err != nil {
			return err
		}
	}
	return nil
}

// healthz reports whether the configured backends answer.
func (a *App) healthz(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{"status": "ok"}
	code := http.StatusOK
	if a.DB != nil {
		status["database"] = "ok"
		if err := a.DB.PingContext(ctx); err != nil {
			status["database"] = "unreachable"
			code = http.StatusServiceUnavailable
		}
	}
	if a.Redis != nil {
		status["redis"] = "ok"
		if err := a.Redis.Ping(ctx).Err(); err != nil {
			status["redis"] = "unreachable"
			code = http.StatusServiceUnavailable
		}
	}
	if code != http.StatusOK {
		status["status"] = "degraded"
	}
	return c.JSON(code, status)
}

package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/calview/internal/apperror"
)

// Recovery turns a handler panic into a 500 for the error handler and logs
// the stack to logger. http.ErrAbortHandler is re-raised so net/http can
// drop the connection as the handler asked.
func Recovery(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if r == http.ErrAbortHandler {
					panic(r)
				}
				req := c.Request()
				logger.Error("panic recovered",
					slog.Any("panic", r),
					slog.String("method", req.Method),
					slog.String("path", req.URL.Path),
					slog.Bool("htmx", IsHTMX(c)),
					slog.String("stack", string(debug.Stack())),
				)
				err = apperror.NewInternal(fmt.Errorf("panic: %v", r))
			}()
			return next(c)
		}
	}
}

package calendar

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up the widget and JSON API routes.
// Widget routes are HTMX fragments keyed by the session cookie; API routes
// are stateless and exempt from CSRF. apiMW wraps only the API group.
func RegisterRoutes(e *echo.Echo, h *Handler, api *APIHandler, apiMW ...echo.MiddlewareFunc) {
	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusFound, "/calendar")
	})

	w := e.Group("/calendar")
	w.GET("", h.Show)

	// Navigation and view.
	w.POST("/nav/:dir", h.Navigate)
	w.POST("/view/:view", h.SetView)

	// Month grid focus and selection.
	w.POST("/cells/:index/focus", h.FocusCell)
	w.POST("/cells/:index/select", h.SelectCell)
	w.POST("/cells/:index/more", h.ExpandCell)
	w.POST("/keys", h.Key)

	// Week grid drag-to-create.
	w.POST("/drag/down", h.DragDown)
	w.POST("/drag/move", h.DragMove)
	w.POST("/drag/up", h.DragUp)
	w.POST("/drag/cancel", h.DragCancel)

	// Existing events.
	w.POST("/events/:eid/open", h.OpenEvent)
	w.POST("/events/:eid/drop", h.DropEvent)

	// Event modal.
	w.POST("/modal/save", h.SaveModal)
	w.POST("/modal/close", h.CloseModal)
	w.POST("/modal/delete", h.DeleteModal)
	w.POST("/modal/confirm", h.ConfirmDelete)
	w.POST("/modal/cancel", h.CancelDelete)

	v1 := e.Group("/api/v1", apiMW...)
	v1.GET("/events", api.ListEvents)
	v1.POST("/events", api.CreateEvent)
	v1.GET("/events/day", api.DayEvents)
	v1.GET("/events/slot", api.SlotEvents)
	v1.GET("/events/:eid", api.GetEvent)
	v1.PATCH("/events/:eid", api.UpdateEvent)
	v1.DELETE("/events/:eid", api.DeleteEvent)

	v1.GET("/grid/month", api.MonthGrid)
	v1.GET("/grid/week", api.WeekGrid)

	v1.GET("/calendar.ics", api.ExportICS)
	v1.POST("/calendar.ics", api.ImportICS)
}

// Package pages holds full-page templ components that do not belong to a
// plugin.
package pages

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/a-h/templ"

	"github.com/keyxmakerx/calview/internal/templates/layouts"
)

// ErrorPage renders a status page with a client-safe message.
func ErrorPage(code int, message string) templ.Component {
	body := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<main class="error-page">
<h1>%d %s</h1>
<p>%s</p>
<p><a href="/calendar">Back to the calendar</a></p>
</main>`, code, templ.EscapeString(http.StatusText(code)), templ.EscapeString(message))
		return err
	})
	return layouts.Base(http.StatusText(code), body)
}

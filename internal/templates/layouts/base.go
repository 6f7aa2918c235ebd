package layouts

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// HTMXScript is the pinned HTMX build loaded by every page.
const HTMXScript = "https://unpkg.com/htmx.org@2.0.4/dist/htmx.min.js"

// Base wraps body in the HTML document shell. The CSRF token is exposed as
// a meta tag; static/js/calview.js copies it into the X-CSRF-Token header
// of every HTMX request.
func Base(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta name="csrf-token" content="%s">
<title>%s</title>
<link rel="stylesheet" href="/static/css/calview.css">
<script src="%s"></script>
<script src="/static/js/calview.js" defer></script>
</head>
<body>
`, templ.EscapeString(GetCSRFToken(ctx)), templ.EscapeString(title), HTMXScript); err != nil {
			return err
		}

		if msg := GetFlashError(ctx); msg != "" {
			if _, err := fmt.Fprintf(w, `<div class="flash flash-error" role="alert">%s</div>`, templ.EscapeString(msg)); err != nil {
				return err
			}
		}

		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n</body>\n</html>\n")
		return err
	})
}

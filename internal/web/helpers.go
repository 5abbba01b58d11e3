package web

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"
)

func itoa(value int) string {
	return strconv.Itoa(value)
}

func pageURL(base string, page, perPage int) string {
	if strings.Contains(base, "?") {
		return base + "&page=" + itoa(page) + "&per_page=" + itoa(perPage)
	}
	return base + "?page=" + itoa(page) + "&per_page=" + itoa(perPage)
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return "-"
	}
	return value.Format("2006-01-02 15:04:05")
}

// writeText writes escaped text.
func writeText(w io.Writer, value string) {
	_, _ = io.WriteString(w, templ.EscapeString(value))
}

func writeRaw(w io.Writer, value string) {
	_, _ = io.WriteString(w, value)
}

const pageHead = `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>`

const pageStyle = `</title>
    <style>
      body { font-family: system-ui, sans-serif; margin: 0; background: #f5f5f4; color: #1c1917; }
      main { max-width: 880px; margin: 0 auto; padding: 24px; }
      table { width: 100%; border-collapse: collapse; background: #fff; }
      th, td { padding: 8px 10px; border-bottom: 1px solid #e7e5e4; text-align: left; }
      .tag { font-size: 12px; text-transform: uppercase; letter-spacing: .08em; color: #78716c; }
      .pager { display: flex; gap: 12px; margin-top: 12px; }
    </style>
  </head>
  <body>
    <main>
`

const pageFoot = `    </main>
  </body>
</html>
`

func writePageStart(w io.Writer, title string) {
	writeRaw(w, pageHead)
	writeText(w, title)
	writeRaw(w, pageStyle)
}

package web

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Results renders per-room points and the final ranking for one game.
func Results(data ResultsData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		writePageStart(w, data.Name+" results")
		writeRaw(w, `      <header>
        <span class="tag">`)
		writeText(w, data.Status)
		writeRaw(w, `</span>
        <h1>`)
		writeText(w, data.Name)
		writeRaw(w, `</h1>
`)
		if !data.Completed {
			writeRaw(w, `        <p id="provisional">Rooms are still open; standings are provisional.</p>
`)
		}
		writeRaw(w, `      </header>
      <table id="standings">
        <thead><tr><th>#</th><th>Player</th>`)
		for _, room := range data.Rooms {
			writeRaw(w, `<th>`)
			writeText(w, room)
			writeRaw(w, `</th>`)
		}
		writeRaw(w, `<th>Hits</th><th>Total</th></tr></thead>
        <tbody>
`)
		for _, row := range data.Rows {
			writeRaw(w, `          <tr><td>`)
			writeText(w, itoa(row.Rank))
			writeRaw(w, `</td><td>`)
			writeText(w, row.Name)
			writeRaw(w, `</td>`)
			for _, points := range row.RoomPoints {
				writeRaw(w, `<td>`)
				writeText(w, itoa(points))
				writeRaw(w, `</td>`)
			}
			writeRaw(w, `<td>`)
			writeText(w, itoa(row.Hits))
			writeRaw(w, `</td><td>`)
			writeText(w, itoa(row.Total))
			writeRaw(w, `</td></tr>
`)
		}
		writeRaw(w, `        </tbody>
      </table>
      <p><a href="/">Back to games</a></p>
`)
		writeRaw(w, pageFoot)
		return nil
	})
}

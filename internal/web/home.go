package web

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Home lists stored games, newest first.
func Home(data HomeData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		writePageStart(w, "Target Shooting")
		writeRaw(w, `      <header>
        <span class="tag">Target Shooting</span>
        <h1>Games</h1>
`)
		switch {
		case data.Username == "":
			writeRaw(w, `        <p>Not signed in.</p>
`)
		case data.IsAdmin:
			writeRaw(w, `        <p>Signed in as `)
			writeText(w, data.Username)
			writeRaw(w, ` (admin)</p>
`)
		default:
			writeRaw(w, `        <p>Signed in as `)
			writeText(w, data.Username)
			writeRaw(w, `, scoring `)
			writeText(w, data.Room)
			writeRaw(w, `</p>
`)
		}
		writeRaw(w, `      </header>
`)
		if len(data.Games) == 0 {
			writeRaw(w, `      <p id="empty">No games yet.</p>
`)
			writeRaw(w, pageFoot)
			return nil
		}
		writeRaw(w, `      <table id="games">
        <thead><tr><th>Name</th><th>Status</th><th>Room</th><th>Hits</th><th>Created</th><th></th></tr></thead>
        <tbody>
`)
		for _, game := range data.Games {
			writeRaw(w, `          <tr><td>`)
			writeText(w, game.Name)
			writeRaw(w, `</td><td>`)
			writeText(w, game.Status)
			writeRaw(w, `</td><td>`)
			writeText(w, game.CurrentRoom)
			writeRaw(w, `</td><td>`)
			writeText(w, itoa(game.Hits))
			writeRaw(w, `</td><td>`)
			writeText(w, formatTime(game.CreatedAt))
			writeRaw(w, `</td><td>`)
			if data.IsAdmin {
				writeRaw(w, `<a href="/games/`)
				writeText(w, game.ID)
				writeRaw(w, `/results">Results</a>`)
			}
			writeRaw(w, `</td></tr>
`)
		}
		writeRaw(w, `        </tbody>
      </table>
`)
		writePager(w, data.Pagination)
		writeRaw(w, pageFoot)
		return nil
	})
}

func writePager(w io.Writer, p PaginationData) {
	if !p.HasPrev && !p.HasNext {
		return
	}
	writeRaw(w, `      <nav class="pager">
`)
	if p.HasPrev {
		writeRaw(w, `        <a rel="prev" href="`)
		writeText(w, pageURL(p.BasePath, p.PrevPage, p.PerPage))
		writeRaw(w, `">Newer</a>
`)
	}
	writeRaw(w, `        <span>Page `)
	writeText(w, itoa(p.Page))
	writeRaw(w, ` of `)
	writeText(w, itoa(p.TotalPages))
	writeRaw(w, `</span>
`)
	if p.HasNext {
		writeRaw(w, `        <a rel="next" href="`)
		writeText(w, pageURL(p.BasePath, p.NextPage, p.PerPage))
		writeRaw(w, `">Older</a>
`)
	}
	writeRaw(w, `      </nav>
`)
}

package server

import (
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"target-shooting/internal/scoring"
	"target-shooting/internal/web"
)

const (
	homePerPage    = 20
	homeMaxPerPage = 100
)

func (s *Server) handleHome(c *gin.Context) {
	games, err := s.games.List(c.Request.Context())
	if err != nil {
		s.log.Error("home list failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "failed to read games")
		return
	}
	page, perPage := parsePagination(c, homePerPage, homeMaxPerPage)
	pagination := buildPaginationData("/", page, perPage, int64(len(games)))
	start, end := pageBounds(pagination, len(games))

	data := web.HomeData{
		Games:      homeSummaries(games[start:end]),
		Pagination: pagination,
	}
	if access, ok := s.sessionAccess(c); ok {
		data.Username = access.Username
		data.IsAdmin = access.IsAdmin
		data.Room = access.Room.Title()
	}
	templ.Handler(web.Home(data)).ServeHTTP(c.Writer, c.Request)
}

func (s *Server) handleResultsView(c *gin.Context) {
	access, ok := s.sessionAccess(c)
	if !ok || !access.IsAdmin {
		c.Redirect(http.StatusFound, "/")
		return
	}
	gameID, ok := bindGameID(c)
	if !ok {
		return
	}
	game, err := s.games.Get(c.Request.Context(), gameID)
	if err != nil {
		s.log.Info("results view missing game", zap.String("game_id", gameID), zap.Error(err))
		c.Redirect(http.StatusFound, "/")
		return
	}
	templ.Handler(web.Results(resultsData(game))).ServeHTTP(c.Writer, c.Request)
}

func homeSummaries(games []scoring.Game) []web.GameSummary {
	summaries := make([]web.GameSummary, 0, len(games))
	for _, game := range games {
		hits := 0
		for _, bucket := range game.Scores {
			hits += len(bucket.Entries)
		}
		room := "-"
		if current := game.CurrentRoom(); current != scoring.RoomNone {
			room = current.Title()
		}
		summaries = append(summaries, web.GameSummary{
			ID:          game.ID,
			Name:        game.Name,
			Status:      string(game.Status),
			CurrentRoom: room,
			Players:     len(game.Players),
			Hits:        hits,
			CreatedAt:   time.UnixMilli(game.CreatedAt).UTC(),
		})
	}
	return summaries
}

func resultsData(game scoring.Game) web.ResultsData {
	data := web.ResultsData{
		GameID:    game.ID,
		Name:      game.Name,
		Status:    string(game.Status),
		Completed: game.Status == scoring.StatusCompleted,
	}
	for _, room := range scoring.Rooms {
		data.Rooms = append(data.Rooms, room.Title())
	}
	for _, standing := range scoring.Ranking(game) {
		row := web.ResultRow{
			Rank:  standing.Rank,
			Name:  standing.Name,
			Hits:  standing.Hits,
			Total: standing.Total,
		}
		for _, room := range scoring.Rooms {
			row.RoomPoints = append(row.RoomPoints, standing.Rooms[room.Key()])
		}
		data.Rows = append(data.Rows, row)
	}
	return data
}

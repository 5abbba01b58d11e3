package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"target-shooting/internal/scoring"
)

type createGameRequest struct {
	Name    string   `json:"name" binding:"max=80"`
	Players []string `json:"players" binding:"required,len=5,dive,max=40"`
}

var createGameMessages = bindMessages{
	"Players": {
		"required": "players are required",
		"len":      "exactly 5 players are required",
	},
	"Name": {"max": "game name must be 80 characters or fewer"},
}

type updateGameRequest struct {
	Name           *string                    `json:"name" binding:"omitempty,max=80"`
	Players        []scoring.Player           `json:"players" binding:"omitempty,len=5"`
	Status         *scoring.Status            `json:"status" binding:"omitempty,status"`
	RoomCompletion *scoring.RoomCompletion    `json:"roomCompletion"`
	Scores         []scoring.PlayerRoomScores `json:"scores"`
}

var updateGameMessages = bindMessages{
	"Players": {"len": "exactly 5 players are required"},
	"Status":  {"status": "status must be room1, room2, room3 or completed"},
}

type hitRequest struct {
	PlayerID    string `json:"playerId" binding:"required,playerid"`
	ObjectIndex int    `json:"objectIndex" binding:"required,target"`
}

var hitMessages = bindMessages{
	"PlayerID": {
		"required": "playerId is required",
		"playerid": "playerId must be p1 to p5",
	},
	"ObjectIndex": {
		"required": "objectIndex must be between 1 and 40",
		"target":   "objectIndex must be between 1 and 40",
	},
}

type hitResponse struct {
	Game     scoring.Game `json:"game"`
	Recorded bool         `json:"recorded"`
}

func (s *Server) handleHealth(c *gin.Context) {
	resp := gin.H{
		"ok":        true,
		"storage":   s.games.gw.Name(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.games.gw.Ping(c.Request.Context()); err != nil {
		s.log.Warn("storage ping failed", zap.Error(err))
		resp["ok"] = false
		resp["error"] = "storage unavailable"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handlePoints(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"targets": scoring.TargetCount,
		"points":  scoring.PointsTable(),
	})
}

func (s *Server) handleListGames(c *gin.Context) {
	games, err := s.games.List(c.Request.Context())
	if err != nil {
		s.writeDomainError(c, err, "failed to read games")
		return
	}
	c.JSON(http.StatusOK, games)
}

func (s *Server) handleGetGame(c *gin.Context) {
	gameID, ok := bindGameID(c)
	if !ok {
		return
	}
	game, err := s.games.Get(c.Request.Context(), gameID)
	if err != nil {
		s.writeDomainError(c, err, "failed to read game")
		return
	}
	c.JSON(http.StatusOK, game)
}

func (s *Server) handleCreateGame(c *gin.Context) {
	var req createGameRequest
	if !bindJSON(c, &req, createGameMessages, "name and 5 players are required") {
		return
	}
	game, err := s.games.Create(c.Request.Context(), req.Name, req.Players)
	if err != nil {
		s.writeDomainError(c, err, "failed to create game")
		return
	}
	s.log.Info("game created", zap.String("game_id", game.ID), zap.String("name", game.Name), zap.String("user", currentAccess(c).Username))
	c.JSON(http.StatusCreated, game)
}

func (s *Server) handleUpdateGame(c *gin.Context) {
	gameID, ok := bindGameID(c)
	if !ok {
		return
	}
	var req updateGameRequest
	if !bindJSON(c, &req, updateGameMessages, "invalid game update") {
		return
	}
	game, err := s.games.Patch(c.Request.Context(), gameID, GamePatch{
		Name:           req.Name,
		Players:        req.Players,
		Status:         req.Status,
		RoomCompletion: req.RoomCompletion,
		Scores:         req.Scores,
	}, s.cfg.AllowStateOverride)
	if err != nil {
		s.writeDomainError(c, err, "failed to update game")
		return
	}
	s.log.Info("game updated", zap.String("game_id", game.ID), zap.String("status", string(game.Status)), zap.Int("version", game.Version))
	c.JSON(http.StatusOK, game)
}

func (s *Server) handleDeleteGames(c *gin.Context) {
	count, err := s.games.DeleteAll(c.Request.Context())
	if err != nil {
		s.writeDomainError(c, err, "failed to clear games")
		return
	}
	s.log.Info("games cleared", zap.Int("count", count), zap.String("user", currentAccess(c).Username))
	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"deleted": count,
	})
}

func (s *Server) handleRecordHit(c *gin.Context) {
	gameID, ok := bindGameID(c)
	if !ok {
		return
	}
	var req hitRequest
	if !bindJSON(c, &req, hitMessages, "playerId and objectIndex are required") {
		return
	}
	actor := currentAccess(c)
	game, recorded, err := s.games.RecordHit(c.Request.Context(), gameID, actor, req.PlayerID, req.ObjectIndex)
	if err != nil {
		s.writeDomainError(c, err, "failed to save entry")
		return
	}
	s.log.Info("hit submitted",
		zap.String("game_id", game.ID),
		zap.String("player_id", req.PlayerID),
		zap.Int("object_index", req.ObjectIndex),
		zap.Bool("recorded", recorded),
		zap.String("user", actor.Username),
	)
	c.JSON(http.StatusOK, hitResponse{Game: game, Recorded: recorded})
}

func (s *Server) handleCompleteRoom(c *gin.Context) {
	gameID, ok := bindGameID(c)
	if !ok {
		return
	}
	actor := currentAccess(c)
	game, room, err := s.games.CompleteRoom(c.Request.Context(), gameID, actor)
	if err != nil {
		s.writeDomainError(c, err, "failed to complete room")
		return
	}
	s.log.Info("room completed",
		zap.String("game_id", game.ID),
		zap.String("room", room.Key()),
		zap.String("status", string(game.Status)),
		zap.String("user", actor.Username),
	)
	c.JSON(http.StatusOK, game)
}

func (s *Server) handleTotals(c *gin.Context) {
	gameID, ok := bindGameID(c)
	if !ok {
		return
	}
	game, err := s.games.Get(c.Request.Context(), gameID)
	if err != nil {
		s.writeDomainError(c, err, "failed to read game")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"gameId":      game.ID,
		"status":      game.Status,
		"currentRoom": game.CurrentRoom(),
		"players":     scoring.Totals(game),
	})
}

func (s *Server) handleLeaderboard(c *gin.Context) {
	gameID, ok := bindGameID(c)
	if !ok {
		return
	}
	game, err := s.games.Get(c.Request.Context(), gameID)
	if err != nil {
		s.writeDomainError(c, err, "failed to read game")
		return
	}
	if game.Status != scoring.StatusCompleted {
		writeError(c, http.StatusConflict, "leaderboard is available once all rooms are complete")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"gameId":    game.ID,
		"name":      game.Name,
		"standings": scoring.Ranking(game),
	})
}

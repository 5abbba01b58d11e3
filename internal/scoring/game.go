package scoring

import (
	"fmt"
	"strings"
	"time"
)

const (
	PlayersPerGame = 5
	MaxGameName    = 80
	MaxPlayerName  = 40
	DefaultName    = "Target Shooting"
)

type Status string

const (
	StatusRoom1     Status = "room1"
	StatusRoom2     Status = "room2"
	StatusRoom3     Status = "room3"
	StatusCompleted Status = "completed"
)

// RoomID identifies one of the three rooms. Zero means no room.
type RoomID int

const (
	RoomNone  RoomID = 0
	RoomFire  RoomID = 1
	RoomWater RoomID = 2
	RoomAir   RoomID = 3
)

var Rooms = []RoomID{RoomFire, RoomWater, RoomAir}

func (r RoomID) Valid() bool {
	return r >= RoomFire && r <= RoomAir
}

func (r RoomID) Key() string {
	return fmt.Sprintf("room%d", int(r))
}

func (r RoomID) Title() string {
	switch r {
	case RoomFire:
		return "Fire Room"
	case RoomWater:
		return "Water Room"
	case RoomAir:
		return "Air Room"
	}
	return ""
}

type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ScoreEntry struct {
	ObjectIndex int `json:"objectIndex"`
	Points      int `json:"points"`
}

type PlayerRoomScores struct {
	PlayerID string       `json:"playerId"`
	RoomID   RoomID       `json:"roomId"`
	Entries  []ScoreEntry `json:"entries"`
}

type RoomCompletion struct {
	Room1 bool `json:"room1"`
	Room2 bool `json:"room2"`
	Room3 bool `json:"room3"`
}

func (c RoomCompletion) Done(room RoomID) bool {
	switch room {
	case RoomFire:
		return c.Room1
	case RoomWater:
		return c.Room2
	case RoomAir:
		return c.Room3
	}
	return false
}

func (c *RoomCompletion) mark(room RoomID) {
	switch room {
	case RoomFire:
		c.Room1 = true
	case RoomWater:
		c.Room2 = true
	case RoomAir:
		c.Room3 = true
	}
}

// Game is the persisted score ledger. It is treated as an immutable snapshot:
// every operation in this package returns a new Game rather than editing its input.
type Game struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	CreatedAt      int64              `json:"createdAt"`
	Players        []Player           `json:"players"`
	Status         Status             `json:"status"`
	RoomCompletion RoomCompletion     `json:"roomCompletion"`
	Scores         []PlayerRoomScores `json:"scores"`
	Version        int                `json:"version"`
}

// NewGame builds a fresh game in room1. Player ids are assigned p1..p5 by position.
func NewGame(id, name string, playerNames []string, now time.Time) (Game, error) {
	if strings.TrimSpace(id) == "" {
		return Game{}, fmt.Errorf("%w: game id is required", ErrInvalidInput)
	}
	if len(playerNames) != PlayersPerGame {
		return Game{}, fmt.Errorf("%w: exactly %d players are required", ErrInvalidInput, PlayersPerGame)
	}
	cleanName, err := cleanGameName(name)
	if err != nil {
		return Game{}, err
	}
	players := make([]Player, 0, PlayersPerGame)
	for i, raw := range playerNames {
		playerName, err := cleanPlayerName(raw, i)
		if err != nil {
			return Game{}, err
		}
		players = append(players, Player{ID: PlayerID(i), Name: playerName})
	}
	return Game{
		ID:        id,
		Name:      cleanName,
		CreatedAt: now.UnixMilli(),
		Players:   players,
		Status:    StatusRoom1,
		Scores:    []PlayerRoomScores{},
	}, nil
}

// PlayerID returns the canonical id for the player at position index.
func PlayerID(index int) string {
	return fmt.Sprintf("p%d", index+1)
}

func cleanGameName(name string) (string, error) {
	trimmed := strings.Join(strings.Fields(name), " ")
	if trimmed == "" {
		return DefaultName, nil
	}
	if len(trimmed) > MaxGameName {
		return "", fmt.Errorf("%w: game name must be %d characters or fewer", ErrInvalidInput, MaxGameName)
	}
	return trimmed, nil
}

func cleanPlayerName(name string, index int) (string, error) {
	trimmed := strings.Join(strings.Fields(name), " ")
	if trimmed == "" {
		return fmt.Sprintf("Player %d", index+1), nil
	}
	if len(trimmed) > MaxPlayerName {
		return "", fmt.Errorf("%w: player name must be %d characters or fewer", ErrInvalidInput, MaxPlayerName)
	}
	return trimmed, nil
}

// Rename returns a copy with a new display name and, when names is non-nil, new
// player display names. Player ids never change.
func Rename(game Game, name *string, names []string) (Game, error) {
	next := game.Clone()
	if name != nil {
		clean, err := cleanGameName(*name)
		if err != nil {
			return Game{}, err
		}
		next.Name = clean
	}
	if names != nil {
		if len(names) != len(next.Players) {
			return Game{}, fmt.Errorf("%w: exactly %d players are required", ErrInvalidInput, PlayersPerGame)
		}
		for i, raw := range names {
			clean, err := cleanPlayerName(raw, i)
			if err != nil {
				return Game{}, err
			}
			next.Players[i].Name = clean
		}
	}
	return next, nil
}

// CurrentRoom maps the status to its active room, or RoomNone once completed.
func (g Game) CurrentRoom() RoomID {
	return roomForStatus(g.Status)
}

func (g Game) HasPlayer(id string) bool {
	for _, player := range g.Players {
		if player.ID == id {
			return true
		}
	}
	return false
}

// Clone deep-copies the slices so the result can be edited freely.
func (g Game) Clone() Game {
	next := g
	next.Players = append([]Player(nil), g.Players...)
	next.Scores = make([]PlayerRoomScores, len(g.Scores))
	for i, bucket := range g.Scores {
		bucket.Entries = append([]ScoreEntry(nil), bucket.Entries...)
		next.Scores[i] = bucket
	}
	return next
}

func roomForStatus(status Status) RoomID {
	switch status {
	case StatusRoom1:
		return RoomFire
	case StatusRoom2:
		return RoomWater
	case StatusRoom3:
		return RoomAir
	}
	return RoomNone
}

func statusRank(status Status) int {
	switch status {
	case StatusRoom1:
		return 1
	case StatusRoom2:
		return 2
	case StatusRoom3:
		return 3
	case StatusCompleted:
		return 4
	}
	return 0
}

func (s Status) Valid() bool {
	return statusRank(s) > 0
}

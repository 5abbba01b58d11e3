package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"target-shooting/internal/scoring"
)

// Gateway is the relational store.Gateway backed by the games table.
type Gateway struct {
	db     *gorm.DB
	driver string
}

func NewGateway(conn *gorm.DB, driver string) *Gateway {
	return &Gateway{db: conn, driver: driver}
}

func (g *Gateway) Name() string {
	return g.driver
}

func (g *Gateway) Ping(ctx context.Context) error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return storageErr("db handle", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return storageErr("ping", err)
	}
	return nil
}

func (g *Gateway) Get(ctx context.Context, id string) (scoring.Game, error) {
	var record Game
	err := g.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return scoring.Game{}, fmt.Errorf("%w: %s", scoring.ErrNotFound, id)
	}
	if err != nil {
		return scoring.Game{}, storageErr("load game", err)
	}
	return fromRecord(record)
}

func (g *Gateway) List(ctx context.Context) ([]scoring.Game, error) {
	var records []Game
	if err := g.db.WithContext(ctx).Order("created_at desc").Order("id asc").Find(&records).Error; err != nil {
		return nil, storageErr("list games", err)
	}
	games := make([]scoring.Game, 0, len(records))
	for _, record := range records {
		game, err := fromRecord(record)
		if err != nil {
			return nil, err
		}
		games = append(games, game)
	}
	return games, nil
}

func (g *Gateway) Create(ctx context.Context, game scoring.Game) (scoring.Game, error) {
	game.Version = 1
	record, err := toRecord(game)
	if err != nil {
		return scoring.Game{}, err
	}
	if err := g.db.WithContext(ctx).Create(&record).Error; err != nil {
		if isUniqueViolation(err) {
			return scoring.Game{}, fmt.Errorf("%w: game %s already exists", scoring.ErrConflict, game.ID)
		}
		return scoring.Game{}, storageErr("create game", err)
	}
	return game, nil
}

// Replace performs a compare-and-swap on the version column.
func (g *Gateway) Replace(ctx context.Context, game scoring.Game) (scoring.Game, error) {
	record, err := toRecord(game)
	if err != nil {
		return scoring.Game{}, err
	}
	err = g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"name":            record.Name,
			"status":          record.Status,
			"room1_completed": record.Room1Completed,
			"room2_completed": record.Room2Completed,
			"room3_completed": record.Room3Completed,
			"players":         record.Players,
			"scores":          record.Scores,
			"version":         game.Version + 1,
			"updated_at":      time.Now().UTC(),
		}
		result := tx.Model(&Game{}).
			Where("id = ? AND version = ?", game.ID, game.Version).
			Updates(updates)
		if result.Error != nil {
			return storageErr("replace game", result.Error)
		}
		if result.RowsAffected == 1 {
			return nil
		}
		var current Game
		lookup := tx.Select("id", "version").Where("id = ?", game.ID).First(&current)
		if errors.Is(lookup.Error, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", scoring.ErrNotFound, game.ID)
		}
		if lookup.Error != nil {
			return storageErr("load game version", lookup.Error)
		}
		return fmt.Errorf("%w: %s is at version %d, update was based on %d", scoring.ErrConflict, game.ID, current.Version, game.Version)
	})
	if err != nil {
		return scoring.Game{}, err
	}
	game.Version++
	return game, nil
}

func (g *Gateway) DeleteAll(ctx context.Context) (int, error) {
	result := g.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Game{})
	if result.Error != nil {
		return 0, storageErr("delete games", result.Error)
	}
	return int(result.RowsAffected), nil
}

func toRecord(game scoring.Game) (Game, error) {
	players, err := json.Marshal(game.Players)
	if err != nil {
		return Game{}, fmt.Errorf("%w: encode players: %w", scoring.ErrInvalidInput, err)
	}
	scores := game.Scores
	if scores == nil {
		scores = []scoring.PlayerRoomScores{}
	}
	scoreData, err := json.Marshal(scores)
	if err != nil {
		return Game{}, fmt.Errorf("%w: encode scores: %w", scoring.ErrInvalidInput, err)
	}
	return Game{
		ID:             game.ID,
		Name:           game.Name,
		Status:         string(game.Status),
		Room1Completed: game.RoomCompletion.Room1,
		Room2Completed: game.RoomCompletion.Room2,
		Room3Completed: game.RoomCompletion.Room3,
		Players:        datatypes.JSON(players),
		Scores:         datatypes.JSON(scoreData),
		Version:        game.Version,
		CreatedAt:      time.UnixMilli(game.CreatedAt).UTC(),
	}, nil
}

func fromRecord(record Game) (scoring.Game, error) {
	game := scoring.Game{
		ID:        record.ID,
		Name:      record.Name,
		CreatedAt: record.CreatedAt.UnixMilli(),
		Status:    scoring.Status(record.Status),
		RoomCompletion: scoring.RoomCompletion{
			Room1: record.Room1Completed,
			Room2: record.Room2Completed,
			Room3: record.Room3Completed,
		},
		Version: record.Version,
	}
	if err := json.Unmarshal(record.Players, &game.Players); err != nil {
		return scoring.Game{}, storageErr("decode players", err)
	}
	if err := json.Unmarshal(record.Scores, &game.Scores); err != nil {
		return scoring.Game{}, storageErr("decode scores", err)
	}
	if game.Scores == nil {
		game.Scores = []scoring.PlayerRoomScores{}
	}
	return game, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	return false
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", scoring.ErrStorage, op, err)
}

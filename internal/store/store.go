// Package store defines the persistence gateway for games and its in-process
// backends. Every backend enforces optimistic concurrency through Game.Version.
package store

import (
	"context"
	"fmt"
	"sort"

	"target-shooting/internal/scoring"
)

// Gateway reads and writes whole game documents.
//
// Replace succeeds only when game.Version equals the stored version; the stored
// copy then carries Version+1. Backends report scoring.ErrNotFound,
// scoring.ErrConflict or a wrapped scoring.ErrStorage.
type Gateway interface {
	Name() string
	Ping(ctx context.Context) error
	Get(ctx context.Context, id string) (scoring.Game, error)
	List(ctx context.Context) ([]scoring.Game, error)
	Create(ctx context.Context, game scoring.Game) (scoring.Game, error)
	Replace(ctx context.Context, game scoring.Game) (scoring.Game, error)
	DeleteAll(ctx context.Context) (int, error)
}

// SortNewestFirst orders games by createdAt descending, then by id.
func SortNewestFirst(games []scoring.Game) {
	sort.SliceStable(games, func(i, j int) bool {
		if games[i].CreatedAt != games[j].CreatedAt {
			return games[i].CreatedAt > games[j].CreatedAt
		}
		return games[i].ID < games[j].ID
	})
}

func notFound(id string) error {
	return fmt.Errorf("%w: %s", scoring.ErrNotFound, id)
}

func conflict(id string, have, want int) error {
	return fmt.Errorf("%w: %s is at version %d, update was based on %d", scoring.ErrConflict, id, have, want)
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", scoring.ErrStorage, op, err)
}

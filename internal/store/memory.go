package store

import (
	"context"
	"fmt"
	"sync"

	"target-shooting/internal/scoring"
)

type Memory struct {
	mu    sync.Mutex
	games map[string]scoring.Game
}

func NewMemory() *Memory {
	return &Memory{
		games: make(map[string]scoring.Game),
	}
}

func (m *Memory) Name() string {
	return "memory"
}

func (m *Memory) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *Memory) Get(ctx context.Context, id string) (scoring.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	game, ok := m.games[id]
	if !ok {
		return scoring.Game{}, notFound(id)
	}
	return game.Clone(), nil
}

func (m *Memory) List(ctx context.Context) ([]scoring.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := make([]scoring.Game, 0, len(m.games))
	for _, game := range m.games {
		list = append(list, game.Clone())
	}
	SortNewestFirst(list)
	return list, nil
}

func (m *Memory) Create(ctx context.Context, game scoring.Game) (scoring.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[game.ID]; ok {
		return scoring.Game{}, fmt.Errorf("%w: game %s already exists", scoring.ErrConflict, game.ID)
	}
	stored := game.Clone()
	stored.Version = 1
	m.games[game.ID] = stored
	return stored.Clone(), nil
}

func (m *Memory) Replace(ctx context.Context, game scoring.Game) (scoring.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.games[game.ID]
	if !ok {
		return scoring.Game{}, notFound(game.ID)
	}
	if current.Version != game.Version {
		return scoring.Game{}, conflict(game.ID, current.Version, game.Version)
	}
	stored := game.Clone()
	stored.Version = current.Version + 1
	m.games[game.ID] = stored
	return stored.Clone(), nil
}

func (m *Memory) DeleteAll(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := len(m.games)
	m.games = make(map[string]scoring.Game)
	return count, nil
}

package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"

	"target-shooting/internal/scoring"
	"target-shooting/internal/store"
)

// GameService applies scoring operations to stored games. Every mutation reads
// the current snapshot, computes the next one and writes it back with the read
// version; a concurrent writer makes the store return ErrConflict and the whole
// step is retried against a fresh snapshot.
type GameService struct {
	gw      store.Gateway
	retries int
	metrics *metrics
	now     func() time.Time
	newID   func() string
}

func NewGameService(gw store.Gateway, retries int, m *metrics) *GameService {
	return &GameService{
		gw:      gw,
		retries: retries,
		metrics: m,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

type mutation func(game scoring.Game) (next scoring.Game, changed bool, err error)

func (gs *GameService) update(ctx context.Context, id string, mutate mutation) (scoring.Game, error) {
	var lastErr error
	for attempt := 0; attempt <= gs.retries; attempt++ {
		current, err := gs.gw.Get(ctx, id)
		if err != nil {
			return scoring.Game{}, err
		}
		next, changed, err := mutate(current)
		if err != nil {
			return scoring.Game{}, err
		}
		if !changed {
			return current, nil
		}
		next.Version = current.Version
		saved, err := gs.gw.Replace(ctx, next)
		if err == nil {
			return saved, nil
		}
		if !errors.Is(err, scoring.ErrConflict) {
			return scoring.Game{}, err
		}
		gs.metrics.conflict()
		lastErr = err
	}
	return scoring.Game{}, lastErr
}

func (gs *GameService) Create(ctx context.Context, name string, players []string) (scoring.Game, error) {
	game, err := scoring.NewGame(gs.newID(), name, players, gs.now())
	if err != nil {
		return scoring.Game{}, err
	}
	created, err := gs.gw.Create(ctx, game)
	if err != nil {
		return scoring.Game{}, err
	}
	gs.metrics.gamesCreated.Inc()
	return created, nil
}

func (gs *GameService) Get(ctx context.Context, id string) (scoring.Game, error) {
	return gs.gw.Get(ctx, id)
}

func (gs *GameService) List(ctx context.Context) ([]scoring.Game, error) {
	games, err := gs.gw.List(ctx)
	if err != nil {
		return nil, err
	}
	store.SortNewestFirst(games)
	return games, nil
}

func (gs *GameService) DeleteAll(ctx context.Context) (int, error) {
	return gs.gw.DeleteAll(ctx)
}

func (gs *GameService) RecordHit(ctx context.Context, id string, actor scoring.Access, playerID string, objectIndex int) (scoring.Game, bool, error) {
	recorded := false
	room := scoring.RoomNone
	game, err := gs.update(ctx, id, func(current scoring.Game) (scoring.Game, bool, error) {
		next, ok, err := scoring.RecordHit(current, actor, playerID, objectIndex)
		recorded = ok
		room = current.CurrentRoom()
		return next, ok, err
	})
	if err != nil {
		return scoring.Game{}, false, err
	}
	gs.metrics.hit(room, recorded)
	return game, recorded, nil
}

func (gs *GameService) CompleteRoom(ctx context.Context, id string, actor scoring.Access) (scoring.Game, scoring.RoomID, error) {
	room := scoring.RoomNone
	game, err := gs.update(ctx, id, func(current scoring.Game) (scoring.Game, bool, error) {
		next, err := scoring.CompleteRoom(current, actor)
		room = current.CurrentRoom()
		return next, true, err
	})
	if err != nil {
		return scoring.Game{}, scoring.RoomNone, err
	}
	gs.metrics.roomCompleted(room)
	return game, room, nil
}

// GamePatch is a shallow merge onto a stored game. Nil fields are left alone.
type GamePatch struct {
	Name           *string
	Players        []scoring.Player
	Status         *scoring.Status
	RoomCompletion *scoring.RoomCompletion
	Scores         []scoring.PlayerRoomScores
}

func (p GamePatch) touchesState() bool {
	return p.Status != nil || p.RoomCompletion != nil || p.Scores != nil
}

// Patch merges p onto the game. Progress fields are only accepted when
// allowState is set, and the result must still be a valid forward move. A patch
// that leaves the game unchanged is not written.
func (gs *GameService) Patch(ctx context.Context, id string, p GamePatch, allowState bool) (scoring.Game, error) {
	if p.touchesState() && !allowState {
		return scoring.Game{}, fmt.Errorf("%w: status, roomCompletion and scores change only through hits and room completion", scoring.ErrInvalidInput)
	}
	return gs.update(ctx, id, func(current scoring.Game) (scoring.Game, bool, error) {
		var names []string
		if p.Players != nil {
			if len(p.Players) != len(current.Players) {
				return scoring.Game{}, false, fmt.Errorf("%w: exactly %d players are required", scoring.ErrInvalidInput, scoring.PlayersPerGame)
			}
			names = make([]string, len(p.Players))
			for i, player := range p.Players {
				if player.ID != current.Players[i].ID {
					return scoring.Game{}, false, fmt.Errorf("%w: player ids cannot change", scoring.ErrInvalidInput)
				}
				names[i] = player.Name
			}
		}
		next, err := scoring.Rename(current, p.Name, names)
		if err != nil {
			return scoring.Game{}, false, err
		}
		if p.Status != nil {
			next.Status = *p.Status
		}
		if p.RoomCompletion != nil {
			next.RoomCompletion = *p.RoomCompletion
		}
		if p.Scores != nil {
			next.Scores = p.Scores
		}
		if p.touchesState() {
			if err := scoring.Validate(next); err != nil {
				return scoring.Game{}, false, err
			}
			if err := scoring.CheckProgress(current, next); err != nil {
				return scoring.Game{}, false, err
			}
		}
		return next, !cmp.Equal(current, next, cmpopts.EquateEmpty()), nil
	})
}

// Package storetest holds the behaviour every store.Gateway backend must share.
package storetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"target-shooting/internal/scoring"
	"target-shooting/internal/store"
)

func NewGame(t *testing.T, id string, createdAt int64) scoring.Game {
	t.Helper()
	game, err := scoring.NewGame(id, "Game "+id, []string{"Ada", "Bob", "Cy", "Dee", "Eve"}, time.UnixMilli(createdAt))
	require.NoError(t, err)
	return game
}

// Run exercises gw, which must start empty.
func Run(t *testing.T, gw store.Gateway) {
	ctx := context.Background()
	admin := scoring.Access{Username: "user01", IsAdmin: true}

	require.NoError(t, gw.Ping(ctx))

	_, err := gw.Get(ctx, "missing")
	require.ErrorIs(t, err, scoring.ErrNotFound)

	older, err := gw.Create(ctx, NewGame(t, "older", 1000))
	require.NoError(t, err)
	assert.Equal(t, 1, older.Version)

	newer, err := gw.Create(ctx, NewGame(t, "newer", 2000))
	require.NoError(t, err)

	_, err = gw.Create(ctx, NewGame(t, "newer", 3000))
	require.ErrorIs(t, err, scoring.ErrConflict)

	list, err := gw.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "newer", list[0].ID)
	assert.Equal(t, "older", list[1].ID)

	hit, _, err := scoring.RecordHit(newer, admin, "p2", 3)
	require.NoError(t, err)
	saved, err := gw.Replace(ctx, hit)
	require.NoError(t, err)
	assert.Equal(t, 2, saved.Version)

	// A second writer still holding the version-1 snapshot must be rejected.
	stale, _, err := scoring.RecordHit(newer, admin, "p1", 1)
	require.NoError(t, err)
	_, err = gw.Replace(ctx, stale)
	require.ErrorIs(t, err, scoring.ErrConflict)

	loaded, err := gw.Get(ctx, "newer")
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Version)
	assert.Equal(t, 3000, scoring.TotalFor(loaded, "p2", scoring.RoomNone))
	assert.Zero(t, scoring.TotalFor(loaded, "p1", scoring.RoomNone))
	assert.Equal(t, newer.Players, loaded.Players)
	assert.Equal(t, newer.CreatedAt, loaded.CreatedAt)

	advanced, err := scoring.CompleteRoom(loaded, admin)
	require.NoError(t, err)
	advanced, err = gw.Replace(ctx, advanced)
	require.NoError(t, err)
	assert.Equal(t, scoring.StatusRoom2, advanced.Status)
	assert.True(t, advanced.RoomCompletion.Room1)

	ghost := NewGame(t, "ghost", 1)
	ghost.Version = 1
	_, err = gw.Replace(ctx, ghost)
	require.ErrorIs(t, err, scoring.ErrNotFound)

	count, err := gw.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	list, err = gw.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	_, err = gw.Get(ctx, older.ID)
	require.ErrorIs(t, err, scoring.ErrNotFound, fmt.Sprintf("game %s should be gone", older.ID))
}

package scoring

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the structural invariants of a stored game document.
func Validate(game Game) error {
	var errs []error
	if strings.TrimSpace(game.ID) == "" {
		errs = append(errs, errors.New("id is required"))
	}
	if len(game.Players) != PlayersPerGame {
		errs = append(errs, fmt.Errorf("expected %d players, got %d", PlayersPerGame, len(game.Players)))
	}
	for i, player := range game.Players {
		if player.ID != PlayerID(i) {
			errs = append(errs, fmt.Errorf("player %d has id %q, want %q", i+1, player.ID, PlayerID(i)))
		}
	}
	if !game.Status.Valid() {
		errs = append(errs, fmt.Errorf("unknown status %q", game.Status))
	} else if err := checkCompletion(game.Status, game.RoomCompletion); err != nil {
		errs = append(errs, err)
	}

	seen := make(map[string]struct{}, len(game.Scores))
	for _, bucket := range game.Scores {
		key := fmt.Sprintf("%s/%d", bucket.PlayerID, bucket.RoomID)
		if _, dup := seen[key]; dup {
			errs = append(errs, fmt.Errorf("duplicate score bucket %s", key))
		}
		seen[key] = struct{}{}
		if !game.HasPlayer(bucket.PlayerID) {
			errs = append(errs, fmt.Errorf("scores reference unknown player %q", bucket.PlayerID))
		}
		if !bucket.RoomID.Valid() {
			errs = append(errs, fmt.Errorf("scores reference unknown room %d", bucket.RoomID))
		} else if statusRank(game.Status) < int(bucket.RoomID) {
			errs = append(errs, fmt.Errorf("scores recorded for %s before it opened", bucket.RoomID.Key()))
		}
		indices := make(map[int]struct{}, len(bucket.Entries))
		for _, entry := range bucket.Entries {
			points, err := PointsFor(entry.ObjectIndex)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: object index %d out of range", key, entry.ObjectIndex))
				continue
			}
			if entry.Points != points {
				errs = append(errs, fmt.Errorf("%s: object %d worth %d, not %d", key, entry.ObjectIndex, points, entry.Points))
			}
			if _, dup := indices[entry.ObjectIndex]; dup {
				errs = append(errs, fmt.Errorf("%s: object %d recorded twice", key, entry.ObjectIndex))
			}
			indices[entry.ObjectIndex] = struct{}{}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidInput, errors.Join(errs...))
	}
	return nil
}

// checkCompletion requires roomN complete exactly when the game has moved past roomN.
func checkCompletion(status Status, completion RoomCompletion) error {
	rank := statusRank(status)
	for _, room := range Rooms {
		passed := rank > int(room)
		if completion.Done(room) != passed {
			return fmt.Errorf("%s completion flag disagrees with status %s", room.Key(), status)
		}
	}
	return nil
}

// CheckProgress rejects a replacement that would move status backwards, clear a
// completion flag or drop a recorded hit.
func CheckProgress(prev, next Game) error {
	if statusRank(next.Status) < statusRank(prev.Status) {
		return fmt.Errorf("%w: status cannot move from %s back to %s", ErrInvalidState, prev.Status, next.Status)
	}
	for _, room := range Rooms {
		if prev.RoomCompletion.Done(room) && !next.RoomCompletion.Done(room) {
			return fmt.Errorf("%w: %s cannot be reopened", ErrInvalidState, room.Key())
		}
	}
	for _, bucket := range prev.Scores {
		for _, entry := range bucket.Entries {
			if !hasEntry(next, bucket.PlayerID, bucket.RoomID, entry.ObjectIndex) {
				return fmt.Errorf("%w: hit %d for %s in %s cannot be removed", ErrInvalidState, entry.ObjectIndex, bucket.PlayerID, bucket.RoomID.Key())
			}
		}
	}
	return nil
}

func hasEntry(game Game, playerID string, room RoomID, objectIndex int) bool {
	for _, bucket := range game.Scores {
		if bucket.PlayerID != playerID || bucket.RoomID != room {
			continue
		}
		for _, entry := range bucket.Entries {
			if entry.ObjectIndex == objectIndex {
				return true
			}
		}
	}
	return false
}

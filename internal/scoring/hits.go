package scoring

import "fmt"

// RecordHit adds a target hit for playerID in the active room. Recording the same
// target twice for a player in a room is a silent no-op: recorded is false and the
// returned game equals the input.
func RecordHit(game Game, actor Access, playerID string, objectIndex int) (Game, bool, error) {
	room, err := activeRoom(game, actor)
	if err != nil {
		return Game{}, false, err
	}
	points, err := PointsFor(objectIndex)
	if err != nil {
		return Game{}, false, err
	}
	if !game.HasPlayer(playerID) {
		return Game{}, false, fmt.Errorf("%w: unknown player %q", ErrInvalidInput, playerID)
	}

	next := game.Clone()
	entry := ScoreEntry{ObjectIndex: objectIndex, Points: points}
	for i := range next.Scores {
		bucket := &next.Scores[i]
		if bucket.PlayerID != playerID || bucket.RoomID != room {
			continue
		}
		for _, existing := range bucket.Entries {
			if existing.ObjectIndex == objectIndex {
				return game, false, nil
			}
		}
		bucket.Entries = append(bucket.Entries, entry)
		return next, true, nil
	}
	next.Scores = append(next.Scores, PlayerRoomScores{
		PlayerID: playerID,
		RoomID:   room,
		Entries:  []ScoreEntry{entry},
	})
	return next, true, nil
}

package scoring

import "fmt"

var nextStatus = map[Status]Status{
	StatusRoom1: StatusRoom2,
	StatusRoom2: StatusRoom3,
	StatusRoom3: StatusCompleted,
}

// CompleteRoom locks the active room and advances the game one step.
func CompleteRoom(game Game, actor Access) (Game, error) {
	room, err := activeRoom(game, actor)
	if err != nil {
		return Game{}, err
	}
	next := game.Clone()
	next.RoomCompletion.mark(room)
	next.Status = nextStatus[game.Status]
	return next, nil
}

// activeRoom checks the preconditions shared by hit recording and room completion.
func activeRoom(game Game, actor Access) (RoomID, error) {
	if game.Status == StatusCompleted {
		return RoomNone, fmt.Errorf("%w: game is completed", ErrInvalidState)
	}
	room := game.CurrentRoom()
	if !room.Valid() {
		return RoomNone, fmt.Errorf("%w: unknown status %q", ErrInvalidState, game.Status)
	}
	if !actor.CanEnter(room) {
		return RoomNone, fmt.Errorf("%w: %s has no access to %s", ErrForbidden, displayUser(actor), room.Key())
	}
	if game.RoomCompletion.Done(room) {
		return RoomNone, fmt.Errorf("%w: %s is locked", ErrForbidden, room.Key())
	}
	return room, nil
}

func displayUser(actor Access) string {
	if actor.Username == "" {
		return "anonymous user"
	}
	return actor.Username
}

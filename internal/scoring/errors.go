package scoring

import "errors"

// Callers match these with errors.Is; operations wrap them with detail.
var (
	ErrNotFound     = errors.New("game not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidState = errors.New("invalid game state")
	ErrConflict     = errors.New("game was modified concurrently")
	ErrStorage      = errors.New("storage failure")
)

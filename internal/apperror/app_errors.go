package apperror

import "errors"

var (
	ErrGameFinished  = errors.New("game is already finished")
	ErrNotYourTurn   = errors.New("it's not your turn")
	ErrIllegalMove   = errors.New("illegal move")
	ErrNotSeated     = errors.New("spectators can't move pieces")
	ErrOutOfRange    = errors.New("position is out of board range")
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

package models

import "errors"

var (
	ErrInvalidJSON       = errors.New("invalid json")
	ErrUsernameTaken     = errors.New("username taken")
	ErrGameNotFound      = errors.New("game not found")
	ErrNotGameOwner      = errors.New("not the game owner")
	ErrGameCompleted     = errors.New("game completed")
	ErrGameStateMissing  = errors.New("persisted game state missing")
	ErrGameStateConflict = errors.New("game state conflict")
)

package model

import "errors"

// Common errors used across the application
var (
	// Admission errors - rejected synchronously, session never created
	ErrSessionExists        = errors.New("session already exists")
	ErrRosterTooSmall       = errors.New("not enough players for the session")
	ErrRosterTooLarge       = errors.New("too many players for the session")
	ErrInvalidSetting       = errors.New("invalid setting value")
	ErrDuplicateDisplayName = errors.New("display name already registered")

	// Binding errors - connection silently excluded from all events
	ErrSessionNotFound = errors.New("session not found")
	ErrTokenNotFound   = errors.New("token not found")

	// Registry errors
	ErrPlayerNotFound = errors.New("player not found")

	// Lifecycle errors
	ErrRoundInactive = errors.New("no round is active")
	ErrGameOver      = errors.New("game is already over")
)

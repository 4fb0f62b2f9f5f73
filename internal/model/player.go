package model

// PlayerID uniquely identifies a player across the system.
// IDs are assigned by the owner service; the session server treats
// them as opaque.
type PlayerID string

// PlayerState represents a registered session participant.
//
// The display name is the lookup key within a session and must be unique
// there. The token is the single-use credential binding an incoming
// connection to this identity. Score only ever increases within a session.
type PlayerState struct {
	ID          PlayerID
	DisplayName string
	Token       string
	Score       int
	Connected   bool
}

// PlayerSeed is the roster entry supplied by the owner service at
// session creation.
type PlayerSeed struct {
	ID          PlayerID
	DisplayName string
	Token       string
}

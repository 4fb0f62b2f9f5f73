package model

import "time"

// SessionID uniquely identifies a running game session
type SessionID string

// Session represents one running game instance: its roster, round
// counter, and lifecycle state.
//
// Invariants: 0 <= CurrentRound <= Settings.NbRounds, and Target is
// non-nil exactly while RoundActive is true. Players preserves
// registration order, which is the tie-break for equal leaderboard
// scores.
type Session struct {
	ID           SessionID
	Settings     Settings
	CurrentRound int    // 0 = not started
	RoundActive  bool
	Target       *int64 // centi-units; nil while no round is active
	Players      []PlayerState
	Over         bool // settlement entered, never re-entered

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AddPlayer registers a player with score 0 and connected=false.
// The display name is the lookup key, so it must be unique.
func (s *Session) AddPlayer(seed PlayerSeed) error {
	if s.GetPlayer(seed.DisplayName) != nil {
		return ErrDuplicateDisplayName
	}
	s.Players = append(s.Players, PlayerState{
		ID:          seed.ID,
		DisplayName: seed.DisplayName,
		Token:       seed.Token,
	})
	return nil
}

// RemovePlayer removes the entry with the given display name.
// No-op if absent. Administrative cleanup only; disconnects are
// handled by flipping Connected, never by removal.
func (s *Session) RemovePlayer(displayName string) {
	for i := range s.Players {
		if s.Players[i].DisplayName == displayName {
			s.Players = append(s.Players[:i], s.Players[i+1:]...)
			return
		}
	}
}

// GetPlayer returns the player with the given display name, or nil
func (s *Session) GetPlayer(displayName string) *PlayerState {
	for i := range s.Players {
		if s.Players[i].DisplayName == displayName {
			return &s.Players[i]
		}
	}
	return nil
}

// FindByToken resolves a join token to its player. Exact, case-sensitive
// match; a linear scan is fine at roster scale (<=10).
func (s *Session) FindByToken(token string) (*PlayerState, error) {
	for i := range s.Players {
		if s.Players[i].Token == token {
			return &s.Players[i], nil
		}
	}
	return nil, ErrTokenNotFound
}

// ConnectedCount returns the number of currently connected players
func (s *Session) ConnectedCount() int {
	n := 0
	for i := range s.Players {
		if s.Players[i].Connected {
			n++
		}
	}
	return n
}

// GameOver reports whether the configured number of rounds has been played
func (s *Session) GameOver() bool {
	return s.CurrentRound >= s.Settings.NbRounds
}

// LeaderboardEntry is a derived, read-only projection of a connected
// player's standing. Never persisted.
type LeaderboardEntry struct {
	DisplayName string   `json:"display_name"`
	Score       int      `json:"score"`
	PlayerID    PlayerID `json:"player_id"`
}

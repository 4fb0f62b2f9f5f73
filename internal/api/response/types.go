package response

import (
	"time"

	"github.com/comus-party/justeprix/internal/model"
)

// Player represents a roster entry in API responses. Tokens are never
// echoed back.
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Score       int    `json:"score"`
	Connected   bool   `json:"connected"`
}

// Session represents a session in API responses
type Session struct {
	ID           string    `json:"id"`
	NbRounds     int       `json:"nb_rounds"`
	Difficulty   string    `json:"difficulty"`
	CurrentRound int       `json:"current_round"`
	RoundActive  bool      `json:"round_active"`
	Over         bool      `json:"over"`
	Players      []Player  `json:"players"`
	CreatedAt    time.Time `json:"created_at"`
}

// SessionFromModel converts a model.Session to a response Session
func SessionFromModel(s *model.Session) Session {
	players := make([]Player, 0, len(s.Players))
	for _, p := range s.Players {
		players = append(players, Player{
			ID:          string(p.ID),
			DisplayName: p.DisplayName,
			Score:       p.Score,
			Connected:   p.Connected,
		})
	}
	return Session{
		ID:           string(s.ID),
		NbRounds:     s.Settings.NbRounds,
		Difficulty:   string(s.Settings.Difficulty),
		CurrentRound: s.CurrentRound,
		RoundActive:  s.RoundActive,
		Over:         s.Over,
		Players:      players,
		CreatedAt:    s.CreatedAt,
	}
}

// CheckTokenResponse is the response for the token check endpoint
type CheckTokenResponse struct {
	Valid       bool   `json:"valid"`
	DisplayName string `json:"display_name,omitempty"`
}

// ListSessionsResponse is the response for the session list endpoint
type ListSessionsResponse struct {
	Sessions []string `json:"sessions"`
}

package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// EventType identifies the type of a wire event
type EventType string

const (
	// Server -> client
	EventJoin              EventType = "join"
	EventMessage           EventType = "message"
	EventNewRound          EventType = "new_round"
	EventUpdateLeaderboard EventType = "update_leaderboard"
	EventEndGame           EventType = "end_game"
	EventRedirect          EventType = "redirect"

	// Client -> server
	EventGuess EventType = "guess"
)

// SystemSpeaker is the reserved speaker name for controller-generated
// announcements. Clients distinguish system messages by this name only,
// never by payload shape.
const SystemSpeaker = "System"

// Indicator is the directional marker broadcast with every guess
type Indicator string

const (
	IndicatorNone       Indicator = ""
	IndicatorCorrect    Indicator = "correct"
	IndicatorAboveClose Indicator = "above_close"
	IndicatorAboveFar   Indicator = "above_far"
	IndicatorBelowClose Indicator = "below_close"
	IndicatorBelowFar   Indicator = "below_far"
)

// Event is implemented by every wire event variant
type Event interface {
	EventType() EventType
}

// Envelope is the wire framing: a tag plus a fixed-schema payload
type Envelope struct {
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// JoinEvent confirms identity to a newly bound connection (private)
type JoinEvent struct {
	DisplayName string     `json:"display_name"`
	Difficulty  Difficulty `json:"difficulty"`
}

func (JoinEvent) EventType() EventType { return EventJoin }

// MessageEvent carries chat-style text, broadcast or private
type MessageEvent struct {
	Speaker   string    `json:"speaker"`
	Text      string    `json:"text"`
	Indicator Indicator `json:"indicator,omitempty"`
}

func (MessageEvent) EventType() EventType { return EventMessage }

// NewRoundEvent announces a round start (broadcast)
type NewRoundEvent struct {
	RoundNumber int        `json:"round_number"`
	Difficulty  Difficulty `json:"difficulty"`
}

func (NewRoundEvent) EventType() EventType { return EventNewRound }

// LeaderboardEvent carries the ranked standings (broadcast)
type LeaderboardEvent struct {
	Entries []LeaderboardEntry `json:"entries"`
}

func (LeaderboardEvent) EventType() EventType { return EventUpdateLeaderboard }

// EndGameEvent signals clients to disable further guess input (broadcast)
type EndGameEvent struct{}

func (EndGameEvent) EventType() EventType { return EventEndGame }

// RedirectEvent instructs clients to navigate away (broadcast)
type RedirectEvent struct {
	Destination string `json:"destination"`
}

func (RedirectEvent) EventType() EventType { return EventRedirect }

// GuessEvent is the single inbound variant: a player's numeric guess
type GuessEvent struct {
	DisplayName string `json:"display_name"`
	Guess       string `json:"guess"`
}

func (GuessEvent) EventType() EventType { return EventGuess }

// EncodeEvent frames an event for the wire
func EncodeEvent(ev Event) ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", ev.EventType(), err)
	}
	return json.Marshal(Envelope{Type: ev.EventType(), Data: data})
}

// ErrUnknownEvent is returned for envelopes with an unrecognized tag
var ErrUnknownEvent = errors.New("unknown event type")

// DecodeClientEvent parses and validates an inbound frame at the
// boundary. Only guess events are accepted from clients.
func DecodeClientEvent(raw []byte) (Event, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	switch env.Type {
	case EventGuess:
		var ev GuessEvent
		if err := json.Unmarshal(env.Data, &ev); err != nil {
			return nil, fmt.Errorf("decode guess: %w", err)
		}
		return ev, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Type)
	}
}

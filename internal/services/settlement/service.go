package settlement

import (
	"github.com/comus-party/justeprix/internal/model"
)

// OutcomeKind classifies the end-of-game result
type OutcomeKind string

const (
	// OutcomeNoPlayers - nobody was connected at settlement; anomaly, no winner
	OutcomeNoPlayers OutcomeKind = "no_players"
	// OutcomeAlone - a single player finished the session; no winner
	OutcomeAlone OutcomeKind = "alone"
	// OutcomeTie - top score equals bottom score; universal tie, no winner
	OutcomeTie OutcomeKind = "tie"
	// OutcomeWinners - every player at the maximum score wins
	OutcomeWinners OutcomeKind = "winners"
)

// Outcome is the settlement result computed from the final leaderboard
type Outcome struct {
	Kind    OutcomeKind
	Winners []model.LeaderboardEntry
}

// Compute determines the winner set from the final leaderboard.
//
// The entries must already be ranked (score descending), which is what
// scoring.Leaderboard produces. Comparing the top score to the bottom
// score covers both the "everyone scored zero" and the total-tie cases.
func Compute(entries []model.LeaderboardEntry) Outcome {
	switch len(entries) {
	case 0:
		return Outcome{Kind: OutcomeNoPlayers}
	case 1:
		return Outcome{Kind: OutcomeAlone}
	}

	top := entries[0].Score
	bottom := entries[len(entries)-1].Score
	if top == bottom {
		return Outcome{Kind: OutcomeTie}
	}

	var winners []model.LeaderboardEntry
	for _, e := range entries {
		if e.Score == top {
			winners = append(winners, e)
		}
	}
	return Outcome{Kind: OutcomeWinners, Winners: winners}
}

// WinnerIDs returns the identities of the winner set, empty when there
// is no winner. This is what gets reported to the owner service.
func (o Outcome) WinnerIDs() []model.PlayerID {
	if o.Kind != OutcomeWinners {
		return nil
	}
	ids := make([]model.PlayerID, 0, len(o.Winners))
	for _, w := range o.Winners {
		ids = append(ids, w.PlayerID)
	}
	return ids
}

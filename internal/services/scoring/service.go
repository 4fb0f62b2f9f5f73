package scoring

import (
	"math"
	"math/big"
	"sort"
	"strconv"

	"github.com/comus-party/justeprix/internal/dependencies/random"
	"github.com/comus-party/justeprix/internal/model"
)

// CloseThresholdCenti is the absolute-difference boundary between the
// "close" and "far" directional tiers, in centi-units (15 whole units).
const CloseThresholdCenti = 15 * 100

// Service provides leaderboard computation, point awards, and target
// draws. Everything here is pure over the session state except the
// draw, which goes through the injected random source.
type Service struct {
	random random.Random
}

// New creates a new scoring Service
func New(random random.Random) *Service {
	return &Service{
		random: random,
	}
}

// Leaderboard computes the ranked standings: connected players only,
// sorted by score descending. Ties keep registration order, so the
// ranking is deterministic and reproducible across calls.
func (s *Service) Leaderboard(session *model.Session) []model.LeaderboardEntry {
	entries := make([]model.LeaderboardEntry, 0, len(session.Players))
	for i := range session.Players {
		p := &session.Players[i]
		if !p.Connected {
			continue
		}
		entries = append(entries, model.LeaderboardEntry{
			DisplayName: p.DisplayName,
			Score:       p.Score,
			PlayerID:    p.ID,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})

	return entries
}

// AwardPoint increments the named player's score by exactly 1.
// Enforcing at-most-once per round is the round controller's job.
func (s *Service) AwardPoint(session *model.Session, displayName string) error {
	p := session.GetPlayer(displayName)
	if p == nil {
		return model.ErrPlayerNotFound
	}
	p.Score++
	return nil
}

// DrawTarget draws a uniform target for the difficulty, in centi-units.
// Easy and medium draw whole units; hard draws directly on the
// hundredths grid, so every target has exactly two decimal digits and
// never needs rounding.
func (s *Service) DrawTarget(difficulty model.Difficulty) int64 {
	if difficulty.Decimal() {
		return s.random.Int63n(difficulty.RangeCenti())
	}
	return s.random.Int63n(difficulty.RangeCenti()/100) * 100
}

// ParseGuess converts a client guess string to centi-units, the same
// grid targets are drawn on, so comparison is exact integer equality.
// Scaling is round-half-away-from-zero on the written decimal, not on
// its float64 image: "1.005" is 101, even though the nearest float64
// to 1.005 sits just below the half. Returns false for anything that
// is not a finite number.
func ParseGuess(raw string) (int64, bool) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}

	r, ok := new(big.Rat).SetString(raw)
	if !ok {
		// ParseFloat accepted a form Rat did not; scale the float
		scaled := math.Round(v * 100)
		if scaled > math.MaxInt64 || scaled < math.MinInt64 {
			return 0, false
		}
		return int64(scaled), true
	}

	r.Mul(r, big.NewRat(100, 1))
	num, den := r.Num(), r.Denom()
	q, rem := new(big.Int).QuoRem(num, den, new(big.Int))
	rem.Abs(rem).Mul(rem, big.NewInt(2))
	if rem.Cmp(den) >= 0 {
		if num.Sign() < 0 {
			q.Sub(q, big.NewInt(1))
		} else {
			q.Add(q, big.NewInt(1))
		}
	}
	if !q.IsInt64() {
		return 0, false
	}
	return q.Int64(), true
}

// Compare evaluates a guess against the target and returns the
// directional indicator broadcast with the guess.
func Compare(guessCenti, targetCenti int64) model.Indicator {
	diff := guessCenti - targetCenti
	switch {
	case diff == 0:
		return model.IndicatorCorrect
	case diff > 0 && diff >= CloseThresholdCenti:
		return model.IndicatorAboveFar
	case diff > 0:
		return model.IndicatorAboveClose
	case -diff >= CloseThresholdCenti:
		return model.IndicatorBelowFar
	default:
		return model.IndicatorBelowClose
	}
}

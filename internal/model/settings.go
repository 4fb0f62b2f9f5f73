package model

import "fmt"

// Difficulty selects the value range targets are drawn from
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"   // integers in [0,100)
	DifficultyMedium Difficulty = "medium" // integers in [0,500)
	DifficultyHard   Difficulty = "hard"   // two-decimal values in [0,1000)
)

// Valid reports whether the difficulty is a known profile
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Decimal reports whether targets in this profile carry decimal digits
func (d Difficulty) Decimal() bool {
	return d == DifficultyHard
}

// RangeCenti returns the exclusive upper bound of the draw range in
// centi-units. All target and guess arithmetic happens in centi-units
// (hundredths) so that hard-mode values have an exact representation
// and equality is plain integer equality.
func (d Difficulty) RangeCenti() int64 {
	switch d {
	case DifficultyEasy:
		return 100 * 100
	case DifficultyMedium:
		return 500 * 100
	case DifficultyHard:
		return 1000 * 100
	}
	return 0
}

// FormatCenti renders a centi-unit value the way clients display it:
// two decimal digits on hard, whole units otherwise.
func (d Difficulty) FormatCenti(v int64) string {
	if d.Decimal() {
		return fmt.Sprintf("%d.%02d", v/100, v%100)
	}
	return fmt.Sprintf("%d", v/100)
}

// Settings bounds for session admission
const (
	MinRounds = 1
	MaxRounds = 20
)

// Settings holds the configurable options of a session
type Settings struct {
	NbRounds   int
	Difficulty Difficulty
}

// Validate checks every option against its declared bounds or enum.
// Violations are admission errors: the session is never created.
func (s Settings) Validate() error {
	if s.NbRounds < MinRounds || s.NbRounds > MaxRounds {
		return fmt.Errorf("%w: nbRounds must be between %d and %d", ErrInvalidSetting, MinRounds, MaxRounds)
	}
	if !s.Difficulty.Valid() {
		return fmt.Errorf("%w: unknown difficulty %q", ErrInvalidSetting, s.Difficulty)
	}
	return nil
}

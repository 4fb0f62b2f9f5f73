package scoring

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/comus-party/justeprix/internal/dependencies/mocks"
	"github.com/comus-party/justeprix/internal/model"
)

type ServiceSuite struct {
	suite.Suite
	random  *mocks.MockRandom
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.random = mocks.NewMockRandom()
	s.service = New(s.random)
}

func (s *ServiceSuite) makeSession(players ...model.PlayerState) *model.Session {
	return &model.Session{
		ID:      "session-1",
		Players: players,
	}
}

// Leaderboard tests

func (s *ServiceSuite) TestLeaderboardSortsByScoreDescending() {
	session := s.makeSession(
		model.PlayerState{ID: "p1", DisplayName: "Alice", Score: 1, Connected: true},
		model.PlayerState{ID: "p2", DisplayName: "Bob", Score: 3, Connected: true},
		model.PlayerState{ID: "p3", DisplayName: "Carol", Score: 2, Connected: true},
	)

	entries := s.service.Leaderboard(session)

	s.Require().Len(entries, 3)
	s.Equal("Bob", entries[0].DisplayName)
	s.Equal("Carol", entries[1].DisplayName)
	s.Equal("Alice", entries[2].DisplayName)
}

func (s *ServiceSuite) TestLeaderboardExcludesDisconnectedPlayers() {
	session := s.makeSession(
		model.PlayerState{ID: "p1", DisplayName: "Alice", Score: 5, Connected: false},
		model.PlayerState{ID: "p2", DisplayName: "Bob", Score: 1, Connected: true},
	)

	entries := s.service.Leaderboard(session)

	s.Require().Len(entries, 1)
	s.Equal("Bob", entries[0].DisplayName)
}

func (s *ServiceSuite) TestLeaderboardTiesKeepRegistrationOrder() {
	session := s.makeSession(
		model.PlayerState{ID: "p1", DisplayName: "Alice", Score: 2, Connected: true},
		model.PlayerState{ID: "p2", DisplayName: "Bob", Score: 2, Connected: true},
		model.PlayerState{ID: "p3", DisplayName: "Carol", Score: 2, Connected: true},
	)

	entries := s.service.Leaderboard(session)

	s.Require().Len(entries, 3)
	s.Equal("Alice", entries[0].DisplayName)
	s.Equal("Bob", entries[1].DisplayName)
	s.Equal("Carol", entries[2].DisplayName)
}

func (s *ServiceSuite) TestLeaderboardEmptyForNoConnectedPlayers() {
	session := s.makeSession(
		model.PlayerState{ID: "p1", DisplayName: "Alice", Score: 2},
	)

	s.Empty(s.service.Leaderboard(session))
}

// AwardPoint tests

func (s *ServiceSuite) TestAwardPointIncrementsByOne() {
	session := s.makeSession(
		model.PlayerState{ID: "p1", DisplayName: "Alice", Score: 2, Connected: true},
	)

	err := s.service.AwardPoint(session, "Alice")
	s.Require().NoError(err)
	s.Equal(3, session.Players[0].Score)
}

func (s *ServiceSuite) TestAwardPointUnknownPlayerFails() {
	session := s.makeSession()

	err := s.service.AwardPoint(session, "Nobody")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// DrawTarget tests

func (s *ServiceSuite) TestDrawTargetEasyIsWholeUnits() {
	s.random.Queue(42)

	target := s.service.DrawTarget(model.DifficultyEasy)

	s.Equal(int64(4200), target)
	s.Zero(target % 100)
}

func (s *ServiceSuite) TestDrawTargetMediumIsWholeUnits() {
	s.random.Queue(499)

	target := s.service.DrawTarget(model.DifficultyMedium)

	s.Equal(int64(49900), target)
}

func (s *ServiceSuite) TestDrawTargetHardDrawsOnHundredthsGrid() {
	s.random.Queue(99999)

	target := s.service.DrawTarget(model.DifficultyHard)

	s.Equal(int64(99999), target)
}

// ParseGuess tests

func (s *ServiceSuite) TestParseGuess() {
	tests := []struct {
		name  string
		raw   string
		want  int64
		valid bool
	}{
		{"whole number", "42", 4200, true},
		{"two decimals", "419.99", 41999, true},
		{"one decimal", "3.5", 350, true},
		{"zero", "0", 0, true},
		{"negative", "-1", -100, true},
		{"rounds half away from zero", "1.005", 101, true},
		{"rounds negative half away from zero", "-1.005", -101, true},
		{"rounds half despite float image below it", "2.675", 268, true},
		{"third decimal below half truncates", "1.004", 100, true},
		{"scientific notation", "1e2", 10000, true},
		{"scientific notation with decimals", "1.005e0", 101, true},
		{"empty", "", 0, false},
		{"not a number", "abc", 0, false},
		{"nan", "NaN", 0, false},
		{"infinity", "Inf", 0, false},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			got, ok := ParseGuess(tt.raw)
			s.Equal(tt.valid, ok)
			if tt.valid {
				s.Equal(tt.want, got)
			}
		})
	}
}

// Compare tests

func (s *ServiceSuite) TestCompare() {
	tests := []struct {
		name   string
		guess  int64
		target int64
		want   model.Indicator
	}{
		{"exact match", 4200, 4200, model.IndicatorCorrect},
		{"above within threshold", 4300, 4200, model.IndicatorAboveClose},
		{"above just under threshold", 4200 + CloseThresholdCenti - 1, 4200, model.IndicatorAboveClose},
		{"above at threshold", 4200 + CloseThresholdCenti, 4200, model.IndicatorAboveFar},
		{"far above", 90000, 4200, model.IndicatorAboveFar},
		{"below within threshold", 4100, 4200, model.IndicatorBelowClose},
		{"below just under threshold", 4200 - CloseThresholdCenti + 1, 4200, model.IndicatorBelowClose},
		{"below at threshold", 4200 - CloseThresholdCenti, 4200, model.IndicatorBelowFar},
		{"far below", 0, 90000, model.IndicatorBelowFar},
		{"hard mode off by one hundredth", 41999, 42000, model.IndicatorBelowClose},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.Equal(tt.want, Compare(tt.guess, tt.target))
		})
	}
}

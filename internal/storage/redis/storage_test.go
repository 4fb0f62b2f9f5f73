package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/comus-party/justeprix/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.SessionTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) makeSession(id model.SessionID) *model.Session {
	target := int64(4200)
	return &model.Session{
		ID: id,
		Settings: model.Settings{
			NbRounds:   3,
			Difficulty: model.DifficultyHard,
		},
		CurrentRound: 1,
		RoundActive:  true,
		Target:       &target,
		Players: []model.PlayerState{
			{ID: "p1", DisplayName: "Alice", Token: "tok-a", Score: 1, Connected: true},
			{ID: "p2", DisplayName: "Bob", Token: "tok-b"},
		},
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func (s *StorageSuite) TestSaveAndGetSessionRoundTrips() {
	session := s.makeSession("session-1")

	err := s.storage.SaveSession(s.ctx, session)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetSession(s.ctx, "session-1")
	s.Require().NoError(err)
	s.Equal(session.ID, retrieved.ID)
	s.Equal(session.Settings, retrieved.Settings)
	s.Equal(1, retrieved.CurrentRound)
	s.True(retrieved.RoundActive)
	s.Require().NotNil(retrieved.Target)
	s.Equal(int64(4200), *retrieved.Target)
	s.Require().Len(retrieved.Players, 2)
	s.Equal("tok-a", retrieved.Players[0].Token)
	s.True(retrieved.Players[0].Connected)
}

func (s *StorageSuite) TestGetSessionNotFound() {
	_, err := s.storage.GetSession(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *StorageSuite) TestSessionExists() {
	exists, err := s.storage.SessionExists(s.ctx, "session-1")
	s.Require().NoError(err)
	s.False(exists)

	s.Require().NoError(s.storage.SaveSession(s.ctx, s.makeSession("session-1")))

	exists, err = s.storage.SessionExists(s.ctx, "session-1")
	s.Require().NoError(err)
	s.True(exists)
}

func (s *StorageSuite) TestDeleteSessionRemovesKeyAndIndexEntry() {
	s.Require().NoError(s.storage.SaveSession(s.ctx, s.makeSession("session-1")))

	err := s.storage.DeleteSession(s.ctx, "session-1")
	s.Require().NoError(err)

	_, err = s.storage.GetSession(s.ctx, "session-1")
	s.ErrorIs(err, model.ErrSessionNotFound)

	ids, err := s.storage.ListSessionIDs(s.ctx)
	s.Require().NoError(err)
	s.Empty(ids)
}

func (s *StorageSuite) TestListSessionIDs() {
	s.Require().NoError(s.storage.SaveSession(s.ctx, s.makeSession("session-1")))
	s.Require().NoError(s.storage.SaveSession(s.ctx, s.makeSession("session-2")))

	ids, err := s.storage.ListSessionIDs(s.ctx)
	s.Require().NoError(err)
	s.ElementsMatch([]model.SessionID{"session-1", "session-2"}, ids)
}

func (s *StorageSuite) TestListSessionIDsFiltersExpiredKeys() {
	s.Require().NoError(s.storage.SaveSession(s.ctx, s.makeSession("session-1")))
	s.Require().NoError(s.storage.SaveSession(s.ctx, s.makeSession("session-2")))

	// Expire the session keys; the index set has no TTL and lags behind
	s.mini.FastForward(2 * time.Hour)

	ids, err := s.storage.ListSessionIDs(s.ctx)
	s.Require().NoError(err)
	s.Empty(ids)
}

func (s *StorageSuite) TestSessionKeyHasTTL() {
	s.Require().NoError(s.storage.SaveSession(s.ctx, s.makeSession("session-1")))

	ttl := s.mini.TTL(sessionKey("session-1"))
	s.Equal(time.Hour, ttl)
}

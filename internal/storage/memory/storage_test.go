package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/demesup/awale/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

func (s *StorageSuite) TestSaveAndGetPlayer() {
	rec := &model.PlayerRecord{
		Handle:     "alice",
		Credential: "hash123",
		Privacy:    model.PrivacyFriendsOnly,
		Friends:    []string{"bob"},
		Bio:        "hello",
		CreatedAt:  time.Now(),
	}

	err := s.storage.SavePlayer(s.ctx, rec)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetPlayer("alice")
	s.Require().NoError(err)
	s.Equal(rec.Credential, retrieved.Credential)
	s.Equal(model.PrivacyFriendsOnly, retrieved.Privacy)
	s.Equal([]string{"bob"}, retrieved.Friends)
}

func (s *StorageSuite) TestGetPlayerNotFound() {
	_, err := s.storage.GetPlayer("nonexistent")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestSavedRecordIsACopy() {
	rec := &model.PlayerRecord{Handle: "alice", Friends: []string{"bob"}}
	s.Require().NoError(s.storage.SavePlayer(s.ctx, rec))

	rec.Friends[0] = "mallory"

	retrieved, err := s.storage.GetPlayer("alice")
	s.Require().NoError(err)
	s.Equal([]string{"bob"}, retrieved.Friends)
}

func (s *StorageSuite) TestLoadPlayersIsSortedByHandle() {
	s.Require().NoError(s.storage.SavePlayers(s.ctx, []*model.PlayerRecord{
		{Handle: "carol"},
		{Handle: "alice"},
		{Handle: "bob"},
	}))

	recs, err := s.storage.LoadPlayers(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(recs, 3)
	s.Equal("alice", recs[0].Handle)
	s.Equal("bob", recs[1].Handle)
	s.Equal("carol", recs[2].Handle)
}

func (s *StorageSuite) TestSavePlayerReplacesExisting() {
	s.Require().NoError(s.storage.SavePlayer(s.ctx, &model.PlayerRecord{Handle: "alice", Bio: "old"}))
	s.Require().NoError(s.storage.SavePlayer(s.ctx, &model.PlayerRecord{Handle: "alice", Bio: "new"}))

	recs, err := s.storage.LoadPlayers(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(recs, 1)
	s.Equal("new", recs[0].Bio)
}

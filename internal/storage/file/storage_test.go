package file

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/demesup/awale/internal/model"
)

type StorageSuite struct {
	suite.Suite
	path    string
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.path = filepath.Join(s.T().TempDir(), "players.txt")
	s.storage = New(s.path)
	s.ctx = context.Background()
}

func (s *StorageSuite) TestLoadCreatesMissingFile() {
	recs, err := s.storage.LoadPlayers(s.ctx)
	s.Require().NoError(err)
	s.Empty(recs)

	_, err = os.Stat(s.path)
	s.NoError(err)
}

func (s *StorageSuite) TestSaveAndReload() {
	_, err := s.storage.LoadPlayers(s.ctx)
	s.Require().NoError(err)

	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.Require().NoError(s.storage.SavePlayers(s.ctx, []*model.PlayerRecord{
		{
			Handle:     "alice",
			Credential: "$2a$04$abc",
			Privacy:    model.PrivacyFriendsOnly,
			Friends:    []string{"bob", "carol"},
			Bio:        "I like seeds.\nAnd pits.",
			CreatedAt:  created,
		},
		{Handle: "bob", Credential: "$2a$04$def"},
	}))

	reloaded := New(s.path)
	recs, err := reloaded.LoadPlayers(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(recs, 2)

	s.Equal("alice", recs[0].Handle)
	s.Equal("$2a$04$abc", recs[0].Credential)
	s.Equal(model.PrivacyFriendsOnly, recs[0].Privacy)
	s.Equal([]string{"bob", "carol"}, recs[0].Friends)
	s.Equal("I like seeds.\nAnd pits.", recs[0].Bio)
	s.True(created.Equal(recs[0].CreatedAt))

	s.Equal("bob", recs[1].Handle)
	s.Equal(model.PrivacyPublic, recs[1].Privacy)
	s.Empty(recs[1].Friends)
	s.Empty(recs[1].Bio)
}

func (s *StorageSuite) TestSavePlayerKeepsOtherRecords() {
	_, err := s.storage.LoadPlayers(s.ctx)
	s.Require().NoError(err)

	s.Require().NoError(s.storage.SavePlayer(s.ctx, &model.PlayerRecord{Handle: "alice", Credential: "a"}))
	s.Require().NoError(s.storage.SavePlayer(s.ctx, &model.PlayerRecord{Handle: "bob", Credential: "b"}))
	s.Require().NoError(s.storage.SavePlayer(s.ctx, &model.PlayerRecord{Handle: "alice", Credential: "a", Bio: "updated"}))

	recs, err := New(s.path).LoadPlayers(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(recs, 2)
	s.Equal("updated", recs[0].Bio)
	s.Equal("bob", recs[1].Handle)
}

func (s *StorageSuite) TestNoTempFilesLeftBehind() {
	_, err := s.storage.LoadPlayers(s.ctx)
	s.Require().NoError(err)
	s.Require().NoError(s.storage.SavePlayer(s.ctx, &model.PlayerRecord{Handle: "alice", Credential: "a"}))

	entries, err := os.ReadDir(filepath.Dir(s.path))
	s.Require().NoError(err)
	s.Len(entries, 1)
}

func (s *StorageSuite) TestLoadMalformedHeader() {
	s.Require().NoError(os.WriteFile(s.path, []byte("justahandle\n-----\n"), 0o600))

	_, err := s.storage.LoadPlayers(s.ctx)
	s.Error(err)
}

func TestDecodeLegacyFormat(t *testing.T) {
	input := strings.Join([]string{
		"alice secret",
		"bio: hello there",
		"-----",
		"bob hunter2",
		"-----",
		"",
	}, "\n")

	recs, err := Decode(strings.NewReader(input))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].Bio != "hello there" {
		t.Errorf("unexpected bio %q", recs[0].Bio)
	}
	if recs[1].Credential != "hunter2" {
		t.Errorf("unexpected credential %q", recs[1].Credential)
	}
}

func TestEncodeEscapesSeparatorInBio(t *testing.T) {
	var buf bytes.Buffer
	err := Encode(&buf, []*model.PlayerRecord{
		{Handle: "alice", Credential: "x", Bio: "top\n-----\nbottom"},
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	recs, err := Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	if recs[0].Bio != "top\n -----\nbottom" {
		t.Errorf("unexpected bio %q", recs[0].Bio)
	}
}

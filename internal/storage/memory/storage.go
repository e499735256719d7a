package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/demesup/awale/internal/model"
	"github.com/demesup/awale/internal/storage"
)

// Storage is an in-memory implementation of the player store
type Storage struct {
	mu      sync.RWMutex
	players map[string]*model.PlayerRecord
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players: make(map[string]*model.PlayerRecord),
	}
}

// Ensure Storage implements the interface
var _ storage.PlayerStore = (*Storage)(nil)

func (s *Storage) LoadPlayers(ctx context.Context) ([]*model.PlayerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	handles := make([]string, 0, len(s.players))
	for h := range s.players {
		handles = append(handles, h)
	}
	sort.Strings(handles)

	recs := make([]*model.PlayerRecord, 0, len(handles))
	for _, h := range handles {
		recs = append(recs, clone(s.players[h]))
	}
	return recs, nil
}

func (s *Storage) SavePlayer(ctx context.Context, rec *model.PlayerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[rec.Handle] = clone(rec)
	return nil
}

func (s *Storage) SavePlayers(ctx context.Context, recs []*model.PlayerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range recs {
		s.players[rec.Handle] = clone(rec)
	}
	return nil
}

// GetPlayer returns a stored record, for tests and diagnostics
func (s *Storage) GetPlayer(handle string) (*model.PlayerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.players[handle]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return clone(rec), nil
}

func (s *Storage) Close() error {
	return nil
}

func clone(rec *model.PlayerRecord) *model.PlayerRecord {
	c := *rec
	c.Friends = slices.Clone(rec.Friends)
	return &c
}

package storage

import (
	"context"

	"github.com/demesup/awale/internal/model"
)

// PlayerStore persists player records. The registry owns all live state;
// a store only sees snapshots of the persisted fields.
type PlayerStore interface {
	// LoadPlayers returns every stored record
	LoadPlayers(ctx context.Context) ([]*model.PlayerRecord, error)

	// SavePlayer inserts or replaces one record
	SavePlayer(ctx context.Context, rec *model.PlayerRecord) error

	// SavePlayers inserts or replaces a batch of records
	SavePlayers(ctx context.Context, recs []*model.PlayerRecord) error

	// Close releases any resources held by the store
	Close() error
}

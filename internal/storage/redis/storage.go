package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/demesup/awale/internal/model"
	"github.com/demesup/awale/internal/storage"
)

// Storage is a Redis-backed implementation of the player store
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.PlayerStore = (*Storage)(nil)

func (s *Storage) LoadPlayers(ctx context.Context) ([]*model.PlayerRecord, error) {
	handles, err := s.client.SMembers(ctx, playerIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(handles)

	recs := make([]*model.PlayerRecord, 0, len(handles))
	for _, h := range handles {
		rec, err := s.GetPlayer(ctx, h)
		if errors.Is(err, model.ErrPlayerNotFound) {
			// Index entry without a record; skip it
			continue
		}
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// GetPlayer returns a single stored record
func (s *Storage) GetPlayer(ctx context.Context, handle string) (*model.PlayerRecord, error) {
	data, err := s.client.Get(ctx, playerKey(handle)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var rec model.PlayerRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode player %s: %w", handle, err)
	}
	return &rec, nil
}

func (s *Storage) SavePlayer(ctx context.Context, rec *model.PlayerRecord) error {
	return s.SavePlayers(ctx, []*model.PlayerRecord{rec})
}

func (s *Storage) SavePlayers(ctx context.Context, recs []*model.PlayerRecord) error {
	if len(recs) == 0 {
		return nil
	}

	// Use pipeline for atomic save + index update
	pipe := s.client.TxPipeline()
	for _, rec := range recs {
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		pipe.Set(ctx, playerKey(rec.Handle), data, 0)
		pipe.SAdd(ctx, playerIndexKey(), rec.Handle)
	}
	_, err := pipe.Exec(ctx)
	return err
}

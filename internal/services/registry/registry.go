// Package registry holds the authoritative table of players and active games.
//
// Every mutation runs inside Do, which holds a single process-wide lock over
// both tables. Relations between players and games are stored by key and
// resolved through the Tx at the time of use.
package registry

import (
	"context"
	"log/slog"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/demesup/awale/internal/dependencies/clock"
	"github.com/demesup/awale/internal/model"
	"github.com/demesup/awale/internal/services/auth"
	"github.com/demesup/awale/internal/storage"
)

// Notifier delivers an asynchronous line to a connection. Deliver is called
// with the registry lock held, so it must not block and must not call back
// into the registry.
type Notifier interface {
	Deliver(connID string, msg string)
}

// TeardownHook releases one kind of relation held by a player that is going
// offline. Hooks run in registration order inside the logout transaction.
type TeardownHook func(tx *Tx, p *model.Player)

// Config holds configuration for the registry
type Config struct {
	// PersistTimeout bounds a single save to the player store
	PersistTimeout time.Duration
}

// DefaultConfig returns default registry configuration
func DefaultConfig() Config {
	return Config{
		PersistTimeout: 5 * time.Second,
	}
}

// Registry is the concurrency-guarded table of players and games
type Registry struct {
	store    storage.PlayerStore
	hasher   auth.Hasher
	notifier Notifier
	clock    clock.Clock
	logger   *slog.Logger
	cfg      Config

	mu        sync.Mutex
	players   map[string]*model.Player
	games     map[model.GameID]*model.Game
	gameOrder []model.GameID
	teardown  []TeardownHook
}

// New creates a registry
func New(
	store storage.PlayerStore,
	hasher auth.Hasher,
	notifier Notifier,
	clock clock.Clock,
	logger *slog.Logger,
	cfg Config,
) *Registry {
	if cfg.PersistTimeout == 0 {
		cfg.PersistTimeout = DefaultConfig().PersistTimeout
	}
	return &Registry{
		store:    store,
		hasher:   hasher,
		notifier: notifier,
		clock:    clock,
		logger:   logger.With("component", "registry"),
		cfg:      cfg,
		players:  make(map[string]*model.Player),
		games:    make(map[model.GameID]*model.Game),
	}
}

// OnLogout appends a teardown hook. Hooks must be registered before any
// session is served.
func (r *Registry) OnLogout(hook TeardownHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.teardown = append(r.teardown, hook)
}

// Do runs fn with exclusive access to the registry. Notifications queued by
// fn are delivered before the lock is released; persistence snapshots are
// written after. Both happen even when fn returns an error.
func (r *Registry) Do(ctx context.Context, fn func(tx *Tx) error) error {
	tx := &Tx{r: r}
	err := r.run(tx, fn)
	r.flushPersist(ctx, tx.persist)
	return err
}

func (r *Registry) run(tx *Tx, fn func(tx *Tx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer tx.deliver()
	return fn(tx)
}

func (r *Registry) flushPersist(ctx context.Context, recs []*model.PlayerRecord) {
	if len(recs) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.cfg.PersistTimeout)
	defer cancel()

	if err := r.store.SavePlayers(ctx, recs); err != nil {
		handles := make([]string, 0, len(recs))
		for _, rec := range recs {
			handles = append(handles, rec.Handle)
		}
		r.logger.Error("failed to persist players", "handles", handles, "error", err)
	}
}

// Load replaces the player table with the records in the store. All loaded
// players start offline.
func (r *Registry) Load(ctx context.Context) error {
	recs, err := r.store.LoadPlayers(ctx)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.players = make(map[string]*model.Player, len(recs))
	for _, rec := range recs {
		r.players[rec.Handle] = model.NewPlayerFromRecord(rec)
	}
	r.logger.Info("players loaded", "count", len(recs))
	return nil
}

// PersistAll writes every known player record to the store
func (r *Registry) PersistAll(ctx context.Context) error {
	r.mu.Lock()
	recs := make([]*model.PlayerRecord, 0, len(r.players))
	for _, h := range sortedKeys(r.players) {
		recs = append(recs, r.players[h].Record())
	}
	r.mu.Unlock()

	if len(recs) == 0 {
		return nil
	}
	return r.store.SavePlayers(ctx, recs)
}

// Register creates a player, persists it and marks it online on connID
func (r *Registry) Register(ctx context.Context, handle, password, connID string) (*model.Player, error) {
	if err := auth.ValidateCredentials(handle, password); err != nil {
		return nil, err
	}

	credential, err := r.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	var out *model.Player
	err = r.Do(ctx, func(tx *Tx) error {
		if _, exists := r.players[handle]; exists {
			return model.ErrHandleTaken
		}
		p := &model.Player{
			Handle:     handle,
			Credential: credential,
			Privacy:    model.PrivacyPublic,
			CreatedAt:  r.clock.Now(),
			Online:     true,
			ConnID:     connID,
		}
		r.players[handle] = p
		tx.Persist(p)
		out = p.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("player registered", "handle", handle)
	return out, nil
}

// Authenticate checks a handle/password pair and marks the player online on
// connID. The password comparison runs outside the lock; the online flag is
// re-checked before it is set.
func (r *Registry) Authenticate(ctx context.Context, handle, password, connID string) (*model.Player, error) {
	if handle == "" || password == "" {
		return nil, model.ErrEmptyCredential
	}

	var credential string
	err := r.Do(ctx, func(tx *Tx) error {
		p, ok := r.players[handle]
		if !ok {
			return model.ErrPlayerNotFound
		}
		if p.Online {
			return model.ErrAlreadyOnline
		}
		credential = p.Credential
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := r.hasher.Compare(credential, password); err != nil {
		return nil, err
	}

	var out *model.Player
	err = r.Do(ctx, func(tx *Tx) error {
		p, ok := r.players[handle]
		if !ok {
			return model.ErrPlayerNotFound
		}
		if p.Online {
			return model.ErrAlreadyOnline
		}
		p.ClearSession()
		p.Online = true
		p.ConnID = connID
		out = p.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("player logged in", "handle", handle)
	return out, nil
}

// Logout runs every teardown hook for the player and marks them offline.
// Logging out a player that is not online is a no-op.
func (r *Registry) Logout(ctx context.Context, handle string) {
	wasOnline := false
	_ = r.Do(ctx, func(tx *Tx) error {
		p, ok := r.players[handle]
		if !ok || !p.Online {
			return nil
		}
		wasOnline = true
		for _, hook := range r.teardown {
			hook(tx, p)
		}
		p.ClearSession()
		return nil
	})
	if wasOnline {
		r.logger.Info("player logged out", "handle", handle)
	}
}

// Lookup returns a snapshot of a player
func (r *Registry) Lookup(handle string) (*model.Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[handle]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

// ListOnline returns the sorted handles of online players other than excluding
func (r *Registry) ListOnline(excluding string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, h := range sortedKeys(r.players) {
		if h != excluding && r.players[h].Online {
			out = append(out, h)
		}
	}
	return out
}

// ListAll returns the sorted handles of every registered player other than excluding
func (r *Registry) ListAll(excluding string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, h := range sortedKeys(r.players) {
		if h != excluding {
			out = append(out, h)
		}
	}
	return out
}

// ActiveGame is a snapshot of a game with both participants' board sides
type ActiveGame struct {
	Game  model.Game
	Side1 model.Side
	Side2 model.Side
}

// ActiveGames returns snapshots of all active games in creation order
func (r *Registry) ActiveGames() []ActiveGame {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ActiveGame, 0, len(r.gameOrder))
	for _, id := range r.gameOrder {
		g := r.games[id]
		ag := ActiveGame{Game: g.Clone()}
		if p, ok := r.players[g.Player1]; ok {
			ag.Side1 = p.Side
		}
		if p, ok := r.players[g.Player2]; ok {
			ag.Side2 = p.Side
		}
		out = append(out, ag)
	}
	return out
}

// Counts returns the number of registered players, online players and games
func (r *Registry) Counts() (players, online, games int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.players {
		if p.Online {
			online++
		}
	}
	return len(r.players), online, len(r.games)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func removeGameID(ids []model.GameID, id model.GameID) []model.GameID {
	idx := slices.Index(ids, id)
	if idx < 0 {
		return ids
	}
	return slices.Delete(ids, idx, idx+1)
}

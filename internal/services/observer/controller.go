package observer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/demesup/awale/internal/model"
	"github.com/demesup/awale/internal/services/game"
	"github.com/demesup/awale/internal/services/registry"
)

// MsgPrivacyRevoked is sent to an observer removed by a privacy change
const MsgPrivacyRevoked = "A player switched to friends-only. You are no longer observing the game."

// Controller attaches and detaches spectators and enforces the privacy rule
type Controller struct {
	registry *registry.Registry
	logger   *slog.Logger
}

// NewController creates a new observer Controller
func NewController(registry *registry.Registry, logger *slog.Logger) *Controller {
	return &Controller{
		registry: registry,
		logger:   logger.With("component", "observer"),
	}
}

// CanObserve reports whether handle may watch g. Public games are open to
// everyone; if either participant is friends-only the observer must be on
// at least one participant's friend list.
func CanObserve(tx *registry.Tx, g *model.Game, handle string) bool {
	p1, p2 := tx.Player(g.Player1), tx.Player(g.Player2)
	if p1 == nil || p2 == nil {
		return false
	}
	if p1.Privacy != model.PrivacyFriendsOnly && p2.Privacy != model.PrivacyFriendsOnly {
		return true
	}
	return p1.IsFriend(handle) || p2.IsFriend(handle)
}

// Attach adds handle as an observer of target's game and returns the
// confirmation followed by the current board
func (c *Controller) Attach(ctx context.Context, handle, target string) (string, error) {
	var reply string
	err := c.registry.Do(ctx, func(tx *registry.Tx) error {
		p := tx.Player(handle)
		if p == nil {
			return model.ErrPlayerNotFound
		}
		if p.InGame() {
			return model.ErrAlreadyInGame
		}
		if p.Observing != "" {
			return model.ErrAlreadyObserving
		}
		if target == handle {
			return model.ErrSelfObserve
		}
		t := tx.Player(target)
		if t == nil {
			return model.ErrPlayerNotFound
		}
		if !t.InGame() {
			return model.ErrTargetNotInGame
		}
		g := tx.Game(t.GameID)
		if g == nil {
			return model.ErrGameNotFound
		}
		if !CanObserve(tx, g, handle) {
			return model.ErrFriendsOnly
		}

		g.AddObserver(handle)
		p.Observing = target
		for _, h := range []string{g.Player1, g.Player2} {
			tx.Notify(h, fmt.Sprintf("%s is now observing your game.", handle))
		}

		reply = fmt.Sprintf("You are now observing %s.%s", g.Title(),
			game.ObserverView(g, tx.Player(g.Player1), tx.Player(g.Player2)))

		c.logger.Info("observer attached",
			slog.String("handle", handle),
			slog.String("game_id", string(g.ID)),
		)
		return nil
	})
	return reply, err
}

// Detach stops handle from observing
func (c *Controller) Detach(ctx context.Context, handle string) (string, error) {
	var reply string
	err := c.registry.Do(ctx, func(tx *registry.Tx) error {
		p := tx.Player(handle)
		if p == nil {
			return model.ErrPlayerNotFound
		}
		g := c.DetachTx(tx, p)
		if g == nil {
			return model.ErrNotObserving
		}
		reply = fmt.Sprintf("You stopped observing %s.", g.Title())
		return nil
	})
	return reply, err
}

// DetachTx removes p from the game it observes and returns that game, or
// nil if p was not observing. Must be called inside a registry transaction.
func (c *Controller) DetachTx(tx *registry.Tx, p *model.Player) *model.Game {
	if p.Observing == "" {
		return nil
	}
	target := p.Observing
	p.Observing = ""

	g := ObservedGame(tx, target, p.Handle)
	if g == nil {
		return nil
	}
	g.RemoveObserver(p.Handle)

	c.logger.Info("observer detached",
		slog.String("handle", p.Handle),
		slog.String("game_id", string(g.ID)),
	)
	return g
}

// OnLogout detaches a departing observer. Registered after the game and
// challenge teardown hooks.
func (c *Controller) OnLogout(tx *registry.Tx, p *model.Player) {
	c.DetachTx(tx, p)
}

// Revalidate re-checks every observer of p's game after a privacy change
// and removes those no longer allowed. It returns the removed handles.
func (c *Controller) Revalidate(tx *registry.Tx, p *model.Player) []string {
	if !p.InGame() {
		return nil
	}
	g := tx.Game(p.GameID)
	if g == nil {
		return nil
	}

	var removed []string
	for _, o := range append([]string(nil), g.Observers...) {
		if CanObserve(tx, g, o) {
			continue
		}
		g.RemoveObserver(o)
		if op := tx.Player(o); op != nil {
			op.Observing = ""
		}
		tx.Notify(o, MsgPrivacyRevoked)
		removed = append(removed, o)
	}

	if len(removed) > 0 {
		c.logger.Info("observers removed by privacy change",
			slog.String("handle", p.Handle),
			slog.String("game_id", string(g.ID)),
			slog.Any("observers", removed),
		)
	}
	return removed
}

// ObservedGame resolves the game observer is attached to through the
// observed player target, falling back to a scan of all games
func ObservedGame(tx *registry.Tx, target, observer string) *model.Game {
	if t := tx.Player(target); t != nil && t.InGame() {
		if g := tx.Game(t.GameID); g != nil && g.HasObserver(observer) {
			return g
		}
	}
	for _, g := range tx.Games() {
		if g.HasObserver(observer) {
			return g
		}
	}
	return nil
}

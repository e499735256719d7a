package challenge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/demesup/awale/internal/model"
	"github.com/demesup/awale/internal/services/game"
	"github.com/demesup/awale/internal/services/observer"
	"github.com/demesup/awale/internal/services/registry"
)

// MsgAccepted is sent to the challenger when the target accepts
const MsgAccepted = "Your challenge has been accepted!"

// Controller drives the challenge relation between two players. A player
// holds at most one relation at a time, in either direction.
type Controller struct {
	registry  *registry.Registry
	games     *game.Controller
	observers *observer.Controller
	logger    *slog.Logger
}

// NewController creates a new challenge Controller
func NewController(
	registry *registry.Registry,
	games *game.Controller,
	observers *observer.Controller,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		registry:  registry,
		games:     games,
		observers: observers,
		logger:    logger.With("component", "challenge"),
	}
}

// Challenge records a pending challenge from initiator to target and
// notifies the target
func (c *Controller) Challenge(ctx context.Context, initiator, target string) (string, error) {
	err := c.registry.Do(ctx, func(tx *registry.Tx) error {
		p := tx.Player(initiator)
		if p == nil {
			return model.ErrPlayerNotFound
		}
		if p.Observing != "" {
			return model.ErrObservingBusy
		}
		if p.Challenging != "" {
			return model.ErrAlreadyChallenging
		}
		if p.ChallengedBy != "" {
			return model.ErrAlreadyChallenged
		}
		if p.InGame() {
			return model.ErrAlreadyInGame
		}
		if target == initiator {
			return model.ErrSelfChallenge
		}
		t, err := tx.OnlinePlayer(target)
		if err != nil {
			return err
		}
		if t.InGame() {
			return model.ErrTargetInGame
		}
		if t.HasPendingChallenge() {
			return model.ErrTargetBusy
		}

		p.Challenging = target
		t.ChallengedBy = initiator
		tx.Notify(target, fmt.Sprintf("%s is challenging you! Type ACCEPT or DECLINE.", initiator))
		return nil
	})
	if err != nil {
		return "", err
	}

	c.logger.Info("challenge sent",
		slog.String("handle", initiator),
		slog.String("target", target),
	)
	return fmt.Sprintf("Challenge sent to %s. Waiting for a response.", target), nil
}

// Accept resolves the pending challenge against handle into a new game.
// Either side that is observing a game stops observing it. A challenger
// that is no longer available is reported as a stale reference and the
// relation is cleared.
func (c *Controller) Accept(ctx context.Context, handle string) error {
	var id model.GameID
	var challenger string
	err := c.registry.Do(ctx, func(tx *registry.Tx) error {
		p := tx.Player(handle)
		if p == nil {
			return model.ErrPlayerNotFound
		}
		if p.ChallengedBy == "" {
			return model.ErrNoPendingChallenge
		}
		challenger = p.ChallengedBy
		ch := tx.Player(challenger)
		if ch == nil || !ch.Online || ch.Challenging != handle || ch.InGame() {
			p.ChallengedBy = ""
			if ch != nil && ch.Challenging == handle {
				ch.Challenging = ""
			}
			return model.ErrChallengerGone
		}

		p.ChallengedBy = ""
		ch.Challenging = ""
		c.observers.DetachTx(tx, p)
		c.observers.DetachTx(tx, ch)

		tx.Notify(challenger, MsgAccepted)
		tx.Notify(handle, fmt.Sprintf("You accepted the challenge from %s.", challenger))
		id = c.games.Start(tx, ch, p).ID
		return nil
	})
	if err != nil {
		if model.KindOf(err) == model.KindStaleReference {
			c.logger.Info("stale challenge cleared",
				slog.String("handle", handle),
				slog.String("challenger", challenger),
			)
		}
		return err
	}

	c.logger.Info("challenge accepted",
		slog.String("handle", handle),
		slog.String("challenger", challenger),
		slog.String("game_id", string(id)),
	)
	return nil
}

// Decline rejects the pending challenge against handle
func (c *Controller) Decline(ctx context.Context, handle string) (string, error) {
	var challenger string
	err := c.registry.Do(ctx, func(tx *registry.Tx) error {
		p := tx.Player(handle)
		if p == nil {
			return model.ErrPlayerNotFound
		}
		if p.ChallengedBy == "" {
			return model.ErrNoPendingChallenge
		}
		challenger = p.ChallengedBy
		p.ChallengedBy = ""
		if ch := tx.Player(challenger); ch != nil && ch.Challenging == handle {
			ch.Challenging = ""
			tx.Notify(challenger, fmt.Sprintf("%s declined your challenge.", handle))
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	c.logger.Info("challenge declined",
		slog.String("handle", handle),
		slog.String("challenger", challenger),
	)
	return fmt.Sprintf("You declined the challenge from %s.", challenger), nil
}

// Revoke withdraws the challenge handle has sent
func (c *Controller) Revoke(ctx context.Context, handle string) (string, error) {
	var target string
	err := c.registry.Do(ctx, func(tx *registry.Tx) error {
		p := tx.Player(handle)
		if p == nil {
			return model.ErrPlayerNotFound
		}
		if p.Challenging == "" {
			return model.ErrNotChallenging
		}
		target = p.Challenging
		p.Challenging = ""
		if t := tx.Player(target); t != nil && t.ChallengedBy == handle {
			t.ChallengedBy = ""
			tx.Notify(target, fmt.Sprintf("%s revoked their challenge.", handle))
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	c.logger.Info("challenge revoked",
		slog.String("handle", handle),
		slog.String("target", target),
	)
	return fmt.Sprintf("You revoked your challenge to %s.", target), nil
}

// Pending describes the challenge relation handle is part of
func (c *Controller) Pending(handle string) string {
	p, ok := c.registry.Lookup(handle)
	switch {
	case !ok:
		return "no pending challenge"
	case p.Challenging != "":
		return "challenging " + p.Challenging
	case p.ChallengedBy != "":
		return "challenged by " + p.ChallengedBy
	default:
		return "no pending challenge"
	}
}

// OnLogout clears any challenge relation of a departing player and tells
// the other side. Registered after the game teardown hook.
func (c *Controller) OnLogout(tx *registry.Tx, p *model.Player) {
	if p.Challenging != "" {
		if t := tx.Player(p.Challenging); t != nil && t.ChallengedBy == p.Handle {
			t.ChallengedBy = ""
			tx.Notify(t.Handle, fmt.Sprintf("%s went offline, the challenge was cancelled.", p.Handle))
		}
		p.Challenging = ""
	}
	if p.ChallengedBy != "" {
		if ch := tx.Player(p.ChallengedBy); ch != nil && ch.Challenging == p.Handle {
			ch.Challenging = ""
			tx.Notify(ch.Handle, fmt.Sprintf("%s went offline, the challenge was cancelled.", p.Handle))
		}
		p.ChallengedBy = ""
	}
}

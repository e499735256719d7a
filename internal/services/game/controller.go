package game

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/demesup/awale/internal/dependencies/clock"
	"github.com/demesup/awale/internal/dependencies/random"
	"github.com/demesup/awale/internal/model"
	"github.com/demesup/awale/internal/services/board"
	"github.com/demesup/awale/internal/services/registry"
)

// EndCause says why a game ended before reaching a terminal position
type EndCause int

const (
	CauseDisconnect EndCause = iota
	CauseForfeit
)

func (c EndCause) String() string {
	if c == CauseForfeit {
		return "forfeit"
	}
	return "disconnect"
}

// Messages sent to participants and observers
const (
	MsgYouGoFirst      = "Game is starting! You go first."
	MsgWaitForTurn     = "Game is starting! Wait for your turn."
	MsgTurnOver        = "Your turn is over."
	MsgYourTurn        = "Your turn!"
	MsgTie             = "It's a tie!"
	MsgOpponentDropped = "Your opponent disconnected. You win by forfeit."
	MsgOpponentLeft    = "Your opponent left the game. You win by forfeit."
	MsgObservedEnded   = "The game you were observing has ended."
)

// Controller owns the active game table: creation, turn flow and teardown
type Controller struct {
	registry *registry.Registry
	clock    clock.Clock
	random   random.Random
	logger   *slog.Logger
}

// NewController creates a new game Controller
func NewController(
	registry *registry.Registry,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		registry: registry,
		clock:    clock,
		random:   random,
		logger:   logger.With("component", "game"),
	}
}

// Start creates a game between two players who are both online and idle.
// The first turn is drawn at random. Must be called inside a registry
// transaction.
func (c *Controller) Start(tx *registry.Tx, p1, p2 *model.Player) *model.Game {
	g := &model.Game{
		ID:        model.GameID(c.random.NewID()),
		Player1:   p1.Handle,
		Player2:   p2.Handle,
		StartedAt: c.clock.Now(),
	}
	if c.random.Intn(2) == 0 {
		g.CurrentTurn = p1.Handle
	} else {
		g.CurrentTurn = p2.Handle
	}

	for _, p := range []*model.Player{p1, p2} {
		p.Side = board.NewSide()
		p.MoveHistory = nil
		p.GameID = g.ID
	}
	tx.AddGame(g)

	for _, pair := range [][2]*model.Player{{p1, p2}, {p2, p1}} {
		me, them := pair[0], pair[1]
		if g.CurrentTurn == me.Handle {
			tx.Notify(me.Handle, MsgYouGoFirst)
		} else {
			tx.Notify(me.Handle, MsgWaitForTurn)
		}
		tx.Notify(me.Handle, board.Render(me.Side, them.Side, me.Handle, them.Handle))
	}

	c.logger.Info("game created",
		slog.String("game_id", string(g.ID)),
		slog.String("player1", g.Player1),
		slog.String("player2", g.Player2),
		slog.String("first_turn", g.CurrentTurn),
	)
	return g
}

// Move applies a sowing move for the player whose turn it is. pit is
// zero-based. Board updates and turn messages are delivered as
// notifications; the game is torn down when the position is terminal.
func (c *Controller) Move(ctx context.Context, handle string, pit int) error {
	return c.registry.Do(ctx, func(tx *registry.Tx) error {
		p := tx.Player(handle)
		if p == nil {
			return model.ErrPlayerNotFound
		}
		if !p.InGame() {
			return model.ErrNotInGame
		}
		g := tx.Game(p.GameID)
		if g == nil {
			return model.ErrGameNotFound
		}
		if g.CurrentTurn != handle {
			return model.ErrNotYourTurn
		}
		if err := board.ValidateMove(p.Side, pit); err != nil {
			return err
		}
		opp := tx.Player(g.Opponent(handle))
		if opp == nil {
			return model.ErrPlayerNotFound
		}

		p.MoveHistory = append(p.MoveHistory, model.Move{Pit: pit, SeedsBefore: p.Side.Pits[pit]})
		res := board.Sow(&p.Side, &opp.Side, pit)
		g.MoveCount++

		c.broadcastBoard(tx, g)
		if res.Captured > 0 {
			c.notifyAll(tx, g, fmt.Sprintf("%s captured %d seeds.", handle, res.Captured))
		}

		p1, p2 := c.participants(tx, g)
		if board.IsTerminal(p1.Side, p2.Side) {
			c.finish(tx, g, p1, p2)
			return nil
		}

		g.CurrentTurn = opp.Handle
		tx.Notify(handle, MsgTurnOver)
		tx.Notify(opp.Handle, MsgYourTurn)
		return nil
	})
}

// Forfeit ends the caller's game in the opponent's favour
func (c *Controller) Forfeit(ctx context.Context, handle string) (string, error) {
	var winner string
	err := c.registry.Do(ctx, func(tx *registry.Tx) error {
		p := tx.Player(handle)
		if p == nil {
			return model.ErrPlayerNotFound
		}
		if !p.InGame() {
			return model.ErrNotInGame
		}
		g := tx.Game(p.GameID)
		if g == nil {
			return model.ErrGameNotFound
		}
		winner = g.Opponent(handle)
		c.End(tx, g.ID, handle, CauseForfeit)
		return nil
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("You left the game. %s wins by forfeit.", winner), nil
}

// End terminates a game abnormally because leaver disconnected or forfeited.
// The remaining participant, if still online, wins.
func (c *Controller) End(tx *registry.Tx, id model.GameID, leaver string, cause EndCause) {
	g := tx.Game(id)
	if g == nil {
		return
	}
	winner := g.Opponent(leaver)

	if w := tx.Player(winner); w != nil && w.Online {
		if cause == CauseForfeit {
			tx.Notify(winner, MsgOpponentLeft)
		} else {
			tx.Notify(winner, MsgOpponentDropped)
		}
		verb := "disconnected"
		if cause == CauseForfeit {
			verb = "left the game"
		}
		for _, o := range g.Observers {
			tx.Notify(o, fmt.Sprintf("%s %s. %s wins by forfeit.", leaver, verb, winner))
		}
	}

	moves := g.MoveCount
	c.Teardown(tx, g)

	c.logger.Info("game abandoned",
		slog.String("game_id", string(id)),
		slog.String("leaver", leaver),
		slog.String("winner", winner),
		slog.String("cause", cause.String()),
		slog.Int("moves", moves),
	)
}

// Teardown detaches and notifies every observer, clears both participants'
// in-game state and removes the game from the table
func (c *Controller) Teardown(tx *registry.Tx, g *model.Game) {
	for _, o := range g.Observers {
		if op := tx.Player(o); op != nil {
			op.Observing = ""
		}
		tx.Notify(o, MsgObservedEnded)
	}
	g.Observers = nil

	for _, h := range []string{g.Player1, g.Player2} {
		if p := tx.Player(h); p != nil && p.GameID == g.ID {
			p.GameID = ""
			p.Side = model.Side{}
			p.MoveHistory = nil
		}
	}
	tx.RemoveGame(g.ID)
}

// OnLogout ends the departing player's game. Registered as the first
// registry teardown hook.
func (c *Controller) OnLogout(tx *registry.Tx, p *model.Player) {
	if p.InGame() {
		c.End(tx, p.GameID, p.Handle, CauseDisconnect)
	}
}

// Games returns snapshots of all active games in creation order
func (c *Controller) Games() []registry.ActiveGame {
	return c.registry.ActiveGames()
}

// ObserverView renders the board as seen by observers, from player 1's side
func ObserverView(g *model.Game, p1, p2 *model.Player) string {
	return board.Render(p1.Side, p2.Side, g.Player1, g.Player2)
}

func (c *Controller) finish(tx *registry.Tx, g *model.Game, p1, p2 *model.Player) {
	var msg, winner string
	switch board.Outcome(p1.Side, p2.Side) {
	case board.Player1Wins:
		winner = p1.Handle
		msg = winner + " wins!"
	case board.Player2Wins:
		winner = p2.Handle
		msg = winner + " wins!"
	default:
		msg = MsgTie
	}
	c.notifyAll(tx, g, fmt.Sprintf("Game over! Final score: %s %d - %s %d",
		p1.Handle, p1.Side.Store, p2.Handle, p2.Side.Store))
	c.notifyAll(tx, g, msg)

	c.logger.Info("game finished",
		slog.String("game_id", string(g.ID)),
		slog.String("winner", winner),
		slog.Int("store1", p1.Side.Store),
		slog.Int("store2", p2.Side.Store),
		slog.Int("moves1", len(p1.MoveHistory)),
		slog.Int("moves2", len(p2.MoveHistory)),
	)
	c.Teardown(tx, g)
}

func (c *Controller) broadcastBoard(tx *registry.Tx, g *model.Game) {
	p1, p2 := c.participants(tx, g)
	tx.Notify(p1.Handle, board.Render(p1.Side, p2.Side, p1.Handle, p2.Handle))
	tx.Notify(p2.Handle, board.Render(p2.Side, p1.Side, p2.Handle, p1.Handle))
	view := ObserverView(g, p1, p2)
	for _, o := range g.Observers {
		tx.Notify(o, view)
	}
}

func (c *Controller) notifyAll(tx *registry.Tx, g *model.Game, msg string) {
	tx.Notify(g.Player1, msg)
	tx.Notify(g.Player2, msg)
	for _, o := range g.Observers {
		tx.Notify(o, msg)
	}
}

func (c *Controller) participants(tx *registry.Tx, g *model.Game) (*model.Player, *model.Player) {
	return tx.Player(g.Player1), tx.Player(g.Player2)
}

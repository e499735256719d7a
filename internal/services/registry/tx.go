package registry

import (
	"log/slog"

	"github.com/demesup/awale/internal/model"
)

type notification struct {
	connID string
	msg    string
}

// Tx is exclusive access to the registry for the duration of one Do call.
// It must not be retained after fn returns.
type Tx struct {
	r       *Registry
	notes   []notification
	persist []*model.PlayerRecord
}

// Player returns the live record for handle, or nil if unknown
func (tx *Tx) Player(handle string) *model.Player {
	return tx.r.players[handle]
}

// OnlinePlayer returns the live record for an online handle
func (tx *Tx) OnlinePlayer(handle string) (*model.Player, error) {
	p, ok := tx.r.players[handle]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	if !p.Online {
		return nil, model.ErrPlayerOffline
	}
	return p, nil
}

// OnlinePlayers returns every online player sorted by handle
func (tx *Tx) OnlinePlayers() []*model.Player {
	var out []*model.Player
	for _, h := range sortedKeys(tx.r.players) {
		if p := tx.r.players[h]; p.Online {
			out = append(out, p)
		}
	}
	return out
}

// Game returns the live game for id, or nil if none
func (tx *Tx) Game(id model.GameID) *model.Game {
	return tx.r.games[id]
}

// Games returns every active game in creation order
func (tx *Tx) Games() []*model.Game {
	out := make([]*model.Game, 0, len(tx.r.gameOrder))
	for _, id := range tx.r.gameOrder {
		out = append(out, tx.r.games[id])
	}
	return out
}

// AddGame records a new game
func (tx *Tx) AddGame(g *model.Game) {
	tx.r.games[g.ID] = g
	tx.r.gameOrder = append(tx.r.gameOrder, g.ID)
}

// RemoveGame drops a game from the table
func (tx *Tx) RemoveGame(id model.GameID) {
	delete(tx.r.games, id)
	tx.r.gameOrder = removeGameID(tx.r.gameOrder, id)
}

// Notify queues msg for handle's connection. Offline or unknown handles are
// skipped.
func (tx *Tx) Notify(handle, msg string) {
	p, ok := tx.r.players[handle]
	if !ok || !p.Online || p.ConnID == "" {
		return
	}
	tx.notes = append(tx.notes, notification{connID: p.ConnID, msg: msg})
}

// Persist queues a snapshot of p's persisted fields
func (tx *Tx) Persist(p *model.Player) {
	tx.persist = append(tx.persist, p.Record())
}

// Logger returns the registry logger
func (tx *Tx) Logger() *slog.Logger {
	return tx.r.logger
}

func (tx *Tx) deliver() {
	if tx.r.notifier == nil {
		return
	}
	for _, n := range tx.notes {
		tx.r.notifier.Deliver(n.connID, n.msg)
	}
	tx.notes = nil
}

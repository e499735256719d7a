package response

import (
	"time"

	"github.com/demesup/awale/internal/model"
	"github.com/demesup/awale/internal/services/registry"
)

// Health is the response of the health endpoint
type Health struct {
	Status  string `json:"status"`
	Players int    `json:"players"`
	Online  int    `json:"online"`
	Games   int    `json:"games"`
}

// OnlinePlayers lists the handles currently logged in
type OnlinePlayers struct {
	Players []string `json:"players"`
	Count   int      `json:"count"`
}

// Player is the public profile of a player
type Player struct {
	Handle    string    `json:"handle"`
	Online    bool      `json:"online"`
	Privacy   string    `json:"privacy"`
	Bio       string    `json:"bio"`
	InGame    bool      `json:"in_game"`
	Observing bool      `json:"observing"`
	Friends   int       `json:"friends"`
	CreatedAt time.Time `json:"created_at"`
}

// PlayerFromModel converts a model.Player to a public profile. Friend
// handles and credentials are not exposed.
func PlayerFromModel(p *model.Player) Player {
	return Player{
		Handle:    p.Handle,
		Online:    p.Online,
		Privacy:   p.Privacy.String(),
		Bio:       p.Bio,
		InGame:    p.InGame(),
		Observing: p.Observing != "",
		Friends:   len(p.Friends),
		CreatedAt: p.CreatedAt,
	}
}

// Side is one participant's half of the board
type Side struct {
	Handle string `json:"handle"`
	Pits   []int  `json:"pits"`
	Store  int    `json:"store"`
}

// Game summarizes an active game
type Game struct {
	ID            string    `json:"id"`
	Player1       Side      `json:"player1"`
	Player2       Side      `json:"player2"`
	CurrentTurn   string    `json:"current_turn"`
	ObserverCount int       `json:"observer_count"`
	MoveCount     int       `json:"move_count"`
	StartedAt     time.Time `json:"started_at"`
}

// GameFromActive converts a registry snapshot to a Game. Observer handles
// are not exposed.
func GameFromActive(ag registry.ActiveGame) Game {
	return Game{
		ID:            string(ag.Game.ID),
		Player1:       sideFromModel(ag.Game.Player1, ag.Side1),
		Player2:       sideFromModel(ag.Game.Player2, ag.Side2),
		CurrentTurn:   ag.Game.CurrentTurn,
		ObserverCount: len(ag.Game.Observers),
		MoveCount:     ag.Game.MoveCount,
		StartedAt:     ag.Game.StartedAt,
	}
}

func sideFromModel(handle string, s model.Side) Side {
	return Side{
		Handle: handle,
		Pits:   s.Pits[:],
		Store:  s.Store,
	}
}

// Games lists active games in creation order
type Games struct {
	Games []Game `json:"games"`
	Count int    `json:"count"`
}

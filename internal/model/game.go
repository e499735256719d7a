package model

import (
	"slices"
	"time"
)

// GameID uniquely identifies an active game
type GameID string

// Game is one active match between two players. Board state lives on the
// participants' Player records; the game only references them by handle.
type Game struct {
	ID          GameID
	Player1     string
	Player2     string
	CurrentTurn string
	// Observers in insertion order, which is also broadcast order
	Observers []string
	MoveCount int
	StartedAt time.Time
}

// HasParticipant returns true if the handle is one of the two players
func (g *Game) HasParticipant(handle string) bool {
	return g.Player1 == handle || g.Player2 == handle
}

// Opponent returns the other participant
func (g *Game) Opponent(handle string) string {
	if g.Player1 == handle {
		return g.Player2
	}
	return g.Player1
}

// HasObserver returns true if the handle is attached as an observer
func (g *Game) HasObserver(handle string) bool {
	return slices.Contains(g.Observers, handle)
}

// AddObserver appends an observer, ignoring duplicates
func (g *Game) AddObserver(handle string) bool {
	if g.HasObserver(handle) {
		return false
	}
	g.Observers = append(g.Observers, handle)
	return true
}

// RemoveObserver removes an observer and reports whether it was attached
func (g *Game) RemoveObserver(handle string) bool {
	idx := slices.Index(g.Observers, handle)
	if idx < 0 {
		return false
	}
	g.Observers = slices.Delete(g.Observers, idx, idx+1)
	return true
}

// Clone returns a copy that shares no mutable state with the original
func (g *Game) Clone() Game {
	c := *g
	c.Observers = slices.Clone(g.Observers)
	return c
}

// Title returns the "<p1> VS <p2>" label used in listings
func (g *Game) Title() string {
	return g.Player1 + " VS " + g.Player2
}

// Package board implements the seed-capture rules of the game: sowing,
// chain capture and end-of-game detection. Every function is pure over the
// sides it is given.
package board

import (
	"github.com/demesup/awale/internal/model"
)

const (
	// InitialSeeds is the number of seeds in every pit at game start
	InitialSeeds = 4

	// TotalSeeds is the number of seeds in play
	TotalSeeds = 2 * model.PitCount * InitialSeeds

	// WinningStore is more than half of TotalSeeds, so a store at or above
	// it can no longer be caught
	WinningStore = TotalSeeds/2 + 1

	// SaviorThreshold is the pit total a side must exceed to be able to feed
	// an empty opponent on a later turn
	SaviorThreshold = 1
)

// Result is the outcome of a finished game from player 1's point of view
type Result int

const (
	Tie Result = iota
	Player1Wins
	Player2Wins
)

// NewSide returns a side in its initial configuration
func NewSide() model.Side {
	var s model.Side
	for i := range s.Pits {
		s.Pits[i] = InitialSeeds
	}
	return s
}

// ValidateMove checks that pit is in range and not empty
func ValidateMove(s model.Side, pit int) error {
	if pit < 0 || pit >= model.PitCount {
		return model.ErrInvalidPit
	}
	if s.Pits[pit] == 0 {
		return model.ErrEmptyPit
	}
	return nil
}

// SowResult describes where a sowing ended
type SowResult struct {
	LastPit        int
	OnOpponentSide bool
	Captured       int
}

// Sow empties the start pit and distributes its seeds one per pit,
// moving rightward through the owner's pits and on into the opponent's,
// wrapping around as needed. The start pit never receives a seed from its
// own sowing. If the last seed lands on the opponent's side a chain capture
// is made from that pit. The caller must validate the move first.
func Sow(owner, opponent *model.Side, start int) SowResult {
	seeds := owner.Pits[start]
	owner.Pits[start] = 0

	pit := start
	onOpponent := false
	for seeds > 0 {
		pit++
		if pit == model.PitCount {
			pit = 0
			onOpponent = !onOpponent
		}
		if onOpponent {
			opponent.Pits[pit]++
		} else {
			if pit == start {
				continue
			}
			owner.Pits[pit]++
		}
		seeds--
	}

	result := SowResult{LastPit: pit, OnOpponentSide: onOpponent}
	if onOpponent {
		result.Captured = Capture(owner, opponent, pit)
	}
	return result
}

// Capture takes the seeds of every opponent pit holding exactly two or
// three seeds, starting at from and walking back towards the opponent's
// first pit, stopping at the first pit that does not qualify. It returns
// the number of seeds moved into the owner's store.
func Capture(owner, opponent *model.Side, from int) int {
	captured := 0
	for pit := from; pit >= 0 && capturable(opponent.Pits[pit]); pit-- {
		captured += opponent.Pits[pit]
		opponent.Pits[pit] = 0
	}
	owner.Store += captured
	return captured
}

func capturable(seeds int) bool {
	return seeds == 2 || seeds == 3
}

// Dead returns true if the side has no seeds left in its pits
func Dead(s model.Side) bool {
	return s.Seeds() == 0
}

// IsSavior returns true if the side holds enough seeds to feed an empty opponent
func IsSavior(s model.Side) bool {
	return s.Seeds() > SaviorThreshold
}

// IsTerminal returns true when the game is over: either store has reached
// WinningStore, or one side is dead and the other cannot save it
func IsTerminal(p1, p2 model.Side) bool {
	if p1.Store >= WinningStore || p2.Store >= WinningStore {
		return true
	}
	if Dead(p1) && !IsSavior(p2) {
		return true
	}
	return Dead(p2) && !IsSavior(p1)
}

// Outcome compares the stores of a finished game
func Outcome(p1, p2 model.Side) Result {
	switch {
	case p1.Store > p2.Store:
		return Player1Wins
	case p2.Store > p1.Store:
		return Player2Wins
	default:
		return Tie
	}
}

// SeedsInPlay counts every seed on both sides, stores included
func SeedsInPlay(p1, p2 model.Side) int {
	return p1.Seeds() + p1.Store + p2.Seeds() + p2.Store
}

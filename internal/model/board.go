package model

// PitCount is the number of pits on each side of the board
const PitCount = 6

// Side is one player's half of the board: six pits and a store
type Side struct {
	Pits  [PitCount]int `json:"pits"`
	Store int           `json:"store"`
}

// Seeds returns the number of seeds in the pits (the store is not counted)
func (s Side) Seeds() int {
	total := 0
	for _, n := range s.Pits {
		total += n
	}
	return total
}

// Move records one sowing in a player's history
type Move struct {
	Pit         int // 0-indexed
	SeedsBefore int
}

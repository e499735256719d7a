package board

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/demesup/awale/internal/model"
)

func side(store int, pits ...int) model.Side {
	var s model.Side
	copy(s.Pits[:], pits)
	s.Store = store
	return s
}

func TestNewSide(t *testing.T) {
	s := NewSide()
	assert.Equal(t, [model.PitCount]int{4, 4, 4, 4, 4, 4}, s.Pits)
	assert.Equal(t, 0, s.Store)
	assert.Equal(t, TotalSeeds, SeedsInPlay(s, NewSide()))
}

func TestValidateMove(t *testing.T) {
	s := side(0, 0, 1, 2, 3, 4, 5)

	tests := []struct {
		name string
		pit  int
		want error
	}{
		{"below range", -1, model.ErrInvalidPit},
		{"above range", 6, model.ErrInvalidPit},
		{"empty pit", 0, model.ErrEmptyPit},
		{"valid", 1, nil},
		{"last pit", 5, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMove(s, tt.pit)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestSowFromInitialPosition(t *testing.T) {
	p1, p2 := NewSide(), NewSide()

	result := Sow(&p1, &p2, 0)

	assert.Equal(t, [model.PitCount]int{0, 5, 5, 5, 5, 4}, p1.Pits)
	assert.Equal(t, [model.PitCount]int{4, 4, 4, 4, 4, 4}, p2.Pits)
	assert.Equal(t, 4, result.LastPit)
	assert.False(t, result.OnOpponentSide)
	assert.Equal(t, 0, result.Captured)
	assert.Equal(t, 0, p1.Store)
}

func TestSowIntoOpponentWithoutCapture(t *testing.T) {
	p1, p2 := NewSide(), NewSide()

	result := Sow(&p1, &p2, 4)

	assert.Equal(t, [model.PitCount]int{4, 4, 4, 4, 0, 5}, p1.Pits)
	assert.Equal(t, [model.PitCount]int{5, 5, 5, 4, 4, 4}, p2.Pits)
	assert.True(t, result.OnOpponentSide)
	assert.Equal(t, 2, result.LastPit)
	assert.Equal(t, 0, result.Captured)
}

func TestSowCapturesSinglePit(t *testing.T) {
	p1 := side(0, 0, 0, 0, 0, 0, 2)
	p2 := side(0, 0, 1, 4, 4, 4, 4)

	result := Sow(&p1, &p2, 5)

	assert.True(t, result.OnOpponentSide)
	assert.Equal(t, 1, result.LastPit)
	assert.Equal(t, 2, result.Captured)
	assert.Equal(t, 2, p1.Store)
	assert.Equal(t, [model.PitCount]int{1, 0, 4, 4, 4, 4}, p2.Pits)
}

func TestSowCapturesChainBackward(t *testing.T) {
	p1 := side(0, 0, 0, 0, 0, 0, 3)
	p2 := side(0, 2, 1, 1, 4, 4, 4)

	result := Sow(&p1, &p2, 5)

	// pits 0..2 become 3, 2, 2 and are all taken
	assert.Equal(t, 2, result.LastPit)
	assert.Equal(t, 7, result.Captured)
	assert.Equal(t, 7, p1.Store)
	assert.Equal(t, [model.PitCount]int{0, 0, 0, 4, 4, 4}, p2.Pits)
}

func TestSowSkipsOriginOnWraparound(t *testing.T) {
	p1 := side(0, 14, 0, 0, 0, 0, 0)
	p2 := side(0, 0, 0, 0, 0, 0, 0)

	Sow(&p1, &p2, 0)

	// 5 seeds into own pits 1..5, 6 into the opponent, origin skipped,
	// the last 3 into own pits 1..3
	assert.Equal(t, 0, p1.Pits[0])
	assert.Equal(t, [model.PitCount]int{0, 2, 2, 2, 1, 1}, p1.Pits)
	assert.Equal(t, [model.PitCount]int{1, 1, 1, 1, 1, 1}, p2.Pits)
}

func TestCaptureStopsAtFirstNonQualifyingPit(t *testing.T) {
	tests := []struct {
		name     string
		opponent model.Side
		from     int
		want     int
		pits     [model.PitCount]int
	}{
		{"pit with one seed", side(0, 2, 2, 1, 0, 0, 0), 2, 0, [model.PitCount]int{2, 2, 1, 0, 0, 0}},
		{"pit with four seeds", side(0, 3, 4, 2, 0, 0, 0), 2, 2, [model.PitCount]int{3, 4, 0, 0, 0, 0}},
		{"empty pit breaks chain", side(0, 3, 0, 3, 0, 0, 0), 2, 3, [model.PitCount]int{3, 0, 0, 0, 0, 0}},
		{"chain to first pit", side(0, 2, 3, 2, 3, 0, 0), 3, 10, [model.PitCount]int{0, 0, 0, 0, 0, 0}},
		{"never looks forward", side(0, 0, 0, 2, 3, 3, 3), 2, 2, [model.PitCount]int{0, 0, 0, 3, 3, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner := side(5)
			opponent := tt.opponent
			got := Capture(&owner, &opponent, tt.from)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, 5+tt.want, owner.Store)
			assert.Equal(t, tt.pits, opponent.Pits)
		})
	}
}

func TestIsTerminal(t *testing.T) {
	tests := []struct {
		name string
		p1   model.Side
		p2   model.Side
		want bool
	}{
		{"initial position", NewSide(), NewSide(), false},
		{"player 1 store reaches 25", side(25, 1, 1, 1, 1, 1, 1), side(10, 1, 1, 1, 1, 1, 1), true},
		{"player 2 store reaches 25", side(0, 1, 1, 1, 1, 1, 1), side(30, 1, 1, 1, 1, 1, 1), true},
		{"store of 24 is not enough", side(24, 4, 4, 4, 4, 4, 4), side(0, 0, 0, 0, 0, 0, 0), false},
		{"dead side with savior opponent", side(10, 0, 0, 0, 0, 0, 0), side(10, 0, 0, 0, 0, 1, 1), false},
		{"dead side with one seed opponent", side(10, 0, 0, 0, 0, 0, 0), side(10, 0, 0, 0, 0, 0, 1), true},
		{"player 2 dead and player 1 cannot feed", side(10, 0, 0, 0, 1, 0, 0), side(10, 0, 0, 0, 0, 0, 0), true},
		{"both dead", side(24, 0, 0, 0, 0, 0, 0), side(24, 0, 0, 0, 0, 0, 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTerminal(tt.p1, tt.p2))
			// pure function of the state
			assert.Equal(t, tt.want, IsTerminal(tt.p1, tt.p2))
		})
	}
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, Player1Wins, Outcome(side(25), side(10)))
	assert.Equal(t, Player2Wins, Outcome(side(3), side(4)))
	assert.Equal(t, Tie, Outcome(side(24), side(24)))
}

// TestRandomPlayoutsPreserveInvariants plays random legal games and checks
// the seed, store and sowing invariants after every move.
func TestRandomPlayoutsPreserveInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for game := 0; game < 500; game++ {
		sides := [2]model.Side{NewSide(), NewSide()}
		turn := 0

		for moves := 0; moves < 300 && !IsTerminal(sides[0], sides[1]); moves++ {
			mover, other := &sides[turn], &sides[1-turn]

			var legal []int
			for pit := 0; pit < model.PitCount; pit++ {
				if ValidateMove(*mover, pit) == nil {
					legal = append(legal, pit)
				}
			}
			if len(legal) == 0 {
				break
			}
			pit := legal[rng.Intn(len(legal))]
			storeBefore := mover.Store
			otherStoreBefore := other.Store

			result := Sow(mover, other, pit)

			require.Equal(t, TotalSeeds, SeedsInPlay(sides[0], sides[1]), "seed conservation")
			require.GreaterOrEqual(t, mover.Store, storeBefore, "store must not decrease")
			require.Equal(t, otherStoreBefore, other.Store, "opponent store untouched")
			require.Equal(t, storeBefore+result.Captured, mover.Store)
			for i := 0; i < model.PitCount; i++ {
				require.GreaterOrEqual(t, mover.Pits[i], 0)
				require.GreaterOrEqual(t, other.Pits[i], 0)
			}
			if mover.Pits[pit] != 0 {
				t.Fatalf("origin pit %d received seeds during its own sowing", pit)
			}

			turn = 1 - turn
		}
	}
}

func TestCaptureNeverTakesIneligiblePits(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 2000; i++ {
		var opponent model.Side
		for p := range opponent.Pits {
			opponent.Pits[p] = rng.Intn(6)
		}
		from := rng.Intn(model.PitCount)
		before := opponent
		owner := model.Side{}

		Capture(&owner, &opponent, from)

		taken := true
		for p := from; p >= 0; p-- {
			eligible := before.Pits[p] == 2 || before.Pits[p] == 3
			if taken && eligible {
				require.Equal(t, 0, opponent.Pits[p])
				continue
			}
			taken = false
			require.Equal(t, before.Pits[p], opponent.Pits[p])
		}
		for p := from + 1; p < model.PitCount; p++ {
			require.Equal(t, before.Pits[p], opponent.Pits[p])
		}
	}
}

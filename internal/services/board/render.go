package board

import (
	"fmt"
	"strings"

	"github.com/demesup/awale/internal/model"
)

const rowBorder = "      +----+----+----+----+----+----+"

// Render draws the board from one side's perspective. The opponent's row
// is on top and reversed so that sowing reads counter-clockwise.
func Render(own, opponent model.Side, ownName, opponentName string) string {
	var b strings.Builder
	b.WriteString("\nGame Board:\n")
	fmt.Fprintf(&b, "%s %s\n", rowBorder, opponentName)
	b.WriteString("      |")
	for i := model.PitCount - 1; i >= 0; i-- {
		fmt.Fprintf(&b, " %2d |", opponent.Pits[i])
	}
	fmt.Fprintf(&b, "Store: %2d\n", opponent.Store)
	b.WriteString(rowBorder + "\n")
	b.WriteString(rowBorder + "\n")
	b.WriteString("      |")
	for i := 0; i < model.PitCount; i++ {
		fmt.Fprintf(&b, " %2d |", own.Pits[i])
	}
	fmt.Fprintf(&b, "Store: %2d\n", own.Store)
	fmt.Fprintf(&b, "%s %s\n", rowBorder, ownName)
	b.WriteString("         1    2    3    4    5    6\n")
	return b.String()
}

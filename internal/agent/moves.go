package agent

import (
	"math/rand/v2"

	"github.com/vancomm/minesweeper-agent/internal/mines"
)

// ProposeSafeMove returns a cell known to be safe that has not been played
// yet. Cells are tried in row-major order.
func (a *Agent) ProposeSafeMove() (mines.Cell, bool) {
	for _, c := range a.safes.Sorted() {
		if !a.movesMade.Has(c) {
			return c, true
		}
	}
	return mines.Cell{}, false
}

// ProposeUnresolvedMove picks a cell that has not been played and is not
// known to be a mine. With a nil r the first such cell in row-major order
// is returned. The boolean is false once no such cell is left.
func (a *Agent) ProposeUnresolvedMove(r *rand.Rand) (mines.Cell, bool) {
	candidates := a.unresolved()
	if len(candidates) == 0 {
		return mines.Cell{}, false
	}
	if r == nil {
		return candidates[0], true
	}
	return candidates[r.IntN(len(candidates))], true
}

func (a *Agent) unresolved() []mines.Cell {
	var ret []mines.Cell
	for i := range a.height {
		for j := range a.width {
			c := mines.Cell{Row: i, Col: j}
			if !a.movesMade.Has(c) && !a.mines.Has(c) {
				ret = append(ret, c)
			}
		}
	}
	return ret
}

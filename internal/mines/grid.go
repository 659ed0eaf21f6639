package mines

import (
	"fmt"
	"strconv"
	"strings"
)

type CellState int8

const (
	Unknown       CellState = -2
	Flagged       CellState = -1
	CorrectFlag   CellState = 64 // post-game-over
	ExplodedMine  CellState = 65
	WrongFlag     CellState = 66
	UnflaggedMine CellState = 67
	// 0-8 for an opened cell with given number of mined neighbours
)

func (s CellState) String() string {
	switch s {
	case Unknown:
		return "."
	case Flagged, CorrectFlag:
		return "*"
	case ExplodedMine:
		return "X"
	case WrongFlag:
		return "!"
	case UnflaggedMine:
		return "x"
	case 0:
		return " "
	case 1, 2, 3, 4, 5, 6, 7, 8:
		return strconv.Itoa(int(s))
	default:
		return "?"
	}
}

type Grid []CellState

func (g Grid) ToString(width int) string {
	var b strings.Builder
	for y := range len(g) / width {
		for x := range width {
			fmt.Fprint(&b, g[y*width+x].String()+" ")
		}
		fmt.Fprint(&b, "\n")
	}
	return b.String()
}

// PlayerGrid is what the player currently sees.
func (b *Board) PlayerGrid() Grid {
	grid := make(Grid, len(b.Grid))
	for i := range grid {
		c := Cell{i / b.Width, i % b.Width}
		switch {
		case b.Opened[i] && b.Grid[i]:
			grid[i] = ExplodedMine
		case b.Opened[i]:
			n, _ := b.NeighborMineCount(c)
			grid[i] = CellState(n)
		case b.Found[i]:
			grid[i] = Flagged
		default:
			grid[i] = Unknown
		}
	}
	return grid
}

// RevealGrid is the post-game view: every mine and every wrong flag is
// exposed.
func (b *Board) RevealGrid() Grid {
	grid := b.PlayerGrid()
	for i := range grid {
		switch {
		case grid[i] == Flagged && b.Grid[i]:
			grid[i] = CorrectFlag
		case grid[i] == Flagged:
			grid[i] = WrongFlag
		case grid[i] == Unknown && b.Grid[i]:
			grid[i] = UnflaggedMine
		}
	}
	return grid
}

func (b *Board) String() string {
	return b.RevealGrid().ToString(b.Width)
}

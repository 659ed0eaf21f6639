package mines

import (
	"cmp"
	"fmt"
)

// Cell is a (row, column) coordinate on the board.
type Cell struct {
	Row, Col int
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// CompareCells orders cells row-major.
func CompareCells(a, b Cell) int {
	if n := cmp.Compare(a.Row, b.Row); n != 0 {
		return n
	}
	return cmp.Compare(a.Col, b.Col)
}

// Neighbors returns the 8-connected neighbours of c that lie on a
// height x width board, in row-major order. c itself is never included.
func Neighbors(c Cell, height, width int) []Cell {
	ret := make([]Cell, 0, 8)
	for i := c.Row - 1; i <= c.Row+1; i++ {
		for j := c.Col - 1; j <= c.Col+1; j++ {
			if i == c.Row && j == c.Col {
				continue
			}
			if 0 <= i && i < height && 0 <= j && j < width {
				ret = append(ret, Cell{i, j})
			}
		}
	}
	return ret
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

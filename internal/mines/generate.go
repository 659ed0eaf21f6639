package mines

import (
	"math/rand/v2"
)

// placeMines picks p.MineCount distinct cells uniformly at random. When
// start is given no mine is placed on it or any of its neighbours.
func placeMines(p GameParams, start *Cell, r *rand.Rand) ([]bool, error) {
	height, width, mineCount := p.Unpack()

	grid := make([]bool, height*width)

	/*
	 * Write down the list of possible mine locations.
	 */
	candidates := make([]int, 0, height*width)
	for y := range height {
		for x := range width {
			if start == nil || absDiff(start.Row, y) > 1 || absDiff(start.Col, x) > 1 {
				candidates = append(candidates, y*width+x)
			}
		}
	}
	if len(candidates) < mineCount {
		return nil, ErrTooManyMines
	}

	/*
	 * Now pick n off the list at random.
	 */
	k := len(candidates)
	for range mineCount {
		i := r.IntN(k)
		grid[candidates[i]] = true
		k--
		candidates[i] = candidates[k]
	}

	if start != nil && grid[start.Row*width+start.Col] {
		panic(AssertionError{"mine in starting cell"})
	}

	return grid, nil
}

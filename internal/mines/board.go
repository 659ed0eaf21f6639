package mines

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
)

var Log *slog.Logger = slog.Default()

// Board is the ground truth of a single game. The agent never reads it
// directly: it only sees the counts handed out by Open and
// NeighborMineCount.
type Board struct {
	GameParams
	Grid   []bool /* real mine points */
	Found  []bool /* cells flagged by the player */
	Opened []bool
	Dead   bool
}

func DecodeBoard(buf []byte) (*Board, error) {
	var board Board
	err := gob.NewDecoder(bytes.NewBuffer(buf)).Decode(&board)
	if err != nil {
		return nil, err
	}
	return &board, nil
}

func (b Board) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(b)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// NewBoard places the mines uniformly at random over the whole grid.
func NewBoard(params GameParams, r *rand.Rand) (*Board, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	grid, err := placeMines(params, nil, r)
	if err != nil {
		return nil, err
	}
	return newBoard(params, grid), nil
}

// NewBoardAvoiding is like [NewBoard] but keeps start and its neighbours
// free of mines, so the first click always opens an empty cell.
func NewBoardAvoiding(params GameParams, start Cell, r *rand.Rand) (board *Board, err error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if !params.InBounds(start) {
		return nil, fmt.Errorf("%w: start %s", ErrOutOfBounds, start)
	}

	defer func() {
		var ae AssertionError
		if r := recover(); r != nil {
			if e, ok := r.(error); ok && errors.As(e, &ae) {
				Log.Error("assertion failed", slog.Any("error", ae), slog.String("start", start.String()))
				board, err = nil, ae
				return
			}
			panic(r)
		}
	}()

	grid, err := placeMines(params, &start, r)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot keep %s clear", err, start)
	}
	return newBoard(params, grid), nil
}

func newBoard(params GameParams, grid []bool) *Board {
	return &Board{
		GameParams: params,
		Grid:       grid,
		Found:      make([]bool, len(grid)),
		Opened:     make([]bool, len(grid)),
	}
}

func (b *Board) index(c Cell) (int, error) {
	if !b.InBounds(c) {
		return 0, fmt.Errorf("%w: %s on %dx%d board", ErrOutOfBounds, c, b.Height, b.Width)
	}
	return c.Row*b.Width + c.Col, nil
}

func (b *Board) IsMine(c Cell) (bool, error) {
	i, err := b.index(c)
	if err != nil {
		return false, err
	}
	return b.Grid[i], nil
}

// NeighborMineCount counts mines among the in-bounds 8-neighbours of c.
func (b *Board) NeighborMineCount(c Cell) (int, error) {
	if _, err := b.index(c); err != nil {
		return 0, err
	}
	count := 0
	for _, n := range Neighbors(c, b.Height, b.Width) {
		if b.Grid[n.Row*b.Width+n.Col] {
			count++
		}
	}
	return count, nil
}

func (b *Board) Neighbors(c Cell) []Cell {
	return Neighbors(c, b.Height, b.Width)
}

// Open reveals c. It reports whether c was a mine and otherwise the
// number of neighbouring mines.
func (b *Board) Open(c Cell) (count int, mine bool, err error) {
	i, err := b.index(c)
	if err != nil {
		return 0, false, err
	}
	b.Opened[i] = true
	if b.Grid[i] {
		/*
		 * The player has landed on a mine. Bad luck.
		 */
		b.Dead = true
		return 0, true, nil
	}
	count, err = b.NeighborMineCount(c)
	return count, false, err
}

func (b *Board) Flag(c Cell) error {
	i, err := b.index(c)
	if err != nil {
		return err
	}
	b.Found[i] = true
	return nil
}

func (b *Board) Unflag(c Cell) error {
	i, err := b.index(c)
	if err != nil {
		return err
	}
	b.Found[i] = false
	return nil
}

// HasWon reports whether the flagged cells are exactly the mines.
func (b *Board) HasWon() bool {
	for i := range b.Grid {
		if b.Grid[i] != b.Found[i] {
			return false
		}
	}
	return true
}

func (b *Board) MineCells() []Cell {
	ret := make([]Cell, 0, b.MineCount)
	for i, mine := range b.Grid {
		if mine {
			ret = append(ret, Cell{i / b.Width, i % b.Width})
		}
	}
	return ret
}

// Cells lists every cell of the board in row-major order.
func (b *Board) Cells() []Cell {
	ret := make([]Cell, 0, len(b.Grid))
	for y := range b.Height {
		for x := range b.Width {
			ret = append(ret, Cell{y, x})
		}
	}
	return ret
}

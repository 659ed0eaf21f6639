package mines

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boardFromRows(t *testing.T, rows ...string) *Board {
	t.Helper()
	params := GameParams{Height: len(rows), Width: len(rows[0])}
	grid := make([]bool, 0, params.CellCount())
	for _, row := range rows {
		require.Len(t, row, params.Width)
		for _, ch := range row {
			grid = append(grid, ch == '*')
			if ch == '*' {
				params.MineCount++
			}
		}
	}
	return newBoard(params, grid)
}

func TestNewBoard(t *testing.T) {
	tests := []struct {
		name   string
		params GameParams
		err    error
	}{
		{name: "8x8(8)", params: GameParams{Height: 8, Width: 8, MineCount: 8}},
		{name: "16x30(99)", params: GameParams{Height: 16, Width: 30, MineCount: 99}},
		{name: "full", params: GameParams{Height: 3, Width: 3, MineCount: 9}},
		{name: "empty", params: GameParams{Height: 3, Width: 3, MineCount: 0}},
		{name: "too many", params: GameParams{Height: 3, Width: 3, MineCount: 10}, err: ErrTooManyMines},
		{name: "zero width", params: GameParams{Height: 3, Width: 0, MineCount: 0}, err: ErrInvalidParams},
		{name: "negative mines", params: GameParams{Height: 3, Width: 3, MineCount: -1}, err: ErrInvalidParams},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r := rand.New(rand.NewPCG(1, 2))
			board, err := NewBoard(test.params, r)
			if test.err != nil {
				assert.ErrorIs(t, err, test.err)
				assert.Nil(t, board)
				return
			}
			require.NoError(t, err)
			assert.Len(t, board.MineCells(), test.params.MineCount)
			assert.Len(t, board.Grid, test.params.CellCount())
		})
	}
}

func TestNewBoardAvoiding(t *testing.T) {
	params := GameParams{Height: 9, Width: 9, MineCount: 35}
	r := rand.New(rand.NewPCG(1, 2))
	for sy := range params.Height {
		for sx := range params.Width {
			start := Cell{sy, sx}
			board, err := NewBoardAvoiding(params, start, r)
			require.NoError(t, err)
			count, err := board.NeighborMineCount(start)
			require.NoError(t, err)
			assert.Zero(t, count, "start %s", start)
			mine, err := board.IsMine(start)
			require.NoError(t, err)
			assert.False(t, mine)
		}
	}

	_, err := NewBoardAvoiding(GameParams{Height: 3, Width: 3, MineCount: 1}, Cell{1, 1}, r)
	assert.ErrorIs(t, err, ErrTooManyMines)

	_, err = NewBoardAvoiding(params, Cell{9, 0}, r)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestNeighborMineCount(t *testing.T) {
	board := boardFromRows(t,
		"*..",
		".*.",
		"..*",
	)

	tests := []struct {
		cell  Cell
		count int
	}{
		{Cell{0, 0}, 1},
		{Cell{0, 1}, 2},
		{Cell{0, 2}, 1},
		{Cell{1, 0}, 2},
		{Cell{1, 1}, 2},
		{Cell{2, 2}, 1},
		{Cell{2, 0}, 1},
	}
	for _, test := range tests {
		count, err := board.NeighborMineCount(test.cell)
		require.NoError(t, err)
		assert.Equal(t, test.count, count, "cell %s", test.cell)
	}

	_, err := board.NeighborMineCount(Cell{-1, 0})
	assert.ErrorIs(t, err, ErrOutOfBounds)
	_, err = board.IsMine(Cell{0, 3})
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestNeighbors(t *testing.T) {
	assert.Equal(t, []Cell{{0, 1}, {1, 0}, {1, 1}}, Neighbors(Cell{0, 0}, 8, 8))
	assert.Len(t, Neighbors(Cell{3, 3}, 8, 8), 8)
	assert.Len(t, Neighbors(Cell{7, 3}, 8, 8), 5)
	assert.Empty(t, Neighbors(Cell{0, 0}, 1, 1))
}

func TestHasWon(t *testing.T) {
	board := boardFromRows(t,
		"*.",
		".*",
	)
	assert.False(t, board.HasWon())

	require.NoError(t, board.Flag(Cell{0, 0}))
	assert.False(t, board.HasWon())

	require.NoError(t, board.Flag(Cell{1, 1}))
	assert.True(t, board.HasWon())

	require.NoError(t, board.Flag(Cell{0, 1}))
	assert.False(t, board.HasWon(), "a wrong flag spoils the win")

	require.NoError(t, board.Unflag(Cell{0, 1}))
	assert.True(t, board.HasWon())

	assert.ErrorIs(t, board.Flag(Cell{2, 2}), ErrOutOfBounds)
}

func TestOpen(t *testing.T) {
	board := boardFromRows(t,
		"*..",
		"...",
	)
	count, mine, err := board.Open(Cell{1, 1})
	require.NoError(t, err)
	assert.False(t, mine)
	assert.Equal(t, 1, count)
	assert.False(t, board.Dead)

	_, mine, err = board.Open(Cell{0, 0})
	require.NoError(t, err)
	assert.True(t, mine)
	assert.True(t, board.Dead)

	assert.Equal(t, "X . . \n. 1 . \n", board.PlayerGrid().ToString(board.Width))
}

func TestBoardBytes(t *testing.T) {
	board := boardFromRows(t,
		"*..",
		"..*",
	)
	require.NoError(t, board.Flag(Cell{0, 0}))

	buf, err := board.Bytes()
	require.NoError(t, err)
	decoded, err := DecodeBoard(buf)
	require.NoError(t, err)
	assert.Equal(t, board, decoded)
}

func TestParseParams(t *testing.T) {
	tests := []struct {
		input  string
		params *GameParams
		fail   bool
	}{
		{input: "height=8&width=8&mine_count=10", params: &GameParams{8, 8, 10}},
		{input: "16:30:99", params: &GameParams{16, 30, 99}},
		{input: "height=8&width=8", fail: true},
		{input: "8:8", fail: true},
	}
	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			params, err := ParseParams(test.input)
			if test.fail {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.params, params)
			assert.Equal(t, test.params.Seed(), params.Seed())
		})
	}
}

package play

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"os"
	"sync"
	"testing"

	"github.com/lmittmann/tint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minesweeper-agent/internal/mines"
)

var logger *slog.Logger

func TestMain(m *testing.M) {
	logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelWarn,
		TimeFormat: "15:04:05",
	}))
	os.Exit(m.Run())
}

func assertFlagsAreMines(t *testing.T, board *mines.Board) {
	t.Helper()
	for i := range board.Grid {
		if board.Found[i] {
			assert.True(t, board.Grid[i], "cell %d flagged but not a mine", i)
		}
	}
}

func TestPlay(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"8x8(10)", Config{Params: mines.GameParams{Height: 8, Width: 8, MineCount: 10}}},
		{"8x8(10) safe start", Config{Params: mines.GameParams{Height: 8, Width: 8, MineCount: 10}, SafeStart: true}},
		{"9x9(10) deep", Config{Params: mines.GameParams{Height: 9, Width: 9, MineCount: 10}, Deep: true}},
		{"16x16(40)", Config{Params: mines.GameParams{Height: 16, Width: 16, MineCount: 40}, SafeStart: true}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r := rand.New(rand.NewPCG(1, 2))
			for range 10 {
				res, err := Play(context.Background(), test.cfg, r, logger)
				require.NoError(t, err)
				require.NotNil(t, res.Board)

				assert.Positive(t, res.Moves)
				assert.Equal(t, res.Moves, res.SafeMoves+res.Guesses)
				assertFlagsAreMines(t, res.Board)

				if res.Won {
					assert.False(t, res.Board.Dead)
					assert.Equal(t, test.cfg.Params.MineCount, res.MinesFlagged)
				} else {
					assert.True(t, res.Board.Dead)
				}
				if test.cfg.SafeStart {
					assert.False(t, res.Board.Dead && res.Moves == 1, "first click hit a mine")
				}
			}
		})
	}
}

func TestPlayNoMines(t *testing.T) {
	cfg := Config{Params: mines.GameParams{Height: 3, Width: 3, MineCount: 0}}
	res, err := Play(context.Background(), cfg, rand.New(rand.NewPCG(1, 2)), logger)
	require.NoError(t, err)
	assert.True(t, res.Won)
	assert.Equal(t, 1, res.Moves)
	assert.Equal(t, 1, res.Guesses)
}

func TestPlayAllMines(t *testing.T) {
	cfg := Config{Params: mines.GameParams{Height: 2, Width: 2, MineCount: 4}}
	res, err := Play(context.Background(), cfg, rand.New(rand.NewPCG(1, 2)), logger)
	require.NoError(t, err)
	assert.False(t, res.Won)
	assert.Equal(t, 1, res.Moves)
}

func TestPlayInvalidParams(t *testing.T) {
	cfg := Config{Params: mines.GameParams{Height: 2, Width: 2, MineCount: 5}}
	_, err := Play(context.Background(), cfg, rand.New(rand.NewPCG(1, 2)), logger)
	assert.ErrorIs(t, err, mines.ErrTooManyMines)
}

func TestPlayCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := Config{Params: mines.GameParams{Height: 8, Width: 8, MineCount: 10}}
	_, err := Play(ctx, cfg, rand.New(rand.NewPCG(1, 2)), logger)
	assert.ErrorIs(t, err, context.Canceled)
}

type memoryRecorder struct {
	mu      sync.Mutex
	batches map[string]int
	results map[int]*Result
	err     error
}

func newMemoryRecorder() *memoryRecorder {
	return &memoryRecorder{
		batches: make(map[string]int),
		results: make(map[int]*Result),
	}
}

func (m *memoryRecorder) Record(ctx context.Context, batchID string, index int, res *Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.batches[batchID]++
	m.results[index] = res
	return nil
}

func TestRunBatch(t *testing.T) {
	params := BatchParams{
		Config:  Config{Params: mines.GameParams{Height: 8, Width: 8, MineCount: 10}, SafeStart: true},
		Games:   24,
		Workers: 4,
		Seed:    42,
	}

	first := newMemoryRecorder()
	summary, err := RunBatch(context.Background(), params, first, logger)
	require.NoError(t, err)
	assert.Equal(t, 24, summary.Played)
	assert.Equal(t, map[string]int{summary.BatchID: 24}, first.batches)
	assert.Len(t, first.results, 24)
	assert.InDelta(t, float64(summary.Won)/24, summary.WinRate, 1e-9)

	second := newMemoryRecorder()
	again, err := RunBatch(context.Background(), params, second, logger)
	require.NoError(t, err)
	assert.NotEqual(t, summary.BatchID, again.BatchID)
	assert.Equal(t, summary.Won, again.Won)
	for i, res := range first.results {
		other := second.results[i]
		require.NotNil(t, other)
		assert.Equal(t, res.Moves, other.Moves, "game %d", i)
		assert.Equal(t, res.Won, other.Won, "game %d", i)
		assert.Equal(t, res.Board.Grid, other.Board.Grid, "game %d", i)
	}
}

func TestRunBatchRecorderError(t *testing.T) {
	rec := newMemoryRecorder()
	rec.err = errors.New("disk full")

	params := BatchParams{
		Config: Config{Params: mines.GameParams{Height: 4, Width: 4, MineCount: 2}},
		Games:  3,
	}
	_, err := RunBatch(context.Background(), params, rec, logger)
	assert.ErrorIs(t, err, rec.err)
}

func TestRunBatchWithoutRecorder(t *testing.T) {
	params := BatchParams{
		Config: Config{Params: mines.GameParams{Height: 4, Width: 4, MineCount: 2}},
		Games:  5,
	}
	summary, err := RunBatch(context.Background(), params, nil, logger)
	require.NoError(t, err)
	assert.Equal(t, 5, summary.Played)

	_, err = RunBatch(context.Background(), BatchParams{Config: params.Config}, nil, logger)
	assert.Error(t, err)
}

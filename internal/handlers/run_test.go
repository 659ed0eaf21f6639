package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minesweeper-agent/internal/mines"
	"github.com/vancomm/minesweeper-agent/internal/repository"
)

type fakeRepo struct {
	runs    map[int64]*repository.AgentRun
	fetches int
	filter  repository.AgentRunFilter
	err     error
}

func (f *fakeRepo) FetchAgentRun(ctx context.Context, id int64) (*repository.AgentRun, error) {
	f.fetches++
	if f.err != nil {
		return nil, f.err
	}
	run, ok := f.runs[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return run, nil
}

func (f *fakeRepo) ListAgentRuns(ctx context.Context, filter repository.AgentRunFilter) ([]repository.AgentRun, error) {
	f.filter = filter
	if f.err != nil {
		return nil, f.err
	}
	var ret []repository.AgentRun
	for _, run := range f.runs {
		ret = append(ret, *run)
	}
	return ret, nil
}

func (f *fakeRepo) GetAgentRunStats(ctx context.Context, filter repository.AgentRunFilter) (*repository.AgentRunStats, error) {
	f.filter = filter
	if f.err != nil {
		return nil, f.err
	}
	return &repository.AgentRunStats{Played: len(f.runs), Won: 1, WinRate: 1 / float64(len(f.runs))}, nil
}

func setup(t *testing.T) (*fakeRepo, http.Handler) {
	t.Helper()

	board, err := mines.NewBoard(
		mines.GameParams{Height: 2, Width: 3, MineCount: 2},
		rand.New(rand.NewPCG(1, 2)),
	)
	require.NoError(t, err)
	for _, c := range board.MineCells() {
		require.NoError(t, board.Flag(c))
	}
	boardBytes, err := board.Bytes()
	require.NoError(t, err)

	repo := &fakeRepo{runs: map[int64]*repository.AgentRun{
		1: {AgentRunId: 1, BatchId: "b", Height: 2, Width: 3, MineCount: 2, Won: true, Board: boardBytes},
		2: {AgentRunId: 2, BatchId: "b", GameIndex: 1, Height: 8, Width: 8, MineCount: 10},
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h, err := NewRunHandler(logger, repo, 16)
	require.NoError(t, err)

	mux := http.NewServeMux()
	h.Routes(mux)
	return repo, mux
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestFetchRun(t *testing.T) {
	repo, h := setup(t)

	rec := get(t, h, "/runs/1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.EqualValues(t, 1, body["agent_run_id"])
	assert.Equal(t, true, body["won"])
	assert.Contains(t, body["board"], "*")

	get(t, h, "/runs/1")
	assert.Equal(t, 1, repo.fetches, "second fetch is served from cache")
}

func TestFetchRunErrors(t *testing.T) {
	repo, h := setup(t)

	assert.Equal(t, http.StatusNotFound, get(t, h, "/runs/3").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/runs/abc").Code)

	repo.err = errors.New("connection refused")
	assert.Equal(t, http.StatusInternalServerError, get(t, h, "/runs/2").Code)
}

func TestListRuns(t *testing.T) {
	repo, h := setup(t)

	rec := get(t, h, "/runs?batch_id=b&height=8&width=8&mine_count=10&won=false&limit=5")
	require.Equal(t, http.StatusOK, rec.Code)

	var runs []repository.AgentRun
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	assert.Len(t, runs, 2)

	require.NotNil(t, repo.filter.BatchId)
	assert.Equal(t, "b", *repo.filter.BatchId)
	assert.Equal(t, &mines.GameParams{Height: 8, Width: 8, MineCount: 10}, repo.filter.GameParams)
	require.NotNil(t, repo.filter.Won)
	assert.False(t, *repo.filter.Won)
	assert.Equal(t, 5, repo.filter.Limit)
}

func TestListRunsBadFilter(t *testing.T) {
	_, h := setup(t)

	assert.Equal(t, http.StatusBadRequest, get(t, h, "/runs?height=3&width=3&mine_count=10").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/runs?limit=many").Code)
}

func TestRunStats(t *testing.T) {
	repo, h := setup(t)

	rec := get(t, h, "/runs/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats repository.AgentRunStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.Played)
	assert.Equal(t, 1, stats.Won)
	assert.Nil(t, repo.filter.GameParams)
	assert.Equal(t, maxListLimit, repo.filter.Limit)
}

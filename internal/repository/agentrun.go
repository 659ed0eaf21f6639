package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/vancomm/minesweeper-agent/internal/mines"
	"github.com/vancomm/minesweeper-agent/internal/play"
)

var ErrRunExists = errors.New("agent run already recorded")

type AgentRun struct {
	AgentRunId   int64              `db:"agent_run_id" json:"agent_run_id"`
	BatchId      string             `db:"batch_id" json:"batch_id"`
	GameIndex    int                `db:"game_index" json:"game_index"`
	Height       int                `db:"height" json:"height"`
	Width        int                `db:"width" json:"width"`
	MineCount    int                `db:"mine_count" json:"mine_count"`
	SafeStart    bool               `db:"safe_start" json:"safe_start"`
	Deep         bool               `db:"deep" json:"deep"`
	Won          bool               `db:"won" json:"won"`
	Moves        int                `db:"moves" json:"moves"`
	SafeMoves    int                `db:"safe_moves" json:"safe_moves"`
	Guesses      int                `db:"guesses" json:"guesses"`
	MinesFlagged int                `db:"mines_flagged" json:"mines_flagged"`
	Sentences    int                `db:"sentences" json:"sentences"`
	DurationMs   float64            `db:"duration_ms" json:"duration_ms"`
	Board        []byte             `db:"board" json:"-"`
	CreatedAt    pgtype.Timestamptz `db:"created_at" json:"created_at"`
}

func (r AgentRun) Params() mines.GameParams {
	return mines.GameParams{Height: r.Height, Width: r.Width, MineCount: r.MineCount}
}

// DecodeBoard returns the final board of the game, or nil if none was
// stored.
func (r AgentRun) DecodeBoard() (*mines.Board, error) {
	if len(r.Board) == 0 {
		return nil, nil
	}
	return mines.DecodeBoard(r.Board)
}

func (q Queries) CreateAgentRun(
	ctx context.Context, batchID string, index int, res *play.Result,
) (*AgentRun, error) {
	args := pgx.NamedArgs{
		"batch_id":      batchID,
		"game_index":    index,
		"height":        res.Params.Height,
		"width":         res.Params.Width,
		"mine_count":    res.Params.MineCount,
		"safe_start":    res.SafeStart,
		"deep":          res.Deep,
		"won":           res.Won,
		"moves":         res.Moves,
		"safe_moves":    res.SafeMoves,
		"guesses":       res.Guesses,
		"mines_flagged": res.MinesFlagged,
		"sentences":     res.Sentences,
		"duration_ms":   float64(res.Duration) / float64(time.Millisecond),
		"board":         nil,
	}
	if res.Board != nil {
		board, err := res.Board.Bytes()
		if err != nil {
			return nil, fmt.Errorf("unable to encode board: %w", err)
		}
		args["board"] = board
	}

	rows, _ := q.db.Query(
		ctx,
		`INSERT INTO agent_run (
			batch_id, game_index, height, width, mine_count, safe_start, deep,
			won, moves, safe_moves, guesses, mines_flagged, sentences,
			duration_ms, board
		)
		VALUES (
			@batch_id, @game_index, @height, @width, @mine_count, @safe_start, @deep,
			@won, @moves, @safe_moves, @guesses, @mines_flagged, @sentences,
			@duration_ms, @board
		)
		RETURNING *;`,
		args,
	)
	run, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[AgentRun])
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
		return nil, fmt.Errorf("%w: batch %s game %d", ErrRunExists, batchID, index)
	}
	return run, err
}

// Record implements [play.Recorder].
func (q Queries) Record(ctx context.Context, batchID string, index int, res *play.Result) error {
	_, err := q.CreateAgentRun(ctx, batchID, index, res)
	return err
}

func (q Queries) FetchAgentRun(ctx context.Context, agentRunId int64) (*AgentRun, error) {
	rows, _ := q.db.Query(
		ctx,
		"SELECT * FROM agent_run WHERE agent_run_id = $1",
		agentRunId,
	)
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[AgentRun])
}

type AgentRunFilter struct {
	BatchId    *string
	GameParams *mines.GameParams
	Won        *bool
	Limit      int
}

func (f AgentRunFilter) WhereClause() (string, pgx.NamedArgs) {
	clauses := make([]string, 0)
	args := pgx.NamedArgs{}
	if f.BatchId != nil {
		clauses = append(clauses, "batch_id = @batch_id")
		args["batch_id"] = *f.BatchId
	}
	if f.GameParams != nil {
		clauses = append(
			clauses,
			"height = @height",
			"width = @width",
			"mine_count = @mine_count",
		)
		args["height"] = f.GameParams.Height
		args["width"] = f.GameParams.Width
		args["mine_count"] = f.GameParams.MineCount
	}
	if f.Won != nil {
		clauses = append(clauses, "won = @won")
		args["won"] = *f.Won
	}
	return strings.Join(clauses, " AND "), args
}

func (q Queries) ListAgentRuns(ctx context.Context, filter AgentRunFilter) ([]AgentRun, error) {
	query := "SELECT * FROM agent_run"

	whereClause, args := filter.WhereClause()
	if whereClause != "" {
		query += " WHERE " + whereClause
	}
	query += " ORDER BY agent_run_id DESC"
	if filter.Limit > 0 {
		query += " LIMIT @limit"
		args["limit"] = filter.Limit
	}

	rows, err := q.db.Query(ctx, query, args)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[AgentRun])
}

type AgentRunStats struct {
	Played      int     `json:"played"`
	Won         int     `json:"won"`
	WinRate     float64 `json:"win_rate"`
	AvgGuesses  float64 `json:"avg_guesses"`
	AvgMoves    float64 `json:"avg_moves"`
	AvgDuration float64 `json:"avg_duration_ms"`
}

func (q Queries) GetAgentRunStats(ctx context.Context, filter AgentRunFilter) (*AgentRunStats, error) {
	query := `
	SELECT
		count(*),
		count(*) FILTER (WHERE won),
		coalesce(avg(guesses), 0)::float8,
		coalesce(avg(moves), 0)::float8,
		coalesce(avg(duration_ms), 0)::float8
	FROM agent_run`

	whereClause, args := filter.WhereClause()
	if whereClause != "" {
		query += " WHERE " + whereClause
	}

	var stats AgentRunStats
	err := q.db.QueryRow(ctx, query, args).Scan(
		&stats.Played,
		&stats.Won,
		&stats.AvgGuesses,
		&stats.AvgMoves,
		&stats.AvgDuration,
	)
	if err != nil {
		return nil, err
	}
	if stats.Played > 0 {
		stats.WinRate = float64(stats.Won) / float64(stats.Played)
	}
	return &stats, nil
}

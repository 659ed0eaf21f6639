// Package play drives an agent through whole games: it opens the cells the
// agent proposes, feeds the counts back and flags what the agent proves.
package play

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/vancomm/minesweeper-agent/internal/agent"
	"github.com/vancomm/minesweeper-agent/internal/mines"
)

type Config struct {
	Params mines.GameParams

	// SafeStart keeps the first opened cell and its neighbours free of
	// mines.
	SafeStart bool

	// Deep enables agent.WithDeepInference.
	Deep bool
}

type Result struct {
	Params       mines.GameParams `json:"params"`
	SafeStart    bool             `json:"safe_start"`
	Deep         bool             `json:"deep"`
	Won          bool             `json:"won"`
	Moves        int              `json:"moves"`
	SafeMoves    int              `json:"safe_moves"`
	Guesses      int              `json:"guesses"`
	MinesFlagged int              `json:"mines_flagged"`
	Sentences    int              `json:"sentences"`
	Duration     time.Duration    `json:"duration"`
	Board        *mines.Board     `json:"-"`
}

// Play plays a single game until the agent hits a mine, wins or runs out
// of cells to open.
func Play(ctx context.Context, cfg Config, r *rand.Rand, logger *slog.Logger) (*Result, error) {
	if err := cfg.Params.Validate(); err != nil {
		return nil, err
	}

	var (
		start = time.Now()
		res   = &Result{Params: cfg.Params, SafeStart: cfg.SafeStart, Deep: cfg.Deep}
		board *mines.Board
		opts  []agent.Option
	)
	if cfg.Deep {
		opts = append(opts, agent.WithDeepInference())
	}
	a := agent.New(cfg.Params.Height, cfg.Params.Width, opts...)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		c, ok := a.ProposeSafeMove()
		if ok {
			res.SafeMoves++
		} else if c, ok = a.ProposeUnresolvedMove(r); ok {
			res.Guesses++
		} else {
			break
		}
		res.Moves++

		if board == nil {
			var err error
			if cfg.SafeStart {
				board, err = mines.NewBoardAvoiding(cfg.Params, c, r)
			} else {
				board, err = mines.NewBoard(cfg.Params, r)
			}
			if err != nil {
				return nil, fmt.Errorf("unable to create board: %w", err)
			}
		}

		count, mine, err := board.Open(c)
		if err != nil {
			return nil, err
		}
		if mine {
			logger.Debug("opened a mine", slog.String("cell", c.String()), slog.Int("moves", res.Moves))
			break
		}

		if err := a.AddObservation(c, count); err != nil {
			return nil, fmt.Errorf("unable to observe %s = %d: %w", c, count, err)
		}
		for _, m := range a.Mines() {
			if err := board.Flag(m); err != nil {
				return nil, err
			}
		}

		if board.HasWon() {
			break
		}
	}

	stats := a.Stats()
	res.Won = board != nil && !board.Dead && board.HasWon()
	res.MinesFlagged = len(a.Mines())
	res.Sentences = len(a.Knowledge())
	res.Duration = time.Since(start)
	res.Board = board

	logger.Debug("game over",
		slog.Bool("won", res.Won),
		slog.Int("moves", res.Moves),
		slog.Int("guesses", res.Guesses),
		slog.Int("inference_rounds", stats.InferenceRounds),
	)

	return res, nil
}

package play

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Recorder stores the outcome of a finished game.
type Recorder interface {
	Record(ctx context.Context, batchID string, index int, res *Result) error
}

type BatchParams struct {
	Config
	Games   int
	Workers int
	Seed    uint64
}

type Summary struct {
	BatchID  string        `json:"batch_id"`
	Played   int           `json:"played"`
	Won      int           `json:"won"`
	Guesses  int           `json:"guesses"`
	WinRate  float64       `json:"win_rate"`
	Duration time.Duration `json:"duration"`
}

// RunBatch plays p.Games independent games, at most p.Workers at a time.
// Every game owns its board, agent and random source, seeded from p.Seed
// and the game index, so a batch can be replayed exactly.
func RunBatch(ctx context.Context, p BatchParams, rec Recorder, logger *slog.Logger) (*Summary, error) {
	if p.Games <= 0 {
		return nil, fmt.Errorf("invalid number of games: %d", p.Games)
	}
	if err := p.Params.Validate(); err != nil {
		return nil, err
	}

	batchID := uuid.NewString()
	logger = logger.With(slog.String("batch", batchID))
	start := time.Now()

	results := make([]*Result, p.Games)

	g, gCtx := errgroup.WithContext(ctx)
	if p.Workers > 0 {
		g.SetLimit(p.Workers)
	}
	for i := range p.Games {
		g.Go(func() error {
			r := rand.New(rand.NewPCG(p.Seed, uint64(i)))
			res, err := Play(gCtx, p.Config, r, logger.With(slog.Int("game", i)))
			if err != nil {
				return fmt.Errorf("game %d: %w", i, err)
			}
			results[i] = res
			if rec == nil {
				return nil
			}
			if err := rec.Record(gCtx, batchID, i, res); err != nil {
				return fmt.Errorf("unable to record game %d: %w", i, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &Summary{
		BatchID:  batchID,
		Played:   len(results),
		Duration: time.Since(start),
	}
	for _, res := range results {
		if res.Won {
			summary.Won++
		}
		summary.Guesses += res.Guesses
	}
	summary.WinRate = float64(summary.Won) / float64(summary.Played)

	logger.Info("batch finished",
		slog.Int("played", summary.Played),
		slog.Int("won", summary.Won),
		slog.Float64("win_rate", summary.WinRate),
		slog.Duration("duration", summary.Duration),
	)

	return summary, nil
}

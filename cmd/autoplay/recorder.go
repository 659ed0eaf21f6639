package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/vancomm/minesweeper-agent/internal/database"
	"github.com/vancomm/minesweeper-agent/internal/play"
	"github.com/vancomm/minesweeper-agent/internal/repository"
	"github.com/vancomm/minesweeper-agent/internal/store"
)

const storeName = "agent_run"

func openRecorder(ctx context.Context, kind string, logger *slog.Logger) (play.Recorder, func(), error) {
	switch kind {
	case "", "none":
		return nil, func() {}, nil
	case "sqlite":
		s, err := store.Open(ctx, sqlitePath, storeName)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to open sqlite store: %w", err)
		}
		logger.Debug("recording to sqlite", slog.String("path", sqlitePath))
		return s, func() {
			if err := s.Close(); err != nil {
				logger.Error("unable to close sqlite store", slog.Any("error", err))
			}
		}, nil
	case "postgres":
		pool, migrator, err := database.ConnectAndMigrate(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to connect to db: %w", err)
		}
		if version, dirty, err := migrator.Version(); err == nil {
			logger.Debug("recording to postgres",
				slog.Uint64("version", uint64(version)),
				slog.Bool("dirty", dirty),
			)
		}
		return repository.New(pool), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", kind)
	}
}

// boardPrinter writes the final board of every game before passing the
// result on.
type boardPrinter struct {
	mu   sync.Mutex
	next play.Recorder
	w    io.Writer
}

func (p *boardPrinter) Record(ctx context.Context, batchID string, index int, res *play.Result) error {
	p.mu.Lock()
	printResult(p.w, index, res)
	p.mu.Unlock()
	if p.next == nil {
		return nil
	}
	return p.next.Record(ctx, batchID, index, res)
}

func printResult(w io.Writer, index int, res *play.Result) {
	outcome := "lost"
	if res.Won {
		outcome = "won"
	}
	fmt.Fprintf(w, "game %d: %s after %d moves (%d guesses)\n",
		index, outcome, res.Moves, res.Guesses)
	if res.Board != nil {
		fmt.Fprint(w, res.Board.String())
	}
	fmt.Fprintln(w)
}

func replayBatch(ctx context.Context, batchID string) error {
	s, err := store.Open(ctx, sqlitePath, storeName)
	if err != nil {
		return fmt.Errorf("unable to open sqlite store: %w", err)
	}
	defer s.Close()

	results, err := s.Batch(ctx, batchID)
	if err != nil {
		return fmt.Errorf("unable to load batch %s: %w", batchID, err)
	}
	for i, res := range results {
		printResult(os.Stdout, i, res)
	}
	return nil
}

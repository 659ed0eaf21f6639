package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"hash/maphash"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vancomm/minesweeper-agent/internal/agent"
	"github.com/vancomm/minesweeper-agent/internal/config"
	"github.com/vancomm/minesweeper-agent/internal/mines"
	"github.com/vancomm/minesweeper-agent/internal/play"
)

var (
	paramsFlag string
	games      int
	workers    int
	seed       uint64
	safeStart  bool
	deep       bool
	storeKind  string
	sqlitePath string
	show       bool
	replay     string
)

func init() {
	const (
		defaultParams = "8:8:10"
		paramsUsage   = "board parameters as height:width:mines or a query string"
		gamesUsage    = "number of games to play"
		workersUsage  = "maximum number of games played at once (0 for no limit)"
	)
	flag.StringVar(&paramsFlag, "params", defaultParams, paramsUsage)
	flag.StringVar(&paramsFlag, "p", defaultParams, paramsUsage+" (shorthand)")
	flag.IntVar(&games, "games", 1, gamesUsage)
	flag.IntVar(&games, "n", 1, gamesUsage+" (shorthand)")
	flag.IntVar(&workers, "workers", 4, workersUsage)
	flag.IntVar(&workers, "w", 4, workersUsage+" (shorthand)")
	flag.Uint64Var(&seed, "seed", 0, "batch seed (random if 0)")
	flag.BoolVar(&safeStart, "safe-start", false, "keep the first move and its neighbours free of mines")
	flag.BoolVar(&deep, "deep", false, "repeat subset resolution until nothing new is derived")
	flag.StringVar(&storeKind, "store", "none", "where to record games: none, sqlite or postgres")
	flag.StringVar(&sqlitePath, "sqlite", "autoplay.db", "sqlite database path")
	flag.BoolVar(&show, "show", false, "print every final board")
	flag.StringVar(&replay, "replay", "", "print a batch recorded in sqlite and exit")
}

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	flag.Parse()

	logger := config.NewLogger(os.Stderr)
	mines.Log = logger
	agent.Log = logger

	if err := run(ctx, logger); err != nil {
		logger.Error("autoplay failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	if replay != "" {
		return replayBatch(ctx, replay)
	}

	params, err := mines.ParseParams(paramsFlag)
	if err != nil {
		return fmt.Errorf("invalid params %q: %w", paramsFlag, err)
	}
	if seed == 0 {
		seed = new(maphash.Hash).Sum64()
	}

	rec, closeRec, err := openRecorder(ctx, storeKind, logger)
	if err != nil {
		return err
	}
	defer closeRec()
	if show {
		rec = &boardPrinter{next: rec, w: os.Stdout}
	}

	logger.Info("starting batch",
		slog.String("params", params.Seed()),
		slog.Int("games", games),
		slog.Uint64("seed", seed),
		slog.String("store", storeKind),
	)

	summary, err := play.RunBatch(ctx, play.BatchParams{
		Config: play.Config{
			Params:    *params,
			SafeStart: safeStart,
			Deep:      deep,
		},
		Games:   games,
		Workers: workers,
		Seed:    seed,
	}, rec, logger)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

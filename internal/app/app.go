package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vancomm/minesweeper-agent/internal/config"
	"github.com/vancomm/minesweeper-agent/internal/database"
	"github.com/vancomm/minesweeper-agent/internal/middleware"
)

const shutdownTimeout = 30 * time.Second

// App serves recorded agent runs over HTTP.
type App struct {
	logger *slog.Logger
	router *http.ServeMux
	db     *pgxpool.Pool
	addr   string
}

func New(logger *slog.Logger) *App {
	return &App{
		logger: logger,
		router: http.NewServeMux(),
		addr:   config.Port(),
	}
}

// Handler returns the routed and wrapped handler. Routes must be loaded.
func (a *App) Handler() http.Handler {
	var h http.Handler = a.router
	if base := strings.TrimSuffix(config.BasePath(), "/"); base != "" {
		h = http.StripPrefix(base, h)
	}
	return middleware.Wrap(h,
		middleware.Logging(a.logger),
		middleware.Cors(),
	)
}

func (a *App) Start(ctx context.Context) error {
	db, _, err := database.ConnectAndMigrate(ctx)
	if err != nil {
		return fmt.Errorf("unable to connect to db: %w", err)
	}
	defer db.Close()

	a.db = db

	if err := a.loadRoutes(); err != nil {
		return err
	}

	server := &http.Server{
		Addr:    a.addr,
		Handler: a.Handler(),
	}

	done := make(chan error, 1)
	go func() {
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			done <- err
		}
		close(done)
	}()

	a.logger.Info("server listening", slog.String("addr", a.addr))
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("unable to listen and serve: %w", err)
		}
	case <-ctx.Done():
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("unable to shut down: %w", err)
		}
	}

	return nil
}

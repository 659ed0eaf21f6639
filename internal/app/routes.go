package app

import (
	"github.com/vancomm/minesweeper-agent/internal/handlers"
	"github.com/vancomm/minesweeper-agent/internal/repository"
)

const runCacheSize = 1024

func (a *App) loadRoutes() error {
	runs, err := handlers.NewRunHandler(
		a.logger, repository.New(a.db), runCacheSize,
	)
	if err != nil {
		return err
	}
	runs.Routes(a.router)
	return nil
}

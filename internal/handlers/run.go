package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jackc/pgx/v5"

	"github.com/vancomm/minesweeper-agent/internal/repository"
)

type RunRepository interface {
	FetchAgentRun(ctx context.Context, agentRunId int64) (*repository.AgentRun, error)
	ListAgentRuns(ctx context.Context, filter repository.AgentRunFilter) ([]repository.AgentRun, error)
	GetAgentRunStats(ctx context.Context, filter repository.AgentRunFilter) (*repository.AgentRunStats, error)
}

// RunHandler serves recorded agent runs. Runs never change once written,
// so fetched runs are kept in an LRU cache.
type RunHandler struct {
	logger *slog.Logger
	repo   RunRepository
	cache  *lru.Cache[int64, *AgentRunDTO]
}

func NewRunHandler(logger *slog.Logger, repo RunRepository, cacheSize int) (*RunHandler, error) {
	cache, err := lru.New[int64, *AgentRunDTO](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("unable to create run cache: %w", err)
	}
	return &RunHandler{
		logger: logger,
		repo:   repo,
		cache:  cache,
	}, nil
}

func (h RunHandler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /runs", h.List)
	mux.HandleFunc("GET /runs/stats", h.Stats)
	mux.HandleFunc("GET /runs/{id}", h.Fetch)
}

func (h RunHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseRunFilter(r.URL.Query())
	if err != nil {
		sendError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	runs, err := h.repo.ListAgentRuns(r.Context(), filter)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		h.logger.Error("unable to list agent runs", slog.Any("error", err))
		return
	}
	if runs == nil {
		runs = []repository.AgentRun{}
	}

	sendJSONOrLog(w, h.logger, runs)
}

func (h RunHandler) Stats(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseRunFilter(r.URL.Query())
	if err != nil {
		sendError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	stats, err := h.repo.GetAgentRunStats(r.Context(), filter)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		h.logger.Error("unable to compute agent run stats", slog.Any("error", err))
		return
	}

	sendJSONOrLog(w, h.logger, stats)
}

func (h RunHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		sendError(w, h.logger, http.StatusBadRequest, fmt.Errorf("invalid run id"))
		return
	}

	if dto, ok := h.cache.Get(id); ok {
		sendJSONOrLog(w, h.logger, dto)
		return
	}

	run, err := h.repo.FetchAgentRun(r.Context(), id)
	if errors.Is(err, pgx.ErrNoRows) {
		sendError(w, h.logger, http.StatusNotFound, fmt.Errorf("run %d not found", id))
		return
	}
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		h.logger.Error("unable to fetch agent run", slog.Int64("id", id), slog.Any("error", err))
		return
	}

	dto, err := NewAgentRunDTO(run)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		h.logger.Error("unable to decode board", slog.Int64("id", id), slog.Any("error", err))
		return
	}
	h.cache.Add(id, dto)

	sendJSONOrLog(w, h.logger, dto)
}

package handlers

import (
	"net/url"

	"github.com/gorilla/schema"

	"github.com/vancomm/minesweeper-agent/internal/mines"
	"github.com/vancomm/minesweeper-agent/internal/repository"
)

type RunFilterDTO struct {
	BatchId   string `schema:"batch_id"`
	Height    int    `schema:"height"`
	Width     int    `schema:"width"`
	MineCount int    `schema:"mine_count"`
	Won       *bool  `schema:"won"`
	Limit     int    `schema:"limit"`
}

var decoder = schema.NewDecoder()

func init() {
	decoder.IgnoreUnknownKeys(true)
}

const maxListLimit = 500

func ParseRunFilter(src url.Values) (repository.AgentRunFilter, error) {
	var (
		dto    RunFilterDTO
		filter repository.AgentRunFilter
	)
	if err := decoder.Decode(&dto, src); err != nil {
		return filter, err
	}

	if dto.BatchId != "" {
		filter.BatchId = &dto.BatchId
	}
	if dto.Height != 0 || dto.Width != 0 || dto.MineCount != 0 {
		params := mines.GameParams{Height: dto.Height, Width: dto.Width, MineCount: dto.MineCount}
		if err := params.Validate(); err != nil {
			return filter, err
		}
		filter.GameParams = &params
	}
	filter.Won = dto.Won
	filter.Limit = dto.Limit
	if filter.Limit <= 0 || filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	return filter, nil
}

type AgentRunDTO struct {
	repository.AgentRun
	Board string `json:"board,omitempty"`
}

func NewAgentRunDTO(run *repository.AgentRun) (*AgentRunDTO, error) {
	dto := &AgentRunDTO{AgentRun: *run}
	board, err := run.DecodeBoard()
	if err != nil {
		return nil, err
	}
	if board != nil {
		dto.Board = board.String()
	}
	return dto, nil
}

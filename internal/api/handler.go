package api

import (
	"github.com/derajoxford/stratagem-server-sub002/internal/config"
	"github.com/derajoxford/stratagem-server-sub002/internal/storage"
	"github.com/derajoxford/stratagem-server-sub002/internal/tick"
)

// WarHandler groups all war and turn-processing HTTP handlers.
type WarHandler struct {
	repo   storage.Repository
	engine *tick.Engine
}

// NewWarHandler creates a handler backed by the given repository and tick
// engine.
func NewWarHandler(repo storage.Repository, engine *tick.Engine) *WarHandler {
	return &WarHandler{repo: repo, engine: engine}
}

// loadConfig reads and parses the current game config blob.
func (h *WarHandler) loadConfig() (*config.GameConfig, error) {
	payload, err := h.repo.GetLatestConfigPayload()
	if err != nil {
		return nil, err
	}
	return config.Parse(payload)
}

package api

import (
	"net/http"

	"github.com/derajoxford/stratagem-server-sub002/internal/constants"

	"github.com/gin-gonic/gin"
)

// GetState returns the singleton turn-accounting row.
func (h *WarHandler) GetState(c *gin.Context) {
	gs, err := h.repo.GetOrCreateGameState()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchState})
		return
	}
	c.JSON(http.StatusOK, gs)
}

// ListNations returns every active nation.
func (h *WarHandler) ListNations(c *gin.Context) {
	nations, err := h.repo.ListActiveNations()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchNations})
		return
	}
	c.JSON(http.StatusOK, nations)
}

// ListWars returns all wars, active and concluded.
func (h *WarHandler) ListWars(c *gin.Context) {
	wars, err := h.repo.ListWars()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchWars})
		return
	}
	c.JSON(http.StatusOK, wars)
}

// GetWar returns one war by ID.
func (h *WarHandler) GetWar(c *gin.Context) {
	warID, ok := parseID(c, "warID")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidWarID})
		return
	}
	w, err := h.repo.GetWarByID(warID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrWarNotFound})
		return
	}
	c.JSON(http.StatusOK, w)
}

// ListWarBattles returns the most recent battle logs for a war.
func (h *WarHandler) ListWarBattles(c *gin.Context) {
	warID, ok := parseID(c, "warID")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidWarID})
		return
	}
	logs, err := h.repo.ListBattleLogs(warID, 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchBattles})
		return
	}
	c.JSON(http.StatusOK, logs)
}

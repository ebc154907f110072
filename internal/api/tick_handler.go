package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// TriggerTick runs one turn advancement synchronously and reports the
// structured result. "Already processing" is a normal outcome and maps to
// 409, not a server error.
func (h *WarHandler) TriggerTick(c *gin.Context) {
	result := h.engine.Run()
	switch {
	case result.AlreadyRunning:
		c.JSON(http.StatusConflict, result)
	case result.Success:
		c.JSON(http.StatusOK, result)
	default:
		c.JSON(http.StatusInternalServerError, result)
	}
}

package api

import (
	"errors"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/derajoxford/stratagem-server-sub002/internal/constants"
	"github.com/derajoxford/stratagem-server-sub002/internal/engine"
	"github.com/derajoxford/stratagem-server-sub002/internal/game"
	"github.com/derajoxford/stratagem-server-sub002/internal/service"

	"github.com/gin-gonic/gin"
)

// BattleRequest is the JSON body for submitting an attack.
type BattleRequest struct {
	ActingNationID uint   `json:"acting_nation_id"`
	AttackType     string `json:"attack_type"`
	CommittedUnits int    `json:"committed_units"`
}

// SubmitBattle resolves one attack against an active war. The roll is drawn
// server-side from the attack type's configured bracket domain.
func (h *WarHandler) SubmitBattle(c *gin.Context) {
	warID, ok := parseID(c, "warID")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidWarID})
		return
	}
	var req BattleRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ActingNationID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}

	cfg, err := h.loadConfig()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchConfig})
		return
	}
	attackType := game.AttackType(req.AttackType)
	min, max, ok := cfg.War.RollDomain(attackType)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidAttackType})
		return
	}
	roll := min + rand.Intn(max-min+1)

	result, err := service.ApplyBattle(h.repo, &cfg.War, service.BattleRequest{
		WarID:          warID,
		ActingNationID: req.ActingNationID,
		AttackType:     attackType,
		CommittedUnits: req.CommittedUnits,
		Roll:           roll,
	}, time.Now())
	if err != nil {
		writeBattleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"outcome_name":      result.Outcome.OutcomeName,
		"resistance_damage": result.Outcome.FinalDamage,
		"battle_log":        result.Log,
		"war":               result.War,
	})
}

func writeBattleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrWarNotFound):
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrWarNotFound})
	case errors.Is(err, service.ErrWarNotActive):
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrWarNotActive})
	case errors.Is(err, service.ErrNotBelligerent):
		c.JSON(http.StatusForbidden, gin.H{constants.JSONKeyError: constants.ErrNotBelligerent})
	case errors.Is(err, service.ErrInsufficientTacticalPoints):
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrInsufficientPoints})
	case errors.Is(err, engine.ErrInvalidAttackType):
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidAttackType})
	case errors.Is(err, engine.ErrInvalidRoll):
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRoll})
	case errors.Is(err, service.ErrStaleWarState):
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrWarStateConflict})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: err.Error()})
	}
}

// parseID reads a positive integer path parameter.
func parseID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

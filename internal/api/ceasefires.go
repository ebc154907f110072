package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/derajoxford/stratagem-server-sub002/internal/constants"
	"github.com/derajoxford/stratagem-server-sub002/internal/game"
	"github.com/derajoxford/stratagem-server-sub002/internal/service"

	"github.com/gin-gonic/gin"
)

// ProposeCeasefireRequest is the JSON body for opening a ceasefire proposal.
type ProposeCeasefireRequest struct {
	ProposerNationID uint   `json:"proposer_nation_id"`
	Message          string `json:"message"`
}

// RespondCeasefireRequest is the JSON body for resolving a pending proposal.
type RespondCeasefireRequest struct {
	RespondingNationID uint   `json:"responding_nation_id"`
	Decision           string `json:"decision"` // accepted | rejected
}

// ProposeCeasefire opens a pending ceasefire proposal on an active war.
func (h *WarHandler) ProposeCeasefire(c *gin.Context) {
	warID, ok := parseID(c, "warID")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidWarID})
		return
	}
	var req ProposeCeasefireRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ProposerNationID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}

	p, err := service.ProposeCeasefire(h.repo, warID, req.ProposerNationID, req.Message)
	if err != nil {
		writeCeasefireError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "proposal": p})
}

// RespondCeasefire accepts or rejects a pending proposal. Accepted
// ceasefires additionally report which blockades were lifted.
func (h *WarHandler) RespondCeasefire(c *gin.Context) {
	proposalID, ok := parseID(c, "proposalID")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidProposalID})
		return
	}
	var req RespondCeasefireRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RespondingNationID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	decision := game.ProposalStatus(req.Decision)
	if decision != game.ProposalAccepted && decision != game.ProposalRejected {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}

	result, err := service.RespondToCeasefire(h.repo, proposalID, req.RespondingNationID, decision == game.ProposalAccepted, time.Now())
	if err != nil {
		writeCeasefireError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"proposal":         result.Proposal,
		"war":              result.War,
		"lifted_blockades": result.LiftedBlockadeNationIDs,
	})
}

func writeCeasefireError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrWarNotFound):
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrWarNotFound})
	case errors.Is(err, service.ErrWarNotActive):
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrWarNotActive})
	case errors.Is(err, service.ErrNotBelligerent):
		c.JSON(http.StatusForbidden, gin.H{constants.JSONKeyError: constants.ErrNotBelligerent})
	case errors.Is(err, service.ErrPendingProposalExists):
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrPendingProposalExists})
	case errors.Is(err, service.ErrProposalNotFound):
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrProposalNotFound})
	case errors.Is(err, service.ErrProposalAlreadyResolved):
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrProposalResolved})
	case errors.Is(err, service.ErrNotProposalRecipient):
		c.JSON(http.StatusForbidden, gin.H{constants.JSONKeyError: constants.ErrNotProposalRecipient})
	case errors.Is(err, service.ErrStaleWarState):
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrWarStateConflict})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: err.Error()})
	}
}

// internal/handlers/collab.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/creolabs/creator-ledger/internal/ledger"
	"github.com/creolabs/creator-ledger/internal/services"
	"github.com/creolabs/creator-ledger/internal/utils"
)

type CollabHandler struct {
	ledgerService *services.LedgerService
}

func NewCollabHandler(ledgerService *services.LedgerService) *CollabHandler {
	return &CollabHandler{
		ledgerService: ledgerService,
	}
}

type proposeCollabRequest struct {
	Participants []string `json:"participants" validate:"required,min=2,dive,required"`
	Shares       []uint32 `json:"shares" validate:"required,min=2"`
	Deadline     int64    `json:"deadline" validate:"required,min=1"`
}

// POST /collabs
func (h *CollabHandler) Propose(c *gin.Context) {
	addr, ok := requireAddress(c)
	if !ok {
		return
	}

	var req proposeCollabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	participants := make([]ledger.Address, len(req.Participants))
	for i, p := range req.Participants {
		participants[i] = ledgerAddress(p)
	}

	id, err := h.ledgerService.ProposeCollaboration(addr, participants, req.Shares, req.Deadline)
	if err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}

	collab, _ := h.ledgerService.Core().GetCollaboration(id)
	utils.CreatedResponse(c, collab)
}

// GET /collabs/:id
func (h *CollabHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	collab, err := h.ledgerService.Core().GetCollaboration(id)
	if err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, collab)
}

// POST /collabs/:id/accept
func (h *CollabHandler) Accept(c *gin.Context) {
	h.transition(c, h.ledgerService.AcceptCollaboration, "accepted")
}

// POST /collabs/:id/complete
func (h *CollabHandler) Complete(c *gin.Context) {
	h.transition(c, h.ledgerService.CompleteCollaboration, "completed")
}

// POST /collabs/:id/cancel
func (h *CollabHandler) Cancel(c *gin.Context) {
	h.transition(c, h.ledgerService.CancelCollaboration, "cancelled")
}

func (h *CollabHandler) transition(c *gin.Context, op func(ledger.Address, uint64) error, message string) {
	addr, ok := requireAddress(c)
	if !ok {
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	if err := op(addr, id); err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"message": message})
}

type distributeRequest struct {
	Payment int64 `json:"payment" validate:"required,min=1"`
}

// POST /collabs/:id/distribute
func (h *CollabHandler) Distribute(c *gin.Context) {
	addr, ok := requireAddress(c)
	if !ok {
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	var req distributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	if err := h.ledgerService.DistributeRevenue(addr, id, req.Payment); err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}

	collab, _ := h.ledgerService.Core().GetCollaboration(id)
	utils.SuccessResponse(c, gin.H{
		"message":       "revenue distributed",
		"total_revenue": collab.TotalRevenue,
	})
}

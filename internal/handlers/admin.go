// internal/handlers/admin.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/creolabs/creator-ledger/internal/ledger"
	"github.com/creolabs/creator-ledger/internal/services"
	"github.com/creolabs/creator-ledger/internal/utils"
)

type AdminHandler struct {
	ledgerService *services.LedgerService
}

func NewAdminHandler(ledgerService *services.LedgerService) *AdminHandler {
	return &AdminHandler{
		ledgerService: ledgerService,
	}
}

// GET /admin/stats
func (h *AdminHandler) GetStats(c *gin.Context) {
	utils.SuccessResponse(c, h.ledgerService.PlatformStats())
}

// GET /admin/events
func (h *AdminHandler) GetEvents(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	events, total, err := h.ledgerService.RecentEvents(params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(events, total, params)
	utils.PaginatedResponse(c, result)
}

type setFeeRequest struct {
	FeeBps uint32 `json:"fee_bps" validate:"max=1000"`
}

// PUT /admin/fee
func (h *AdminHandler) SetFee(c *gin.Context) {
	addr, ok := requireAddress(c)
	if !ok {
		return
	}

	var req setFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	if err := h.ledgerService.SetFeeBps(addr, req.FeeBps); err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"fee_bps": req.FeeBps})
}

type setTreasuryRequest struct {
	Treasury string `json:"treasury" validate:"required"`
}

// PUT /admin/treasury
func (h *AdminHandler) SetTreasury(c *gin.Context) {
	addr, ok := requireAddress(c)
	if !ok {
		return
	}

	var req setTreasuryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	if err := h.ledgerService.SetTreasury(addr, ledgerAddress(req.Treasury)); err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"treasury": req.Treasury})
}

// POST /admin/pause
func (h *AdminHandler) Pause(c *gin.Context) {
	addr, ok := requireAddress(c)
	if !ok {
		return
	}

	if err := h.ledgerService.Pause(addr); err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"message": "ledger paused"})
}

// POST /admin/unpause
func (h *AdminHandler) Unpause(c *gin.Context) {
	addr, ok := requireAddress(c)
	if !ok {
		return
	}

	if err := h.ledgerService.Unpause(addr); err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"message": "ledger unpaused"})
}

type roleRequest struct {
	Identity string `json:"identity" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=admin moderator oracle minter"`
}

// POST /admin/roles
func (h *AdminHandler) GrantRole(c *gin.Context) {
	addr, ok := requireAddress(c)
	if !ok {
		return
	}

	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	if err := h.ledgerService.GrantRole(addr, ledgerAddress(req.Identity), ledger.Role(req.Role)); err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"message": "role granted"})
}

// DELETE /admin/roles
func (h *AdminHandler) RevokeRole(c *gin.Context) {
	addr, ok := requireAddress(c)
	if !ok {
		return
	}

	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	if err := h.ledgerService.RevokeRole(addr, ledgerAddress(req.Identity), ledger.Role(req.Role)); err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"message": "role revoked"})
}

type setOracleRequest struct {
	Identity string `json:"identity" validate:"required"`
}

// POST /admin/oracle
func (h *AdminHandler) SetOracle(c *gin.Context) {
	addr, ok := requireAddress(c)
	if !ok {
		return
	}

	var req setOracleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	if err := h.ledgerService.SetOracle(addr, ledgerAddress(req.Identity)); err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"message": "oracle registered"})
}

type emergencyWithdrawRequest struct {
	To string `json:"to" validate:"required"`
}

// POST /admin/emergency-withdraw
func (h *AdminHandler) EmergencyWithdraw(c *gin.Context) {
	addr, ok := requireAddress(c)
	if !ok {
		return
	}

	var req emergencyWithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	amount, err := h.ledgerService.EmergencyWithdraw(addr, ledgerAddress(req.To))
	if err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"amount": amount})
}

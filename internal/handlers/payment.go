// internal/handlers/payment.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/creolabs/creator-ledger/internal/services"
	"github.com/creolabs/creator-ledger/internal/utils"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// POST /payments/deposits
func (h *PaymentHandler) CreateDeposit(c *gin.Context) {
	addr, ok := requireAddress(c)
	if !ok {
		return
	}

	var req services.CreateDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	response, err := h.paymentService.CreateDepositIntent(addr, &req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, response)
}

// POST /payments/deposits/confirm
func (h *PaymentHandler) ConfirmDeposit(c *gin.Context) {
	addr, ok := requireAddress(c)
	if !ok {
		return
	}

	var req services.ConfirmDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	if err := h.paymentService.ConfirmDeposit(addr, &req); err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "deposit credited"})
}

// POST /payments/payouts
func (h *PaymentHandler) RequestPayout(c *gin.Context) {
	addr, ok := requireAddress(c)
	if !ok {
		return
	}

	var req services.PayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	if err := h.paymentService.RequestPayout(addr, &req); err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "payout requested"})
}

// GET /payments/history
func (h *PaymentHandler) GetHistory(c *gin.Context) {
	addr, ok := requireAddress(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	transfers, total, err := h.paymentService.GetTransferHistory(addr, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(transfers, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /payments/balance
func (h *PaymentHandler) GetBalance(c *gin.Context) {
	addr, ok := requireAddress(c)
	if !ok {
		return
	}

	utils.SuccessResponse(c, h.paymentService.GetBalance(addr))
}

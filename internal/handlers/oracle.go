// internal/handlers/oracle.go
package handlers

import (
	"encoding/hex"

	"github.com/gin-gonic/gin"

	"github.com/creolabs/creator-ledger/internal/services"
	"github.com/creolabs/creator-ledger/internal/utils"
)

// OracleHandler exposes the development signer so attestation flows can be
// driven end to end locally. The routes are only mounted when the signer is
// configured, which config validation restricts to non-production.
type OracleHandler struct {
	oracleService *services.OracleService
}

func NewOracleHandler(oracleService *services.OracleService) *OracleHandler {
	return &OracleHandler{
		oracleService: oracleService,
	}
}

// GET /oracle/address
func (h *OracleHandler) GetAddress(c *gin.Context) {
	address, err := h.oracleService.Address()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}
	utils.SuccessResponse(c, gin.H{"address": address})
}

type signReceiptRequest struct {
	ContentID  uint64 `json:"content_id" validate:"required,min=1"`
	ReceiptRef string `json:"receipt_ref" validate:"required,max=255"`
}

// POST /oracle/sign/receipt
func (h *OracleHandler) SignReceipt(c *gin.Context) {
	var req signReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	sig, err := h.oracleService.SignAIReceipt(req.ContentID, req.ReceiptRef)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}
	utils.SuccessResponse(c, gin.H{"signature": hex.EncodeToString(sig)})
}

type signTransferRequest struct {
	AssetID uint64 `json:"asset_id" validate:"required,min=1"`
	From    string `json:"from" validate:"required"`
	To      string `json:"to" validate:"required"`
	OldHash string `json:"old_hash" validate:"required,hash32"`
	NewHash string `json:"new_hash" validate:"required,hash32"`
}

// POST /oracle/sign/transfer
func (h *OracleHandler) SignTransfer(c *gin.Context) {
	var req signTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	oldHash, err := decodeHash(req.OldHash)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}
	newHash, err := decodeHash(req.NewHash)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	sig, err := h.oracleService.SignTransfer(req.AssetID, ledgerAddress(req.From), ledgerAddress(req.To), oldHash, newHash)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}
	utils.SuccessResponse(c, gin.H{"signature": hex.EncodeToString(sig)})
}

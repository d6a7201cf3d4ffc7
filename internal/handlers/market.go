// internal/handlers/market.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/creolabs/creator-ledger/internal/services"
	"github.com/creolabs/creator-ledger/internal/utils"
)

type MarketHandler struct {
	ledgerService *services.LedgerService
}

func NewMarketHandler(ledgerService *services.LedgerService) *MarketHandler {
	return &MarketHandler{
		ledgerService: ledgerService,
	}
}

type mintAssetRequest struct {
	ContentID    uint64 `json:"content_id" validate:"required,min=1"`
	RoyaltyBps   uint32 `json:"royalty_bps" validate:"max=2500"`
	Transferable bool   `json:"transferable"`
}

// POST /market/mint  (minter)
func (h *MarketHandler) MintContentAsset(c *gin.Context) {
	addr, ok := requireAddress(c)
	if !ok {
		return
	}

	var req mintAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	id, err := h.ledgerService.MintContentAsset(addr, req.ContentID, req.RoyaltyBps, req.Transferable)
	if err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}

	asset, _ := h.ledgerService.Core().GetAsset(id)
	utils.CreatedResponse(c, asset)
}

// GET /market/listings
func (h *MarketHandler) GetListings(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	listings, total, err := h.ledgerService.SearchListings(params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(listings, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /market/listings/:assetID
func (h *MarketHandler) GetListing(c *gin.Context) {
	assetID, err := parseIDParam(c, "assetID")
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	listing, err := h.ledgerService.Core().GetListing(assetID)
	if err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, listing)
}

type listRequest struct {
	AssetID      uint64 `json:"asset_id" validate:"required,min=1"`
	Price        int64  `json:"price" validate:"required,min=1"`
	Duration     int64  `json:"duration" validate:"min=0"` // seconds, 0 = no expiry (fixed price only)
	IsAuction    bool   `json:"is_auction"`
	MinIncrement int64  `json:"min_increment" validate:"min=0"`
}

// POST /market/listings
func (h *MarketHandler) List(c *gin.Context) {
	addr, ok := requireAddress(c)
	if !ok {
		return
	}

	var req listRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	err := h.ledgerService.List(addr, req.AssetID, req.Price, req.Duration, req.IsAuction, req.MinIncrement)
	if err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}

	listing, _ := h.ledgerService.Core().GetListing(req.AssetID)
	utils.CreatedResponse(c, listing)
}

// POST /market/listings/:assetID/buy
func (h *MarketHandler) BuyNow(c *gin.Context) {
	addr, ok := requireAddress(c)
	if !ok {
		return
	}

	assetID, err := parseIDParam(c, "assetID")
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	if err := h.ledgerService.BuyNow(addr, assetID, req.Payment); err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"message": "purchased"})
}

// POST /market/listings/:assetID/bid
func (h *MarketHandler) PlaceBid(c *gin.Context) {
	addr, ok := requireAddress(c)
	if !ok {
		return
	}

	assetID, err := parseIDParam(c, "assetID")
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	if err := h.ledgerService.PlaceBid(addr, assetID, req.Payment); err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}

	listing, _ := h.ledgerService.Core().GetListing(assetID)
	utils.SuccessResponse(c, gin.H{
		"message":     "bid placed",
		"highest_bid": listing.HighestBid,
	})
}

// POST /market/listings/:assetID/end
func (h *MarketHandler) EndAuction(c *gin.Context) {
	addr, ok := requireAddress(c)
	if !ok {
		return
	}

	assetID, err := parseIDParam(c, "assetID")
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	if err := h.ledgerService.EndAuction(addr, assetID); err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"message": "auction ended"})
}

// DELETE /market/listings/:assetID
func (h *MarketHandler) CancelListing(c *gin.Context) {
	addr, ok := requireAddress(c)
	if !ok {
		return
	}

	assetID, err := parseIDParam(c, "assetID")
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	if err := h.ledgerService.CancelListing(addr, assetID); err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"message": "listing cancelled"})
}

// internal/handlers/content.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/creolabs/creator-ledger/internal/ledger"
	"github.com/creolabs/creator-ledger/internal/services"
	"github.com/creolabs/creator-ledger/internal/utils"
)

type ContentHandler struct {
	ledgerService  *services.LedgerService
	storageService *services.StorageService
}

func NewContentHandler(ledgerService *services.LedgerService, storageService *services.StorageService) *ContentHandler {
	return &ContentHandler{
		ledgerService:  ledgerService,
		storageService: storageService,
	}
}

// GET /contents
func (h *ContentHandler) GetContents(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	contents, total, err := h.ledgerService.SearchContents(params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(contents, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /contents/:id
func (h *ContentHandler) GetContent(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	content, err := h.ledgerService.Core().GetContent(id)
	if err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, content)
}

type publishRequest struct {
	Title       string   `json:"title" validate:"required,max=255"`
	ContentRef  string   `json:"content_ref" validate:"required,max=255"`
	ContentType string   `json:"content_type" validate:"required,oneof=image video audio text model"`
	Category    string   `json:"category" validate:"max=100"`
	Price       int64    `json:"price" validate:"min=0"`
	ForSale     bool     `json:"for_sale"`
	Tags        []string `json:"tags" validate:"max=10,dive,max=50"`
}

// POST /contents
func (h *ContentHandler) Publish(c *gin.Context) {
	addr, ok := requireAddress(c)
	if !ok {
		return
	}

	var req publishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	id, err := h.ledgerService.Publish(addr, req.Title, req.ContentRef,
		ledger.ContentType(req.ContentType), req.Category, req.Price, req.ForSale, req.Tags)
	if err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}

	content, _ := h.ledgerService.Core().GetContent(id)
	utils.CreatedResponse(c, content)
}

// POST /contents/upload
// Stores the blob content-addressed and returns the ref to publish with.
func (h *ContentHandler) Upload(c *gin.Context) {
	if _, ok := requireAddress(c); !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, "file is required", nil)
		return
	}
	defer file.Close()

	options := h.storageService.GetDefaultUploadOptions(c.DefaultPostForm("category", "content"))
	result, err := h.storageService.UploadFile(file, header, options)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, result)
}

// POST /contents/:id/view
func (h *ContentHandler) RecordView(c *gin.Context) {
	h.recordInteraction(c, ledger.InteractionView)
}

// POST /contents/:id/like
func (h *ContentHandler) RecordLike(c *gin.Context) {
	h.recordInteraction(c, ledger.InteractionLike)
}

func (h *ContentHandler) recordInteraction(c *gin.Context, kind ledger.InteractionKind) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	if err := h.ledgerService.RecordInteraction(id, kind); err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"message": "recorded"})
}

type setForSaleRequest struct {
	ForSale bool  `json:"for_sale"`
	Price   int64 `json:"price" validate:"min=0"`
}

// PUT /contents/:id/sale
func (h *ContentHandler) SetForSale(c *gin.Context) {
	addr, ok := requireAddress(c)
	if !ok {
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	var req setForSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	if err := h.ledgerService.SetForSale(addr, id, req.ForSale, req.Price); err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"message": "sale state updated"})
}

type paymentRequest struct {
	Payment int64 `json:"payment" validate:"required,min=1"`
}

// POST /contents/:id/purchase
func (h *ContentHandler) Purchase(c *gin.Context) {
	addr, ok := requireAddress(c)
	if !ok {
		return
	}

	id, err := parseIDParam(c, "id")
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

	if err := h.ledgerService.Purchase(addr, id, req.Payment); err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"message": "purchased"})
}

type tipRequest struct {
	Amount int64 `json:"amount" validate:"required,min=1"`
}

// POST /contents/:id/tip
func (h *ContentHandler) Tip(c *gin.Context) {
	addr, ok := requireAddress(c)
	if !ok {
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	var req tipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	if err := h.ledgerService.Tip(addr, id, req.Amount); err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"message": "tipped"})
}

type aiVerificationRequest struct {
	ReceiptRef string `json:"receipt_ref" validate:"required,max=255"`
	Signature  string `json:"signature" validate:"required"`
}

// POST /contents/:id/ai-verification
// Attaches an oracle-signed AI-processing receipt to the content.
func (h *ContentHandler) VerifyAIProcessing(c *gin.Context) {
	addr, ok := requireAddress(c)
	if !ok {
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	var req aiVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	sig, err := decodeSignature(req.Signature)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	if err := h.ledgerService.VerifyAIProcessing(addr, id, req.ReceiptRef, sig); err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"message": "ai processing verified"})
}

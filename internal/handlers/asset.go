// internal/handlers/asset.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/creolabs/creator-ledger/internal/ledger"
	"github.com/creolabs/creator-ledger/internal/services"
	"github.com/creolabs/creator-ledger/internal/utils"
)

type AssetHandler struct {
	ledgerService *services.LedgerService
}

func NewAssetHandler(ledgerService *services.LedgerService) *AssetHandler {
	return &AssetHandler{
		ledgerService: ledgerService,
	}
}

type mintIntelligentRequest struct {
	Owner        string   `json:"owner" validate:"required"`
	EncryptedRef string   `json:"encrypted_ref" validate:"required,max=255"`
	MetadataHash string   `json:"metadata_hash" validate:"required,hash32"`
	AssetType    string   `json:"asset_type" validate:"required,oneof=image video audio text model"`
	RoyaltyBps   uint32   `json:"royalty_bps" validate:"max=2500"`
	Transferable bool     `json:"transferable"`
	Updatable    bool     `json:"updatable"`
	Tags         []string `json:"tags" validate:"max=10,dive,max=50"`
	ContentID    uint64   `json:"content_id"` // optional catalog linkage
}

// POST /assets/intelligent  (minter)
func (h *AssetHandler) MintIntelligent(c *gin.Context) {
	addr, ok := requireAddress(c)
	if !ok {
		return
	}

	var req mintIntelligentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	hash, err := decodeHash(req.MetadataHash)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	id, err := h.ledgerService.MintIntelligentAsset(addr, ledgerAddress(req.Owner),
		req.EncryptedRef, hash, ledger.ContentType(req.AssetType),
		req.RoyaltyBps, req.Transferable, req.Updatable, req.Tags, req.ContentID)
	if err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}

	asset, _ := h.ledgerService.Core().GetAsset(id)
	utils.CreatedResponse(c, asset)
}

// GET /assets/:id
func (h *AssetHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	asset, err := h.ledgerService.Core().GetAsset(id)
	if err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, asset)
}

type updateMetadataRequest struct {
	EncryptedRef string `json:"encrypted_ref" validate:"required,max=255"`
	MetadataHash string `json:"metadata_hash" validate:"required,hash32"`
}

// PUT /assets/:id/metadata
func (h *AssetHandler) UpdateMetadata(c *gin.Context) {
	addr, ok := requireAddress(c)
	if !ok {
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	var req updateMetadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	hash, err := decodeHash(req.MetadataHash)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	if err := h.ledgerService.UpdateAssetMetadata(addr, id, req.EncryptedRef, hash); err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"message": "metadata updated"})
}

type authorizeUsageRequest struct {
	Grantee string `json:"grantee" validate:"required"`
	Blob    string `json:"blob" validate:"required"`
}

// POST /assets/:id/authorizations
func (h *AssetHandler) AuthorizeUsage(c *gin.Context) {
	addr, ok := requireAddress(c)
	if !ok {
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	var req authorizeUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	if err := h.ledgerService.AuthorizeUsage(addr, id, ledgerAddress(req.Grantee), req.Blob); err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"message": "usage authorized"})
}

type transferRequest struct {
	To string `json:"to" validate:"required"`
}

// POST /assets/:id/transfer
// Plain ownership move; intelligent assets must use the proof route.
func (h *AssetHandler) Transfer(c *gin.Context) {
	addr, ok := requireAddress(c)
	if !ok {
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	if err := h.ledgerService.TransferAsset(addr, id, ledgerAddress(req.To)); err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"message": "transferred"})
}

type proofTransferRequest struct {
	To           string `json:"to" validate:"required"`
	OldHash      string `json:"old_hash" validate:"required,hash32"`
	NewHash      string `json:"new_hash" validate:"required,hash32"`
	EncryptedRef string `json:"encrypted_ref" validate:"required,max=255"`
	Signature    string `json:"signature" validate:"required"`
}

// POST /assets/:id/proof-transfer
// Oracle-attested handover of an intelligent asset: the metadata hash chain
// and the signed digest must both line up.
func (h *AssetHandler) TransferWithProof(c *gin.Context) {
	addr, ok := requireAddress(c)
	if !ok {
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	var req proofTransferRequest
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
	sig, err := decodeSignature(req.Signature)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	err = h.ledgerService.TransferWithProof(addr, id, ledgerAddress(req.To), oldHash, newHash, req.EncryptedRef, sig)
	if err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"message": "transferred with proof"})
}

// GET /assets/:id/proofs
func (h *AssetHandler) GetProofs(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	proofs := h.ledgerService.Core().TransferProofs(id)
	utils.SuccessResponse(c, gin.H{"proofs": proofs})
}

// internal/handlers/creator.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/creolabs/creator-ledger/internal/ledger"
	"github.com/creolabs/creator-ledger/internal/services"
	"github.com/creolabs/creator-ledger/internal/utils"
)

type CreatorHandler struct {
	ledgerService *services.LedgerService
}

func NewCreatorHandler(ledgerService *services.LedgerService) *CreatorHandler {
	return &CreatorHandler{
		ledgerService: ledgerService,
	}
}

type registerCreatorRequest struct {
	Username    string `json:"username" validate:"required,username"`
	Bio         string `json:"bio" validate:"max=2000"`
	ProfileRef  string `json:"profile_ref" validate:"max=255"`
	CreatorType string `json:"creator_type" validate:"required,oneof=traditional ai_creator hybrid"`
}

// POST /creators
func (h *CreatorHandler) Register(c *gin.Context) {
	addr, ok := requireAddress(c)
	if !ok {
		return
	}

	var req registerCreatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	err := h.ledgerService.Register(addr, req.Username, req.Bio, req.ProfileRef, ledger.CreatorType(req.CreatorType))
	if err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}

	creator, _ := h.ledgerService.Core().GetCreator(addr)
	utils.CreatedResponse(c, creator)
}

type updateProfileRequest struct {
	Username   string `json:"username" validate:"required,username"`
	Bio        string `json:"bio" validate:"max=2000"`
	ProfileRef string `json:"profile_ref" validate:"max=255"`
}

// PUT /creators/profile
func (h *CreatorHandler) UpdateProfile(c *gin.Context) {
	addr, ok := requireAddress(c)
	if !ok {
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	if err := h.ledgerService.UpdateProfile(addr, req.Username, req.Bio, req.ProfileRef); err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}

	creator, _ := h.ledgerService.Core().GetCreator(addr)
	utils.SuccessResponse(c, creator)
}

// GET /creators
func (h *CreatorHandler) GetCreators(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	creators, total, err := h.ledgerService.SearchCreators(params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(creators, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /creators/:address
func (h *CreatorHandler) GetCreator(c *gin.Context) {
	creator, err := h.ledgerService.Core().GetCreator(ledgerAddress(c.Param("address")))
	if err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, creator)
}

// GET /creators/:address/following
func (h *CreatorHandler) GetFollowing(c *gin.Context) {
	following := h.ledgerService.Core().Following(ledgerAddress(c.Param("address")))
	utils.SuccessResponse(c, gin.H{"following": following})
}

// POST /creators/:address/follow
func (h *CreatorHandler) Follow(c *gin.Context) {
	addr, ok := requireAddress(c)
	if !ok {
		return
	}

	if err := h.ledgerService.Follow(addr, ledgerAddress(c.Param("address"))); err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"message": "followed"})
}

// DELETE /creators/:address/follow
func (h *CreatorHandler) Unfollow(c *gin.Context) {
	addr, ok := requireAddress(c)
	if !ok {
		return
	}

	if err := h.ledgerService.Unfollow(addr, ledgerAddress(c.Param("address"))); err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"message": "unfollowed"})
}

// POST /creators/:address/verify  (moderator)
func (h *CreatorHandler) Verify(c *gin.Context) {
	addr, ok := requireAddress(c)
	if !ok {
		return
	}

	if err := h.ledgerService.VerifyCreator(addr, ledgerAddress(c.Param("address"))); err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"message": "creator verified"})
}

type createSubscriptionRequest struct {
	MonthlyPrice int64 `json:"monthly_price" validate:"required,min=1"`
}

// POST /subscriptions
func (h *CreatorHandler) CreateSubscription(c *gin.Context) {
	addr, ok := requireAddress(c)
	if !ok {
		return
	}

	var req createSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	if err := h.ledgerService.CreateSubscription(addr, req.MonthlyPrice); err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}
	utils.CreatedResponse(c, gin.H{"message": "subscription plan created"})
}

type subscribeRequest struct {
	Months  int   `json:"months" validate:"required,min=1,max=12"`
	Payment int64 `json:"payment" validate:"required,min=1"`
}

// POST /creators/:address/subscribe
func (h *CreatorHandler) Subscribe(c *gin.Context) {
	addr, ok := requireAddress(c)
	if !ok {
		return
	}

	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	creator := ledgerAddress(c.Param("address"))
	if err := h.ledgerService.Subscribe(addr, creator, req.Months, req.Payment); err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":    "subscribed",
		"expires_at": h.ledgerService.Core().SubscriptionExpiry(addr, creator),
	})
}

// GET /creators/:address/subscription
func (h *CreatorHandler) GetSubscription(c *gin.Context) {
	creator := ledgerAddress(c.Param("address"))
	sub, err := h.ledgerService.Core().GetSubscription(creator)
	if err != nil {
		utils.LedgerErrorResponse(c, err)
		return
	}

	response := gin.H{"subscription": sub}
	if addr, ok := utils.GetLedgerAddressFromContext(c); ok {
		response["expires_at"] = h.ledgerService.Core().SubscriptionExpiry(addr, creator)
	}
	utils.SuccessResponse(c, response)
}

// internal/handlers/auth.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/creolabs/creator-ledger/internal/services"
	"github.com/creolabs/creator-ledger/internal/utils"
)

type AuthHandler struct {
	authService   *services.AuthService
	ledgerService *services.LedgerService
}

func NewAuthHandler(authService *services.AuthService, ledgerService *services.LedgerService) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		ledgerService: ledgerService,
	}
}

// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	// Validate request
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	authResponse, err := h.authService.Register(&req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"account":       authResponse.Account,
		"token":         authResponse.AccessToken,
		"refresh_token": authResponse.RefreshToken,
		"token_type":    authResponse.TokenType,
		"expires_in":    authResponse.ExpiresIn,
	})
}

// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	// Validate request
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	authResponse, err := h.authService.Login(&req)
	if err != nil {
		utils.UnauthorizedResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"account":       authResponse.Account,
		"token":         authResponse.AccessToken,
		"refresh_token": authResponse.RefreshToken,
		"token_type":    authResponse.TokenType,
		"expires_in":    authResponse.ExpiresIn,
	})
}

// POST /auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	authResponse, err := h.authService.RefreshToken(req.RefreshToken)
	if err != nil {
		utils.UnauthorizedResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"token":         authResponse.AccessToken,
		"refresh_token": authResponse.RefreshToken,
		"token_type":    authResponse.TokenType,
		"expires_in":    authResponse.ExpiresIn,
	})
}

// GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	accountIDStr, exists := utils.GetAccountIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	accountID, err := uuid.Parse(accountIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid account ID", nil)
		return
	}

	account, err := h.authService.GetAccountByID(accountID)
	if err != nil {
		utils.NotFoundResponse(c, "account")
		return
	}

	response := gin.H{
		"account": account,
		"balance": h.ledgerService.Core().BalanceOf(ledgerAddress(account.LedgerAddress)),
	}

	// Creator profile is optional; accounts can hold balances without one.
	if creator, err := h.ledgerService.Core().GetCreator(ledgerAddress(account.LedgerAddress)); err == nil {
		response["creator"] = creator
	}

	utils.SuccessResponse(c, response)
}

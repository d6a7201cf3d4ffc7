// internal/utils/response.go
package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/creolabs/creator-ledger/internal/ledger"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
	})
}

func SuccessResponseWithMeta(c *gin.Context, data interface{}, meta interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

func CreatedResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{
		Success: true,
		Data:    data,
	})
}

func ErrorResponse(c *gin.Context, statusCode int, code, message string, details interface{}) {
	c.JSON(statusCode, APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

func BadRequestResponse(c *gin.Context, message string, details interface{}) {
	if message == "" {
		message = "Invalid request"
	}
	ErrorResponse(c, http.StatusBadRequest, "BAD_REQUEST", message, details)
}

func UnauthorizedResponse(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", message, nil)
}

func ForbiddenResponse(c *gin.Context, message string) {
	if message == "" {
		message = "Access denied"
	}
	ErrorResponse(c, http.StatusForbidden, "FORBIDDEN", message, nil)
}

func NotFoundResponse(c *gin.Context, resource string) {
	ErrorResponse(c, http.StatusNotFound, "NOT_FOUND", resource+" not found", nil)
}

func ConflictResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusConflict, "CONFLICT", message, nil)
}

func InternalErrorResponse(c *gin.Context, message string) {
	if message == "" {
		message = "Internal server error"
	}
	ErrorResponse(c, http.StatusInternalServerError, "INTERNAL_ERROR", message, nil)
}

func ValidationErrorResponse(c *gin.Context, errors []ValidationError) {
	ErrorResponse(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", errors)
}

func PaginatedResponse(c *gin.Context, result PaginationResult) {
	SetPaginationHeaders(c, result)
	SuccessResponseWithMeta(c, result.Data, gin.H{
		"pagination": gin.H{
			"page":        result.Page,
			"limit":       result.Limit,
			"total":       result.Total,
			"total_pages": result.TotalPages,
		},
	})
}

// LedgerErrorResponse maps a ledger core error onto the API error envelope.
func LedgerErrorResponse(c *gin.Context, err error) {
	code := ledger.ErrorCode(err)
	ErrorResponse(c, ledgerErrorStatus(code), code, err.Error(), nil)
}

func ledgerErrorStatus(code string) int {
	switch code {
	case "INVALID_INPUT", "SELF_REFERENCE", "ARITHMETIC_OVERFLOW":
		return http.StatusBadRequest
	case "UNAUTHORIZED", "INVALID_SIGNATURE":
		return http.StatusUnauthorized
	case "NOT_FOUND":
		return http.StatusNotFound
	case "ALREADY_EXISTS", "ALREADY_REGISTERED", "ALREADY_MINTED",
		"ALREADY_FOLLOWING", "NOT_FOLLOWING", "REPLAYED_SIGNATURE":
		return http.StatusConflict
	case "INSUFFICIENT_PAYMENT", "INSUFFICIENT_BID", "PAYMENT_FAILED":
		return http.StatusPaymentRequired
	case "INACTIVE_ENTITY", "INVALID_STATE_TRANSITION", "EXPIRED", "PAUSED":
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func GetAccountIDFromContext(c *gin.Context) (string, bool) {
	if accountID, exists := c.Get("account_id"); exists {
		if idStr, ok := accountID.(string); ok {
			return idStr, true
		}
	}
	return "", false
}

// GetLedgerAddressFromContext returns the caller's ledger address as bound by
// the auth middleware.
func GetLedgerAddressFromContext(c *gin.Context) (ledger.Address, bool) {
	if addr, exists := c.Get("ledger_address"); exists {
		if addrStr, ok := addr.(string); ok && addrStr != "" {
			return ledger.Address(addrStr), true
		}
	}
	return "", false
}

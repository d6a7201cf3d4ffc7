// internal/middleware/auth.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/creolabs/creator-ledger/internal/ledger"
	"github.com/creolabs/creator-ledger/internal/utils"
)

// CapabilityChecker answers role queries against committed ledger state.
// *ledger.Ledger satisfies it.
type CapabilityChecker interface {
	HasCapability(addr ledger.Address, role ledger.Role) bool
}

func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "invalid authorization header",
			})
			c.Abort()
			return
		}

		token := parts[1]
		claims, err := utils.ValidateJWT(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or expired token",
			})
			c.Abort()
			return
		}

		// Set caller identity in context
		c.Set("account_id", claims.AccountID)
		c.Set("username", claims.Username)
		c.Set("ledger_address", claims.LedgerAddress)
		c.Next()
	}
}

// RoleRequired gates a route on a ledger capability of the caller's address.
// Roles are granted and revoked on the ledger, not encoded in the token, so
// a revocation takes effect on the next request.
func RoleRequired(checker CapabilityChecker, role ledger.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		addr, ok := utils.GetLedgerAddressFromContext(c)
		if !ok || !checker.HasCapability(addr, role) {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "insufficient capability",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

func AdminRequired(checker CapabilityChecker) gin.HandlerFunc {
	return RoleRequired(checker, ledger.RoleAdmin)
}

func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.Next()
			return
		}

		token := parts[1]
		claims, err := utils.ValidateJWT(token)
		if err != nil {
			c.Next()
			return
		}

		// Set caller identity in context if token is valid
		c.Set("account_id", claims.AccountID)
		c.Set("username", claims.Username)
		c.Set("ledger_address", claims.LedgerAddress)
		c.Next()
	}
}

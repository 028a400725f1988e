// internal/middleware/auth.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/compranet/compras-backend/internal/i18n"
	"github.com/compranet/compras-backend/internal/models"
	"github.com/compranet/compras-backend/internal/utils"
)

func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.UnauthorizedResponse(c, "")
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.UnauthorizedResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyAuthInvalidToken))
			c.Abort()
			return
		}

		claims, err := utils.ValidateJWT(parts[1])
		if err != nil {
			utils.UnauthorizedResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyAuthTokenExpired))
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("user_role", claims.Role)
		c.Next()
	}
}

// Authorize is the single RBAC gate: it re-reads the stored User row for
// the authenticated actor, verifies it is active and that its role is in
// the capability's allowed set.
func Authorize(db *gorm.DB, capability Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := utils.GetLangFromContext(c)

		userIDStr, exists := utils.GetUserIDFromContext(c)
		if !exists {
			utils.UnauthorizedResponse(c, "")
			c.Abort()
			return
		}

		userID, err := uuid.Parse(userIDStr)
		if err != nil {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidToken))
			c.Abort()
			return
		}

		var user models.User
		if err := db.First(&user, "id = ?", userID).Error; err != nil {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidToken))
			c.Abort()
			return
		}

		if !user.IsActive {
			utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyAuthInactiveUser))
			c.Abort()
			return
		}

		if !capability.Allows(user.Role) {
			utils.ForbiddenResponse(c, "")
			c.Abort()
			return
		}

		// Refresh the role in context: the token may predate a role change.
		c.Set("user_role", string(user.Role))
		c.Next()
	}
}

// OwnerOrRoles is the companion ownership gate: handlers call it after
// loading the resource to allow the owner or any of the given roles.
func OwnerOrRoles(c *gin.Context, ownerID uuid.UUID, roles ...models.UserRole) bool {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if exists && userIDStr == ownerID.String() {
		return true
	}

	roleStr, exists := utils.GetUserRoleFromContext(c)
	if !exists {
		return false
	}
	for _, role := range roles {
		if models.UserRole(roleStr) == role {
			return true
		}
	}
	return false
}

// internal/handlers/audit.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/compranet/compras-backend/internal/services"
	"github.com/compranet/compras-backend/internal/utils"
)

type AuditHandler struct {
	auditService *services.AuditService
}

func NewAuditHandler(auditService *services.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// GET /audit-logs?entityId=&entityType=&limit=
func (h *AuditHandler) List(c *gin.Context) {
	var entityID *uuid.UUID
	if raw := c.Query("entityId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			utils.BadRequestResponse(c, "invalid entityId", nil)
			return
		}
		entityID = &id
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 1000 {
			limit = parsed
		}
	}

	logs, err := h.auditService.List(entityID, c.Query("entityType"), limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, logs)
}

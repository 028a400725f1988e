// internal/handlers/common.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/compranet/compras-backend/internal/services"
	"github.com/compranet/compras-backend/internal/utils"
)

// respondServiceError maps the service error taxonomy to HTTP status
// codes: not-found to 404, bad input and illegal transitions to 400,
// duplicates to 409, everything else to 500.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.NotFoundResponse(c, "resource")
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrNoSelectedQuotation):
		utils.BadRequestResponse(c, err.Error(), nil)
	case errors.Is(err, services.ErrDuplicate):
		utils.ConflictResponse(c, err.Error())
	default:
		utils.InternalErrorResponse(c, err.Error())
	}
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	raw, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}
	return id, true
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.BadRequestResponse(c, "invalid id: "+c.Param(name), nil)
		return uuid.Nil, false
	}
	return id, true
}

// internal/handlers/order.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/compranet/compras-backend/internal/i18n"
	"github.com/compranet/compras-backend/internal/services"
	"github.com/compranet/compras-backend/internal/utils"
)

type OrderHandler struct {
	orderService *services.OrderService
}

func NewOrderHandler(orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// POST /quotation-requests/:id/generate-purchase-order
func (h *OrderHandler) Generate(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	requestID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	lang := utils.GetLangFromContext(c)

	var req services.GenerateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	order, err := h.orderService.GenerateOrder(actorID, requestID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, order)
}

// GET /purchase-orders
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.orderService.List(c.Query("status"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, orders)
}

// GET /purchase-orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, order)
}

// internal/handlers/supplier.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/compranet/compras-backend/internal/i18n"
	"github.com/compranet/compras-backend/internal/services"
	"github.com/compranet/compras-backend/internal/utils"
)

type SupplierHandler struct {
	supplierService *services.SupplierService
}

func NewSupplierHandler(supplierService *services.SupplierService) *SupplierHandler {
	return &SupplierHandler{supplierService: supplierService}
}

// POST /suppliers
func (h *SupplierHandler) Create(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	lang := utils.GetLangFromContext(c)

	var req services.SupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	supplier, err := h.supplierService.Create(actorID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, supplier)
}

// GET /suppliers
func (h *SupplierHandler) List(c *gin.Context) {
	suppliers, err := h.supplierService.List(c.Query("search"), c.Query("status"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, suppliers)
}

// GET /suppliers/:id
func (h *SupplierHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	supplier, err := h.supplierService.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, supplier)
}

// PUT /suppliers/:id
func (h *SupplierHandler) Update(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	lang := utils.GetLangFromContext(c)

	var req services.SupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	supplier, err := h.supplierService.Update(actorID, id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, supplier)
}

// DELETE /suppliers/:id
func (h *SupplierHandler) Delete(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	lang := utils.GetLangFromContext(c)

	if err := h.supplierService.Delete(actorID, id); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": i18n.T(lang, i18n.KeyDeleted, "supplier")})
}

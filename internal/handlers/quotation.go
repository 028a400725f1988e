// internal/handlers/quotation.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/compranet/compras-backend/internal/i18n"
	"github.com/compranet/compras-backend/internal/middleware"
	"github.com/compranet/compras-backend/internal/models"
	"github.com/compranet/compras-backend/internal/services"
	"github.com/compranet/compras-backend/internal/utils"
)

type QuotationHandler struct {
	quotationService *services.QuotationService
}

func NewQuotationHandler(quotationService *services.QuotationService) *QuotationHandler {
	return &QuotationHandler{quotationService: quotationService}
}

// POST /quotation-requests
func (h *QuotationHandler) CreateRequest(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	lang := utils.GetLangFromContext(c)

	var req services.CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	request, err := h.quotationService.CreateRequest(actorID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, request)
}

// GET /quotation-requests
// Requisitantes only see their own requests.
func (h *QuotationHandler) ListRequests(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}

	filter := services.RequestFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
	}

	if role, ok := utils.GetUserRoleFromContext(c); ok && role == string(models.RoleRequisitante) {
		filter.RequesterID = &actorID
	}

	requests, err := h.quotationService.ListRequests(filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, requests)
}

// GET /quotation-requests/:id
func (h *QuotationHandler) GetRequest(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	request, err := h.quotationService.GetRequest(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if !middleware.OwnerOrRoles(c, request.RequesterID, models.RoleAdmin, models.RoleCotador, models.RoleAprovador) {
		utils.ForbiddenResponse(c, "")
		return
	}

	utils.SuccessResponse(c, request)
}

// PUT /quotation-requests/:id
func (h *QuotationHandler) UpdateRequest(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	lang := utils.GetLangFromContext(c)

	var req services.UpdateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	request, err := h.quotationService.UpdateRequest(actorID, id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, request)
}

// POST /quotation-requests/:id/supplier-quotations
func (h *QuotationHandler) SubmitQuotation(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	requestID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	lang := utils.GetLangFromContext(c)

	var req services.SubmitQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	quotation, err := h.quotationService.SubmitQuotation(actorID, requestID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, quotation)
}

// GET /quotation-requests/:id/supplier-quotations
func (h *QuotationHandler) ListQuotations(c *gin.Context) {
	requestID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	quotations, err := h.quotationService.ListQuotations(requestID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, quotations)
}

// PUT /supplier-quotations/:id
func (h *QuotationHandler) UpdateQuotation(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	lang := utils.GetLangFromContext(c)

	var req services.UpdateQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	quotation, err := h.quotationService.UpdateQuotation(actorID, id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, quotation)
}

// POST /supplier-quotations/:id/select
func (h *QuotationHandler) SelectQuotation(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	request, err := h.quotationService.SelectQuotation(actorID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, request)
}

// POST /quotation-requests/:id/approve
func (h *QuotationHandler) ApproveRequest(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	lang := utils.GetLangFromContext(c)

	var req struct {
		ApprovedAmount *float64 `json:"approved_amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	request, err := h.quotationService.Approve(actorID, id, req.ApprovedAmount)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, request)
}

// POST /quotation-requests/:id/reject
func (h *QuotationHandler) RejectRequest(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	lang := utils.GetLangFromContext(c)

	var req struct {
		RejectionReason string `json:"rejection_reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	request, err := h.quotationService.Reject(actorID, id, req.RejectionReason)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, request)
}

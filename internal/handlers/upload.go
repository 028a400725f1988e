// internal/handlers/upload.go
package handlers

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/compranet/compras-backend/internal/i18n"
	"github.com/compranet/compras-backend/internal/services"
	"github.com/compranet/compras-backend/internal/utils"
)

// 10 MB is plenty for hand-edited procurement sheets.
const maxUploadSize = 10 << 20

type UploadHandler struct {
	ingestService *services.IngestService
}

func NewUploadHandler(ingestService *services.IngestService) *UploadHandler {
	return &UploadHandler{ingestService: ingestService}
}

// POST /upload/quotation-spreadsheet
func (h *UploadHandler) ImportRequisitions(c *gin.Context) {
	actorID, filename, content, ok := h.readUpload(c)
	if !ok {
		return
	}

	result, err := h.ingestService.ImportRequisitions(actorID, filename, content)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, result)
}

// POST /upload/supplier-quotations
func (h *UploadHandler) ImportSupplierQuotations(c *gin.Context) {
	actorID, filename, content, ok := h.readUpload(c)
	if !ok {
		return
	}

	result, err := h.ingestService.ImportSupplierQuotations(actorID, filename, content)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, result)
}

func (h *UploadHandler) readUpload(c *gin.Context) (actorID uuid.UUID, filename string, content []byte, ok bool) {
	id, idOK := currentUserID(c)
	if !idOK {
		return
	}
	lang := utils.GetLangFromContext(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileRequired), nil)
		return
	}
	if fileHeader.Size > maxUploadSize {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileUnsupported), "file too large")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	return id, fileHeader.Filename, data, true
}

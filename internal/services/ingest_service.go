// internal/services/ingest_service.go
package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/compranet/compras-backend/internal/models"
)

// IngestService imports hand-edited spreadsheets (xlsx or CSV) into
// requisitions and supplier quotations. Batches run without a
// transactional envelope: a bad row never aborts the batch, and rows
// persisted before a later failure stay committed. Every skip and
// error is attributable to its 1-based row index.
type IngestService struct {
	db        *gorm.DB
	audit     *AuditService
	suppliers *SupplierService
	storage   *StorageService
}

type ImportResult struct {
	Processed int      `json:"processed"`
	Created   int      `json:"created"`
	Skipped   int      `json:"skipped"`
	Errors    []string `json:"errors"`
}

func NewIngestService(db *gorm.DB, audit *AuditService, suppliers *SupplierService, storage *StorageService) *IngestService {
	return &IngestService{db: db, audit: audit, suppliers: suppliers, storage: storage}
}

// ImportRequisitions creates one rascunho QuotationRequest per valid
// row, with the actor as requester.
func (s *IngestService) ImportRequisitions(actorID uuid.UUID, filename string, content []byte) (*ImportResult, error) {
	rows, err := parseSpreadsheet(filename, content)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	records := recordsFromRows(rows, requisitionPositions)
	result := &ImportResult{Errors: []string{}}

	for i, record := range records {
		result.Processed++
		line := i + 1

		mapped, err := mapRequisitionRow(record)
		if err != nil {
			if isSkip(err) {
				logrus.WithField("linha", line).Debug(err.Error())
				result.Skipped++
				continue
			}
			result.Errors = append(result.Errors, fmt.Sprintf("linha %d: %s", line, err.Error()))
			continue
		}

		request := &models.QuotationRequest{
			RequesterID: actorID,
			Title:       mapped.Title,
			Description: mapped.Description,
			Department:  mapped.Department,
			Urgency:     models.UrgencyNormal,
			Status:      models.RequestStatusDraft,
			TotalBudget: mapped.Budget,
		}
		if mapped.Urgency != "" {
			request.Urgency = models.Urgency(mapped.Urgency)
		}

		err = s.db.Transaction(func(tx *gorm.DB) error {
			request.RequestNumber = nextDocumentNumber(tx, &models.QuotationRequest{}, "request_number", "REQ")
			return tx.Create(request).Error
		})
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("linha %d: %s", line, err.Error()))
			continue
		}

		result.Created++
	}

	s.finishBatch(actorID, "import_requisitions", "quotation_request", filename, content, result)
	return result, nil
}

// ImportSupplierQuotations resolves or creates the named supplier,
// requires the referenced request to exist, and upserts the quotation
// for the (request, supplier) pair.
func (s *IngestService) ImportSupplierQuotations(actorID uuid.UUID, filename string, content []byte) (*ImportResult, error) {
	rows, err := parseSpreadsheet(filename, content)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	records := recordsFromRows(rows, supplierQuotationPositions)
	result := &ImportResult{Errors: []string{}}

	for i, record := range records {
		result.Processed++
		line := i + 1

		mapped, err := mapSupplierQuotationRow(record)
		if err != nil {
			if isSkip(err) {
				logrus.WithField("linha", line).Debug(err.Error())
				result.Skipped++
				continue
			}
			result.Errors = append(result.Errors, fmt.Sprintf("linha %d: %s", line, err.Error()))
			continue
		}

		if mapped.RequestNumber == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("linha %d: requisição não informada", line))
			continue
		}

		var request models.QuotationRequest
		err = s.db.First(&request, "request_number = ?", mapped.RequestNumber).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				result.Errors = append(result.Errors, fmt.Sprintf("linha %d: requisição %s não encontrada", line, mapped.RequestNumber))
			} else {
				result.Errors = append(result.Errors, fmt.Sprintf("linha %d: %s", line, err.Error()))
			}
			continue
		}

		supplier, err := s.suppliers.FindOrCreateByName(actorID, mapped.SupplierName)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("linha %d: %s", line, err.Error()))
			continue
		}

		if err := s.upsertQuotation(&request, supplier, mapped); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("linha %d: %s", line, err.Error()))
			continue
		}

		result.Created++
	}

	s.finishBatch(actorID, "import_supplier_quotations", "supplier_quotation", filename, content, result)
	return result, nil
}

func (s *IngestService) upsertQuotation(request *models.QuotationRequest, supplier *models.Supplier, row *supplierQuotationRow) error {
	amount := 0.0
	if row.Amount != nil {
		amount = *row.Amount
	}

	var existing models.SupplierQuotation
	err := s.db.Where("request_id = ? AND supplier_id = ?", request.ID, supplier.ID).
		First(&existing).Error

	switch {
	case err == nil:
		return s.db.Model(&existing).Updates(map[string]interface{}{
			"total_amount":  amount,
			"delivery_days": row.DeliveryDays,
			"payment_terms": row.PaymentTerms,
			"notes":         row.Notes,
		}).Error

	case errors.Is(err, gorm.ErrRecordNotFound):
		quotation := &models.SupplierQuotation{
			RequestID:    request.ID,
			SupplierID:   supplier.ID,
			TotalAmount:  amount,
			DeliveryDays: row.DeliveryDays,
			PaymentTerms: row.PaymentTerms,
			Notes:        row.Notes,
		}
		return s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(quotation).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Supplier{}).Where("id = ?", supplier.ID).
				UpdateColumn("total_quotations", gorm.Expr("total_quotations + 1")).Error; err != nil {
				return err
			}
			if request.Status == models.RequestStatusDraft {
				return tx.Model(&models.QuotationRequest{}).Where("id = ?", request.ID).
					Update("status", models.RequestStatusInQuotation).Error
			}
			return nil
		})

	default:
		return err
	}
}

// finishBatch writes the single per-batch audit row and archives the
// original file, both best-effort.
func (s *IngestService) finishBatch(actorID uuid.UUID, action, entityType, filename string, content []byte, result *ImportResult) {
	s.audit.Record(&actorID, action, entityType, nil, nil, map[string]interface{}{
		"filename":  filename,
		"processed": result.Processed,
		"created":   result.Created,
		"skipped":   result.Skipped,
		"errors":    len(result.Errors),
	})

	go func(name string, data []byte) {
		if _, err := s.storage.ArchiveSpreadsheet(name, data); err != nil {
			logrus.WithError(err).WithField("filename", name).Warn("Spreadsheet archive failed")
		}
	}(filename, content)
}

// parseSpreadsheet turns the uploaded file into a raw cell grid.
// Extension decides the parser; Brazilian CSVs frequently use ';' as
// the separator, so the delimiter is sniffed from the first line.
func parseSpreadsheet(filename string, content []byte) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm", ".xls":
		return parseExcel(content)
	case ".csv", ".txt", "":
		return parseCSV(content)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(filename))
	}
}

func parseExcel(content []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("spreadsheet has no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return rows, nil
}

func parseCSV(content []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	if firstLine, _, ok := bytes.Cut(content, []byte("\n")); ok || len(firstLine) > 0 {
		if bytes.Contains(firstLine, []byte(";")) && !bytes.Contains(firstLine, []byte(",")) {
			reader.Comma = ';'
		}
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	return rows, nil
}

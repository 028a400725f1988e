// internal/services/ingest_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/compranet/compras-backend/internal/models"
)

type IngestServiceSuite struct {
	suite.Suite
	db      *gorm.DB
	service *IngestService
	audit   *AuditService
	actor   *models.User
}

func (s *IngestServiceSuite) SetupTest() {
	s.db = setupTestDB(s.T())
	s.audit = NewAuditService(s.db)
	storage, err := NewStorageService(testConfig())
	s.Require().NoError(err)
	s.service = NewIngestService(s.db, s.audit, NewSupplierService(s.db, s.audit), storage)
	s.actor = createTestUser(s.T(), s.db, "joao", models.RoleCotador)
}

func (s *IngestServiceSuite) TestImportRequisitionsWithMetadataRow() {
	csv := "Titulo,Descricao,Departamento,Urgencia,Orcamento\n" +
		"EMPRESA: ACME Ltda,,,,\n" +
		"Notebook Dell,i7 16GB,TI,alta,\"4.500,00\"\n" +
		"Cadeiras ergonomicas,,RH,normal,800\n"

	result, err := s.service.ImportRequisitions(s.actor.ID, "requisicoes.csv", []byte(csv))
	s.Require().NoError(err)

	s.Equal(3, result.Processed)
	s.Equal(2, result.Created)
	s.Equal(1, result.Skipped)
	s.Empty(result.Errors)

	var requests []models.QuotationRequest
	s.Require().NoError(s.db.Order("request_number ASC").Find(&requests).Error)
	s.Require().Len(requests, 2)

	s.Equal("Notebook Dell", requests[0].Title)
	s.Equal(models.RequestStatusDraft, requests[0].Status)
	s.Equal(models.UrgencyHigh, requests[0].Urgency)
	s.Require().NotNil(requests[0].TotalBudget)
	s.InDelta(4500.0, *requests[0].TotalBudget, 0.001)

	s.Equal("Cadeiras ergonomicas", requests[1].Title)
	s.NotEqual(requests[0].RequestNumber, requests[1].RequestNumber)
}

func (s *IngestServiceSuite) TestImportRequisitionsUnparseableBudgetDegrades() {
	csv := "Titulo,Orcamento\nCabos de rede,a combinar\n"

	result, err := s.service.ImportRequisitions(s.actor.ID, "req.csv", []byte(csv))
	s.Require().NoError(err)
	s.Equal(1, result.Created)
	s.Empty(result.Errors)

	var request models.QuotationRequest
	s.Require().NoError(s.db.First(&request).Error)
	s.Nil(request.TotalBudget)
}

func (s *IngestServiceSuite) TestImportRequisitionsSemicolonCSV() {
	csv := "Titulo;Departamento;Orcamento\nMonitores;TI;1.200,50\n"

	result, err := s.service.ImportRequisitions(s.actor.ID, "req.csv", []byte(csv))
	s.Require().NoError(err)
	s.Equal(1, result.Created)

	var request models.QuotationRequest
	s.Require().NoError(s.db.First(&request).Error)
	s.Equal("TI", request.Department)
	s.Require().NotNil(request.TotalBudget)
	s.InDelta(1200.50, *request.TotalBudget, 0.001)
}

func (s *IngestServiceSuite) TestImportRequisitionsWritesOneBatchAuditRow() {
	csv := "Titulo\nImpressoras\nScanners\n"

	_, err := s.service.ImportRequisitions(s.actor.ID, "lote.csv", []byte(csv))
	s.Require().NoError(err)

	logs, err := s.audit.List(nil, "quotation_request", 0)
	s.Require().NoError(err)

	var batchLogs []models.AuditLog
	for _, entry := range logs {
		if entry.Action == "import_requisitions" {
			batchLogs = append(batchLogs, entry)
		}
	}
	s.Require().Len(batchLogs, 1)
	s.Equal("lote.csv", batchLogs[0].NewValues["filename"])
}

func (s *IngestServiceSuite) TestImportSupplierQuotationsCreatesSupplierAndUpserts() {
	request := &models.QuotationRequest{
		RequestNumber: "REQ-202608-001",
		RequesterID:   s.actor.ID,
		Title:         "Notebooks",
		Status:        models.RequestStatusDraft,
	}
	s.Require().NoError(s.db.Create(request).Error)

	csv := "Fornecedor,Requisicao,Valor Total,Prazo de Entrega,Pagamento\n" +
		"Beta Comercial,REQ-202608-001,\"9.999,90\",15 dias,30/60\n"

	result, err := s.service.ImportSupplierQuotations(s.actor.ID, "cotacoes.csv", []byte(csv))
	s.Require().NoError(err)
	s.Equal(1, result.Created)
	s.Empty(result.Errors)

	var supplier models.Supplier
	s.Require().NoError(s.db.First(&supplier, "name = ?", "Beta Comercial").Error)
	s.Equal(models.SupplierStatusPending, supplier.Status)

	var quotation models.SupplierQuotation
	s.Require().NoError(s.db.First(&quotation, "request_id = ?", request.ID).Error)
	s.InDelta(9999.90, quotation.TotalAmount, 0.001)
	s.Equal(15, quotation.DeliveryDays)

	// The first quotation moves the draft request forward.
	var reloaded models.QuotationRequest
	s.Require().NoError(s.db.First(&reloaded, "id = ?", request.ID).Error)
	s.Equal(models.RequestStatusInQuotation, reloaded.Status)

	// Re-importing the same pair updates in place instead of duplicating.
	csv2 := "Fornecedor,Requisicao,Valor Total\nBeta Comercial,REQ-202608-001,8500\n"
	result, err = s.service.ImportSupplierQuotations(s.actor.ID, "cotacoes2.csv", []byte(csv2))
	s.Require().NoError(err)
	s.Equal(1, result.Created)

	var count int64
	s.Require().NoError(s.db.Model(&models.SupplierQuotation{}).Where("request_id = ?", request.ID).Count(&count).Error)
	s.Equal(int64(1), count)

	s.Require().NoError(s.db.First(&quotation, "request_id = ?", request.ID).Error)
	s.InDelta(8500.0, quotation.TotalAmount, 0.001)
}

func (s *IngestServiceSuite) TestImportSupplierQuotationsUnknownRequestIsRowError() {
	csv := "Fornecedor,Requisicao,Valor\nGamma Tech,REQ-209901-001,1000\n"

	result, err := s.service.ImportSupplierQuotations(s.actor.ID, "cotacoes.csv", []byte(csv))
	s.Require().NoError(err)

	s.Equal(1, result.Processed)
	s.Equal(0, result.Created)
	s.Require().Len(result.Errors, 1)
	s.Contains(result.Errors[0], "linha 1")
	s.Contains(result.Errors[0], "REQ-209901-001")

	// The named supplier was still created; batches do not roll back.
	var count int64
	s.Require().NoError(s.db.Model(&models.Supplier{}).Where("name = ?", "Gamma Tech").Count(&count).Error)
	s.Equal(int64(1), count)
}

func (s *IngestServiceSuite) TestImportRejectsUnsupportedExtension() {
	_, err := s.service.ImportRequisitions(s.actor.ID, "dados.pdf", []byte("%PDF-1.4"))
	s.ErrorIs(err, ErrInvalidInput)
}

func TestIngestServiceSuite(t *testing.T) {
	suite.Run(t, new(IngestServiceSuite))
}

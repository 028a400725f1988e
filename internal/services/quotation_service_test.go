// internal/services/quotation_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/compranet/compras-backend/internal/models"
	"github.com/compranet/compras-backend/internal/utils"
)

type QuotationLifecycleSuite struct {
	suite.Suite
	db      *gorm.DB
	service *QuotationService
	audit   *AuditService

	requester *models.User
	cotador   *models.User
	aprovador *models.User
	supplier  *models.Supplier
}

func (s *QuotationLifecycleSuite) SetupTest() {
	s.db = setupTestDB(s.T())
	s.service = newQuotationService(s.db)
	s.audit = NewAuditService(s.db)

	s.requester = createTestUser(s.T(), s.db, "maria", models.RoleRequisitante)
	s.cotador = createTestUser(s.T(), s.db, "joao", models.RoleCotador)
	s.aprovador = createTestUser(s.T(), s.db, "ana", models.RoleAprovador)
	s.supplier = createTestSupplier(s.T(), s.db, "ACME Suprimentos")
}

func (s *QuotationLifecycleSuite) createRequest(title string) *models.QuotationRequest {
	request, err := s.service.CreateRequest(s.requester.ID, &CreateRequestRequest{
		Title:      title,
		Department: "TI",
		Urgency:    "normal",
	})
	s.Require().NoError(err)
	return request
}

func (s *QuotationLifecycleSuite) submitQuotation(requestID uuid.UUID, amount float64, days int) *models.SupplierQuotation {
	quotation, err := s.service.SubmitQuotation(s.cotador.ID, requestID, &SubmitQuotationRequest{
		SupplierID:   s.supplier.ID,
		TotalAmount:  amount,
		DeliveryDays: days,
	})
	s.Require().NoError(err)
	return quotation
}

func (s *QuotationLifecycleSuite) TestCreateRequestNumbering() {
	now := time.Now()

	first := s.createRequest("Notebooks")
	second := s.createRequest("Monitores")

	s.Equal(utils.FormatSequence("REQ", now, 1), first.RequestNumber)
	s.Equal(utils.FormatSequence("REQ", now, 2), second.RequestNumber)
	s.Equal(models.RequestStatusDraft, first.Status)

	logs, err := s.audit.List(&first.ID, "quotation_request", 0)
	s.Require().NoError(err)
	s.Len(logs, 1)
	s.Equal("create", logs[0].Action)
}

func (s *QuotationLifecycleSuite) TestFirstQuotationAdvancesToInQuotation() {
	request := s.createRequest("Cadeiras")

	s.submitQuotation(request.ID, 1500, 10)

	reloaded, err := s.service.GetRequest(request.ID)
	s.Require().NoError(err)
	s.Equal(models.RequestStatusInQuotation, reloaded.Status)

	var supplier models.Supplier
	s.Require().NoError(s.db.First(&supplier, "id = ?", s.supplier.ID).Error)
	s.Equal(1, supplier.TotalQuotations)

	// A second quotation does not change the status again.
	other := createTestSupplier(s.T(), s.db, "Beta Comercial")
	_, err = s.service.SubmitQuotation(s.cotador.ID, request.ID, &SubmitQuotationRequest{
		SupplierID:  other.ID,
		TotalAmount: 1400,
	})
	s.Require().NoError(err)

	reloaded, err = s.service.GetRequest(request.ID)
	s.Require().NoError(err)
	s.Equal(models.RequestStatusInQuotation, reloaded.Status)
	s.Len(reloaded.Quotations, 2)
}

func (s *QuotationLifecycleSuite) TestSubmitQuotationRejectedAfterSelection() {
	request := s.createRequest("Impressoras")
	quotation := s.submitQuotation(request.ID, 900, 5)

	_, err := s.service.SelectQuotation(s.cotador.ID, quotation.ID)
	s.Require().NoError(err)

	_, err = s.service.SubmitQuotation(s.cotador.ID, request.ID, &SubmitQuotationRequest{
		SupplierID:  s.supplier.ID,
		TotalAmount: 800,
	})
	s.ErrorIs(err, ErrInvalidTransition)
}

func (s *QuotationLifecycleSuite) TestSelectQuotationLeavesExactlyOneSelected() {
	request := s.createRequest("Servidores")
	first := s.submitQuotation(request.ID, 50000, 30)

	other := createTestSupplier(s.T(), s.db, "Gamma Tech")
	second, err := s.service.SubmitQuotation(s.cotador.ID, request.ID, &SubmitQuotationRequest{
		SupplierID:   other.ID,
		TotalAmount:  48000,
		DeliveryDays: 20,
	})
	s.Require().NoError(err)

	_, err = s.service.SelectQuotation(s.cotador.ID, first.ID)
	s.Require().NoError(err)
	_, err = s.service.SelectQuotation(s.cotador.ID, second.ID)
	s.Require().NoError(err)

	var selected []models.SupplierQuotation
	s.Require().NoError(s.db.Where("request_id = ? AND is_selected = ?", request.ID, true).Find(&selected).Error)
	s.Require().Len(selected, 1)
	s.Equal(second.ID, selected[0].ID)

	reloaded, err := s.service.GetRequest(request.ID)
	s.Require().NoError(err)
	s.Equal(models.RequestStatusAwaitingApproval, reloaded.Status)
	s.Require().NotNil(reloaded.TotalBudget)
	s.InDelta(48000.0, *reloaded.TotalBudget, 0.001)
}

func (s *QuotationLifecycleSuite) TestSelectQuotationOnDraftFails() {
	request := s.createRequest("Teclados")

	quotation := &models.SupplierQuotation{
		RequestID:   request.ID,
		SupplierID:  s.supplier.ID,
		TotalAmount: 300,
	}
	s.Require().NoError(s.db.Create(quotation).Error)

	_, err := s.service.SelectQuotation(s.cotador.ID, quotation.ID)
	s.ErrorIs(err, ErrInvalidTransition)
}

func (s *QuotationLifecycleSuite) TestApproveRecordsApproverAndAmount() {
	request := s.createRequest("Licenças de software")
	quotation := s.submitQuotation(request.ID, 12000, 0)
	_, err := s.service.SelectQuotation(s.cotador.ID, quotation.ID)
	s.Require().NoError(err)

	amount := 11500.0
	approved, err := s.service.Approve(s.aprovador.ID, request.ID, &amount)
	s.Require().NoError(err)

	s.Equal(models.RequestStatusApproved, approved.Status)
	s.Require().NotNil(approved.ApproverID)
	s.Equal(s.aprovador.ID, *approved.ApproverID)
	s.Require().NotNil(approved.ApprovedAmount)
	s.InDelta(11500.0, *approved.ApprovedAmount, 0.001)
	s.NotNil(approved.ApprovedAt)
}

func (s *QuotationLifecycleSuite) TestApproveRequiresAwaitingApproval() {
	request := s.createRequest("Material de escritório")

	_, err := s.service.Approve(s.aprovador.ID, request.ID, nil)
	s.ErrorIs(err, ErrInvalidTransition)
}

func (s *QuotationLifecycleSuite) TestApproveThenRejectKeepsFullAuditHistory() {
	request := s.createRequest("Ar condicionado")
	quotation := s.submitQuotation(request.ID, 7000, 12)
	_, err := s.service.SelectQuotation(s.cotador.ID, quotation.ID)
	s.Require().NoError(err)

	_, err = s.service.Approve(s.aprovador.ID, request.ID, nil)
	s.Require().NoError(err)

	rejected, err := s.service.Reject(s.aprovador.ID, request.ID, "orçamento estourado")
	s.Require().NoError(err)
	s.Equal(models.RequestStatusRejected, rejected.Status)
	s.Equal("orçamento estourado", rejected.RejectionReason)

	logs, err := s.audit.List(&request.ID, "quotation_request", 0)
	s.Require().NoError(err)

	actions := make(map[string]int)
	for _, entry := range logs {
		actions[entry.Action]++
	}

	s.Equal(1, actions["approve"])
	s.Equal(1, actions["reject"])
	s.GreaterOrEqual(len(logs), 4) // create, select, approve, reject
}

func (s *QuotationLifecycleSuite) TestRejectRequiresAwaitingOrApproved() {
	request := s.createRequest("Toner")

	_, err := s.service.Reject(s.aprovador.ID, request.ID, "sem verba")
	s.ErrorIs(err, ErrInvalidTransition)
}

func (s *QuotationLifecycleSuite) TestUpdateRequestRefusedOnTerminalStatus() {
	request := s.createRequest("Projetores")
	quotation := s.submitQuotation(request.ID, 4000, 7)
	_, err := s.service.SelectQuotation(s.cotador.ID, quotation.ID)
	s.Require().NoError(err)
	_, err = s.service.Approve(s.aprovador.ID, request.ID, nil)
	s.Require().NoError(err)

	_, err = s.service.UpdateRequest(s.requester.ID, request.ID, &UpdateRequestRequest{Title: "Projetores 4K"})
	s.ErrorIs(err, ErrInvalidTransition)
}

func (s *QuotationLifecycleSuite) TestListRequestsFiltersByRequester() {
	s.createRequest("Mesas")

	otherUser := createTestUser(s.T(), s.db, "pedro", models.RoleRequisitante)
	_, err := s.service.CreateRequest(otherUser.ID, &CreateRequestRequest{Title: "Armários"})
	s.Require().NoError(err)

	mine, err := s.service.ListRequests(RequestFilter{RequesterID: &s.requester.ID})
	s.Require().NoError(err)
	s.Len(mine, 1)
	s.Equal("Mesas", mine[0].Title)

	all, err := s.service.ListRequests(RequestFilter{})
	s.Require().NoError(err)
	s.Len(all, 2)
}

func (s *QuotationLifecycleSuite) TestGetRequestNotFound() {
	_, err := s.service.GetRequest(s.requester.ID) // a user id, not a request id
	assert.ErrorIs(s.T(), err, ErrNotFound)
}

func TestQuotationLifecycleSuite(t *testing.T) {
	suite.Run(t, new(QuotationLifecycleSuite))
}

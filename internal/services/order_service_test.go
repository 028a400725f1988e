// internal/services/order_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/compranet/compras-backend/internal/models"
	"github.com/compranet/compras-backend/internal/utils"
)

type OrderServiceSuite struct {
	suite.Suite
	db         *gorm.DB
	orders     *OrderService
	quotations *QuotationService

	requester *models.User
	cotador   *models.User
	aprovador *models.User
	supplier  *models.Supplier
}

func (s *OrderServiceSuite) SetupTest() {
	s.db = setupTestDB(s.T())
	s.orders = NewOrderService(s.db, NewAuditService(s.db))
	s.quotations = newQuotationService(s.db)

	s.requester = createTestUser(s.T(), s.db, "maria", models.RoleRequisitante)
	s.cotador = createTestUser(s.T(), s.db, "joao", models.RoleCotador)
	s.aprovador = createTestUser(s.T(), s.db, "ana", models.RoleAprovador)
	s.supplier = createTestSupplier(s.T(), s.db, "ACME Suprimentos")
}

// approvedRequest drives a request through the full lifecycle up to
// aprovado with one selected quotation.
func (s *OrderServiceSuite) approvedRequest(deliveryDays int) *models.QuotationRequest {
	request, err := s.quotations.CreateRequest(s.requester.ID, &CreateRequestRequest{Title: "Estações de trabalho"})
	s.Require().NoError(err)

	quotation, err := s.quotations.SubmitQuotation(s.cotador.ID, request.ID, &SubmitQuotationRequest{
		SupplierID:   s.supplier.ID,
		TotalAmount:  25000,
		DeliveryDays: deliveryDays,
	})
	s.Require().NoError(err)

	_, err = s.quotations.SelectQuotation(s.cotador.ID, quotation.ID)
	s.Require().NoError(err)

	approved, err := s.quotations.Approve(s.aprovador.ID, request.ID, nil)
	s.Require().NoError(err)
	return approved
}

func (s *OrderServiceSuite) TestGenerateOrderHappyPath() {
	request := s.approvedRequest(15)

	order, err := s.orders.GenerateOrder(s.aprovador.ID, request.ID, &GenerateOrderRequest{
		DeliveryAddress: "Av. Paulista 1000, São Paulo",
	})
	s.Require().NoError(err)

	s.Equal(utils.FormatSequence("PO", time.Now(), 1), order.OrderNumber)
	s.Equal(models.OrderStatusPending, order.Status)
	s.Equal(s.supplier.ID, order.SupplierID)
	s.InDelta(25000.0, order.TotalAmount, 0.001)

	s.Require().NotNil(order.ExpectedDeliveryDate)
	expected := time.Now().AddDate(0, 0, 15)
	s.WithinDuration(expected, *order.ExpectedDeliveryDate, time.Minute)
}

func (s *OrderServiceSuite) TestGenerateOrderUsesApprovedAmount() {
	request := s.approvedRequest(5)
	amount := 24000.0
	s.Require().NoError(s.db.Model(request).Update("approved_amount", amount).Error)

	order, err := s.orders.GenerateOrder(s.aprovador.ID, request.ID, &GenerateOrderRequest{})
	s.Require().NoError(err)
	s.InDelta(24000.0, order.TotalAmount, 0.001)
}

func (s *OrderServiceSuite) TestGenerateOrderRequiresApprovedStatus() {
	request, err := s.quotations.CreateRequest(s.requester.ID, &CreateRequestRequest{Title: "Nobreaks"})
	s.Require().NoError(err)

	_, err = s.orders.GenerateOrder(s.aprovador.ID, request.ID, &GenerateOrderRequest{})
	s.ErrorIs(err, ErrInvalidTransition)
}

func (s *OrderServiceSuite) TestGenerateOrderRequiresSelectedQuotation() {
	request, err := s.quotations.CreateRequest(s.requester.ID, &CreateRequestRequest{Title: "Switches"})
	s.Require().NoError(err)

	// Force aprovado without ever selecting a quotation.
	s.Require().NoError(s.db.Model(request).Update("status", models.RequestStatusApproved).Error)

	_, err = s.orders.GenerateOrder(s.aprovador.ID, request.ID, &GenerateOrderRequest{})
	s.ErrorIs(err, ErrNoSelectedQuotation)
}

func (s *OrderServiceSuite) TestGenerateOrderNumbersIncrement() {
	first := s.approvedRequest(3)

	second, err := s.quotations.CreateRequest(s.requester.ID, &CreateRequestRequest{Title: "Roteadores"})
	s.Require().NoError(err)
	quotation, err := s.quotations.SubmitQuotation(s.cotador.ID, second.ID, &SubmitQuotationRequest{
		SupplierID:  s.supplier.ID,
		TotalAmount: 8000,
	})
	s.Require().NoError(err)
	_, err = s.quotations.SelectQuotation(s.cotador.ID, quotation.ID)
	s.Require().NoError(err)
	_, err = s.quotations.Approve(s.aprovador.ID, second.ID, nil)
	s.Require().NoError(err)

	now := time.Now()
	orderA, err := s.orders.GenerateOrder(s.aprovador.ID, first.ID, &GenerateOrderRequest{})
	s.Require().NoError(err)
	orderB, err := s.orders.GenerateOrder(s.aprovador.ID, second.ID, &GenerateOrderRequest{})
	s.Require().NoError(err)

	s.Equal(utils.FormatSequence("PO", now, 1), orderA.OrderNumber)
	s.Equal(utils.FormatSequence("PO", now, 2), orderB.OrderNumber)
}

func (s *OrderServiceSuite) TestGetOrderNotFound() {
	_, err := s.orders.Get(s.requester.ID)
	s.ErrorIs(err, ErrNotFound)
}

func TestOrderServiceSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceSuite))
}

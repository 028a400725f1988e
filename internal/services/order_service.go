// internal/services/order_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/compranet/compras-backend/internal/models"
)

// OrderService turns approved requests into purchase orders.
type OrderService struct {
	db    *gorm.DB
	audit *AuditService
}

type GenerateOrderRequest struct {
	DeliveryAddress string `json:"delivery_address"`
	Notes           string `json:"notes"`
}

func NewOrderService(db *gorm.DB, audit *AuditService) *OrderService {
	return &OrderService{db: db, audit: audit}
}

// GenerateOrder creates a purchase order for an approved request. The
// request must be aprovado and carry exactly one selected quotation;
// the expected delivery date is derived from that quotation's lead time.
func (s *OrderService) GenerateOrder(actorID, requestID uuid.UUID, req *GenerateOrderRequest) (*models.PurchaseOrder, error) {
	var request models.QuotationRequest
	err := s.db.Preload("Requester").First(&request, "id = ?", requestID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if request.Status != models.RequestStatusApproved {
		return nil, fmt.Errorf("%w: request is %s", ErrInvalidTransition, request.Status)
	}

	var quotation models.SupplierQuotation
	err = s.db.Preload("Supplier").
		Where("request_id = ? AND is_selected = ?", request.ID, true).
		First(&quotation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoSelectedQuotation
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	amount := quotation.TotalAmount
	if request.ApprovedAmount != nil {
		amount = *request.ApprovedAmount
	}

	order := &models.PurchaseOrder{
		RequestID:       request.ID,
		QuotationID:     quotation.ID,
		SupplierID:      quotation.SupplierID,
		TotalAmount:     amount,
		Status:          models.OrderStatusPending,
		DeliveryAddress: req.DeliveryAddress,
		Notes:           req.Notes,
		CreatedByID:     actorID,
	}
	if quotation.DeliveryDays > 0 {
		expected := time.Now().AddDate(0, 0, quotation.DeliveryDays)
		order.ExpectedDeliveryDate = &expected
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		order.OrderNumber = nextDocumentNumber(tx, &models.PurchaseOrder{}, "order_number", "PO")
		return tx.Create(order).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create purchase order: %w", err)
	}

	s.audit.Record(&actorID, "generate_order", "purchase_order", &order.ID, nil, map[string]interface{}{
		"order_number":   order.OrderNumber,
		"request_number": request.RequestNumber,
		"supplier":       quotation.Supplier.Name,
		"total_amount":   order.TotalAmount,
	})

	order.Supplier = quotation.Supplier
	order.Request = request
	return order, nil
}

func (s *OrderService) List(status string) ([]models.PurchaseOrder, error) {
	query := s.db.Preload("Supplier").Preload("Request").Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var orders []models.PurchaseOrder
	if err := query.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}
	return orders, nil
}

func (s *OrderService) Get(id uuid.UUID) (*models.PurchaseOrder, error) {
	var order models.PurchaseOrder
	err := s.db.Preload("Supplier").Preload("Request").Preload("Quotation").
		First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &order, nil
}


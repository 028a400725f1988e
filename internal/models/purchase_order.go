// internal/models/purchase_order.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type PurchaseOrder struct {
	BaseModel
	OrderNumber          string      `json:"order_number" gorm:"uniqueIndex;size:20;not null"`
	RequestID            uuid.UUID   `json:"request_id" gorm:"type:uuid;not null;index"`
	QuotationID          uuid.UUID   `json:"quotation_id" gorm:"type:uuid;not null"`
	SupplierID           uuid.UUID   `json:"supplier_id" gorm:"type:uuid;not null;index"`
	TotalAmount          float64     `json:"total_amount" gorm:"type:decimal(12,2);not null"`
	Status               OrderStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	DeliveryAddress      string      `json:"delivery_address" gorm:"type:text"`
	Notes                string      `json:"notes" gorm:"type:text"`
	ExpectedDeliveryDate *time.Time  `json:"expected_delivery_date"`
	CreatedByID          uuid.UUID   `json:"created_by_id" gorm:"type:uuid;not null"`

	// Relationships
	Request   QuotationRequest  `json:"request,omitempty" gorm:"foreignKey:RequestID"`
	Quotation SupplierQuotation `json:"quotation,omitempty" gorm:"foreignKey:QuotationID"`
	Supplier  Supplier          `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`
	CreatedBy User              `json:"created_by,omitempty" gorm:"foreignKey:CreatedByID"`
}

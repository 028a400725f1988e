// internal/models/quotation.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type QuotationRequest struct {
	BaseModel
	RequestNumber   string        `json:"request_number" gorm:"uniqueIndex;size:20;not null"`
	RequesterID     uuid.UUID     `json:"requester_id" gorm:"type:uuid;not null;index"`
	Title           string        `json:"title" gorm:"size:255;not null"`
	Description     string        `json:"description" gorm:"type:text"`
	Department      string        `json:"department" gorm:"size:100"`
	Urgency         Urgency       `json:"urgency" gorm:"type:varchar(20);default:'normal'"`
	Status          RequestStatus `json:"status" gorm:"type:varchar(30);default:'rascunho';index"`
	TotalBudget     *float64      `json:"total_budget" gorm:"type:decimal(12,2)"`
	ApprovedAmount  *float64      `json:"approved_amount" gorm:"type:decimal(12,2)"`
	ApproverID      *uuid.UUID    `json:"approver_id" gorm:"type:uuid;index"`
	ApprovedAt      *time.Time    `json:"approved_at"`
	RejectionReason string        `json:"rejection_reason" gorm:"type:text"`
	NeededBy        *time.Time    `json:"needed_by"`

	// Relationships
	Requester User                `json:"requester,omitempty" gorm:"foreignKey:RequesterID"`
	Approver  *User               `json:"approver,omitempty" gorm:"foreignKey:ApproverID"`
	Quotations []SupplierQuotation `json:"quotations,omitempty" gorm:"foreignKey:RequestID"`
}

// Each supplier prices one request; at most one quotation per request may be
// selected, enforced in QuotationService.SelectQuotation.
type SupplierQuotation struct {
	BaseModel
	RequestID    uuid.UUID `json:"request_id" gorm:"type:uuid;not null;index"`
	SupplierID   uuid.UUID `json:"supplier_id" gorm:"type:uuid;not null;index"`
	TotalAmount  float64   `json:"total_amount" gorm:"type:decimal(12,2);not null"`
	DeliveryDays int       `json:"delivery_days" gorm:"default:0"`
	PaymentTerms string    `json:"payment_terms" gorm:"size:255"`
	Notes        string    `json:"notes" gorm:"type:text"`
	IsSelected   bool      `json:"is_selected" gorm:"default:false;index"`

	// Relationships
	Request  QuotationRequest `json:"request,omitempty" gorm:"foreignKey:RequestID"`
	Supplier Supplier         `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`
}

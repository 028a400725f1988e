// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// IDs are generated client-side so the sqlite fallback store works
// without gen_random_uuid().
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// JSONB type, stored as jsonb on PostgreSQL and as text on sqlite
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type UserRole string

const (
	RoleAdmin        UserRole = "admin"
	RoleRequisitante UserRole = "requisitante"
	RoleCotador      UserRole = "cotador"
	RoleAprovador    UserRole = "aprovador"
)

type SupplierStatus string

const (
	SupplierStatusActive   SupplierStatus = "active"
	SupplierStatusInactive SupplierStatus = "inactive"
	SupplierStatusPending  SupplierStatus = "pending"
	SupplierStatusBlocked  SupplierStatus = "blocked"
)

type RequestStatus string

const (
	RequestStatusDraft            RequestStatus = "rascunho"
	RequestStatusInQuotation      RequestStatus = "em_cotacao"
	RequestStatusAwaitingApproval RequestStatus = "aguardando_aprovacao"
	RequestStatusApproved         RequestStatus = "aprovado"
	RequestStatusRejected         RequestStatus = "rejeitado"
	RequestStatusCancelled        RequestStatus = "cancelado"
)

// Terminal reports whether no further transitions are allowed from s.
func (s RequestStatus) Terminal() bool {
	return s == RequestStatusApproved || s == RequestStatusRejected || s == RequestStatusCancelled
}

type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyNormal   Urgency = "normal"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusSent      OrderStatus = "sent"
	OrderStatusReceived  OrderStatus = "received"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// internal/models/supplier.go
package models

type Supplier struct {
	BaseModel
	Name            string         `json:"name" gorm:"size:255;not null;index"`
	CNPJ            string         `json:"cnpj" gorm:"size:20;index"`
	Email           string         `json:"email" gorm:"size:255"`
	Phone           string         `json:"phone" gorm:"size:50"`
	ContactPerson   string         `json:"contact_person" gorm:"size:255"`
	Address         string         `json:"address" gorm:"type:text"`
	Status          SupplierStatus `json:"status" gorm:"type:varchar(20);default:'active';index"`
	Rating          float64        `json:"rating" gorm:"type:decimal(3,2);default:0"`
	TotalQuotations int            `json:"total_quotations" gorm:"default:0"`
	Notes           string         `json:"notes" gorm:"type:text"`

	// Relationships
	Quotations []SupplierQuotation `json:"quotations,omitempty" gorm:"foreignKey:SupplierID"`
}

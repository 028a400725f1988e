// internal/models/product.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Category struct {
	BaseModel
	Name        string `json:"name" gorm:"uniqueIndex;size:100;not null"`
	Description string `json:"description" gorm:"type:text"`

	// Relationships
	Products []Product `json:"products,omitempty" gorm:"foreignKey:CategoryID"`
}

type Product struct {
	BaseModel
	Name          string     `json:"name" gorm:"size:255;not null;index"`
	Description   string     `json:"description" gorm:"type:text"`
	Unit          string     `json:"unit" gorm:"size:20;default:'un'"`
	CategoryID    *uuid.UUID `json:"category_id" gorm:"type:uuid;index"`
	LastPrice     float64    `json:"last_price" gorm:"type:decimal(12,2);default:0"`
	AveragePrice  float64    `json:"average_price" gorm:"type:decimal(12,2);default:0"`
	LastPurchase  *time.Time `json:"last_purchase"`
	Specification JSONB      `json:"specification" gorm:"type:jsonb"`

	// Relationships
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

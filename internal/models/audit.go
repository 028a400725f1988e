// internal/models/audit.go
package models

import (
	"github.com/google/uuid"
)

// AuditLog rows are append-only; nothing in the codebase updates or
// deletes them.
type AuditLog struct {
	BaseModel
	UserID     *uuid.UUID `json:"user_id" gorm:"type:uuid;index"`
	Action     string     `json:"action" gorm:"size:100;not null;index"`
	EntityType string     `json:"entity_type" gorm:"size:50;not null;index"`
	EntityID   *uuid.UUID `json:"entity_id" gorm:"type:uuid;index"`
	OldValues  JSONB      `json:"old_values" gorm:"type:jsonb"`
	NewValues  JSONB      `json:"new_values" gorm:"type:jsonb"`
	IPAddress  string     `json:"ip_address" gorm:"size:45"`
	UserAgent  string     `json:"user_agent" gorm:"type:text"`

	// Relationships
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// AiAnalysis caches one generated insight per entity; regenerated when stale.
type AiAnalysis struct {
	BaseModel
	EntityType string     `json:"entity_type" gorm:"size:50;not null;uniqueIndex:idx_ai_entity"`
	EntityID   *uuid.UUID `json:"entity_id" gorm:"type:uuid;uniqueIndex:idx_ai_entity"`
	Content    string     `json:"content" gorm:"type:text;not null"`
	Model      string     `json:"model" gorm:"size:100"`
	Payload    JSONB      `json:"payload" gorm:"type:jsonb"`
}

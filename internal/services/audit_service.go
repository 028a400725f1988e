// internal/services/audit_service.go
package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/compranet/compras-backend/internal/models"
)

// AuditService appends one log row per state-changing action. The audit
// table is the system's only durable history; rows are never updated.
type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// Record writes a single audit row. It is best-effort: a failed write is
// logged and never fails the action being audited.
func (s *AuditService) Record(userID *uuid.UUID, action, entityType string, entityID *uuid.UUID, oldValues, newValues map[string]interface{}) {
	auditLog := &models.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		OldValues:  models.JSONB(oldValues),
		NewValues:  models.JSONB(newValues),
	}

	if err := s.db.Create(auditLog).Error; err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"action":      action,
			"entity_type": entityType,
		}).Error("Failed to write audit log")
	}
}

// List returns audit history, newest first, optionally filtered by entity.
func (s *AuditService) List(entityID *uuid.UUID, entityType string, limit int) ([]models.AuditLog, error) {
	query := s.db.Model(&models.AuditLog{}).Preload("User").Order("created_at DESC")

	if entityID != nil {
		query = query.Where("entity_id = ?", *entityID)
	}
	if entityType != "" {
		query = query.Where("entity_type = ?", entityType)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var logs []models.AuditLog
	if err := query.Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch audit logs: %w", err)
	}

	return logs, nil
}

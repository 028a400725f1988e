// internal/services/dashboard_service.go
package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/compranet/compras-backend/internal/models"
)

// DashboardService aggregates the numbers the procurement dashboard
// shows and feeds them to the AI insight generator.
type DashboardService struct {
	db *gorm.DB
	ai *AIService
}

type DashboardStats struct {
	ApprovedThisMonth  float64 `json:"approved_this_month"`
	RequestsInProgress int64   `json:"requests_in_progress"`
	ActiveSuppliers    int64   `json:"active_suppliers"`
	PendingApprovals   int64   `json:"pending_approvals"`
	EstimatedSavings   float64 `json:"estimated_savings"`
}

// Negotiated savings are not tracked per quotation yet, so the
// dashboard reports a fixed fraction of the approved volume.
const estimatedSavingsRate = 0.08

func NewDashboardService(db *gorm.DB, ai *AIService) *DashboardService {
	return &DashboardService{db: db, ai: ai}
}

func (s *DashboardService) GetStats() (*DashboardStats, error) {
	stats := &DashboardStats{}
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	err := s.db.Model(&models.QuotationRequest{}).
		Where("status = ? AND approved_at >= ?", models.RequestStatusApproved, monthStart).
		Select("COALESCE(SUM(approved_amount), 0)").
		Scan(&stats.ApprovedThisMonth).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate approved amount: %w", err)
	}

	err = s.db.Model(&models.QuotationRequest{}).
		Where("status IN ?", []models.RequestStatus{models.RequestStatusDraft, models.RequestStatusInQuotation}).
		Count(&stats.RequestsInProgress).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count requests: %w", err)
	}

	err = s.db.Model(&models.Supplier{}).
		Where("status = ?", models.SupplierStatusActive).
		Count(&stats.ActiveSuppliers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count suppliers: %w", err)
	}

	err = s.db.Model(&models.QuotationRequest{}).
		Where("status = ?", models.RequestStatusAwaitingApproval).
		Count(&stats.PendingApprovals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count pending approvals: %w", err)
	}

	stats.EstimatedSavings = stats.ApprovedThisMonth * estimatedSavingsRate

	return stats, nil
}

func (s *DashboardService) GetInsights() (*models.AiAnalysis, error) {
	stats, err := s.GetStats()
	if err != nil {
		return nil, err
	}

	return s.ai.MonthlyInsights(map[string]interface{}{
		"approved_this_month":  stats.ApprovedThisMonth,
		"requests_in_progress": stats.RequestsInProgress,
		"active_suppliers":     stats.ActiveSuppliers,
		"pending_approvals":    stats.PendingApprovals,
	})
}

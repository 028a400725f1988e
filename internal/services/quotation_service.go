// internal/services/quotation_service.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/compranet/compras-backend/internal/models"
	"github.com/compranet/compras-backend/internal/utils"
)

// QuotationService drives the request lifecycle:
// rascunho -> em_cotacao -> aguardando_aprovacao -> aprovado/rejeitado.
// Every transition writes one audit row; AI and email side effects run
// behind their own failure boundary and never fail the transition.
type QuotationService struct {
	db            *gorm.DB
	audit         *AuditService
	notifications *NotificationService
	ai            *AIService
}

type CreateRequestRequest struct {
	Title       string     `json:"title" validate:"required,min=3,max=255"`
	Description string     `json:"description"`
	Department  string     `json:"department" validate:"omitempty,max=100"`
	Urgency     string     `json:"urgency" validate:"urgency"`
	TotalBudget *float64   `json:"total_budget" validate:"omitempty,min=0"`
	NeededBy    *time.Time `json:"needed_by"`
}

type UpdateRequestRequest struct {
	Title       string     `json:"title,omitempty" validate:"omitempty,min=3,max=255"`
	Description string     `json:"description,omitempty"`
	Department  string     `json:"department,omitempty" validate:"omitempty,max=100"`
	Urgency     string     `json:"urgency,omitempty" validate:"urgency"`
	TotalBudget *float64   `json:"total_budget,omitempty" validate:"omitempty,min=0"`
	NeededBy    *time.Time `json:"needed_by,omitempty"`
}

type SubmitQuotationRequest struct {
	SupplierID   uuid.UUID `json:"supplier_id" validate:"required"`
	TotalAmount  float64   `json:"total_amount" validate:"required,gt=0"`
	DeliveryDays int       `json:"delivery_days" validate:"omitempty,min=0"`
	PaymentTerms string    `json:"payment_terms"`
	Notes        string    `json:"notes"`
}

type UpdateQuotationRequest struct {
	TotalAmount  *float64 `json:"total_amount,omitempty" validate:"omitempty,gt=0"`
	DeliveryDays *int     `json:"delivery_days,omitempty" validate:"omitempty,min=0"`
	PaymentTerms string   `json:"payment_terms,omitempty"`
	Notes        string   `json:"notes,omitempty"`
}

type RequestFilter struct {
	Status      string
	Search      string
	RequesterID *uuid.UUID
}

func NewQuotationService(db *gorm.DB, audit *AuditService, notifications *NotificationService, ai *AIService) *QuotationService {
	return &QuotationService{
		db:            db,
		audit:         audit,
		notifications: notifications,
		ai:            ai,
	}
}

// CreateRequest registers a new requisition in rascunho. The request
// number is allocated read-latest-then-increment inside the create
// transaction; the unique index on the column turns a concurrent
// duplicate into an insert error rather than silent corruption.
func (s *QuotationService) CreateRequest(requesterID uuid.UUID, req *CreateRequestRequest) (*models.QuotationRequest, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	var requester models.User
	if err := s.db.First(&requester, "id = ?", requesterID).Error; err != nil {
		return nil, fmt.Errorf("requester not found: %w", err)
	}

	request := &models.QuotationRequest{
		RequesterID: requesterID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Department:  req.Department,
		Urgency:     models.UrgencyNormal,
		Status:      models.RequestStatusDraft,
		TotalBudget: req.TotalBudget,
		NeededBy:    req.NeededBy,
	}
	if req.Urgency != "" {
		request.Urgency = models.Urgency(req.Urgency)
	}
	if request.Department == "" {
		request.Department = requester.Department
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		request.RequestNumber = nextDocumentNumber(tx, &models.QuotationRequest{}, "request_number", "REQ")
		return tx.Create(request).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	s.audit.Record(&requesterID, "create", "quotation_request", &request.ID, nil, map[string]interface{}{
		"request_number": request.RequestNumber,
		"title":          request.Title,
		"status":         request.Status,
	})

	// Best-effort AI analysis; creation already succeeded.
	go func(r models.QuotationRequest) {
		if _, err := s.ai.AnalyzeRequest(&r); err != nil {
			logrus.WithError(err).WithField("request", r.RequestNumber).Warn("AI analysis failed")
		}
	}(*request)

	return request, nil
}

func (s *QuotationService) ListRequests(filter RequestFilter) ([]models.QuotationRequest, error) {
	query := s.db.Model(&models.QuotationRequest{}).
		Preload("Requester").
		Order("created_at DESC")

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.RequesterID != nil {
		query = query.Where("requester_id = ?", *filter.RequesterID)
	}
	if filter.Search != "" {
		term := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(request_number) LIKE ? OR LOWER(department) LIKE ?", term, term, term)
	}

	var requests []models.QuotationRequest
	if err := query.Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch requests: %w", err)
	}
	return requests, nil
}

func (s *QuotationService) GetRequest(id uuid.UUID) (*models.QuotationRequest, error) {
	var request models.QuotationRequest
	err := s.db.Preload("Requester").Preload("Approver").
		Preload("Quotations").Preload("Quotations.Supplier").
		First(&request, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &request, nil
}

func (s *QuotationService) UpdateRequest(actorID, id uuid.UUID, req *UpdateRequestRequest) (*models.QuotationRequest, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	request, err := s.GetRequest(id)
	if err != nil {
		return nil, err
	}

	if request.Status.Terminal() {
		return nil, fmt.Errorf("%w: request is %s", ErrInvalidTransition, request.Status)
	}

	updates := make(map[string]interface{})
	if req.Title != "" {
		updates["title"] = strings.TrimSpace(req.Title)
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.Department != "" {
		updates["department"] = req.Department
	}
	if req.Urgency != "" {
		updates["urgency"] = req.Urgency
	}
	if req.TotalBudget != nil {
		updates["total_budget"] = *req.TotalBudget
	}
	if req.NeededBy != nil {
		updates["needed_by"] = *req.NeededBy
	}

	if len(updates) > 0 {
		if err := s.db.Model(request).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update request: %w", err)
		}
		s.audit.Record(&actorID, "update", "quotation_request", &request.ID, nil, updates)
	}

	return request, nil
}

// SubmitQuotation records a supplier's priced offer. The first quotation
// against a rascunho request advances it to em_cotacao and triggers the
// supplier notification fan-out (first 5 active, best-effort).
func (s *QuotationService) SubmitQuotation(actorID, requestID uuid.UUID, req *SubmitQuotationRequest) (*models.SupplierQuotation, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	request, err := s.GetRequest(requestID)
	if err != nil {
		return nil, err
	}

	if request.Status != models.RequestStatusDraft && request.Status != models.RequestStatusInQuotation {
		return nil, fmt.Errorf("%w: request is %s", ErrInvalidTransition, request.Status)
	}

	var supplier models.Supplier
	if err := s.db.First(&supplier, "id = ?", req.SupplierID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: supplier", ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	quotation := &models.SupplierQuotation{
		RequestID:    requestID,
		SupplierID:   req.SupplierID,
		TotalAmount:  req.TotalAmount,
		DeliveryDays: req.DeliveryDays,
		PaymentTerms: req.PaymentTerms,
		Notes:        req.Notes,
	}

	firstQuotation := request.Status == models.RequestStatusDraft

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(quotation).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Supplier{}).Where("id = ?", supplier.ID).
			UpdateColumn("total_quotations", gorm.Expr("total_quotations + 1")).Error; err != nil {
			return err
		}

		if firstQuotation {
			return tx.Model(request).Update("status", models.RequestStatusInQuotation).Error
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to submit quotation: %w", err)
	}

	s.audit.Record(&actorID, "submit_quotation", "supplier_quotation", &quotation.ID, nil, map[string]interface{}{
		"request_number": request.RequestNumber,
		"supplier":       supplier.Name,
		"total_amount":   quotation.TotalAmount,
	})

	if firstQuotation {
		s.audit.Record(&actorID, "status_change", "quotation_request", &request.ID,
			map[string]interface{}{"status": models.RequestStatusDraft},
			map[string]interface{}{"status": models.RequestStatusInQuotation})

		go s.notifyQuotationOpened(*request)
	}

	quotation.Supplier = supplier
	return quotation, nil
}

func (s *QuotationService) notifyQuotationOpened(request models.QuotationRequest) {
	var suppliers []models.Supplier
	err := s.db.Where("status = ?", models.SupplierStatusActive).
		Order("created_at ASC").Limit(5).
		Find(&suppliers).Error
	if err != nil {
		logrus.WithError(err).Warn("Failed to load suppliers for notification")
		return
	}

	if err := s.notifications.SendQuotationOpenedEmails(suppliers, &request); err != nil {
		logrus.WithError(err).WithField("request", request.RequestNumber).Warn("Quotation notification failed")
	}
}

func (s *QuotationService) ListQuotations(requestID uuid.UUID) ([]models.SupplierQuotation, error) {
	if _, err := s.GetRequest(requestID); err != nil {
		return nil, err
	}

	var quotations []models.SupplierQuotation
	err := s.db.Preload("Supplier").
		Where("request_id = ?", requestID).
		Order("total_amount ASC").
		Find(&quotations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quotations: %w", err)
	}
	return quotations, nil
}

func (s *QuotationService) UpdateQuotation(actorID, id uuid.UUID, req *UpdateQuotationRequest) (*models.SupplierQuotation, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	var quotation models.SupplierQuotation
	if err := s.db.Preload("Supplier").First(&quotation, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	updates := make(map[string]interface{})
	if req.TotalAmount != nil {
		updates["total_amount"] = *req.TotalAmount
	}
	if req.DeliveryDays != nil {
		updates["delivery_days"] = *req.DeliveryDays
	}
	if req.PaymentTerms != "" {
		updates["payment_terms"] = req.PaymentTerms
	}
	if req.Notes != "" {
		updates["notes"] = req.Notes
	}

	if len(updates) > 0 {
		if err := s.db.Model(&quotation).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update quotation: %w", err)
		}
		s.audit.Record(&actorID, "update", "supplier_quotation", &quotation.ID, nil, updates)
	}

	return &quotation, nil
}

// SelectQuotation marks one quotation as the chosen offer. The
// unselect-all / select-one / advance-status sequence runs in a single
// transaction so two concurrent selections cannot leave the request
// with more than one selected quotation.
func (s *QuotationService) SelectQuotation(actorID, quotationID uuid.UUID) (*models.QuotationRequest, error) {
	var quotation models.SupplierQuotation
	if err := s.db.Preload("Supplier").First(&quotation, "id = ?", quotationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	request, err := s.GetRequest(quotation.RequestID)
	if err != nil {
		return nil, err
	}

	if request.Status != models.RequestStatusInQuotation && request.Status != models.RequestStatusAwaitingApproval {
		return nil, fmt.Errorf("%w: request is %s", ErrInvalidTransition, request.Status)
	}

	oldStatus := request.Status

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.SupplierQuotation{}).
			Where("request_id = ?", request.ID).
			Update("is_selected", false).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.SupplierQuotation{}).
			Where("id = ?", quotationID).
			Update("is_selected", true).Error; err != nil {
			return err
		}

		return tx.Model(&models.QuotationRequest{}).
			Where("id = ?", request.ID).
			Updates(map[string]interface{}{
				"total_budget": quotation.TotalAmount,
				"status":       models.RequestStatusAwaitingApproval,
			}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to select quotation: %w", err)
	}

	s.audit.Record(&actorID, "select_quotation", "quotation_request", &request.ID,
		map[string]interface{}{"status": oldStatus},
		map[string]interface{}{
			"status":       models.RequestStatusAwaitingApproval,
			"quotation_id": quotationID,
			"supplier":     quotation.Supplier.Name,
			"total_amount": quotation.TotalAmount,
		})

	return s.GetRequest(request.ID)
}

// Approve moves an awaiting request to aprovado and records who
// approved, how much, and when.
func (s *QuotationService) Approve(approverID, requestID uuid.UUID, approvedAmount *float64) (*models.QuotationRequest, error) {
	request, err := s.GetRequest(requestID)
	if err != nil {
		return nil, err
	}

	if request.Status != models.RequestStatusAwaitingApproval {
		return nil, fmt.Errorf("%w: request is %s", ErrInvalidTransition, request.Status)
	}

	amount := request.TotalBudget
	if approvedAmount != nil {
		amount = approvedAmount
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":          models.RequestStatusApproved,
		"approver_id":     approverID,
		"approved_amount": amount,
		"approved_at":     &now,
	}

	if err := s.db.Model(request).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to approve request: %w", err)
	}

	s.audit.Record(&approverID, "approve", "quotation_request", &request.ID,
		map[string]interface{}{"status": models.RequestStatusAwaitingApproval},
		map[string]interface{}{"status": models.RequestStatusApproved, "approved_amount": amount})

	go func(r models.QuotationRequest) {
		var requester models.User
		if err := s.db.First(&requester, "id = ?", r.RequesterID).Error; err != nil {
			logrus.WithError(err).Warn("Approval notification skipped")
			return
		}
		if err := s.notifications.SendApprovalEmail(&requester, &r); err != nil {
			logrus.WithError(err).WithField("request", r.RequestNumber).Warn("Approval notification failed")
		}
	}(*request)

	return s.GetRequest(requestID)
}

// Reject records the refusal. Rejections are accepted for requests
// awaiting approval and, matching the historical behavior, for requests
// already approved (a late veto overrides the approval).
func (s *QuotationService) Reject(approverID, requestID uuid.UUID, reason string) (*models.QuotationRequest, error) {
	request, err := s.GetRequest(requestID)
	if err != nil {
		return nil, err
	}

	if request.Status != models.RequestStatusAwaitingApproval && request.Status != models.RequestStatusApproved {
		return nil, fmt.Errorf("%w: request is %s", ErrInvalidTransition, request.Status)
	}

	oldStatus := request.Status
	updates := map[string]interface{}{
		"status":           models.RequestStatusRejected,
		"approver_id":      approverID,
		"rejection_reason": reason,
	}

	if err := s.db.Model(request).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to reject request: %w", err)
	}

	s.audit.Record(&approverID, "reject", "quotation_request", &request.ID,
		map[string]interface{}{"status": oldStatus},
		map[string]interface{}{"status": models.RequestStatusRejected, "reason": reason})

	return s.GetRequest(requestID)
}

// nextDocumentNumber allocates the next document number in the current
// year-month bucket for the given model/column.
func nextDocumentNumber(tx *gorm.DB, model interface{}, column, kind string) string {
	now := time.Now()
	prefix := utils.SequencePrefix(kind, now)

	var latest string
	tx.Model(model).
		Where(column+" LIKE ?", prefix+"%").
		Order(column + " DESC").
		Limit(1).
		Pluck(column, &latest)

	return utils.NextSequence(kind, now, latest)
}

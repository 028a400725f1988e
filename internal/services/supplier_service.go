// internal/services/supplier_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/compranet/compras-backend/internal/models"
	"github.com/compranet/compras-backend/internal/utils"
)

type SupplierService struct {
	db    *gorm.DB
	audit *AuditService
}

type SupplierRequest struct {
	Name          string  `json:"name" validate:"required,min=2,max=255"`
	CNPJ          string  `json:"cnpj" validate:"omitempty,max=20"`
	Email         string  `json:"email" validate:"omitempty,email"`
	Phone         string  `json:"phone"`
	ContactPerson string  `json:"contact_person"`
	Address       string  `json:"address"`
	Status        string  `json:"status" validate:"omitempty,oneof=active inactive pending blocked"`
	Rating        float64 `json:"rating" validate:"omitempty,min=0,max=5"`
	Notes         string  `json:"notes"`
}

func NewSupplierService(db *gorm.DB, audit *AuditService) *SupplierService {
	return &SupplierService{db: db, audit: audit}
}

func (s *SupplierService) Create(actorID uuid.UUID, req *SupplierRequest) (*models.Supplier, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	supplier := &models.Supplier{
		Name:          strings.TrimSpace(req.Name),
		CNPJ:          req.CNPJ,
		Email:         req.Email,
		Phone:         req.Phone,
		ContactPerson: req.ContactPerson,
		Address:       req.Address,
		Status:        models.SupplierStatusActive,
		Rating:        req.Rating,
		Notes:         req.Notes,
	}
	if req.Status != "" {
		supplier.Status = models.SupplierStatus(req.Status)
	}

	if err := s.db.Create(supplier).Error; err != nil {
		return nil, fmt.Errorf("failed to create supplier: %w", err)
	}

	s.audit.Record(&actorID, "create", "supplier", &supplier.ID, nil, map[string]interface{}{
		"name": supplier.Name,
	})

	return supplier, nil
}

// List performs a case-insensitive substring search across name, cnpj
// and contact person. Full-table scan semantics; no pagination.
func (s *SupplierService) List(search, status string) ([]models.Supplier, error) {
	query := s.db.Model(&models.Supplier{}).Order("name ASC")

	if search != "" {
		term := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(cnpj) LIKE ? OR LOWER(contact_person) LIKE ?", term, term, term)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var suppliers []models.Supplier
	if err := query.Find(&suppliers).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch suppliers: %w", err)
	}
	return suppliers, nil
}

func (s *SupplierService) Get(id uuid.UUID) (*models.Supplier, error) {
	var supplier models.Supplier
	if err := s.db.First(&supplier, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &supplier, nil
}

func (s *SupplierService) Update(actorID, id uuid.UUID, req *SupplierRequest) (*models.Supplier, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	supplier, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	old := map[string]interface{}{"name": supplier.Name, "status": supplier.Status}

	updates := map[string]interface{}{
		"name":           strings.TrimSpace(req.Name),
		"cnpj":           req.CNPJ,
		"email":          req.Email,
		"phone":          req.Phone,
		"contact_person": req.ContactPerson,
		"address":        req.Address,
		"notes":          req.Notes,
	}
	if req.Status != "" {
		updates["status"] = req.Status
	}
	if req.Rating > 0 {
		updates["rating"] = req.Rating
	}

	if err := s.db.Model(supplier).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update supplier: %w", err)
	}

	s.audit.Record(&actorID, "update", "supplier", &supplier.ID, old, map[string]interface{}{
		"name": supplier.Name, "status": supplier.Status,
	})

	return supplier, nil
}

// Delete removes the supplier for good. Suppliers and products are the
// only entities that are hard-deleted; everything else is status-mutated.
func (s *SupplierService) Delete(actorID, id uuid.UUID) error {
	supplier, err := s.Get(id)
	if err != nil {
		return err
	}

	var quotationCount int64
	s.db.Model(&models.SupplierQuotation{}).Where("supplier_id = ?", id).Count(&quotationCount)
	if quotationCount > 0 {
		return fmt.Errorf("%w: supplier has quotations", ErrInvalidInput)
	}

	if err := s.db.Unscoped().Delete(supplier).Error; err != nil {
		return fmt.Errorf("failed to delete supplier: %w", err)
	}

	s.audit.Record(&actorID, "delete", "supplier", &id, map[string]interface{}{
		"name": supplier.Name,
	}, nil)

	return nil
}

// FindOrCreateByName resolves a supplier by exact (case-insensitive)
// name, creating a pending one when absent. Used by spreadsheet imports.
func (s *SupplierService) FindOrCreateByName(actorID uuid.UUID, name string) (*models.Supplier, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty supplier name", ErrInvalidInput)
	}

	var supplier models.Supplier
	err := s.db.Where("LOWER(name) = ?", strings.ToLower(name)).First(&supplier).Error
	if err == nil {
		return &supplier, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	supplier = models.Supplier{
		Name:   name,
		Status: models.SupplierStatusPending,
	}
	if err := s.db.Create(&supplier).Error; err != nil {
		return nil, fmt.Errorf("failed to create supplier: %w", err)
	}

	s.audit.Record(&actorID, "create", "supplier", &supplier.ID, nil, map[string]interface{}{
		"name":   supplier.Name,
		"source": "spreadsheet_import",
	})

	return &supplier, nil
}

// internal/services/product_service.go
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

type ProductService struct {
	db    *gorm.DB
	audit *AuditService
}

type ProductRequest struct {
	Name          string                 `json:"name" validate:"required,min=2,max=255"`
	Description   string                 `json:"description"`
	Unit          string                 `json:"unit" validate:"omitempty,max=20"`
	CategoryID    *uuid.UUID             `json:"category_id"`
	LastPrice     float64                `json:"last_price" validate:"omitempty,min=0"`
	Specification map[string]interface{} `json:"specification,omitempty"`
}

type CategoryRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description"`
}

func NewProductService(db *gorm.DB, audit *AuditService) *ProductService {
	return &ProductService{db: db, audit: audit}
}

func (s *ProductService) Create(actorID uuid.UUID, req *ProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	if req.CategoryID != nil {
		var count int64
		s.db.Model(&models.Category{}).Where("id = ?", *req.CategoryID).Count(&count)
		if count == 0 {
			return nil, fmt.Errorf("%w: category", ErrNotFound)
		}
	}

	product := &models.Product{
		Name:          strings.TrimSpace(req.Name),
		Description:   req.Description,
		Unit:          req.Unit,
		CategoryID:    req.CategoryID,
		LastPrice:     req.LastPrice,
		Specification: models.JSONB(req.Specification),
	}
	if product.Unit == "" {
		product.Unit = "un"
	}

	if err := s.db.Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.audit.Record(&actorID, "create", "product", &product.ID, nil, map[string]interface{}{
		"name": product.Name,
	})

	return product, nil
}

func (s *ProductService) List(search string, categoryID *uuid.UUID) ([]models.Product, error) {
	query := s.db.Model(&models.Product{}).Preload("Category").Order("name ASC")

	if search != "" {
		term := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", term, term)
	}
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	return products, nil
}

func (s *ProductService) Get(id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := s.db.Preload("Category").First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &product, nil
}

func (s *ProductService) Update(actorID, id uuid.UUID, req *ProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	product, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	old := map[string]interface{}{"name": product.Name, "last_price": product.LastPrice}

	updates := map[string]interface{}{
		"name":        strings.TrimSpace(req.Name),
		"description": req.Description,
	}
	if req.Unit != "" {
		updates["unit"] = req.Unit
	}
	if req.CategoryID != nil {
		updates["category_id"] = *req.CategoryID
	}
	if req.LastPrice > 0 {
		// Running average over the price history kept on the row.
		if product.AveragePrice > 0 {
			updates["average_price"] = (product.AveragePrice + req.LastPrice) / 2
		} else {
			updates["average_price"] = req.LastPrice
		}
		updates["last_price"] = req.LastPrice
	}
	if req.Specification != nil {
		updates["specification"] = models.JSONB(req.Specification)
	}

	if err := s.db.Model(product).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.audit.Record(&actorID, "update", "product", &product.ID, old, map[string]interface{}{
		"name": product.Name, "last_price": product.LastPrice,
	})

	return product, nil
}

func (s *ProductService) Delete(actorID, id uuid.UUID) error {
	product, err := s.Get(id)
	if err != nil {
		return err
	}

	if err := s.db.Unscoped().Delete(product).Error; err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.audit.Record(&actorID, "delete", "product", &id, map[string]interface{}{
		"name": product.Name,
	}, nil)

	return nil
}

// Categories

func (s *ProductService) CreateCategory(actorID uuid.UUID, req *CategoryRequest) (*models.Category, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	category := &models.Category{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
	}

	if err := s.db.Create(category).Error; err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.audit.Record(&actorID, "create", "category", &category.ID, nil, map[string]interface{}{
		"name": category.Name,
	})

	return category, nil
}

func (s *ProductService) ListCategories() ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	return categories, nil
}

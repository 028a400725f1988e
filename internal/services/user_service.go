// internal/services/user_service.go
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

// UserService is admin-only account management for the four roles.
type UserService struct {
	db    *gorm.DB
	audit *AuditService
}

type CreateUserRequest struct {
	Username   string `json:"username" validate:"required,min=3,max=50"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
	FullName   string `json:"full_name" validate:"required"`
	Role       string `json:"role" validate:"required,role"`
	Department string `json:"department"`
}

type UpdateUserRequest struct {
	Email      string `json:"email,omitempty" validate:"omitempty,email"`
	FullName   string `json:"full_name,omitempty"`
	Role       string `json:"role,omitempty" validate:"omitempty,role"`
	Department string `json:"department,omitempty"`
	IsActive   *bool  `json:"is_active,omitempty"`
	Password   string `json:"password,omitempty" validate:"omitempty,min=8"`
}

func NewUserService(db *gorm.DB, audit *AuditService) *UserService {
	return &UserService{db: db, audit: audit}
}

func (s *UserService) Create(actorID uuid.UUID, req *CreateUserRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	var count int64
	s.db.Model(&models.User{}).
		Where("username = ? OR email = ?", req.Username, req.Email).
		Count(&count)
	if count > 0 {
		return nil, fmt.Errorf("%w: username or email in use", ErrDuplicate)
	}

	user := &models.User{
		Username:   req.Username,
		Email:      strings.ToLower(req.Email),
		FullName:   req.FullName,
		Role:       models.UserRole(req.Role),
		Department: req.Department,
		IsActive:   true,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.audit.Record(&actorID, "create", "user", &user.ID, nil, map[string]interface{}{
		"username": user.Username,
		"role":     user.Role,
	})

	return user, nil
}

func (s *UserService) List(search string) ([]models.User, error) {
	query := s.db.Model(&models.User{}).Order("username ASC")

	if search != "" {
		term := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ? OR LOWER(full_name) LIKE ?", term, term, term)
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	return users, nil
}

func (s *UserService) Get(id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}

func (s *UserService) Update(actorID, id uuid.UUID, req *UpdateUserRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	user, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	old := map[string]interface{}{"role": user.Role, "is_active": user.IsActive}

	updates := make(map[string]interface{})
	if req.Email != "" {
		updates["email"] = strings.ToLower(req.Email)
	}
	if req.FullName != "" {
		updates["full_name"] = req.FullName
	}
	if req.Role != "" {
		updates["role"] = req.Role
	}
	if req.Department != "" {
		updates["department"] = req.Department
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.Password != "" {
		tmp := models.User{}
		if err := tmp.SetPassword(req.Password); err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		updates["password_hash"] = tmp.PasswordHash
	}

	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.audit.Record(&actorID, "update", "user", &user.ID, old, map[string]interface{}{
		"role": user.Role, "is_active": user.IsActive,
	})

	return user, nil
}

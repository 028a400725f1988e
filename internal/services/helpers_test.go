// internal/services/helpers_test.go
package services

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/compranet/compras-backend/internal/config"
	"github.com/compranet/compras-backend/internal/models"
)

// setupTestDB opens a uniquely named shared in-memory sqlite database
// so each test gets isolated state while gorm's connection pool still
// sees a single store.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Supplier{},
		&models.Category{},
		&models.Product{},
		&models.QuotationRequest{},
		&models.SupplierQuotation{},
		&models.PurchaseOrder{},
		&models.AuditLog{},
		&models.AiAnalysis{},
	))

	return db
}

func testConfig() *config.Config {
	// Empty SMTP/AI/AWS settings keep every external side effect a no-op.
	return &config.Config{}
}

func createTestUser(t *testing.T, db *gorm.DB, username string, role models.UserRole) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		FullName: "Test " + username,
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, user.SetPassword("Secret123!"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestSupplier(t *testing.T, db *gorm.DB, name string) *models.Supplier {
	t.Helper()

	supplier := &models.Supplier{
		Name:   name,
		Email:  "contato@example.com",
		Status: models.SupplierStatusActive,
	}
	require.NoError(t, db.Create(supplier).Error)
	return supplier
}

func newQuotationService(db *gorm.DB) *QuotationService {
	cfg := testConfig()
	audit := NewAuditService(db)
	notifications := NewNotificationService(db, cfg)
	ai := NewAIService(db, cfg)
	return NewQuotationService(db, audit, notifications, ai)
}

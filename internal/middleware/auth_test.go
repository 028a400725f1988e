// internal/middleware/auth_test.go
package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/compranet/compras-backend/internal/models"
	"github.com/compranet/compras-backend/internal/utils"
)

func setupAuthTest(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("test-secret")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	require.NoError(t, db.AutoMigrate(&models.User{}))

	r := gin.New()
	r.POST("/approve", AuthRequired(), Authorize(db, CapRequestApprove), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return db, r
}

func createUser(t *testing.T, db *gorm.DB, role models.UserRole, active bool) *models.User {
	t.Helper()
	user := &models.User{
		Username: string(role) + uuid.NewString()[:8],
		Email:    uuid.NewString()[:8] + "@example.com",
		FullName: "Test User",
		Role:     role,
		IsActive: active,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func tokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := utils.GenerateJWT(user.ID, user.Username, string(user.Role), 1)
	require.NoError(t, err)
	return token
}

func doRequest(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("POST", "/approve", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthorizeAllowsPermittedRole(t *testing.T) {
	db, r := setupAuthTest(t)
	aprovador := createUser(t, db, models.RoleAprovador, true)

	w := doRequest(r, tokenFor(t, aprovador))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthorizeRejectsForbiddenRole(t *testing.T) {
	db, r := setupAuthTest(t)
	cotador := createUser(t, db, models.RoleCotador, true)

	w := doRequest(r, tokenFor(t, cotador))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "message")
}

func TestAuthorizeRejectsInactiveUser(t *testing.T) {
	db, r := setupAuthTest(t)
	inactive := createUser(t, db, models.RoleAprovador, false)

	w := doRequest(r, tokenFor(t, inactive))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuthorizeRejectsMissingToken(t *testing.T) {
	_, r := setupAuthTest(t)

	w := doRequest(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthorizeRejectsUnknownUser(t *testing.T) {
	_, r := setupAuthTest(t)

	ghost := &models.User{Role: models.RoleAprovador, Username: "ghost"}
	ghost.ID = uuid.New()

	w := doRequest(r, tokenFor(t, ghost))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// The token role is advisory only; the stored row decides. A stale
// token minted before a demotion must not grant the old role.
func TestAuthorizeUsesStoredRoleNotTokenRole(t *testing.T) {
	db, r := setupAuthTest(t)
	user := createUser(t, db, models.RoleAprovador, true)
	token := tokenFor(t, user)

	require.NoError(t, db.Model(user).Update("role", models.RoleRequisitante).Error)

	w := doRequest(r, token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPolicyTable(t *testing.T) {
	assert.True(t, CapRequestApprove.Allows(models.RoleAdmin))
	assert.True(t, CapRequestApprove.Allows(models.RoleAprovador))
	assert.False(t, CapRequestApprove.Allows(models.RoleCotador))
	assert.False(t, CapRequestApprove.Allows(models.RoleRequisitante))

	assert.True(t, CapQuotationWrite.Allows(models.RoleCotador))
	assert.False(t, CapQuotationWrite.Allows(models.RoleRequisitante))

	assert.True(t, CapRequestCreate.Allows(models.RoleRequisitante))
	assert.False(t, CapRequestCreate.Allows(models.RoleCotador))

	assert.True(t, CapUserManage.Allows(models.RoleAdmin))
	assert.False(t, CapUserManage.Allows(models.RoleAprovador))

	for _, role := range []models.UserRole{models.RoleAdmin, models.RoleRequisitante, models.RoleCotador, models.RoleAprovador} {
		assert.True(t, CapDashboardRead.Allows(role), string(role))
	}

	assert.False(t, Capability("unknown:cap").Allows(models.RoleAdmin))
}

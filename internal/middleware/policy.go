// internal/middleware/policy.go
package middleware

import (
	"github.com/compranet/compras-backend/internal/models"
)

// Capability names a route-level action. The policy table below is the
// single place where capabilities map to allowed roles; routes never
// compose ad hoc role lists.
type Capability string

const (
	CapUserManage      Capability = "users:manage"
	CapSupplierRead    Capability = "suppliers:read"
	CapSupplierWrite   Capability = "suppliers:write"
	CapSupplierDelete  Capability = "suppliers:delete"
	CapProductRead     Capability = "products:read"
	CapProductWrite    Capability = "products:write"
	CapProductDelete   Capability = "products:delete"
	CapRequestRead     Capability = "requests:read"
	CapRequestCreate   Capability = "requests:create"
	CapRequestUpdate   Capability = "requests:update"
	CapQuotationWrite  Capability = "quotations:write"
	CapRequestApprove  Capability = "requests:approve"
	CapOrderRead       Capability = "orders:read"
	CapOrderGenerate   Capability = "orders:generate"
	CapUpload          Capability = "uploads:ingest"
	CapAuditRead       Capability = "audit:read"
	CapDashboardRead   Capability = "dashboard:read"
)

var everyone = []models.UserRole{models.RoleAdmin, models.RoleRequisitante, models.RoleCotador, models.RoleAprovador}

var policy = map[Capability][]models.UserRole{
	CapUserManage:     {models.RoleAdmin},
	CapSupplierRead:   everyone,
	CapSupplierWrite:  {models.RoleAdmin, models.RoleCotador},
	CapSupplierDelete: {models.RoleAdmin},
	CapProductRead:    everyone,
	CapProductWrite:   {models.RoleAdmin, models.RoleCotador},
	CapProductDelete:  {models.RoleAdmin},
	CapRequestRead:    everyone,
	CapRequestCreate:  {models.RoleAdmin, models.RoleRequisitante},
	CapRequestUpdate:  {models.RoleAdmin, models.RoleRequisitante, models.RoleCotador},
	CapQuotationWrite: {models.RoleAdmin, models.RoleCotador},
	CapRequestApprove: {models.RoleAdmin, models.RoleAprovador},
	CapOrderRead:      everyone,
	CapOrderGenerate:  {models.RoleAdmin, models.RoleAprovador},
	CapUpload:         {models.RoleAdmin, models.RoleCotador},
	CapAuditRead:      {models.RoleAdmin},
	CapDashboardRead:  everyone,
}

// Allows reports whether role may exercise the capability. Unknown
// capabilities allow nothing.
func (cap Capability) Allows(role models.UserRole) bool {
	for _, allowed := range policy[cap] {
		if allowed == role {
			return true
		}
	}
	return false
}

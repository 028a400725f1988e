// internal/i18n/keys.go
package i18n

// Translation keys
const (
	// Auth
	KeyAuthRequired      = "auth.required"
	KeyAuthInvalidToken  = "auth.invalid_token"
	KeyAuthTokenExpired  = "auth.token_expired"
	KeyAuthInvalidLogin  = "auth.invalid_login"
	KeyAuthInactiveUser  = "auth.inactive_user"
	KeyAuthAccessDenied  = "auth.access_denied"
	KeyAuthLoginSuccess  = "auth.login_success"
	KeyAuthLogoutSuccess = "auth.logout_success"

	// Validation
	KeyValidationInvalid  = "validation.invalid"
	KeyValidationRequired = "validation.required"

	// Entities
	KeyNotFound        = "common.not_found"
	KeyCreated         = "common.created"
	KeyUpdated         = "common.updated"
	KeyDeleted         = "common.deleted"
	KeyInternalError   = "common.internal_error"
	KeyFileRequired    = "upload.file_required"
	KeyFileUnsupported = "upload.unsupported_format"

	// Lifecycle
	KeyRequestApproved      = "request.approved"
	KeyRequestRejected      = "request.rejected"
	KeyRequestNotApprovable = "request.not_approvable"
	KeyQuotationSelected    = "quotation.selected"
	KeyQuotationNotSelected = "order.no_selected_quotation"
	KeyOrderWrongStatus     = "order.request_not_approved"
)

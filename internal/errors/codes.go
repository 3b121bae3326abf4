package errors

// Error codes returned in the "error" field of every error response.
// Format: CATEGORY_DETAIL. The storefront maps these to UI copy.

const (
	// Authentication
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"
	AuthWeakPassword       = "AUTH_WEAK_PASSWORD"
	AuthOAuthUnavailable   = "AUTH_OAUTH_UNAVAILABLE"

	// Authorization
	AuthzForbidden    = "AUTHZ_FORBIDDEN"
	AuthzAccessDenied = "AUTHZ_ACCESS_DENIED"
	AuthzInvalidRole  = "AUTHZ_INVALID_ROLE"

	// Validation
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID     = "VALIDATION_INVALID_ID"
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT"
	ValidationInvalidRange  = "VALIDATION_INVALID_RANGE"
	ValidationRequired      = "VALIDATION_REQUIRED"

	// Generic resources
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// Promo codes
	PromoNotFound        = "PROMO_NOT_FOUND"
	PromoInvalid         = "PROMO_INVALID"
	PromoAlreadyExists   = "PROMO_ALREADY_EXISTS"
	PromoValidationError = "PROMO_VALIDATION_FAILED"

	// Cart and checkout
	CartSessionInvalid = "CART_SESSION_INVALID"
	CartInvalidSize    = "CART_INVALID_SIZE"
	CartInvalidItem    = "CART_INVALID_ITEM"
	CartEmpty          = "CART_EMPTY"

	// Catalog
	CatalogCategoryNotFound = "CATALOG_CATEGORY_NOT_FOUND"
	CatalogProductNotFound  = "CATALOG_PRODUCT_NOT_FOUND"
	CatalogKeyExists        = "CATALOG_KEY_EXISTS"

	// Orders
	OrderNotFound      = "ORDER_NOT_FOUND"
	OrderInvalidStatus = "ORDER_INVALID_STATUS"

	// Teamwear inquiries
	InquiryNotFound      = "INQUIRY_NOT_FOUND"
	InquiryInvalidStatus = "INQUIRY_INVALID_STATUS"

	// Users
	UserNotFound = "USER_NOT_FOUND"

	// Uploads
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadUnavailable     = "UPLOAD_UNAVAILABLE"

	// Internal
	InternalServerError = "INTERNAL_SERVER_ERROR"
	InternalDatabase    = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI = "INTERNAL_EXTERNAL_API_ERROR"
)

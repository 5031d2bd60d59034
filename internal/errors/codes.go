package errors

// Error code constants returned in API responses.
// Format: CATEGORY_SPECIFIC_DETAIL; the frontend maps these to messages.

const (
	// ==================== Authentication (AUTH_) ====================
	AuthUnauthorized   = "AUTH_UNAUTHORIZED"    // sign-in required
	AuthTokenExpired   = "AUTH_TOKEN_EXPIRED"   // session token expired
	AuthTokenInvalid   = "AUTH_TOKEN_INVALID"   // malformed or forged token
	AuthTokenRevoked   = "AUTH_TOKEN_REVOKED"   // token blacklisted via sign-out
	AuthExchangeFailed = "AUTH_EXCHANGE_FAILED" // OAuth code exchange failed

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden = "AUTHZ_FORBIDDEN"  // not owner and not admin
	AuthzAdminOnly = "AUTHZ_ADMIN_ONLY" // admin-only operation

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"  // malformed request body
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT" // field fails format rule
	ValidationRequired      = "VALIDATION_REQUIRED"       // missing required field

	// ==================== Listing queries (QUERY_) ====================
	QueryInvalid = "QUERY_INVALID" // unnormalizable listing query

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"

	// ==================== Tags (TAG_) ====================
	TagNotFound     = "TAG_NOT_FOUND"
	TagNameTaken    = "TAG_NAME_TAKEN"    // uniqueness conflict
	TagTooManyCats  = "TAG_TOO_MANY_CATEGORIES"
	TagInvalidName  = "TAG_INVALID_NAME"  // not 1-4 alphanumeric characters
	TagInvalidLink  = "TAG_INVALID_LINK"  // not a discord.gg / discord.com invite
	TagInvalidIcon  = "TAG_INVALID_ICON"

	// ==================== Profiles (PROFILE_) ====================
	ProfileNotFound = "PROFILE_NOT_FOUND"
	ProfileRequired = "PROFILE_REQUIRED" // authenticated but no profile row

	// ==================== Uploads (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFailed          = "UPLOAD_FAILED"

	// ==================== Store / backend (STORE_, INTERNAL_) ====================
	StoreUnavailable      = "STORE_UNAVAILABLE" // transient backend failure, retryable
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
)

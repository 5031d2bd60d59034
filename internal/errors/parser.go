package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo is a parsed store failure
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseStoreError turns a gorm/driver error into a user-facing code and
// message. Sensitive detail stays in the server logs; the taxonomy here is
// what clients are allowed to see.
func ParseStoreError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Message: "Something went wrong"}
	}

	errStr := err.Error()
	errLower := strings.ToLower(errStr)

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    notFoundCode(context),
			Message: "The requested record was not found",
		}
	}

	// Unique constraint violations (Postgres 23505). The only unique keys in
	// the schema are tags.tag_name and profiles.discord_id.
	if strings.Contains(errLower, "duplicate key") || strings.Contains(errLower, "unique constraint") {
		if strings.Contains(errLower, "tag_name") || strings.Contains(errLower, "idx_tags_tag_name") {
			return ErrorInfo{
				Code:    TagNameTaken,
				Message: "This tag name already exists. Please choose a different one",
			}
		}
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "This record already exists",
		}
	}

	// Foreign key violations (23503): a tag referencing a missing profile.
	if strings.Contains(errLower, "foreign key constraint") {
		if strings.Contains(errLower, "owner_id") || strings.Contains(errLower, "fk_profiles") {
			return ErrorInfo{
				Code:    ProfileNotFound,
				Message: "The owning profile no longer exists",
			}
		}
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: "A referenced record was not found",
		}
	}

	if strings.Contains(errLower, "null value") && strings.Contains(errLower, "not-null constraint") {
		return ErrorInfo{
			Code:    ValidationRequired,
			Message: "A required field is missing",
		}
	}

	// Connection-level failures are transient: surface as a retryable state.
	if strings.Contains(errLower, "connection refused") ||
		strings.Contains(errLower, "no such host") ||
		strings.Contains(errLower, "connection reset") ||
		strings.Contains(errLower, "timeout") {
		return ErrorInfo{
			Code:    StoreUnavailable,
			Message: "The listing store is temporarily unreachable. Please try again",
		}
	}

	return ErrorInfo{
		Code:    InternalDatabaseError,
		Message: defaultMessage(context),
	}
}

// IsUnavailable reports whether err looks like a transient connectivity
// failure rather than a data-level error.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	return ParseStoreError(err, "").Code == StoreUnavailable
}

func notFoundCode(context string) string {
	contextLower := strings.ToLower(context)
	if strings.Contains(contextLower, "tag") {
		return TagNotFound
	}
	if strings.Contains(contextLower, "profile") || strings.Contains(contextLower, "user") {
		return ProfileNotFound
	}
	return ResourceNotFound
}

func defaultMessage(context string) string {
	contextLower := strings.ToLower(context)
	if strings.Contains(contextLower, "create") || strings.Contains(contextLower, "submit") {
		return "Submission failed. Please try again later"
	}
	if strings.Contains(contextLower, "update") {
		return "Update failed. Please try again later"
	}
	if strings.Contains(contextLower, "delete") {
		return "Deletion failed. Please try again later"
	}
	return "Something went wrong. Please try again later"
}

package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError maps a storage error to a code and a safe message.
// context names the operation, e.g. "create promo code".
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Message: "Something went wrong"}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Code: notFoundCode(context), Message: notFoundMessage(context)}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return parseDuplicateKeyError(err.Error(), context)
	}

	errLower := strings.ToLower(err.Error())

	// postgres 23505 and sqlite UNIQUE failures
	if strings.Contains(errLower, "duplicate key") || strings.Contains(errLower, "unique constraint") {
		return parseDuplicateKeyError(errLower, context)
	}
	// 23503
	if strings.Contains(errLower, "foreign key constraint") {
		if strings.Contains(errLower, "still referenced") {
			return ErrorInfo{Code: ResourceConflict, Message: "This record is still in use and cannot be deleted"}
		}
		return ErrorInfo{Code: ResourceNotFound, Message: "A referenced record does not exist"}
	}
	// 23502
	if strings.Contains(errLower, "violates not-null constraint") || strings.Contains(errLower, "not null constraint") {
		return ErrorInfo{Code: ValidationRequired, Message: "A required field is missing"}
	}
	// 23514
	if strings.Contains(errLower, "check constraint") {
		return ErrorInfo{Code: ValidationInvalidInput, Message: "A field has an invalid value"}
	}

	if strings.Contains(errLower, "connection refused") ||
		strings.Contains(errLower, "no such host") ||
		strings.Contains(errLower, "timeout") {
		return ErrorInfo{Code: InternalExternalAPI, Message: "A backing service is unavailable. Please try again."}
	}

	return ErrorInfo{Code: InternalServerError, Message: defaultMessage(context)}
}

func parseDuplicateKeyError(errLower string, context string) ErrorInfo {
	errLower = strings.ToLower(errLower)
	ctx := strings.ToLower(context)

	switch {
	case strings.Contains(errLower, "email"):
		return ErrorInfo{Code: AuthEmailAlreadyExists, Message: "Email is already registered"}
	case strings.Contains(errLower, "promo_codes") || strings.Contains(ctx, "promo"):
		return ErrorInfo{Code: PromoAlreadyExists, Message: "A promo code with this code already exists"}
	case strings.Contains(errLower, "categories") || strings.Contains(ctx, "category"):
		return ErrorInfo{Code: CatalogKeyExists, Message: "A category with this key already exists"}
	}
	return ErrorInfo{Code: ResourceAlreadyExists, Message: "This record already exists"}
}

func notFoundCode(context string) string {
	ctx := strings.ToLower(context)
	switch {
	case strings.Contains(ctx, "promo"):
		return PromoNotFound
	case strings.Contains(ctx, "category"):
		return CatalogCategoryNotFound
	case strings.Contains(ctx, "product"):
		return CatalogProductNotFound
	case strings.Contains(ctx, "order"):
		return OrderNotFound
	case strings.Contains(ctx, "inquiry"):
		return InquiryNotFound
	case strings.Contains(ctx, "user"):
		return UserNotFound
	}
	return ResourceNotFound
}

func notFoundMessage(context string) string {
	ctx := strings.ToLower(context)
	for _, noun := range []string{"promo code", "category", "product", "order", "inquiry", "user"} {
		if strings.Contains(ctx, noun) {
			return strings.ToUpper(noun[:1]) + noun[1:] + " not found"
		}
	}
	return "The requested record was not found"
}

func defaultMessage(context string) string {
	ctx := strings.ToLower(context)
	switch {
	case strings.Contains(ctx, "create"):
		return "Failed to save. Please try again."
	case strings.Contains(ctx, "update"):
		return "Failed to update. Please try again."
	case strings.Contains(ctx, "delete"):
		return "Failed to delete. Please try again."
	}
	return "Something went wrong. Please try again."
}

// ParseAndRespond parses err and writes the envelope with statusCode.
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	info := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{Error: info.Code, Message: info.Message})
}

package services

import (
	"errors"
	"fmt"
	"net/http"
)

// ServiceError is a domain failure the HTTP layer reports to the client as-is
type ServiceError struct {
	Status  int
	Code    string
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// Is matches on code so wrapped copies with different messages still compare equal
func (e *ServiceError) Is(target error) bool {
	t, ok := target.(*ServiceError)
	return ok && t.Code == e.Code
}

// WithMessage returns a copy of e carrying a more specific message
func (e *ServiceError) WithMessage(format string, args ...interface{}) *ServiceError {
	return &ServiceError{Status: e.Status, Code: e.Code, Message: fmt.Sprintf(format, args...)}
}

var (
	ErrProductNotFound  = &ServiceError{http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found"}
	ErrCategoryNotFound = &ServiceError{http.StatusNotFound, "CATEGORY_NOT_FOUND", "Category not found"}
	ErrOrderNotFound    = &ServiceError{http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found"}
	ErrReviewNotFound   = &ServiceError{http.StatusNotFound, "REVIEW_NOT_FOUND", "Review not found"}

	// ErrUnknownCategory is returned when a product references a category that does not exist
	ErrUnknownCategory = &ServiceError{http.StatusBadRequest, "UNKNOWN_CATEGORY", "Category does not exist"}

	ErrValidation        = &ServiceError{http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data"}
	ErrInvalidDate       = &ServiceError{http.StatusBadRequest, "INVALID_DATE", "Date must be formatted as YYYY-MM-DD"}
	ErrInvalidStatus     = &ServiceError{http.StatusBadRequest, "INVALID_STATUS", "Invalid status value"}
	ErrInvalidTransition = &ServiceError{http.StatusConflict, "INVALID_TRANSITION", "Status change not allowed"}
	ErrDuplicateReview   = &ServiceError{http.StatusConflict, "DUPLICATE_REVIEW", "You have already submitted a review for this product"}

	ErrImageUpload = &ServiceError{http.StatusBadGateway, "IMAGE_UPLOAD_FAILED", "Failed to upload image"}
	ErrImageDelete = &ServiceError{http.StatusBadGateway, "IMAGE_DELETE_FAILED", "Failed to delete image"}
)

// AsServiceError extracts a ServiceError from err's chain
func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

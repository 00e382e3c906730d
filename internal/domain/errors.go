package domain

import "errors"

var (
	ErrQuoteNotFound    = errors.New("quote not found")
	ErrItemNotFound     = errors.New("quote item not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrReplyInFlight    = errors.New("reply already in flight")
	ErrNoReplyInFlight  = errors.New("no reply in flight")
	ErrEmptyMessage     = errors.New("message is empty")
	ErrUpstream         = errors.New("upstream provider failure")
)

// ValidationError is returned for malformed or incomplete input. Its message
// is safe to show to the caller as-is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}

// IsNotFound reports whether err refers to a missing quote, item, product or category.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrQuoteNotFound) ||
		errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrCategoryNotFound)
}

package errprocess

import (
	"errors"
	"fmt"

	"food_order_chat_service/pkg/logger"
)

// Error kinds. Every rejection the chat boundary reports belongs to one of
// these; the connection handler maps the kind to a structured error event
// and keeps the connection open.
var (
	// ErrValidation empty/overlong content, malformed payload
	ErrValidation = errors.New("validation error")
	// ErrAuth invalid/expired token, missing role
	ErrAuth = errors.New("auth error")
	// ErrNotFound unknown reply target, recipient or conversation
	ErrNotFound = errors.New("not found")
	// ErrAuthorization actor is not allowed to run the operation
	ErrAuthorization = errors.New("authorization error")
)

// Set set err info
func Set(errMsg string) error {
	logger.Log.Error(errMsg)
	return errors.New(errMsg)
}

// Validation create a ValidationError
func Validation(msg string) error {
	return wrap(ErrValidation, msg)
}

// Auth create an AuthError
func Auth(msg string) error {
	return wrap(ErrAuth, msg)
}

// NotFound create a NotFoundError
func NotFound(msg string) error {
	return wrap(ErrNotFound, msg)
}

// Authorization create an AuthorizationError
func Authorization(msg string) error {
	return wrap(ErrAuthorization, msg)
}

func wrap(kind error, msg string) error {
	logger.Log.Error(msg)
	return fmt.Errorf("%w: %s", kind, msg)
}

// Kind return the event code for err, empty when err carries no known kind
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrAuth):
		return "auth_error"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAuthorization):
		return "authorization_error"
	}
	return ""
}

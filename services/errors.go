package services

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// ErrorKind classifies service failures so handlers can map them to HTTP
// statuses without string matching.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindValidation
	KindNotFound
	KindAuthorization
	KindInvalidState
	KindStorage
)

type ServiceError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func validationError(message string) error {
	return &ServiceError{Kind: KindValidation, Message: message}
}

func notFoundError(message string) error {
	return &ServiceError{Kind: KindNotFound, Message: message}
}

func invalidStateError(message string) error {
	return &ServiceError{Kind: KindInvalidState, Message: message}
}

func storageError(message string, err error) error {
	return &ServiceError{Kind: KindStorage, Message: message, Err: err}
}

// KindOf extracts the kind from any error produced by this package.
func KindOf(err error) ErrorKind {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnknown
}

// HTTPStatus maps a service error to the status code its handler should return.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return fiber.StatusBadRequest
	case KindNotFound:
		return fiber.StatusNotFound
	case KindAuthorization:
		return fiber.StatusForbidden
	case KindInvalidState:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorMessage returns the human-readable part of a service error, hiding
// wrapped storage causes from API responses.
func ErrorMessage(err error) string {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Message
	}
	return err.Error()
}

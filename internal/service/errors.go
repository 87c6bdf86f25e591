package service

import (
	"errors"
	"fmt"
)

const (
	CodeValidation  = "VALIDATION_ERROR"
	CodeNotFound    = "NOT_FOUND"
	CodePersistence = "PERSISTENCE_ERROR"
	CodeStorage     = "STORAGE_ERROR"
)

type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

type Detail struct {
	Key     string
	Payload any
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func ToDetail(key string, payload any) Detail {
	return Detail{
		Key:     key,
		Payload: payload,
	}
}

func NewBusinessError(code string, message string, details ...Detail) *BusinessError {
	busErr := &BusinessError{
		Code:    code,
		Message: message,
		Details: make(map[string]any),
	}

	for _, detail := range details {
		busErr.Details[detail.Key] = detail.Payload
	}

	return busErr
}

func NewNotFound(resource string, id int64) *BusinessError {
	return &BusinessError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s %d not found", resource, id),
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

func NewValidationError(field, reason string) *BusinessError {
	message := reason
	if field != "" {
		message = fmt.Sprintf("Invalid value for field '%s': %s", field, reason)
	}
	return &BusinessError{
		Code:    CodeValidation,
		Message: message,
		Details: map[string]any{
			"field":  field,
			"reason": reason,
		},
	}
}

// NewPersistenceError keeps the driver error in Err only; Message is safe for clients.
func NewPersistenceError(operation string, err error, details ...Detail) *BusinessError {
	busErr := NewBusinessError(CodePersistence, fmt.Sprintf("failed to %s", operation), details...)
	busErr.Err = err
	return busErr
}

func NewStorageError(container, filename string, err error) *BusinessError {
	busErr := NewBusinessError(CodeStorage, "failed to store file",
		ToDetail("container", container),
		ToDetail("filename", filename),
	)
	busErr.Err = err
	return busErr
}

// IsCode reports whether err carries a BusinessError with the given code.
func IsCode(err error, code string) bool {
	var busErr *BusinessError
	return errors.As(err, &busErr) && busErr.Code == code
}

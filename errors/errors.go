// Package errors defines the structured application error returned by
// handlers and rendered by middleware.ErrorHandler.
package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ValidationError      ErrorType = "VALIDATION_ERROR"
	NotFoundError        ErrorType = "NOT_FOUND"
	DatabaseError        ErrorType = "DATABASE_ERROR"
	ExternalServiceError ErrorType = "EXTERNAL_SERVICE_ERROR"
	RateLimitError       ErrorType = "RATE_LIMIT_EXCEEDED"
	ServerError          ErrorType = "SERVER_ERROR"
)

// FieldError holds the messages reported for one request field.
type FieldError struct {
	Field    string
	Messages []string
}

// FieldErrors is an ordered set of per-field validation messages. It encodes
// as a JSON object whose keys keep the order in which fields were added.
type FieldErrors []FieldError

// Add appends msg to field, creating the entry on first use.
func (f *FieldErrors) Add(field, msg string) {
	for i := range *f {
		if (*f)[i].Field == field {
			(*f)[i].Messages = append((*f)[i].Messages, msg)
			return
		}
	}
	*f = append(*f, FieldError{Field: field, Messages: []string{msg}})
}

func (f FieldErrors) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, fe := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(fe.Field)
		if err != nil {
			return nil, err
		}
		msgs, err := json.Marshal(fe.Messages)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(msgs)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// AppError represents a structured application error.
type AppError struct {
	Type       ErrorType
	Message    string
	Detail     string
	Fields     FieldErrors
	HTTPStatus int
	Retry      int
	Raw        error
}

func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Raw
}

// GetHTTPStatus returns the status code for the error, derived from its type
// when none was set explicitly.
func (e *AppError) GetHTTPStatus() int {
	if e.HTTPStatus != 0 {
		return e.HTTPStatus
	}
	return getHTTPStatus(e.Type)
}

func New(errType ErrorType, message, detail string) *AppError {
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     detail,
		HTTPStatus: getHTTPStatus(errType),
	}
}

// Wrap attaches an application error type and message to err.
func Wrap(err error, errType ErrorType, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     err.Error(),
		HTTPStatus: getHTTPStatus(errType),
		Raw:        err,
	}
}

func ValidationFailed(message, detail string) *AppError {
	return &AppError{
		Type:       ValidationError,
		Message:    message,
		Detail:     detail,
		HTTPStatus: http.StatusBadRequest,
	}
}

// ValidationFields reports per-field validation failures.
func ValidationFields(message string, fields FieldErrors) *AppError {
	return &AppError{
		Type:       ValidationError,
		Message:    message,
		Fields:     fields,
		HTTPStatus: http.StatusBadRequest,
	}
}

func NotFound(message string) *AppError {
	return &AppError{
		Type:       NotFoundError,
		Message:    message,
		HTTPStatus: http.StatusNotFound,
	}
}

// ExternalService reports a failing upstream dependency. The message is shown
// to clients as is.
func ExternalService(message string, err error) *AppError {
	return &AppError{
		Type:       ExternalServiceError,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Raw:        err,
	}
}

func NewDatabaseError(err error) *AppError {
	return &AppError{
		Type:       DatabaseError,
		Message:    "Database operation failed",
		Detail:     "Please try again later",
		HTTPStatus: http.StatusInternalServerError,
		Raw:        err,
	}
}

func InternalServerError(message string) *AppError {
	return &AppError{
		Type:       ServerError,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

func RateLimitExceeded(message string, retryAfterSeconds int) *AppError {
	return &AppError{
		Type:       RateLimitError,
		Message:    message,
		HTTPStatus: http.StatusTooManyRequests,
		Retry:      retryAfterSeconds,
	}
}

func getHTTPStatus(errType ErrorType) int {
	switch errType {
	case ValidationError:
		return http.StatusBadRequest
	case NotFoundError:
		return http.StatusNotFound
	case RateLimitError:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound   ErrorType = "NOT_FOUND"
	ErrorTypeConflict   ErrorType = "CONFLICT"
	ErrorTypeInternal   ErrorType = "INTERNAL_ERROR"
	ErrorTypeExternal   ErrorType = "EXTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed     ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidAmount        ErrorCode = "INVALID_AMOUNT"
	ErrCodeAmountTooLow         ErrorCode = "AMOUNT_TOO_LOW"
	ErrCodeAmountTooHigh        ErrorCode = "AMOUNT_TOO_HIGH"
	ErrCodeInvalidPhoneNumber   ErrorCode = "INVALID_PHONE_NUMBER"
	ErrCodeInvalidPaymentMethod ErrorCode = "INVALID_PAYMENT_METHOD"
	ErrCodeInvalidPurpose       ErrorCode = "INVALID_PURPOSE"

	ErrCodeSessionNotFound     ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeInvalidSessionState ErrorCode = "INVALID_SESSION_STATE"

	ErrCodePaymentInitiationFailed ErrorCode = "PAYMENT_INITIATION_FAILED"
	ErrCodePaymentDeclined         ErrorCode = "PAYMENT_DECLINED"
	ErrCodePaymentTimeout          ErrorCode = "PAYMENT_TIMEOUT"
	ErrCodePaymentCancelled        ErrorCode = "PAYMENT_CANCELLED"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {

			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// NewInitiationError reports that the initiate call against the payments
// backend itself failed, before any confirmation could be observed.
func NewInitiationError(cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeExternal,
		Code:       ErrCodePaymentInitiationFailed,
		Message:    "payment initiation failed",
		StatusCode: http.StatusBadGateway,
		Cause:      cause,
	}
}

// NewPaymentDeclinedError carries the human-readable reason reported by the
// payments backend for an explicit failure.
func NewPaymentDeclinedError(reason string) *AppError {
	message := "payment declined"
	if reason != "" {
		message = fmt.Sprintf("payment declined: %s", reason)
	}
	return &AppError{
		Type:       ErrorTypeExternal,
		Code:       ErrCodePaymentDeclined,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
	}
}

// NewPollingTimeoutError reports that the status poll budget ran out without
// the payment reaching a terminal status.
func NewPollingTimeoutError() *AppError {
	return &AppError{
		Type:       ErrorTypeExternal,
		Code:       ErrCodePaymentTimeout,
		Message:    "payment confirmation timed out",
		StatusCode: http.StatusGatewayTimeout,
	}
}

func NewPaymentCancelledError() *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       ErrCodePaymentCancelled,
		Message:    "payment cancelled",
		StatusCode: http.StatusConflict,
	}
}

var (
	ErrSessionNotFound     = NewNotFoundError("Payment session not found", ErrCodeSessionNotFound)
	ErrInvalidSessionState = NewConflictError("invalid session state for this operation", ErrCodeInvalidSessionState)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}

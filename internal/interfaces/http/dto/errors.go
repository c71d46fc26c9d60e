package dto

import (
	"net/http"
	"strings"
)

// Error code constants, format ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Input error codes
const (
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeValidation   = "ERR_VALIDATION"
)

// Auth error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	ErrCodeInvalidState       = "ERR_INVALID_STATE"
	ErrCodeBusinessRule       = "ERR_BUSINESS_RULE"
	ErrCodeDuplicateWarning   = "ERR_DUPLICATE_WARNING"
	ErrCodeActiveNoticeExists = "ERR_ACTIVE_NOTICE_EXISTS"
	ErrCodeScheduleExists     = "ERR_SCHEDULE_EXISTS"
	ErrCodeInvoiceNotOverdue  = "ERR_INVOICE_NOT_OVERDUE"
	ErrCodeNoManagers         = "ERR_NO_MANAGERS"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeValidation:   http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Duplicate warnings and overlapping notices are conflicts against
	// existing state, not malformed requests.
	ErrCodeDuplicateWarning:   http.StatusConflict,
	ErrCodeActiveNoticeExists: http.StatusConflict,
	ErrCodeScheduleExists:     http.StatusConflict,

	ErrCodeInvalidState:      http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:      http.StatusUnprocessableEntity,
	ErrCodeInvoiceNotOverdue: http.StatusUnprocessableEntity,
	ErrCodeNoManagers:        http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status for an error code, defaulting to
// 500 for unmapped codes
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainErrorCodeMapping maps domain error codes to API error codes
var domainErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_STATE":        ErrCodeInvalidState,
	"UNAUTHORIZED":         ErrCodeUnauthorized,
	"FORBIDDEN":            ErrCodeForbidden,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"DUPLICATE_WARNING":    ErrCodeDuplicateWarning,
	"ACTIVE_NOTICE_EXISTS": ErrCodeActiveNoticeExists,
	"SCHEDULE_EXISTS":      ErrCodeScheduleExists,
	"INVOICE_NOT_OVERDUE":  ErrCodeInvoiceNotOverdue,
	"NO_MANAGERS":          ErrCodeNoManagers,
	"NOTICE_NOT_ACTIVE":    ErrCodeInvalidState,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Validation-style domain codes (INVALID_AMOUNT, INVALID_FREQUENCY and
// the like) collapse into the generic validation code; anything unknown
// maps to the business rule code so it never leaks as a 500.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := domainErrorCodeMapping[code]; ok {
		return apiCode
	}
	if strings.HasPrefix(code, "INVALID_") {
		return ErrCodeValidation
	}
	return ErrCodeBusinessRule
}

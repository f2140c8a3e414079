package model

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrorCode identifies the kind of failure an operation produced. The 800
// range is part of the wire contract and must not be renumbered.
type ErrorCode int

const (
	ErrCodeUnknown       ErrorCode = 800
	ErrCodeUnauthorized  ErrorCode = 801
	ErrCodeDuplicateData ErrorCode = 802
	ErrCodeInvalidObject ErrorCode = 803 // Malformed identity reference
	ErrCodeDataNotFound  ErrorCode = 804
	ErrCodeInvalidFormat ErrorCode = 805 // Malformed input shape or type
	ErrCodeMissingData   ErrorCode = 806 // Required field absent after sanitization
)

// ProblemDetails represents RFC 9457 Problem Details for HTTP APIs
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	// Extension fields
	Code ErrorCode   `json:"code,omitempty"`
	Data interface{} `json:"data,omitempty"` // Optional diagnostic payload
}

// Error implements the error interface
func (p *ProblemDetails) Error() string {
	return fmt.Sprintf("[%d] %s: %s", p.Status, p.Title, p.Detail)
}

// WriteJSON writes the problem details as JSON response
func (p *ProblemDetails) WriteJSON(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// Common error constructors

func NewUnauthorizedError(detail string) *ProblemDetails {
	return &ProblemDetails{
		Type:   "https://bookstore.shelfstack.dev/errors/unauthorized",
		Title:  "Unauthorized",
		Status: http.StatusUnauthorized,
		Detail: detail,
		Code:   ErrCodeUnauthorized,
	}
}

func NewForbiddenError(detail string) *ProblemDetails {
	return &ProblemDetails{
		Type:   "https://bookstore.shelfstack.dev/errors/forbidden",
		Title:  "Forbidden",
		Status: http.StatusForbidden,
		Detail: detail,
		Code:   ErrCodeUnauthorized,
	}
}

func NewNotFoundError(resource string) *ProblemDetails {
	return &ProblemDetails{
		Type:   "https://bookstore.shelfstack.dev/errors/not-found",
		Title:  "Not Found",
		Status: http.StatusNotFound,
		Detail: fmt.Sprintf("%s not found", resource),
		Code:   ErrCodeDataNotFound,
	}
}

func NewDuplicateError(detail string) *ProblemDetails {
	return &ProblemDetails{
		Type:   "https://bookstore.shelfstack.dev/errors/duplicate",
		Title:  "Conflict",
		Status: http.StatusConflict,
		Detail: detail,
		Code:   ErrCodeDuplicateData,
	}
}

func NewInvalidObjectError(detail string) *ProblemDetails {
	return &ProblemDetails{
		Type:   "https://bookstore.shelfstack.dev/errors/invalid-object",
		Title:  "Invalid Object ID",
		Status: http.StatusBadRequest,
		Detail: detail,
		Code:   ErrCodeInvalidObject,
	}
}

func NewInvalidFormatError(detail string) *ProblemDetails {
	return &ProblemDetails{
		Type:   "https://bookstore.shelfstack.dev/errors/invalid-format",
		Title:  "Invalid Format",
		Status: http.StatusUnprocessableEntity,
		Detail: detail,
		Code:   ErrCodeInvalidFormat,
	}
}

func NewMissingDataError(detail string) *ProblemDetails {
	return &ProblemDetails{
		Type:   "https://bookstore.shelfstack.dev/errors/missing-data",
		Title:  "Missing Data",
		Status: http.StatusUnprocessableEntity,
		Detail: detail,
		Code:   ErrCodeMissingData,
	}
}

func NewInternalError(detail string) *ProblemDetails {
	if detail == "" {
		detail = "An unexpected error occurred"
	}
	return &ProblemDetails{
		Type:   "https://bookstore.shelfstack.dev/errors/internal",
		Title:  "Internal Server Error",
		Status: http.StatusInternalServerError,
		Detail: detail,
		Code:   ErrCodeUnknown,
	}
}

func NewBadRequestError(detail string) *ProblemDetails {
	return &ProblemDetails{
		Type:   "https://bookstore.shelfstack.dev/errors/bad-request",
		Title:  "Bad Request",
		Status: http.StatusBadRequest,
		Detail: detail,
		Code:   ErrCodeInvalidFormat,
	}
}

func NewMethodNotAllowedError(allowed string) *ProblemDetails {
	return &ProblemDetails{
		Type:   "https://bookstore.shelfstack.dev/errors/method-not-allowed",
		Title:  "Method Not Allowed",
		Status: http.StatusMethodNotAllowed,
		Detail: fmt.Sprintf("Only %s method is allowed", allowed),
	}
}

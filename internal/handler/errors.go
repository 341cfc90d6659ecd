package handler

import (
	"net/http"

	"github.com/apilab/apilab/internal/handler/dto"
)

// APIError is an error rendered as a JSON error body.
type APIError struct {
	Status  int
	Code    string
	Message string
	Hint    string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	return e.Code + ": " + e.Message
}

// Write renders e to w.
func (e *APIError) Write(w http.ResponseWriter) {
	writeJSON(w, e.Status, dto.ErrorResponse{
		Error:  e.Message,
		Code:   e.Code,
		Hint:   e.Hint,
		Fields: e.Fields,
	})
}

var (
	errAuthRequired = &APIError{
		Status:  http.StatusUnauthorized,
		Code:    "AUTH_REQUIRED",
		Message: "Authentication required",
		Hint:    "Use Basic Auth (email:password) or Bearer token",
	}
	errTokenRequired = &APIError{
		Status:  http.StatusUnauthorized,
		Code:    "AUTH_REQUIRED",
		Message: "Authentication required",
		Hint:    "Send Authorization: Bearer <token> from POST /api/auth/login",
	}
	errUserNotFound = &APIError{
		Status:  http.StatusNotFound,
		Code:    "USER_NOT_FOUND",
		Message: "User not found",
	}
	errAdminRequired = &APIError{
		Status:  http.StatusForbidden,
		Code:    "ADMIN_REQUIRED",
		Message: "Admin access required",
		Hint:    "This endpoint requires admin role",
	}
	errNoData = &APIError{
		Status:  http.StatusBadRequest,
		Code:    "NO_DATA",
		Message: "Request body is required",
	}
	errInternal = &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "INTERNAL_ERROR",
		Message: "An internal error occurred",
	}
)

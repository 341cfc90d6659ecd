// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"github.com/apilab/apilab/internal/model"
)

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Hint   string            `json:"hint,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// InvalidTableResponse is returned for an unknown table name.
type InvalidTableResponse struct {
	ErrorResponse
	ValidTables []model.Table `json:"valid_tables"`
}

// MethodNotAllowedResponse explains which methods a todo route accepts.
type MethodNotAllowedResponse struct {
	ErrorResponse
	Method         string              `json:"method"`
	Path           string              `json:"path"`
	AllowedMethods map[string][]string `json:"allowed_methods"`
}

// DataResponse wraps a single resource.
type DataResponse[T any] struct {
	Data T `json:"data"`
}

// ListResponse wraps a collection and its length.
type ListResponse[T any] struct {
	Data  []T `json:"data"`
	Count int `json:"count"`
}

// NewListResponse builds a ListResponse, rendering nil as an empty array.
func NewListResponse[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Data: items, Count: len(items)}
}

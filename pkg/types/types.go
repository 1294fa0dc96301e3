// Package types defines the public wire format of the FibraDoc API.
//
// These types are imported by the server, the client SDK, the hooks layer and
// tests. JSON field names follow the Portuguese camelCase used by the web UI.
// Validation is NOT performed in this package; handlers validate inputs.
package types

import (
	"encoding/json"
	"fmt"
)

// APIVersion is reported in the X-API-Version header.
const APIVersion = "fibradoc/v1"

// PaginationKey is the response key holding list pagination metadata.
const PaginationKey = "paginacao"

// MessageKey is the response key holding the human-readable confirmation.
const MessageKey = "mensagem"

// Pagination carries list pagination metadata. Page is 1-based.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"pagina"`
	PageSize   int `json:"limite"`
	TotalPages int `json:"totalPaginas"`
}

// NewPagination computes TotalPages for total items split into pages of size.
func NewPagination(total, page, size int) Pagination {
	pages := 0
	if size > 0 {
		pages = (total + size - 1) / size
	}
	return Pagination{
		Total:      total,
		Page:       page,
		PageSize:   size,
		TotalPages: pages,
	}
}

// Page is a decoded list response.
type Page[T any] struct {
	Items      []T
	Pagination Pagination
}

// EncodeList builds the list body `{ <key>: [...], paginacao: {...} }`.
func EncodeList[T any](key string, items []T, p Pagination) map[string]any {
	if items == nil {
		items = []T{}
	}
	return map[string]any{
		key:           items,
		PaginationKey: p,
	}
}

// DecodeList parses a list body whose items live under key.
func DecodeList[T any](data []byte, key string) (Page[T], error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Page[T]{}, fmt.Errorf("decoding list body: %w", err)
	}

	page := Page[T]{Items: []T{}}
	if itemsRaw, ok := raw[key]; ok && string(itemsRaw) != "null" {
		if err := json.Unmarshal(itemsRaw, &page.Items); err != nil {
			return Page[T]{}, fmt.Errorf("decoding %s: %w", key, err)
		}
	}
	if pageRaw, ok := raw[PaginationKey]; ok {
		if err := json.Unmarshal(pageRaw, &page.Pagination); err != nil {
			return Page[T]{}, fmt.Errorf("decoding %s: %w", PaginationKey, err)
		}
	}
	return page, nil
}

// Mutation is a decoded create/update/delete response.
type Mutation[T any] struct {
	Message string
	Item    *T
}

// EncodeMutation builds `{ mensagem, <key>: {...} }`. A nil item (delete)
// produces `{ mensagem }` only.
func EncodeMutation[T any](message, key string, item *T) map[string]any {
	body := map[string]any{MessageKey: message}
	if item != nil && key != "" {
		body[key] = item
	}
	return body
}

// DecodeMutation parses a mutation body whose entity lives under key.
func DecodeMutation[T any](data []byte, key string) (Mutation[T], error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Mutation[T]{}, fmt.Errorf("decoding mutation body: %w", err)
	}

	var out Mutation[T]
	if msg, ok := raw[MessageKey]; ok {
		if err := json.Unmarshal(msg, &out.Message); err != nil {
			return Mutation[T]{}, fmt.Errorf("decoding %s: %w", MessageKey, err)
		}
	}
	if itemRaw, ok := raw[key]; ok && key != "" && string(itemRaw) != "null" {
		var item T
		if err := json.Unmarshal(itemRaw, &item); err != nil {
			return Mutation[T]{}, fmt.Errorf("decoding %s: %w", key, err)
		}
		out.Item = &item
	}
	return out, nil
}

// ===========================================================================
// RFC 9457 Problem Details
// ===========================================================================

// ProblemDetail represents an RFC 9457 Problem Details response.
type ProblemDetail struct {
	// Type is a URI reference identifying the problem type.
	// Default: "about:blank"
	Type string `json:"type"`

	// Title is a short, human-readable summary.
	Title string `json:"title"`

	// Status is the HTTP status code.
	Status int `json:"status"`

	// Detail is the human-readable message shown to users verbatim.
	Detail string `json:"detail,omitempty"`

	// Instance is a URI reference identifying the specific occurrence.
	Instance string `json:"instance,omitempty"`

	// Errors is an optional list of field-level validation errors.
	Errors []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single field-level validation failure.
type ValidationError struct {
	// Field is the JSON field path (e.g., "nome", "coordenadas.lat").
	Field string `json:"field"`

	// Message describes what is wrong with the field value.
	Message string `json:"message"`
}

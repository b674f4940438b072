// Package contract holds the JSON shapes exchanged between the remote record
// client and the record backend.
package contract

import "github.com/alexanderramin/prdsmith/internal/domain"

// RecordsPath is the collection route; single records live at RecordsPath + "/{id}".
const RecordsPath = "/api/v1/records"

// ParentQueryParam filters a collection GET by parent ID.
const ParentQueryParam = "parent_id"

// UpdateRecordRequest is the PATCH body: changed payload keys, shallow-merged
// by the server into the stored payload. A non-empty ParentID or Kind
// replaces the stored value.
type UpdateRecordRequest struct {
	ParentID string            `json:"parent_id,omitempty"`
	Kind     domain.RecordKind `json:"kind,omitempty"`
	Payload  domain.Payload    `json:"payload"`
}

// RecordListResponse wraps a collection GET.
type RecordListResponse struct {
	Records []*domain.Record `json:"records"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

type ErrorCode string

const (
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeConflict     ErrorCode = "CONFLICT"
	CodeInvalid      ErrorCode = "INVALID"
	CodeInternal     ErrorCode = "INTERNAL"
)

// Package dto defines the request and response bodies of the HTTP API.
package dto

import (
	"swiftpos/internal/core/id"
)

// PaginationRequest is the query-string paging shape shared by list
// endpoints.
type PaginationRequest struct {
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
	Search string `form:"search"`
	Sort   string `form:"sort"`
}

// Defaults clamps paging to 1..100 items per page.
func (p *PaginationRequest) Defaults() {
	switch {
	case p.Limit <= 0:
		p.Limit = 20
	case p.Limit > 100:
		p.Limit = 100
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// ListResponse wraps one page of items with the unpaged total.
type ListResponse struct {
	Items      any   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// IDResponse answers create operations.
type IDResponse struct {
	ID string `json:"id"`
}

func NewIDResponse(i id.ID) IDResponse {
	return IDResponse{ID: i.String()}
}

// SuccessResponse answers operations that return no data.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse mirrors the body middleware.ErrorHandler renders.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

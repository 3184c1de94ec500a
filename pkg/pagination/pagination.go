// Package pagination provides shared helpers for paginated list
// endpoints.
package pagination

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Params holds parsed pagination query parameters.
type Params struct {
	Page     int
	PageSize int
}

// FromContext extracts pagination parameters from the request,
// clamping them to sane bounds.
func FromContext(c echo.Context) Params {
	p := Params{Page: DefaultPage, PageSize: DefaultPageSize}

	if raw := c.QueryParam("page"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			p.Page = v
		}
	}
	if raw := c.QueryParam("page_size"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			p.PageSize = v
		}
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset returns the row offset for the current page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Limit returns the page size.
func (p Params) Limit() int {
	return p.PageSize
}

// Response wraps a page of results with paging metadata.
type Response struct {
	Data       interface{} `json:"data"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	Total      int         `json:"total"`
	TotalPages int         `json:"total_pages"`
}

// NewResponse builds a Response for one page of data. A zero-value
// Params is treated as page size 1 rather than dividing by zero.
func NewResponse(data interface{}, p Params, total int) Response {
	size := p.PageSize
	if size < 1 {
		size = 1
	}
	totalPages := total / size
	if total%size != 0 {
		totalPages++
	}
	if totalPages < 1 {
		totalPages = 1
	}
	return Response{
		Data:       data,
		Page:       p.Page,
		PageSize:   size,
		Total:      total,
		TotalPages: totalPages,
	}
}

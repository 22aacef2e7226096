package model

// Envelope is the shape shared by every JSON response.
type Envelope struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Data      any    `json:"data,omitempty"`
	Code      string `json:"code,omitempty"`
	Timestamp string `json:"timestamp"`
}

type PaginatedEnvelope struct {
	Success    bool       `json:"success"`
	Message    string     `json:"message,omitempty"`
	Data       any        `json:"data"`
	Pagination Pagination `json:"pagination"`
	Timestamp  string     `json:"timestamp"`
}

type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
	MaxPage          = 1_000_000
)

// PageRequest is a 1-based page with a bounded limit.
type PageRequest struct {
	Page  int
	Limit int
}

func NewPageRequest(page, limit int) PageRequest {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return PageRequest{Page: page, Limit: limit}
}

func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

type Page[T any] struct {
	Items []T
	Total int64
	PageRequest
}

func (p Page[T]) Pagination() Pagination {
	totalPages := 0
	if p.Limit > 0 {
		totalPages = int((p.Total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return Pagination{
		Total:      p.Total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: totalPages,
		HasNext:    p.Page < totalPages,
		HasPrev:    p.Page > 1,
	}
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

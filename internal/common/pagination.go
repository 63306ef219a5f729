// File: internal/common/pagination.go
package common

// Page bounds for list endpoints. Requests asking for more than MaxPageSize
// rows are clamped, not rejected.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PaginationQuery is embedded in list request DTOs and bound from the query
// string.
type PaginationQuery struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

// Offset returns the row offset for the requested page. Out-of-range values
// are normalized in place so the repository and the response envelope agree
// on what was actually served.
func (pq *PaginationQuery) Offset() int {
	if pq.Page <= 0 {
		pq.Page = DefaultPage
	}
	return (pq.Page - 1) * pq.Limit()
}

// Limit returns the clamped page size.
func (pq *PaginationQuery) Limit() int {
	if pq.PageSize <= 0 {
		pq.PageSize = DefaultPageSize
	} else if pq.PageSize > MaxPageSize {
		pq.PageSize = MaxPageSize
	}
	return pq.PageSize
}

package domain

import "strconv"

// SortDirection is the ordering applied to the sort field of a list query.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Toggle returns the opposite direction.
func (d SortDirection) Toggle() SortDirection {
	if d == SortAsc {
		return SortDesc
	}
	return SortAsc
}

// Valid reports whether d is one of the supported directions.
func (d SortDirection) Valid() bool {
	return d == SortAsc || d == SortDesc
}

// PagedResult is one page of a server-side paginated list.
type PagedResult[T any] struct {
	Items           []T  `json:"items"`
	TotalCount      int  `json:"totalCount"`
	PageNumber      int  `json:"pageNumber"`
	PageSize        int  `json:"pageSize"`
	TotalPages      int  `json:"totalPages"`
	HasPreviousPage bool `json:"hasPreviousPage"`
	HasNextPage     bool `json:"hasNextPage"`
}

// StatusFilter is the tri-state active-status filter of the list view.
type StatusFilter int

const (
	StatusActive StatusFilter = iota
	StatusInactive
	StatusAll
)

// ParseStatusFilter parses "true", "false" or "all" (case-sensitive). Empty
// input yields the default, StatusActive.
func ParseStatusFilter(s string) (StatusFilter, bool) {
	switch s {
	case "", "true":
		return StatusActive, true
	case "false":
		return StatusInactive, true
	case "all":
		return StatusAll, true
	default:
		return StatusActive, false
	}
}

// String returns the query form of the filter.
func (f StatusFilter) String() string {
	switch f {
	case StatusInactive:
		return "false"
	case StatusAll:
		return "all"
	default:
		return "true"
	}
}

// Estado converts the filter to the optional estado query value.
func (f StatusFilter) Estado() *bool {
	switch f {
	case StatusActive:
		v := true
		return &v
	case StatusInactive:
		v := false
		return &v
	default:
		return nil
	}
}

// Filters is the filter state of the list view. It is comparable by value.
type Filters struct {
	Nombres string
	NumID   string
	Estado  StatusFilter
}

// DefaultFilters returns the initial filter state: no text filters, active only.
func DefaultFilters() Filters {
	return Filters{Estado: StatusActive}
}

// QueryParams are the optional list query parameters sent to the backend.
// Nil pointers and empty strings are absent and never serialized.
type QueryParams struct {
	PageNumber    *int
	PageSize      *int
	SortField     string
	SortDirection SortDirection
	Nombres       string
	NumID         string
	Estado        *bool
}

// Values returns the present parameters keyed by their wire names.
func (q *QueryParams) Values() map[string]string {
	out := make(map[string]string, 7)
	if q == nil {
		return out
	}
	if q.PageNumber != nil {
		out["pageNumber"] = strconv.Itoa(*q.PageNumber)
	}
	if q.PageSize != nil {
		out["pageSize"] = strconv.Itoa(*q.PageSize)
	}
	if q.SortField != "" {
		out["sortField"] = q.SortField
	}
	if q.SortDirection != "" {
		out["sortDirection"] = string(q.SortDirection)
	}
	if q.Nombres != "" {
		out["nombres"] = q.Nombres
	}
	if q.NumID != "" {
		out["numId"] = q.NumID
	}
	if q.Estado != nil {
		out["estado"] = strconv.FormatBool(*q.Estado)
	}
	return out
}

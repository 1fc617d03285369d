package pkg

import (
	"context"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/pagination"

	"github.com/simp-lee/clientes/internal/domain"
)

const (
	defaultPage      = 1
	DefaultSortField = "Id"

	// DefaultFilterDebounce is the quiet period before a filter change reloads the list.
	DefaultFilterDebounce = 300 * time.Millisecond
)

// DefaultPageSizeOptions is the fixed set of page sizes offered by the list view.
var DefaultPageSizeOptions = []int{5, 10, 20, 50}

// SortFields lists the backend fields the list view may sort by.
var SortFields = []string{"Id", "NumId", "Nombres", "Apellidos", "Correo", "Estado", "FechaCreacion"}

// ListQuery is the list view state: page, page size, sort and filters.
type ListQuery struct {
	Page          int
	PageSize      int
	SortField     string
	SortDirection domain.SortDirection
	Filters       domain.Filters
}

// DefaultListQuery returns the initial list state for the given page sizes:
// first page, smallest size, sorted by Id ascending, active records only.
func DefaultListQuery(sizes []int) ListQuery {
	return ListQuery{
		Page:          defaultPage,
		PageSize:      smallest(sizes),
		SortField:     DefaultSortField,
		SortDirection: domain.SortAsc,
		Filters:       domain.DefaultFilters(),
	}
}

// ParseListQuery reads the list state from query parameters using the same
// names the backend accepts. Invalid or unknown values fall back to defaults.
func ParseListQuery(c *gin.Context, sizes []int) ListQuery {
	q := DefaultListQuery(sizes)

	if page, err := strconv.Atoi(c.Query("pageNumber")); err == nil && page >= 1 {
		q.Page = page
	}
	if size, err := strconv.Atoi(c.Query("pageSize")); err == nil && AllowedPageSize(size, sizes) {
		q.PageSize = size
	}
	if field := strings.TrimSpace(c.Query("sortField")); slices.Contains(SortFields, field) {
		q.SortField = field
	}
	if dir := domain.SortDirection(strings.ToLower(c.Query("sortDirection"))); dir.Valid() {
		q.SortDirection = dir
	}
	q.Filters.Nombres = strings.TrimSpace(c.Query("nombres"))
	q.Filters.NumID = strings.TrimSpace(c.Query("numId"))
	if status, ok := domain.ParseStatusFilter(c.Query("estado")); ok {
		q.Filters.Estado = status
	}

	return q
}

// Params converts the state into backend query parameters. Empty text
// filters and the "all" status are omitted.
func (q ListQuery) Params() *domain.QueryParams {
	page, size := q.Page, q.PageSize
	return &domain.QueryParams{
		PageNumber:    &page,
		PageSize:      &size,
		SortField:     q.SortField,
		SortDirection: q.SortDirection,
		Nombres:       q.Filters.Nombres,
		NumID:         q.Filters.NumID,
		Estado:        q.Filters.Estado.Estado(),
	}
}

// Values encodes the state as page URL query values. Unlike Params, the
// status filter is always present so "all" survives a round trip.
func (q ListQuery) Values() url.Values {
	v := url.Values{}
	for key, value := range q.Params().Values() {
		v.Set(key, value)
	}
	v.Set("estado", q.Filters.Estado.String())
	return v
}

// URL returns path with the state appended as its query.
func (q ListQuery) URL(path string) string {
	return path + "?" + q.Values().Encode()
}

// WithPage returns a copy of q pointing at page.
func (q ListQuery) WithPage(page int) ListQuery {
	q.Page = page
	return q
}

// WithSort returns a copy of q sorted by field: the same field flips the
// direction, a new field starts ascending. The page is kept.
func (q ListQuery) WithSort(field string) ListQuery {
	if q.SortField == field {
		q.SortDirection = q.SortDirection.Toggle()
	} else {
		q.SortField = field
		q.SortDirection = domain.SortAsc
	}
	return q
}

// SortClass returns "asc" or "desc" when field is the active sort field, else "".
func (q ListQuery) SortClass(field string) string {
	if q.SortField != field {
		return ""
	}
	return string(q.SortDirection)
}

// PagesArray returns 1..totalPages, or an empty slice when totalPages <= 0.
func PagesArray(totalPages int) []int {
	if totalPages <= 0 {
		return []int{}
	}
	view, err := pagination.NewPaginator(
		pagination.WithKnownTotal[int](int64(totalPages)),
		pagination.WithItemsPerPage[int](1),
		pagination.WithPagesInRange[int](totalPages),
		pagination.WithSliceCallback(func(context.Context, int, int) ([]int, error) { return nil, nil }),
	).Paginate(context.Background(), 1)
	if err != nil {
		return []int{}
	}
	return view.Pages
}

// NewPageView converts a backend page into the navigation view rendered by
// the list template and the CLI footer. window bounds the page links around
// the current page; window < 1 lists every page. The backend counts are
// authoritative: the view is never re-sliced.
func NewPageView[T any](ctx context.Context, result *domain.PagedResult[T], window int) (*pagination.Pagination[T], error) {
	if result == nil {
		result = &domain.PagedResult[T]{}
	}
	size := max(result.PageSize, 1)
	if window < 1 {
		window = max(result.TotalPages, 1)
	}
	items := result.Items
	return pagination.NewPaginator(
		pagination.WithKnownTotal[T](int64(max(result.TotalCount, 0))),
		pagination.WithItemsPerPage[T](size),
		pagination.WithPagesInRange[T](window),
		pagination.WithSliceCallback(func(context.Context, int, int) ([]T, error) { return items, nil }),
	).Paginate(ctx, max(result.PageNumber, 1))
}

// AllowedPageSize reports whether n is one of sizes.
func AllowedPageSize(n int, sizes []int) bool {
	return slices.Contains(sizes, n)
}

func smallest(sizes []int) int {
	if len(sizes) == 0 {
		return DefaultPageSizeOptions[0]
	}
	return slices.Min(sizes)
}

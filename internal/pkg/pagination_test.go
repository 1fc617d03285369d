package pkg

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/clientes/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext(queryParams url.Values) *gin.Context {
	req := httptest.NewRequest(http.MethodGet, "/?"+queryParams.Encode(), nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c
}

func TestParseListQuery_Defaults(t *testing.T) {
	c := newTestContext(url.Values{})
	q := ParseListQuery(c, DefaultPageSizeOptions)

	want := ListQuery{
		Page:          1,
		PageSize:      5,
		SortField:     "Id",
		SortDirection: domain.SortAsc,
		Filters:       domain.Filters{Estado: domain.StatusActive},
	}
	if !reflect.DeepEqual(q, want) {
		t.Errorf("ParseListQuery() = %+v; want %+v", q, want)
	}
}

func TestParseListQuery_CustomValues(t *testing.T) {
	c := newTestContext(url.Values{
		"pageNumber":    {"3"},
		"pageSize":      {"20"},
		"sortField":     {"Nombres"},
		"sortDirection": {"DESC"},
		"nombres":       {" ana "},
		"numId":         {"10"},
		"estado":        {"all"},
	})
	q := ParseListQuery(c, DefaultPageSizeOptions)

	if q.Page != 3 {
		t.Errorf("Page = %d; want 3", q.Page)
	}
	if q.PageSize != 20 {
		t.Errorf("PageSize = %d; want 20", q.PageSize)
	}
	if q.SortField != "Nombres" || q.SortDirection != domain.SortDesc {
		t.Errorf("sort = %s %s; want Nombres desc", q.SortField, q.SortDirection)
	}
	if q.Filters.Nombres != "ana" || q.Filters.NumID != "10" || q.Filters.Estado != domain.StatusAll {
		t.Errorf("Filters = %+v", q.Filters)
	}
}

func TestParseListQuery_InvalidValuesFallBack(t *testing.T) {
	c := newTestContext(url.Values{
		"pageNumber":    {"-1"},
		"pageSize":      {"7"},
		"sortField":     {"password; DROP TABLE"},
		"sortDirection": {"sideways"},
		"estado":        {"maybe"},
	})
	q := ParseListQuery(c, DefaultPageSizeOptions)

	if q.Page != 1 || q.PageSize != 5 {
		t.Errorf("paging = %d/%d; want 1/5", q.Page, q.PageSize)
	}
	if q.SortField != "Id" || q.SortDirection != domain.SortAsc {
		t.Errorf("sort = %s %s; want Id asc", q.SortField, q.SortDirection)
	}
	if q.Filters.Estado != domain.StatusActive {
		t.Errorf("Estado = %v; want active", q.Filters.Estado)
	}
}

func TestListQuery_Params(t *testing.T) {
	q := DefaultListQuery(DefaultPageSizeOptions)
	q.Filters.Estado = domain.StatusAll

	got := q.Params().Values()
	want := map[string]string{
		"pageNumber":    "1",
		"pageSize":      "5",
		"sortField":     "Id",
		"sortDirection": "asc",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Params().Values() = %v; want %v", got, want)
	}

	if v := q.Values().Get("estado"); v != "all" {
		t.Errorf("Values() estado = %q; want all", v)
	}
}

func TestListQuery_WithSort(t *testing.T) {
	q := DefaultListQuery(DefaultPageSizeOptions).WithPage(3)

	q = q.WithSort("Id")
	if q.SortDirection != domain.SortDesc {
		t.Fatalf("same field should flip to desc, got %s", q.SortDirection)
	}
	q = q.WithSort("Id")
	if q.SortDirection != domain.SortAsc {
		t.Fatalf("same field should flip back to asc, got %s", q.SortDirection)
	}
	q = q.WithSort("Id").WithSort("Nombres")
	if q.SortField != "Nombres" || q.SortDirection != domain.SortAsc {
		t.Fatalf("new field should reset to asc, got %s %s", q.SortField, q.SortDirection)
	}
	if q.Page != 3 {
		t.Fatalf("sorting must keep the page, got %d", q.Page)
	}
	if q.SortClass("Nombres") != "asc" || q.SortClass("Id") != "" {
		t.Fatal("SortClass should only mark the active field")
	}
}

func TestPagesArray(t *testing.T) {
	tests := []struct {
		total int
		want  []int
	}{
		{0, []int{}},
		{-2, []int{}},
		{1, []int{1}},
		{4, []int{1, 2, 3, 4}},
	}
	for _, tt := range tests {
		if got := PagesArray(tt.total); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("PagesArray(%d) = %v; want %v", tt.total, got, tt.want)
		}
	}
}

func TestNewPageView(t *testing.T) {
	result := &domain.PagedResult[string]{
		Items: []string{"f", "g"}, TotalCount: 12, PageNumber: 3, PageSize: 5, TotalPages: 3,
		HasPreviousPage: true,
	}
	view, err := NewPageView(context.Background(), result, 0)
	if err != nil {
		t.Fatalf("NewPageView() error = %v", err)
	}
	if view.CurrentPage != 3 || view.TotalPages != 3 || view.TotalItems != 12 {
		t.Fatalf("view = page %d of %d (%d items); want 3 of 3 (12)", view.CurrentPage, view.TotalPages, view.TotalItems)
	}
	if !reflect.DeepEqual(view.Pages, []int{1, 2, 3}) {
		t.Errorf("Pages = %v; want [1 2 3]", view.Pages)
	}
	if !reflect.DeepEqual(view.Items, []string{"f", "g"}) {
		t.Errorf("Items = %v; want the backend page untouched", view.Items)
	}
	if view.PreviousPage == nil || *view.PreviousPage != 2 {
		t.Errorf("PreviousPage = %v; want 2", view.PreviousPage)
	}
	if view.NextPage != nil {
		t.Errorf("NextPage = %d; want nil on the last page", *view.NextPage)
	}
}

func TestNewPageView_Window(t *testing.T) {
	result := &domain.PagedResult[int]{TotalCount: 100, PageNumber: 5, PageSize: 10, TotalPages: 10}
	view, err := NewPageView(context.Background(), result, 3)
	if err != nil {
		t.Fatalf("NewPageView() error = %v", err)
	}
	if !reflect.DeepEqual(view.Pages, []int{4, 5, 6}) {
		t.Errorf("Pages = %v; want [4 5 6]", view.Pages)
	}
	if !view.HasPreviousPage() || !view.HasNextPage() {
		t.Error("a middle page should link both ways")
	}
}

func TestNewPageView_Empty(t *testing.T) {
	view, err := NewPageView(context.Background(), &domain.PagedResult[int]{PageNumber: 1, PageSize: 5}, 0)
	if err != nil {
		t.Fatalf("NewPageView() error = %v", err)
	}
	if view.TotalItems != 0 || view.CurrentPage != 1 || len(view.Items) != 0 {
		t.Errorf("view = %+v; want an empty first page", view)
	}
	if view.PreviousPage != nil || view.NextPage != nil {
		t.Error("an empty list has no neighbours")
	}

	if _, err := NewPageView[int](context.Background(), nil, 0); err != nil {
		t.Errorf("NewPageView(nil) error = %v", err)
	}
}

func TestDefaultListQuery_SmallestSize(t *testing.T) {
	if got := DefaultListQuery([]int{50, 20, 10}).PageSize; got != 10 {
		t.Errorf("PageSize = %d; want 10", got)
	}
	if got := DefaultListQuery(nil).PageSize; got != 5 {
		t.Errorf("PageSize = %d; want 5", got)
	}
}

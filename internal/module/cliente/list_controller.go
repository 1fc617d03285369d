package cliente

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/simp-lee/clientes/internal/domain"
	"github.com/simp-lee/clientes/internal/pkg"
)

const filterDebounceKey = "filters"

// Prompter is the user notification channel. Confirm blocks until the user
// answers; Alert only informs.
type Prompter interface {
	Confirm(msg string) bool
	Alert(msg string)
}

// Navigator moves the user between the list, new and edit views.
type Navigator interface {
	GoToList()
	GoToNew()
	GoToEdit(id uint)
}

// ListConfig configures a ListController. Zero values select the defaults.
type ListConfig struct {
	PageSizeOptions []int
	// FilterDebounce is the quiet period of ApplyFilters. Negative emits
	// on the next tick.
	FilterDebounce time.Duration
	Clock          clockwork.Clock
	Logger         *slog.Logger

	// Initial seeds the list state without a network call. Its filters
	// count as already emitted.
	Initial *pkg.ListQuery
}

// ListController owns the paging, sort and filter state of the list view and
// the last fetched page. It is safe for concurrent use; the lock is never
// held across a gateway call.
type ListController struct {
	gateway  domain.ClienteGateway
	prompter Prompter
	nav      Navigator
	logger   *slog.Logger

	debouncer      *pkg.Debouncer
	filterDebounce time.Duration
	sizes          []int

	mu     sync.Mutex
	query  pkg.ListQuery
	result *domain.PagedResult[domain.Cliente]

	// issued is the sequence number of the newest refresh, applied the one
	// whose response is displayed. Older responses are dropped.
	issued  uint64
	applied uint64

	emitted    domain.Filters
	hasEmitted bool

	// filterVersion counts ApplyFilters calls; filtersIdle is closed while
	// no filter emission is pending.
	filterVersion uint64
	filtersIdle   chan struct{}
}

// NewListController creates a ListController. Panics if gateway, prompter or
// nav is nil.
func NewListController(gateway domain.ClienteGateway, prompter Prompter, nav Navigator, cfg ListConfig) *ListController {
	if gateway == nil {
		panic("cliente.NewListController: gateway must not be nil")
	}
	if prompter == nil {
		panic("cliente.NewListController: prompter must not be nil")
	}
	if nav == nil {
		panic("cliente.NewListController: navigator must not be nil")
	}

	sizes := cfg.PageSizeOptions
	if len(sizes) == 0 {
		sizes = pkg.DefaultPageSizeOptions
	}
	delay := cfg.FilterDebounce
	switch {
	case delay < 0:
		delay = 0
	case delay == 0:
		delay = pkg.DefaultFilterDebounce
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	query := pkg.DefaultListQuery(sizes)
	seeded := cfg.Initial != nil
	if seeded {
		query = *cfg.Initial
		if !pkg.AllowedPageSize(query.PageSize, sizes) {
			query.PageSize = pkg.DefaultListQuery(sizes).PageSize
		}
		if query.Page < 1 {
			query.Page = 1
		}
	}

	idle := make(chan struct{})
	close(idle)

	return &ListController{
		gateway:        gateway,
		prompter:       prompter,
		nav:            nav,
		logger:         log.With("component", "cliente.list"),
		debouncer:      pkg.NewDebouncer(cfg.Clock),
		filterDebounce: delay,
		sizes:          append([]int(nil), sizes...),
		query:          query,
		emitted:        query.Filters,
		hasEmitted:     seeded,
		filtersIdle:    idle,
	}
}

// Refresh fetches the page described by the current state. The displayed
// page is cleared while the request is in flight. On failure the user is
// alerted and the error is returned.
func (lc *ListController) Refresh(ctx context.Context) error {
	lc.mu.Lock()
	lc.issued++
	seq := lc.issued
	params := lc.query.Params()
	lc.result = nil
	lc.mu.Unlock()

	result, err := lc.gateway.List(ctx, params)

	lc.mu.Lock()
	if applied := lc.applied; seq < applied {
		lc.mu.Unlock()
		lc.logger.DebugContext(ctx, "discarding stale list response", "seq", seq, "applied", applied)
		return nil
	}
	lc.applied = seq
	if err != nil {
		lc.result = nil
		lc.mu.Unlock()
		lc.logger.ErrorContext(ctx, "load clientes failed", "error", err)
		lc.prompter.Alert(MsgLoadListFailed)
		return err
	}
	lc.result = result
	lc.mu.Unlock()
	return nil
}

// GoToPage moves to page n. It does nothing unless a page has been fetched
// and n is within 1..totalPages.
func (lc *ListController) GoToPage(ctx context.Context, n int) error {
	lc.mu.Lock()
	if lc.result == nil || n < 1 || n > lc.result.TotalPages {
		lc.mu.Unlock()
		return nil
	}
	lc.query.Page = n
	lc.mu.Unlock()

	return lc.Refresh(ctx)
}

// SetPageSize changes the page size and returns to the first page. Sizes
// outside the configured options are rejected without a state change.
func (lc *ListController) SetPageSize(ctx context.Context, n int) error {
	if !pkg.AllowedPageSize(n, lc.sizes) {
		return domain.NewAppError(domain.CodeValidation, fmt.Sprintf("page size %d is not allowed", n), nil)
	}

	lc.mu.Lock()
	lc.query.PageSize = n
	lc.query.Page = 1
	lc.mu.Unlock()

	return lc.Refresh(ctx)
}

// SortBy sorts by field. The active field flips direction; a new field starts
// ascending. The page is kept.
func (lc *ListController) SortBy(ctx context.Context, field string) error {
	field = strings.TrimSpace(field)
	if field == "" {
		return domain.NewAppError(domain.CodeValidation, "sort field is required", nil)
	}

	lc.mu.Lock()
	lc.query = lc.query.WithSort(field)
	lc.mu.Unlock()

	return lc.Refresh(ctx)
}

// ApplyFilters records a filter change. After the quiet period the latest
// filters are emitted: the first emission always refreshes, later ones only
// when they differ from the previous emission. Refreshing resets the page to 1.
func (lc *ListController) ApplyFilters(ctx context.Context, f domain.Filters) {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	lc.query.Filters = f
	lc.filterVersion++
	version := lc.filterVersion
	lc.setFilteringLocked(true)

	lc.debouncer.Schedule(filterDebounceKey, lc.filterDebounce, func() {
		lc.emitFilters(ctx, f, version)
	})
}

func (lc *ListController) emitFilters(ctx context.Context, f domain.Filters, version uint64) {
	defer lc.filtersDone(version)

	lc.mu.Lock()
	if lc.hasEmitted && lc.emitted == f {
		lc.mu.Unlock()
		return
	}
	lc.emitted = f
	lc.hasEmitted = true
	lc.query.Page = 1
	lc.mu.Unlock()

	// Refresh reports failures to the user itself.
	_ = lc.Refresh(ctx)
}

func (lc *ListController) filtersDone(version uint64) {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	if version == lc.filterVersion {
		lc.setFilteringLocked(false)
	}
}

func (lc *ListController) setFilteringLocked(pending bool) {
	select {
	case <-lc.filtersIdle:
		if pending {
			lc.filtersIdle = make(chan struct{})
		}
	default:
		if !pending {
			close(lc.filtersIdle)
		}
	}
}

// WaitFilters blocks until no filter emission is pending, including the
// refresh it triggers, or until ctx is done.
func (lc *ListController) WaitFilters(ctx context.Context) error {
	lc.mu.Lock()
	idle := lc.filtersIdle
	lc.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ToggleStatus deactivates an active record or activates an inactive one
// after confirmation, then refreshes. A declined confirmation does nothing.
func (lc *ListController) ToggleStatus(ctx context.Context, c domain.Cliente) error {
	if !c.HasID() {
		lc.logger.ErrorContext(ctx, "toggle status: cliente has no id", "numId", c.NumID)
		return domain.ErrInternal
	}

	confirm, success, failure := toggleMessages(c.Estado)
	if !lc.prompter.Confirm(confirm) {
		return nil
	}

	var err error
	if c.Estado {
		err = lc.gateway.Deactivate(ctx, c.IDValue())
	} else {
		err = lc.gateway.Activate(ctx, c.IDValue())
	}
	if err != nil {
		lc.logger.ErrorContext(ctx, "toggle status failed", "id", c.IDValue(), "estado", c.Estado, "error", err)
		lc.prompter.Alert(failure)
		return err
	}

	lc.prompter.Alert(success)
	return lc.Refresh(ctx)
}

// Remove soft deletes a record after confirmation, then refreshes.
func (lc *ListController) Remove(ctx context.Context, c domain.Cliente) error {
	if !c.HasID() {
		lc.logger.ErrorContext(ctx, "remove: cliente has no id", "numId", c.NumID)
		return domain.ErrInternal
	}
	if !lc.prompter.Confirm(MsgConfirmRemove) {
		return nil
	}

	if err := lc.gateway.Deactivate(ctx, c.IDValue()); err != nil {
		lc.logger.ErrorContext(ctx, "remove failed", "id", c.IDValue(), "error", err)
		lc.prompter.Alert(MsgRemoveFailed)
		return err
	}

	lc.prompter.Alert(MsgRemoved)
	return lc.Refresh(ctx)
}

// Edit navigates to the edit view of the record with id.
func (lc *ListController) Edit(id uint) error {
	if id == 0 {
		return domain.ErrInternal
	}
	lc.nav.GoToEdit(id)
	return nil
}

// New navigates to the new record view.
func (lc *ListController) New() {
	lc.nav.GoToNew()
}

// SortClass returns "asc" or "desc" for the active sort field, else "".
func (lc *ListController) SortClass(field string) string {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.query.SortClass(field)
}

// PagesArray returns 1..totalPages.
func (lc *ListController) PagesArray(totalPages int) []int {
	return pkg.PagesArray(totalPages)
}

// Items returns a copy of the displayed records.
func (lc *ListController) Items() []domain.Cliente {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	if lc.result == nil {
		return []domain.Cliente{}
	}
	return append([]domain.Cliente(nil), lc.result.Items...)
}

// Result returns a copy of the displayed page, or nil when none is loaded.
func (lc *ListController) Result() *domain.PagedResult[domain.Cliente] {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	if lc.result == nil {
		return nil
	}
	r := *lc.result
	r.Items = append([]domain.Cliente(nil), lc.result.Items...)
	return &r
}

// State returns the current paging, sort and filter state.
func (lc *ListController) State() pkg.ListQuery {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.query
}

// PageSizeOptions returns the allowed page sizes.
func (lc *ListController) PageSizeOptions() []int {
	return append([]int(nil), lc.sizes...)
}

// Close cancels a pending filter emission and releases WaitFilters.
func (lc *ListController) Close() {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	lc.debouncer.Stop()
	lc.filterVersion++
	lc.setFilteringLocked(false)
}

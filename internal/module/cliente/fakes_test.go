package cliente

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/simp-lee/clientes/internal/domain"
)

// --- fake gateway shared by controller and handler tests ---

type fakeGateway struct {
	mu sync.Mutex

	total    int                     // records reported by List
	clientes map[uint]domain.Cliente // records served by GetByID
	existing map[string]bool         // codes reported by Exists

	// hooks for error injection
	listErr       error
	getErr        error
	createErr     error
	updateErr     error
	existsErr     error
	deactivateErr error
	activateErr   error

	// listHook runs before List answers; n is the 0-based call index.
	listHook func(n int)

	listCalls   []domain.QueryParams
	getCalls    []uint
	existsCalls []string
	created     []domain.Cliente
	updated     []domain.Cliente
	deactivated []uint
	activated   []uint
}

var _ domain.ClienteGateway = (*fakeGateway)(nil)

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		clientes: make(map[uint]domain.Cliente),
		existing: make(map[string]bool),
	}
}

func (f *fakeGateway) List(_ context.Context, q *domain.QueryParams) (*domain.PagedResult[domain.Cliente], error) {
	f.mu.Lock()
	n := len(f.listCalls)
	f.listCalls = append(f.listCalls, *q)
	hook := f.listHook
	total, err := f.total, f.listErr
	f.mu.Unlock()

	if hook != nil {
		hook(n)
	}
	if err != nil {
		return nil, err
	}

	page, size := 1, 5
	if q.PageNumber != nil {
		page = *q.PageNumber
	}
	if q.PageSize != nil {
		size = *q.PageSize
	}
	var items []domain.Cliente
	for i := (page - 1) * size; i < total && i < page*size; i++ {
		id := uint(i + 1)
		items = append(items, domain.Cliente{ID: &id, NumID: fmt.Sprintf("%03d", id), Estado: true})
	}
	return pagedResult(items, total, page, size), nil
}

func (f *fakeGateway) GetByID(_ context.Context, id uint) (*domain.Cliente, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls = append(f.getCalls, id)
	if f.getErr != nil {
		return nil, f.getErr
	}
	c, ok := f.clientes[id]
	if !ok {
		return nil, domain.NewRemoteError(404, "cliente not found", nil)
	}
	return &c, nil
}

func (f *fakeGateway) Create(_ context.Context, c domain.Cliente) (*domain.Cliente, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, c)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &c, nil
}

func (f *fakeGateway) Update(_ context.Context, _ uint, c domain.Cliente) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, c)
	return f.updateErr
}

func (f *fakeGateway) Exists(_ context.Context, numID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.existsCalls = append(f.existsCalls, numID)
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.existing[numID], nil
}

func (f *fakeGateway) Deactivate(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deactivated = append(f.deactivated, id)
	return f.deactivateErr
}

func (f *fakeGateway) Activate(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activated = append(f.activated, id)
	return f.activateErr
}

func (f *fakeGateway) listCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listCalls)
}

func (f *fakeGateway) lastList() domain.QueryParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls[len(f.listCalls)-1]
}

func (f *fakeGateway) existsCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.existsCalls)
}

func (f *fakeGateway) createdRecords() []domain.Cliente {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Cliente(nil), f.created...)
}

func (f *fakeGateway) updatedRecords() []domain.Cliente {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Cliente(nil), f.updated...)
}

// --- prompter and navigator fakes ---

type fakePrompter struct {
	mu       sync.Mutex
	answer   bool
	confirms []string
	alerts   []string
}

func (p *fakePrompter) Confirm(msg string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.confirms = append(p.confirms, msg)
	return p.answer
}

func (p *fakePrompter) Alert(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alerts = append(p.alerts, msg)
}

func (p *fakePrompter) Alerts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.alerts...)
}

func (p *fakePrompter) Confirms() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.confirms...)
}

type fakeNavigator struct {
	mu     sync.Mutex
	visits []string
}

func (n *fakeNavigator) record(v string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.visits = append(n.visits, v)
}

func (n *fakeNavigator) GoToList()        { n.record("list") }
func (n *fakeNavigator) GoToNew()         { n.record("new") }
func (n *fakeNavigator) GoToEdit(id uint) { n.record(fmt.Sprintf("edit:%d", id)) }

func (n *fakeNavigator) Visits() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.visits...)
}

func uintPtr(v uint) *uint { return &v }

func pagedResult[T any](items []T, total, page, size int) *domain.PagedResult[T] {
	if items == nil {
		items = []T{}
	}
	pages := (total + size - 1) / size
	return &domain.PagedResult[T]{
		Items: items, TotalCount: total, PageNumber: page, PageSize: size, TotalPages: pages,
		HasPreviousPage: page > 1, HasNextPage: page < pages,
	}
}

// --- polling helpers ---

const waitFor = time.Second

// eventually polls cond until it holds or waitFor elapses.
func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(waitFor)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal(msg)
		}
		time.Sleep(time.Millisecond)
	}
}

// never fails if cond holds at any poll within d.
func never(t *testing.T, cond func() bool, d time.Duration, msg string) {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			t.Fatal(msg)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func mustPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected a panic", name)
		}
	}()
	fn()
}

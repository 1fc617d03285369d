package cliente

import (
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/clientes/internal/domain"
	"github.com/simp-lee/clientes/internal/middleware"
	"github.com/simp-lee/clientes/internal/pkg"
)

const (
	listPath     = "/clientes"
	loadErrorKey = "load"
)

// List actions carried by the "action" query parameter of GET /clientes.
const (
	ActionSort   = "sort"   // field=<sort field>
	ActionSize   = "size"   // to=<page size>
	ActionFilter = "filter" // filterNombres, filterNumId, filterEstado
	ActionNew    = "new"
	ActionEdit   = "edit" // id=<record id>
)

// PageOptions configures the page handler. Zero values select the defaults.
type PageOptions struct {
	PageSizeOptions []int
	// FilterDebounce and CodeDebounce become the htmx trigger delays of the
	// filter inputs and the identification code field.
	FilterDebounce time.Duration
	CodeDebounce   time.Duration
	Logger         *slog.Logger
}

// ClientePageHandler renders the cliente pages and answers their htmx
// requests. Each request drives a short-lived controller whose alerts become
// toasts and whose navigation becomes HX-Redirect.
type ClientePageHandler struct {
	gateway     domain.ClienteGateway
	sizes       []int
	filterDelay string
	codeDelay   string
	logger      *slog.Logger
}

// NewClientePageHandler creates a ClientePageHandler.
func NewClientePageHandler(gateway domain.ClienteGateway, opts PageOptions) *ClientePageHandler {
	sizes := opts.PageSizeOptions
	if len(sizes) == 0 {
		sizes = pkg.DefaultPageSizeOptions
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &ClientePageHandler{
		gateway:     gateway,
		sizes:       sizes,
		filterDelay: htmxDelay(opts.FilterDebounce, pkg.DefaultFilterDebounce),
		codeDelay:   htmxDelay(opts.CodeDebounce, pkg.DefaultCodeDebounce),
		logger:      log,
	}
}

// htmxDelay formats d for hx-trigger "delay:" modifiers, e.g. "300ms".
func htmxDelay(d, def time.Duration) string {
	if d <= 0 {
		d = def
	}
	return strconv.FormatInt(d.Milliseconds(), 10) + "ms"
}

// ListPage renders the list page, or only the table for htmx requests.
// The query is the current list state. Without an action it is a deep
// link: page 1 is loaded first and the requested page is only fetched when
// it exists. With an action, that list operation is applied to the state;
// htmx gets the table and the new state as HX-Push-Url, a plain request
// is redirected to the new state.
// GET /clientes
func (h *ClientePageHandler) ListPage(c *gin.Context) {
	ctx := c.Request.Context()
	q := pkg.ParseListQuery(c, h.sizes)
	action := c.Query("action")

	seed := q
	if action == "" {
		seed.Page = 1
	}
	p := &pagePrompter{}
	nav := &pageNavigator{}
	ctrl := h.newListController(p, nav, seed)
	defer ctrl.Close()

	switch action {
	case "":
		if err := ctrl.Refresh(ctx); err == nil && q.Page > 1 {
			_ = ctrl.GoToPage(ctx, q.Page)
		}
	case ActionSort:
		field := c.Query("field")
		if !slices.Contains(pkg.SortFields, field) {
			badRequest(c)
			return
		}
		_ = ctrl.SortBy(ctx, field)
	case ActionSize:
		size, _ := strconv.Atoi(c.Query("to"))
		if err := ctrl.SetPageSize(ctx, size); domain.IsValidation(err) {
			badRequest(c)
			return
		}
	case ActionFilter:
		ctrl.ApplyFilters(ctx, filtersFromQuery(c))
		if err := ctrl.WaitFilters(ctx); err != nil {
			c.Status(http.StatusRequestTimeout)
			return
		}
		// Unchanged filters emit nothing; the table still needs a page.
		if ctrl.Result() == nil && !p.has(MsgLoadListFailed) {
			_ = ctrl.Refresh(ctx)
		}
	case ActionNew:
		ctrl.New()
		navigate(c, nav.target)
		return
	case ActionEdit:
		id, err := strconv.ParseUint(c.Query("id"), 10, 0)
		if err != nil || ctrl.Edit(uint(id)) != nil {
			badRequest(c)
			return
		}
		navigate(c, nav.target)
		return
	default:
		badRequest(c)
		return
	}

	data := h.listData(c, ctrl, p)
	if c.Query("error") == loadErrorKey {
		data["Error"] = MsgLoadFailed
	}
	state := ctrl.State().URL(listPath)

	// History restores need the whole page even though htmx sent them.
	if pkg.IsHTMX(c) && c.GetHeader("HX-History-Restore-Request") != "true" {
		c.Header("HX-Push-Url", state)
		c.HTML(http.StatusOK, "cliente/list.html#cliente_table", data)
		return
	}
	if action != "" {
		c.Redirect(http.StatusSeeOther, state)
		return
	}
	c.HTML(http.StatusOK, "cliente/list.html", data)
}

// filtersFromQuery reads the filter inputs. They are named apart from the
// state parameters, which keep the applied filters.
func filtersFromQuery(c *gin.Context) domain.Filters {
	estado, _ := domain.ParseStatusFilter(c.Query("filterEstado"))
	return domain.Filters{
		Nombres: strings.TrimSpace(c.Query("filterNombres")),
		NumID:   strings.TrimSpace(c.Query("filterNumId")),
		Estado:  estado,
	}
}

// navigate sends the browser to target: HX-Redirect for htmx, 303 otherwise.
func navigate(c *gin.Context, target string) {
	if pkg.IsHTMX(c) {
		c.Header("HX-Redirect", target)
		c.Status(http.StatusOK)
		return
	}
	c.Redirect(http.StatusSeeOther, target)
}

// NewPage renders the empty form.
// GET /clientes/new
func (h *ClientePageHandler) NewPage(c *gin.Context) {
	c.HTML(http.StatusOK, "cliente/form.html", gin.H{
		"IsEdit":       false,
		"ID":           uint(0),
		"Values":       ClienteRequest{},
		"OriginalCode": "",
		"Errors":       map[string]string{},
		"CodeDelay":    h.codeDelay,
		"CSRFToken":    middleware.GetCSRFToken(c),
	})
}

// EditPage renders the form preloaded with the record. A failed load sends
// the browser back to the list with an error flag.
// GET /clientes/edit/:id
func (h *ClientePageHandler) EditPage(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		badRequest(c)
		return
	}

	fc := h.newFormController(&pagePrompter{}, &pageNavigator{}, id)
	defer fc.Close()
	if err := fc.Init(c.Request.Context()); err != nil {
		c.Redirect(http.StatusSeeOther, listPath+"?error="+loadErrorKey)
		return
	}

	c.HTML(http.StatusOK, "cliente/form.html", gin.H{
		"IsEdit":       true,
		"ID":           id,
		"Values":       fc.Values(),
		"OriginalCode": fc.OriginalCode(),
		"Errors":       map[string]string{},
		"CodeDelay":    h.codeDelay,
		"CSRFToken":    middleware.GetCSRFToken(c),
	})
}

// CreateHTMX handles the new record form submission.
// POST /clientes
func (h *ClientePageHandler) CreateHTMX(c *gin.Context) {
	h.submit(c, 0)
}

// UpdateHTMX handles the edit form submission.
// PUT /clientes/:id
func (h *ClientePageHandler) UpdateHTMX(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		badRequest(c)
		return
	}
	h.submit(c, id)
}

func (h *ClientePageHandler) submit(c *gin.Context, id uint) {
	ctx := c.Request.Context()

	var req ClienteRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.DebugContext(ctx, "cliente form: bind error", "error", err, "id", id)
		h.renderForm(c, id, req, c.PostForm("original"), pkg.FieldErrors(err, &req), MsgInvalidForm)
		return
	}

	p := &pagePrompter{}
	nav := &pageNavigator{}
	fc := h.newFormController(p, nav, id)
	defer fc.Close()

	if err := fc.Init(ctx); err != nil {
		pkg.ShowToast(c, MsgLoadFailed, pkg.ToastError)
		c.Header("HX-Redirect", listPath+"?error="+loadErrorKey)
		c.Status(http.StatusOK)
		return
	}

	for _, field := range formFields {
		_ = fc.SetValue(ctx, field, *req.field(field))
	}
	if err := fc.WaitCodeCheck(ctx); err != nil {
		c.Status(http.StatusRequestTimeout)
		return
	}

	if err := fc.Submit(ctx); err != nil {
		msg := p.first()
		if domain.IsValidation(err) {
			msg = MsgInvalidForm
		}
		if fc.Errors()[FieldNumID] == ReasonCodeAlreadyExists {
			msg = MsgCodeExists
		}
		pkg.ShowToast(c, msg, pkg.ToastError)
		h.renderForm(c, id, fc.Values(), fc.OriginalCode(), fc.Errors(), msg)
		return
	}

	pkg.ShowToast(c, p.first(), pkg.ToastSuccess)
	c.Header("HX-Redirect", nav.target)
	c.Status(http.StatusOK)
}

func (h *ClientePageHandler) renderForm(c *gin.Context, id uint, values ClienteRequest, original string, errs map[string]string, msg string) {
	c.HTML(http.StatusOK, "cliente/form.html", gin.H{
		"IsEdit":       id != 0,
		"ID":           id,
		"Values":       values,
		"OriginalCode": original,
		"Errors":       FieldMessages(errs),
		"Error":        msg,
		"CodeDelay":    h.codeDelay,
		"CSRFToken":    middleware.GetCSRFToken(c),
	})
}

// ToggleHTMX activates or deactivates a record and re-renders the table.
// The browser has already confirmed through hx-confirm.
// PUT /clientes/:id/estado
func (h *ClientePageHandler) ToggleHTMX(c *gin.Context) {
	var req ToggleRequest
	if err := c.ShouldBind(&req); err != nil {
		pkg.RejectHTMX(c, http.StatusOK, MsgInvalidForm)
		return
	}
	h.listAction(c, func(ctrl *ListController, id uint) error {
		return ctrl.ToggleStatus(c.Request.Context(), domain.Cliente{ID: &id, Estado: req.Estado})
	})
}

// DeleteHTMX soft deletes a record and re-renders the table.
// DELETE /clientes/:id
func (h *ClientePageHandler) DeleteHTMX(c *gin.Context) {
	h.listAction(c, func(ctrl *ListController, id uint) error {
		return ctrl.Remove(c.Request.Context(), domain.Cliente{ID: &id, Estado: true})
	})
}

// listAction runs a record action through a list controller seeded from the
// request query, then answers with a toast and the refreshed table.
func (h *ClientePageHandler) listAction(c *gin.Context, action func(*ListController, uint) error) {
	id, err := parseID(c)
	if err != nil {
		pkg.RejectHTMX(c, http.StatusOK, "ID de cliente no válido.")
		return
	}

	p := &pagePrompter{}
	ctrl := h.newListController(p, &pageNavigator{}, pkg.ParseListQuery(c, h.sizes))
	defer ctrl.Close()

	// A failed reload after a successful action still renders the table.
	if err := action(ctrl, id); err != nil && !p.has(MsgLoadListFailed) {
		pkg.RejectHTMX(c, http.StatusOK, p.first())
		return
	}

	pkg.ShowToast(c, p.first(), pkg.ToastSuccess)
	c.HTML(http.StatusOK, "cliente/list.html#cliente_table", h.listData(c, ctrl, p))
}

// CheckNumID renders the inline feedback of the identification code field.
// GET /clientes/check-numid?numId=&original=
func (h *ClientePageHandler) CheckNumID(c *gin.Context) {
	value := c.Query("numId")
	original := c.Query("original")

	outcome := CheckCode(value, CodeContext{EditMode: original != "", OriginalCode: original})
	if outcome.Status == StatusPending {
		exists, err := h.gateway.Exists(c.Request.Context(), value)
		if err != nil {
			h.logger.WarnContext(c.Request.Context(), "numId check failed, accepting value", "numId", value, "error", err)
		}
		outcome = CodeOutcome(exists, err)
	}

	c.HTML(http.StatusOK, "cliente/form.html#numid_feedback", gin.H{
		"Valid":   outcome.Valid(),
		"Message": reasonMessage(outcome.Reason),
	})
}

// newListController returns a controller seeded with q. Filters emit at
// once: the browser already waited out the debounce.
func (h *ClientePageHandler) newListController(p Prompter, nav Navigator, q pkg.ListQuery) *ListController {
	return NewListController(h.gateway, p, nav, ListConfig{
		PageSizeOptions: h.sizes,
		FilterDebounce:  -1,
		Logger:          h.logger,
		Initial:         &q,
	})
}

func (h *ClientePageHandler) newFormController(p Prompter, nav Navigator, id uint) *FormController {
	return NewFormController(h.gateway, p, nav, id, FormConfig{
		CodeDebounce: -1,
		Logger:       h.logger,
	})
}

func (h *ClientePageHandler) listData(c *gin.Context, ctrl *ListController, p *pagePrompter) gin.H {
	result := ctrl.Result()
	totalPages := 0
	var pager any
	if result != nil {
		totalPages = result.TotalPages
		view, err := pkg.NewPageView(c.Request.Context(), result, 0)
		if err != nil {
			h.logger.WarnContext(c.Request.Context(), "build page view failed", "error", err)
		} else {
			pager = view
		}
	}
	data := gin.H{
		"Clientes":        ctrl.Items(),
		"Pager":           pager,
		"Query":           ctrl.State(),
		"Pages":           ctrl.PagesArray(totalPages),
		"SortClass":       ctrl.SortClass,
		"PageSizeOptions": ctrl.PageSizeOptions(),
		"FilterDelay":     h.filterDelay,
		"ConfirmRemove":   MsgConfirmRemove,
		"ConfirmToggle": map[bool]string{
			true:  MsgConfirmDeactivate,
			false: MsgConfirmActivate,
		},
		"CSRFToken": middleware.GetCSRFToken(c),
	}
	if p.has(MsgLoadListFailed) {
		data["Error"] = MsgLoadListFailed
	}
	return data
}

// pagePrompter records alerts so they can be returned as toasts. The
// browser asks for confirmation itself, so Confirm always agrees.
type pagePrompter struct {
	mu     sync.Mutex
	alerts []string
}

func (p *pagePrompter) Confirm(string) bool { return true }

func (p *pagePrompter) Alert(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alerts = append(p.alerts, msg)
}

func (p *pagePrompter) first() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.alerts) == 0 {
		return ""
	}
	return p.alerts[0]
}

func (p *pagePrompter) has(msg string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Contains(p.alerts, msg)
}

// pageNavigator records the last destination as a URL.
type pageNavigator struct {
	target string
}

func (n *pageNavigator) GoToList()        { n.target = listPath }
func (n *pageNavigator) GoToNew()         { n.target = listPath + "/new" }
func (n *pageNavigator) GoToEdit(id uint) { n.target = fmt.Sprintf("%s/edit/%d", listPath, id) }

// FieldMessages translates validation rules into the texts shown under each field.
func FieldMessages(errs map[string]string) map[string]string {
	out := make(map[string]string, len(errs))
	for field, rule := range errs {
		out[field] = reasonMessage(rule)
	}
	return out
}

func reasonMessage(rule string) string {
	switch rule {
	case "":
		return ""
	case "required":
		return "Este campo es obligatorio."
	case "email":
		return "Ingresa un correo válido."
	case ReasonCodeAlreadyExists:
		return "El Número de Identificación ya existe."
	default:
		return "Valor no válido."
	}
}

// badRequest rejects an htmx request with a toast, a page load with the
// error page.
func badRequest(c *gin.Context) {
	if pkg.IsHTMX(c) {
		pkg.RejectHTMX(c, http.StatusBadRequest, pkg.ErrorMessage(http.StatusBadRequest))
		return
	}
	pkg.RenderErrorPage(c, http.StatusBadRequest)
}

// parseID extracts and validates the "id" URL parameter.
func parseID(c *gin.Context) (uint, error) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id: %s", idStr)
	}
	if id > uint64(^uint(0)) {
		return 0, fmt.Errorf("invalid id: %s", idStr)
	}
	return uint(id), nil
}

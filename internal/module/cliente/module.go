package cliente

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ClienteModule mounts the cliente JSON API and the htmx pages.
type ClienteModule struct {
	handler     *ClienteHandler
	pageHandler *ClientePageHandler
}

// NewModule panics if either handler is nil.
func NewModule(h *ClienteHandler, ph *ClientePageHandler) *ClienteModule {
	switch {
	case h == nil:
		panic("cliente.NewModule: handler must not be nil")
	case ph == nil:
		panic("cliente.NewModule: pageHandler must not be nil")
	}
	return &ClienteModule{handler: h, pageHandler: ph}
}

type route struct {
	method  string
	path    string
	handler gin.HandlerFunc
}

func (m *ClienteModule) apiRoutes() []route {
	return []route{
		{http.MethodGet, "/clientes", m.handler.List},
		{http.MethodGet, "/clientes/:id", m.handler.Get},
		{http.MethodGet, "/clientes/exists/:numId", m.handler.Exists},
	}
}

func (m *ClienteModule) pageRoutes() []route {
	ph := m.pageHandler
	return []route{
		{http.MethodGet, "/clientes", ph.ListPage},
		{http.MethodGet, "/clientes/new", ph.NewPage},
		{http.MethodGet, "/clientes/edit/:id", ph.EditPage},
		{http.MethodGet, "/clientes/check-numid", ph.CheckNumID},
		{http.MethodPost, "/clientes", ph.CreateHTMX},
		{http.MethodPut, "/clientes/:id", ph.UpdateHTMX},
		{http.MethodPut, "/clientes/:id/estado", ph.ToggleHTMX},
		{http.MethodDelete, "/clientes/:id", ph.DeleteHTMX},
	}
}

// RegisterRoutes mounts the API under api and the pages under pages.
func (m *ClienteModule) RegisterRoutes(api, pages *gin.RouterGroup) {
	for _, rt := range m.apiRoutes() {
		api.Handle(rt.method, rt.path, rt.handler)
	}
	for _, rt := range m.pageRoutes() {
		pages.Handle(rt.method, rt.path, rt.handler)
	}
}

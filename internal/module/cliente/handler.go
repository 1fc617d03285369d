package cliente

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/clientes/internal/domain"
	"github.com/simp-lee/clientes/internal/pkg"
)

// ClienteHandler exposes read-only JSON endpoints backed by the gateway.
type ClienteHandler struct {
	gateway domain.ClienteGateway
	sizes   []int
}

// NewClienteHandler creates a ClienteHandler. Empty sizes select the default options.
func NewClienteHandler(gateway domain.ClienteGateway, sizes []int) *ClienteHandler {
	if len(sizes) == 0 {
		sizes = pkg.DefaultPageSizeOptions
	}
	return &ClienteHandler{gateway: gateway, sizes: sizes}
}

// List handles GET /api/v1/clientes.
func (h *ClienteHandler) List(c *gin.Context) {
	q := pkg.ParseListQuery(c, h.sizes)

	result, err := h.gateway.List(c.Request.Context(), q.Params())
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.List(c, result)
}

// Get handles GET /api/v1/clientes/:id.
func (h *ClienteHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
		return
	}

	cliente, err := h.gateway.GetByID(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, cliente)
}

// Exists handles GET /api/v1/clientes/exists/:numId.
func (h *ClienteHandler) Exists(c *gin.Context) {
	numID := strings.TrimSpace(c.Param("numId"))
	if numID == "" {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, "numId is required", nil))
		return
	}

	exists, err := h.gateway.Exists(c.Request.Context(), numID)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, gin.H{"numId": numID, "exists": exists})
}

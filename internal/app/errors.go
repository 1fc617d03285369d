package app

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/clientes/internal/pkg"
)

// errorFormat is the representation an error response is sent in.
type errorFormat int

const (
	formatJSON errorFormat = iota
	formatHTML
	formatHTMX
)

// negotiateError picks the error representation for the request. htmx
// requests always get a toast. An Accept header naming JSON without HTML
// gets JSON even when it also lists */*.
func negotiateError(c *gin.Context) errorFormat {
	if pkg.IsHTMX(c) {
		return formatHTMX
	}
	accept := strings.ToLower(c.GetHeader("Accept"))
	if strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html") {
		return formatJSON
	}
	if acceptsHTML(c) {
		return formatHTML
	}
	return formatJSON
}

// renderError answers with code. message is only used by the JSON envelope;
// pages and toasts show the Spanish text for the status.
func renderError(c *gin.Context, code int, message string) {
	switch negotiateError(c) {
	case formatHTMX:
		pkg.RejectHTMX(c, code, pkg.ErrorMessage(code))
	case formatHTML:
		pkg.RenderErrorPage(c, code)
	default:
		c.JSON(code, pkg.Response{Code: code, Message: message})
	}
}

// acceptsHTML matches text/html, */* and an empty Accept header.
func acceptsHTML(c *gin.Context) bool {
	accept := strings.ToLower(c.GetHeader("Accept"))
	return strings.Contains(accept, "text/html") ||
		strings.Contains(accept, "*/*") ||
		strings.TrimSpace(accept) == ""
}

package pkg

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorTemplate is the page template for every HTML error response.
const ErrorTemplate = "errors/error.html"

type errorText struct {
	title   string
	message string
}

var errorTexts = map[int]errorText{
	http.StatusBadRequest:      {"Solicitud no válida", "No se pudo procesar la solicitud."},
	http.StatusForbidden:       {"Acceso denegado", "La sesión expiró. Recarga la página e inténtalo de nuevo."},
	http.StatusNotFound:        {"No encontrado", "El recurso solicitado no existe."},
	http.StatusTooManyRequests: {"Demasiadas solicitudes", "Espera un momento e inténtalo de nuevo."},
}

var serverErrorText = errorText{"Error del servidor", "No se pudo completar la solicitud."}

func lookupErrorText(code int) errorText {
	if t, ok := errorTexts[code]; ok {
		return t
	}
	return serverErrorText
}

// ErrorMessage returns the user-facing explanation for status code.
func ErrorMessage(code int) string {
	return lookupErrorText(code).message
}

// ErrorPageData is the view of ErrorTemplate for status code.
func ErrorPageData(code int) gin.H {
	t := lookupErrorText(code)
	return gin.H{"Code": code, "Title": t.title, "Message": t.message}
}

// RenderErrorPage renders ErrorTemplate. Without a usable renderer it writes
// "<code> <status text>" as plain text instead.
func RenderErrorPage(c *gin.Context, code int) {
	defer func() {
		if r := recover(); r != nil {
			text := http.StatusText(code)
			if text == "" {
				text = "Error"
			}
			c.Data(code, "text/plain; charset=utf-8", fmt.Appendf(nil, "%d %s", code, text))
		}
	}()
	c.HTML(code, ErrorTemplate, ErrorPageData(code))
}

package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/clientes/internal/pkg"
)

const panicToastMessage = "Ocurrió un error inesperado. Inténtalo de nuevo."

// Recovery turns a handler panic into a logged 500. htmx requests get an
// error toast with no swap, browsers the shared error page, and API clients
// the JSON envelope.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *gin.Context) {
		defer func() {
			if v := recover(); v != nil {
				logger.ErrorContext(c.Request.Context(), "panic recovered",
					slog.Any("panic", v),
					slog.String("method", c.Request.Method),
					slog.String("path", c.Request.URL.Path),
					slog.String("stack", string(debug.Stack())),
				)
				respondPanic(c)
			}
		}()
		c.Next()
	}
}

func respondPanic(c *gin.Context) {
	const status = http.StatusInternalServerError
	if pkg.IsHTMX(c) {
		pkg.RejectHTMX(c, status, panicToastMessage)
		return
	}
	c.Abort()
	// JSON is offered first so a missing Accept header gets the envelope.
	if c.NegotiateFormat(gin.MIMEJSON, gin.MIMEHTML) == gin.MIMEHTML {
		pkg.RenderErrorPage(c, status)
		return
	}
	c.JSON(status, pkg.Response{Code: status, Message: "internal server error"})
}

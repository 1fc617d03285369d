package pkg

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/clientes/internal/domain"
)

// Response is the JSON envelope of every /api/v1 answer.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// Success answers 200 with data.
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Code: http.StatusOK, Message: "success", Data: data})
}

// List answers 200 with one page of results.
func List[T any](c *gin.Context, result *domain.PagedResult[T]) {
	Success(c, result)
}

// Error answers with the status mapped from err.
func Error(c *gin.Context, err error) {
	status := domain.HTTPStatusCode(err)
	c.JSON(status, Response{Code: status, Message: publicMessage(err)})
}

// publicMessage is the part of err safe to show to API clients. Backend and
// internal failures are reduced to a fixed text since the remote body may
// carry driver details.
func publicMessage(err error) string {
	var appErr *domain.AppError
	if !errors.As(err, &appErr) {
		return "internal error"
	}
	switch appErr.Code {
	case domain.CodeNetwork:
		return "backend unavailable"
	case domain.CodeInternal:
		return "internal error"
	default:
		return appErr.Message
	}
}

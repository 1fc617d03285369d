package app

import "github.com/gin-gonic/gin"

// Module mounts one resource: JSON endpoints on api (/api/v1) and htmx pages
// on pages, which sit behind the CSRF check.
type Module interface {
	RegisterRoutes(api, pages *gin.RouterGroup)
}

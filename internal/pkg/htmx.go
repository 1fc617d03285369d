package pkg

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
)

// Toast levels understood by the showToast listener in the base layout.
const (
	ToastSuccess = "success"
	ToastError   = "error"
)

// IsHTMX reports whether the request was issued by htmx.
func IsHTMX(c *gin.Context) bool {
	return c.GetHeader("HX-Request") == "true"
}

// ShowToast sets the HX-Trigger response header with a showToast event.
// An empty message leaves the header untouched.
func ShowToast(c *gin.Context, message, toastType string) {
	if message == "" {
		return
	}
	trigger, _ := json.Marshal(map[string]any{
		"showToast": map[string]string{
			"message": message,
			"type":    toastType,
		},
	})
	c.Header("HX-Trigger", string(trigger))
}

// RejectHTMX cancels the swap of an htmx request and shows message as an error toast.
func RejectHTMX(c *gin.Context, status int, message string) {
	c.Header("HX-Reswap", "none")
	ShowToast(c, message, ToastError)
	c.AbortWithStatus(status)
}

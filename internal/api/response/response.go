// Package response provides JSON response helpers shared by all handlers.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Detail is the error body shape: {"detail": "..."}.
type Detail struct {
	Detail string `json:"detail"`
}

// JSON writes v as the response body with the given status code.
func JSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

// Error aborts the request with an error body.
func Error(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, Detail{Detail: detail})
}

// AuthError aborts with 401 and the WWW-Authenticate challenge required for
// bearer-token endpoints.
func AuthError(c *gin.Context, detail string) {
	c.Header("WWW-Authenticate", "Bearer")
	Error(c, http.StatusUnauthorized, detail)
}

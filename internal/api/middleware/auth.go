// Package middleware holds the gin middleware chain: bearer auth, request
// ids and request logging.
package middleware

import (
	"strings"

	"kevdhev/personal-finance-api/internal/api/models"
	"kevdhev/personal-finance-api/internal/api/response"
	"kevdhev/personal-finance-api/internal/api/service"
	"kevdhev/personal-finance-api/internal/auth"

	"github.com/gin-gonic/gin"
)

const userContextKey = "currentUser"

// RequireAuth verifies the bearer token on the request and resolves its
// subject to a live user. Missing, malformed or expired tokens and unknown
// subjects all fail with 401 and a WWW-Authenticate challenge.
func RequireAuth(tokens *auth.TokenIssuer, users service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const failure = "Could not validate credentials"

		scheme, token, found := strings.Cut(c.GetHeader("Authorization"), " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
			response.AuthError(c, failure)
			return
		}

		subject, err := tokens.Verify(token)
		if err != nil {
			response.AuthError(c, failure)
			return
		}

		user, err := users.GetByUsername(c.Request.Context(), subject)
		if err != nil || user == nil {
			response.AuthError(c, failure)
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// CurrentUser returns the authenticated user set by RequireAuth.
func CurrentUser(c *gin.Context) *models.User {
	user, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	u, _ := user.(*models.User)
	return u
}

package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ContextUserID is the gin context key holding the authenticated user id (int64)
const ContextUserID = "user_id"

// Authenticator verifies a bearer token and returns the user id
type Authenticator interface {
	Authenticate(token string) (int64, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// JWT rejects requests without a valid bearer token with a bare 401.
// The body stays empty so an unauthorized caller never sees partial data.
func JWT(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c.GetHeader("Authorization"))
		if token == "" {
			abortUnauthorized(c)
			return
		}

		userID, err := auth.Authenticate(token)
		if err != nil {
			abortUnauthorized(c)
			return
		}

		c.Set(ContextUserID, userID)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatus(http.StatusUnauthorized)
}

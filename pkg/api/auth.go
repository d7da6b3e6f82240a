package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// maxUserIDLength bounds the identity derived from a token.
const maxUserIDLength = 20

// authenticate requires an Authorization header with a Bearer or ApiKey
// scheme. The caller's identity is the first 20 characters of the token;
// there is no token registry, so possession of a token establishes
// identity, and ownership checks provide the isolation.
func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.Request.Header.Get("Authorization"))
		if token == "" {
			abortWithError(c, http.StatusUnauthorized, "missing or invalid Authorization header")
			return
		}
		c.Set(contextKeyUserID, deriveUserID(token))
		c.Next()
	}
}

// bearerToken extracts the token from "Bearer <tok>" or "ApiKey <tok>".
func bearerToken(header string) string {
	for _, scheme := range []string{"Bearer ", "ApiKey "} {
		if token, ok := strings.CutPrefix(header, scheme); ok {
			return strings.TrimSpace(token)
		}
	}
	return ""
}

// deriveUserID truncates the token to the identity prefix.
func deriveUserID(token string) string {
	if len(token) > maxUserIDLength {
		return token[:maxUserIDLength]
	}
	return token
}

// userIDFrom returns the authenticated caller's identity, if any.
func userIDFrom(c *gin.Context) string {
	return c.GetString(contextKeyUserID)
}

package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/job-application-tracker/internal/auth"
)

const (
	accountKey = "account_id"
	emailKey   = "account_email"
)

// JWTAuth rejects requests without a valid session token in the
// Authorization header or the "token" cookie.
func JWTAuth(tokens *auth.Tokens) gin.HandlerFunc {
	return authenticate(tokens, false)
}

// SocketAuth is JWTAuth that also accepts ?token=, since browsers cannot set
// headers on a websocket handshake. Keep it off ordinary routes.
func SocketAuth(tokens *auth.Tokens) gin.HandlerFunc {
	return authenticate(tokens, true)
}

func authenticate(tokens *auth.Tokens, allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenStr string

		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
				return
			}
			tokenStr = parts[1]
		} else if cookie, err := c.Cookie("token"); err == nil && cookie != "" {
			tokenStr = cookie
		} else if q := c.Query("token"); allowQuery && q != "" {
			tokenStr = q
		} else {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization required (header or cookie)"})
			return
		}

		claims, err := tokens.Parse(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Your session has expired. Please sign in again."})
			return
		}

		c.Set(accountKey, claims.AccountID)
		c.Set(emailKey, claims.Email)
		c.Next()
	}
}

// AccountID returns the signed-in account set by JWTAuth, or 0.
func AccountID(c *gin.Context) uint {
	return c.GetUint(accountKey)
}

func AccountEmail(c *gin.Context) string {
	return c.GetString(emailKey)
}

package middleware

import (
	"strings" // String manipulation

	"github.com/gin-gonic/gin" // Gin web framework
)

// TokenCookie is the cookie carrying the session token
const TokenCookie = "token"

// userIDKey is the gin context key holding the resolved user id
const userIDKey = "userID"

// IdentityResolver turns a session token into a user id
type IdentityResolver interface {
	ResolveIdentity(token string) (uint, bool)
}

// JWTAuthMiddleware resolves the caller from the token cookie or a Bearer header.
// It never rejects: an absent or invalid token leaves the request anonymous.
func JWTAuthMiddleware(resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, _ := c.Cookie(TokenCookie) // Browser clients send the cookie
		if tokenStr == "" {
			if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
				tokenStr = strings.TrimPrefix(authHeader, "Bearer ") // API clients send a header
			}
		}
		if userID, ok := resolver.ResolveIdentity(tokenStr); ok {
			c.Set(userIDKey, userID) // Store userID in context
		}
		c.Next() // Proceed to the next handler
	}
}

// UserID returns the resolved caller, 0 when anonymous
func UserID(c *gin.Context) uint {
	return c.GetUint(userIDKey)
}

package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// TokenParser validates an access token and names its owner.
type TokenParser interface {
	ParseAccess(token string) (*OperatorInfo, error)
}

// JWTMiddleware rejects requests without a valid bearer token with a 401,
// which is what drives the client's refresh flow.
func JWTMiddleware(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"statusCode": http.StatusUnauthorized,
				"message":    "Authorization header missing",
			})
			return
		}

		op, err := parser.ParseAccess(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"statusCode": http.StatusUnauthorized,
				"message":    "Invalid or expired access token",
			})
			return
		}

		c.Request = c.Request.WithContext(WithOperator(c.Request.Context(), op))
		c.Next()
	}
}

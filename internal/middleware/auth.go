package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"failboard/internal/services"
)

const CheckUserKey = "user"

// LoadUser resolves a Bearer token into a user and stores it on the
// context. A missing or bad token is not an error here; protected
// routes reject it in AuthRequired.
func LoadUser(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header != "" {
			parts := strings.SplitN(header, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				if user, err := auth.UserFromToken(c.Request.Context(), parts[1]); err == nil {
					c.Set(CheckUserKey, user)
				}
			}
		}
		c.Next()
	}
}

// AuthRequired ensures a user was loaded from the token.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(CheckUserKey); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

package handlers

import (
	"github.com/gin-gonic/gin"

	"failboard/internal/middleware"
	"failboard/internal/models"
)

// Page is the standard list response envelope.
type Page struct {
	Items []models.Post `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Size  int           `json:"size"`
}

func abortError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// currentUser returns the user LoadUser put on the context. Handlers
// behind AuthRequired can rely on it being present.
func currentUser(c *gin.Context) *models.User {
	return c.MustGet(middleware.CheckUserKey).(*models.User)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"failboard/internal/services"
)

type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Me handles GET /api/v1/users/me
func (h *UserHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

type updateProfileRequest struct {
	Username string `json:"username" binding:"required,max=100"`
}

// UpdateMe handles PATCH /api/v1/users/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.UpdateUsername(c.Request.Context(), currentUser(c), req.Username)
	if err != nil {
		abortError(c, http.StatusInternalServerError, "failed to update profile")
		return
	}
	c.JSON(http.StatusOK, user)
}

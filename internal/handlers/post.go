package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"failboard/internal/models"
	"failboard/internal/services"
	"failboard/internal/storage"
	"failboard/internal/utils"
)

type PostHandler struct {
	posts *services.PostService
	// Status given to posts created over the API. Configurable; the
	// default submits new posts for moderation (checking).
	initialStatus models.PostStatus
}

func NewPostHandler(posts *services.PostService, initialStatus models.PostStatus) *PostHandler {
	return &PostHandler{posts: posts, initialStatus: initialStatus}
}

type postRequest struct {
	Name    string   `json:"name" binding:"required,max=100"`
	Content string   `json:"content" binding:"required,max=1000"`
	Tags    []string `json:"tags" binding:"omitempty,dive,max=50"`
}

// Create handles POST /api/v1/posts
func (h *PostHandler) Create(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, err.Error())
		return
	}

	user := currentUser(c)
	post, err := h.posts.Create(c.Request.Context(), user.ID, req.Name, req.Content, h.initialStatus, req.Tags)
	if err != nil {
		abortError(c, http.StatusBadRequest, "failed to create post")
		return
	}
	c.JSON(http.StatusCreated, post)
}

// List handles GET /api/v1/posts with search, status, tags, user_id,
// page and size query parameters.
func (h *PostHandler) List(c *gin.Context) {
	filter := storage.PostFilter{
		Search: c.Query("search"),
		Tags:   c.QueryArray("tags"),
		UserID: utils.StringToUint(c.Query("user_id")),
		Page:   utils.StringToInt(c.DefaultQuery("page", "1")),
		Size:   utils.StringToInt(c.DefaultQuery("size", "30")),
	}
	if raw := c.Query("status"); raw != "" {
		status := models.PostStatus(raw)
		if !status.Valid() {
			abortError(c, http.StatusBadRequest, "invalid status filter")
			return
		}
		filter.Status = status
	}

	posts, total, err := h.posts.List(c.Request.Context(), filter)
	if err != nil {
		abortError(c, http.StatusInternalServerError, "failed to list posts")
		return
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Size < 1 {
		filter.Size = 30
	}
	c.JSON(http.StatusOK, Page{
		Items: posts,
		Total: total,
		Page:  filter.Page,
		Size:  filter.Size,
	})
}

// Detail handles GET /api/v1/posts/:id
func (h *PostHandler) Detail(c *gin.Context) {
	id := utils.StringToUint(c.Param("id"))
	post, err := h.posts.Get(c.Request.Context(), id)
	if err != nil {
		abortError(c, http.StatusInternalServerError, "failed to load post")
		return
	}
	if post == nil {
		abortError(c, http.StatusNotFound, "post not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"post":         post,
		"content_html": utils.RenderMarkdown(post.Content),
	})
}

// Update handles PUT /api/v1/posts/:id — owner or moderator/admin.
func (h *PostHandler) Update(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, err.Error())
		return
	}

	id := utils.StringToUint(c.Param("id"))
	post, err := h.posts.UpdateContent(c.Request.Context(), id, req.Name, req.Content, currentUser(c))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			abortError(c, http.StatusNotFound, "post not found")
		case errors.Is(err, services.ErrPermissionDenied):
			abortError(c, http.StatusForbidden, err.Error())
		default:
			abortError(c, http.StatusInternalServerError, "failed to update post")
		}
		return
	}
	c.JSON(http.StatusOK, post)
}

type statusRequest struct {
	Status models.PostStatus `json:"status" binding:"required"`
}

// SetStatus handles PUT /api/v1/posts/:id/status — moderation only.
func (h *PostHandler) SetStatus(c *gin.Context) {
	if !currentUser(c).IsElevated() {
		abortError(c, http.StatusForbidden, "moderator role required")
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, err.Error())
		return
	}
	if !req.Status.Valid() {
		abortError(c, http.StatusBadRequest, "invalid status")
		return
	}

	id := utils.StringToUint(c.Param("id"))
	post, err := h.posts.SetStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		abortError(c, http.StatusInternalServerError, "failed to update status")
		return
	}
	if post == nil {
		abortError(c, http.StatusNotFound, "post not found")
		return
	}
	c.JSON(http.StatusOK, post)
}

// Delete handles DELETE /api/v1/posts/:id. A post that is missing and
// a post owned by someone else both answer 404, so the response does
// not leak whether the post exists.
func (h *PostHandler) Delete(c *gin.Context) {
	id := utils.StringToUint(c.Param("id"))
	ok, err := h.posts.Delete(c.Request.Context(), id, currentUser(c).ID)
	if err != nil {
		abortError(c, http.StatusInternalServerError, "failed to delete post")
		return
	}
	if !ok {
		abortError(c, http.StatusNotFound, "post not found")
		return
	}
	c.Status(http.StatusNoContent)
}

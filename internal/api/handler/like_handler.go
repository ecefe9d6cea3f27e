package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/storyblog/internal/api/middleware"
	"github.com/d60-Lab/storyblog/internal/service"
	"github.com/d60-Lab/storyblog/pkg/response"
)

// LikeStatus 点赞数与当前用户点赞状态（会话可选）
// @Summary 点赞状态
// @Tags 点赞
// @Produce json
// @Param id path string true "帖子 ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/posts/{id}/like [get]
func (h *Handler) LikeStatus(c *gin.Context) {
	postID := c.Param("id")
	userID := ""
	if user, ok := middleware.CurrentUser(c); ok {
		userID = user.UserID
	}
	count, liked, err := h.likes.Status(c.Request.Context(), postID, userID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"likeCount": count, "isLikedByCurrentUser": liked})
}

// ToggleLike 点赞开关：已赞取消，未赞点上
// @Summary 点赞/取消点赞
// @Tags 点赞
// @Produce json
// @Param id path string true "帖子 ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/posts/{id}/like [post]
func (h *Handler) ToggleLike(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c)
		return
	}
	liked, err := h.likes.Toggle(c.Request.Context(), user.UserID, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			response.NotFound(c, "Post not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	msg := "Post unliked successfully"
	if liked {
		msg = "Post liked successfully"
	}
	response.Success(c, gin.H{"liked": liked, "message": msg})
}

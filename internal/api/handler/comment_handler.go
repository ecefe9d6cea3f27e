package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/storyblog/internal/api/middleware"
	"github.com/d60-Lab/storyblog/internal/service"
	"github.com/d60-Lab/storyblog/pkg/response"
)

type createCommentRequest struct {
	Content string `json:"content"`
}

// ListComments 帖子评论（含评论人，按创建时间倒序）
// @Summary 评论列表
// @Tags 评论
// @Produce json
// @Param id path string true "帖子 ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/posts/{id}/comments [get]
func (h *Handler) ListComments(c *gin.Context) {
	comments, err := h.comments.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"comments": comments})
}

// CreateComment 发表评论
// @Summary 发表评论
// @Tags 评论
// @Accept json
// @Produce json
// @Param id path string true "帖子 ID"
// @Param request body createCommentRequest true "评论内容"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/posts/{id}/comments [post]
func (h *Handler) CreateComment(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c)
		return
	}
	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindErrMsg(err))
		return
	}
	comment, err := h.comments.Create(c.Request.Context(), user.UserID, user.Email, c.Param("id"), req.Content)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyComment):
			response.BadRequest(c, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(c, "User not found")
		case errors.Is(err, service.ErrPostNotFound):
			response.BadRequest(c, "Invalid reference error")
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Created(c, gin.H{"comment": comment})
}

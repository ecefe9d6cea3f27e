package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/storyblog/internal/api/middleware"
	"github.com/d60-Lab/storyblog/internal/model"
	"github.com/d60-Lab/storyblog/internal/service"
	"github.com/d60-Lab/storyblog/pkg/response"
)

type createPostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type updatePostRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// resolvePost 两种查询契约：字面 id，或纯数字的 1 起始位置序号
func (h *Handler) resolvePost(c *gin.Context) (*model.Post, error) {
	id := c.Param("id")
	if isDigits(id) {
		pos, _ := strconv.Atoi(id)
		return h.posts.GetByPosition(c.Request.Context(), pos)
	}
	return h.posts.Get(c.Request.Context(), id)
}

// ListPosts 全部帖子（含作者与点赞/评论数，按创建时间倒序）
// @Summary 帖子列表
// @Tags 帖子
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/posts [get]
func (h *Handler) ListPosts(c *gin.Context) {
	posts, err := h.posts.List(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"posts": posts})
}

// MyPosts 当前用户的帖子
// @Summary 我的帖子
// @Tags 帖子
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Router /api/posts/mine [get]
func (h *Handler) MyPosts(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c)
		return
	}
	posts, err := h.posts.ListByAuthor(c.Request.Context(), user.UserID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"posts": posts})
}

// CreatePost 发帖
// @Summary 发帖
// @Tags 帖子
// @Accept json
// @Produce json
// @Param request body createPostRequest true "标题与 Markdown 正文"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/posts [post]
func (h *Handler) CreatePost(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c)
		return
	}
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindErrMsg(err))
		return
	}
	p, err := h.posts.Create(c.Request.Context(), user.UserID, req.Title, req.Content)
	if err != nil {
		if errors.Is(err, service.ErrMissingFields) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, gin.H{"post": p})
}

// GetPost 单帖详情
// @Summary 帖子详情
// @Tags 帖子
// @Produce json
// @Param id path string true "帖子 ID（或位置序号）"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /api/posts/{id} [get]
func (h *Handler) GetPost(c *gin.Context) {
	p, err := h.resolvePost(c)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			response.NotFound(c, "Post not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"post": p})
}

// UpdatePost 改帖（仅作者；服务端密钥可绕过作者校验）
// @Summary 改帖
// @Tags 帖子
// @Accept json
// @Produce json
// @Param id path string true "帖子 ID（或位置序号）"
// @Param request body updatePostRequest true "可部分更新"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/posts/{id} [put]
func (h *Handler) UpdatePost(c *gin.Context) {
	trusted := middleware.IsTrusted(c)
	user, ok := middleware.CurrentUser(c)
	if !trusted && !ok {
		response.Unauthorized(c)
		return
	}

	var req updatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindErrMsg(err))
		return
	}

	p, err := h.resolvePost(c)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			response.NotFound(c, "Post not found")
			return
		}
		response.InternalError(c, err)
		return
	}

	actorID := ""
	if user != nil {
		actorID = user.UserID
	}
	updated, err := h.posts.Update(c.Request.Context(), p.ID, actorID, trusted,
		service.PostUpdate{Title: req.Title, Content: req.Content})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoUpdateFields):
			response.BadRequest(c, err.Error())
		case errors.Is(err, service.ErrPostNotFound):
			response.NotFound(c, "Post not found")
		case errors.Is(err, service.ErrNotAuthor):
			response.Forbidden(c)
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Success(c, gin.H{"post": updated})
}

// DeletePost 删帖（仅作者；服务端密钥可绕过作者校验）
// @Summary 删帖
// @Tags 帖子
// @Produce json
// @Param id path string true "帖子 ID（或位置序号）"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/posts/{id} [delete]
func (h *Handler) DeletePost(c *gin.Context) {
	trusted := middleware.IsTrusted(c)
	user, ok := middleware.CurrentUser(c)
	if !trusted && !ok {
		response.Unauthorized(c)
		return
	}

	p, err := h.resolvePost(c)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			response.NotFound(c, "Post not found")
			return
		}
		response.InternalError(c, err)
		return
	}

	actorID := ""
	if user != nil {
		actorID = user.UserID
	}
	if err := h.posts.Delete(c.Request.Context(), p.ID, actorID, trusted); err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			response.NotFound(c, "Post not found")
		case errors.Is(err, service.ErrNotAuthor):
			response.Forbidden(c)
		case errors.Is(err, service.ErrPostHasDeps):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Success(c, gin.H{"success": true})
}

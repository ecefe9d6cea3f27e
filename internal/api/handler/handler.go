package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/d60-Lab/storyblog/config"
	"github.com/d60-Lab/storyblog/internal/service"
)

// Handler 聚合各资源 handler 依赖的服务
type Handler struct {
	auth     service.AuthService
	posts    service.PostService
	likes    service.LikeService
	comments service.CommentService
	cfg      *config.Config
}

func New(cfg *config.Config, auth service.AuthService, posts service.PostService, likes service.LikeService, comments service.CommentService) *Handler {
	return &Handler{auth: auth, posts: posts, likes: likes, comments: comments, cfg: cfg}
}

// bindErrMsg 把绑定校验错误转成可读提示，非校验错误原样返回
func bindErrMsg(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", fe.Field()))
		case "email":
			parts = append(parts, fmt.Sprintf("%s must be a valid email", fe.Field()))
		case "min":
			parts = append(parts, fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return strings.Join(parts, "; ")
}

// isDigits 判断 id 是否为纯数字（旧客户端的位置序号访问）
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

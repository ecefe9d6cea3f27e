package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/storyblog/internal/model"
	"github.com/d60-Lab/storyblog/internal/repository"
)

var (
	ErrEmptyComment = errors.New("comment content is required")
	ErrUserNotFound = errors.New("user not found")
)

// CommentService 评论读写；评论创建后不可编辑、不可删除
type CommentService interface {
	List(ctx context.Context, postID string) ([]*model.Comment, error)
	// Create 以会话中的 userID 落库；会话只带邮箱时按邮箱兜底解析用户
	Create(ctx context.Context, userID, email, postID, content string) (*model.Comment, error)
}

type commentService struct {
	comments repository.CommentRepository
	users    repository.UserRepository
}

func NewCommentService(comments repository.CommentRepository, users repository.UserRepository) CommentService {
	return &commentService{comments: comments, users: users}
}

func (s *commentService) List(ctx context.Context, postID string) ([]*model.Comment, error) {
	return s.comments.ListByPost(ctx, postID)
}

func (s *commentService) Create(ctx context.Context, userID, email, postID, content string) (*model.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyComment
	}

	if userID == "" && email != "" {
		u, err := s.users.GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
		userID = u.ID
	}

	c := &model.Comment{
		ID:        uuid.New().String(),
		Content:   content,
		UserID:    userID,
		PostID:    postID,
		CreatedAt: time.Now(),
	}
	if err := s.comments.Create(ctx, c); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	// 响应需要附带评论人信息
	u, err := s.users.GetByID(ctx, userID)
	if err == nil {
		c.User = u
	}
	return c, nil
}

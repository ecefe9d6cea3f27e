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
	ErrPostNotFound   = errors.New("post not found")
	ErrNotAuthor      = errors.New("caller is not the post author")
	ErrMissingFields  = errors.New("title and content are required")
	ErrNoUpdateFields = errors.New("provide at least a title or content to update")
	ErrPostHasDeps    = errors.New("cannot delete post due to existing related records")
)

// PostUpdate 部分更新；nil 字段表示不修改
type PostUpdate struct {
	Title   *string
	Content *string
}

// PostService 帖子读写；Update/Delete 仅作者本人，trusted 走服务端密钥信任路径
type PostService interface {
	List(ctx context.Context) ([]*model.Post, error)
	ListByAuthor(ctx context.Context, authorID string) ([]*model.Post, error)
	Get(ctx context.Context, id string) (*model.Post, error)
	// GetByPosition 按创建时间倒序第 pos 条（1 起始），与按 id 查询是两个独立契约
	GetByPosition(ctx context.Context, pos int) (*model.Post, error)
	Create(ctx context.Context, authorID, title, content string) (*model.Post, error)
	Update(ctx context.Context, id, actorID string, trusted bool, upd PostUpdate) (*model.Post, error)
	Delete(ctx context.Context, id, actorID string, trusted bool) error
}

type postService struct {
	posts    repository.PostRepository
	likes    repository.LikeRepository
	comments repository.CommentRepository
}

func NewPostService(posts repository.PostRepository, likes repository.LikeRepository, comments repository.CommentRepository) PostService {
	return &postService{posts: posts, likes: likes, comments: comments}
}

func (s *postService) List(ctx context.Context) ([]*model.Post, error) {
	res, err := s.posts.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range res {
		if p.LikeCount, err = s.likes.CountByPost(ctx, p.ID); err != nil {
			return nil, err
		}
		if p.CommentCount, err = s.comments.CountByPost(ctx, p.ID); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (s *postService) ListByAuthor(ctx context.Context, authorID string) ([]*model.Post, error) {
	res, err := s.posts.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}
	for _, p := range res {
		if p.LikeCount, err = s.likes.CountByPost(ctx, p.ID); err != nil {
			return nil, err
		}
		if p.CommentCount, err = s.comments.CountByPost(ctx, p.ID); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (s *postService) Get(ctx context.Context, id string) (*model.Post, error) {
	p, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *postService) GetByPosition(ctx context.Context, pos int) (*model.Post, error) {
	p, err := s.posts.GetByPosition(ctx, pos)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *postService) Create(ctx context.Context, authorID, title, content string) (*model.Post, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" {
		return nil, ErrMissingFields
	}
	now := time.Now()
	p := &model.Post{
		ID:        uuid.New().String(),
		Title:     title,
		Content:   content,
		AuthorID:  authorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.posts.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *postService) Update(ctx context.Context, id, actorID string, trusted bool, upd PostUpdate) (*model.Post, error) {
	fields := map[string]any{}
	if upd.Title != nil {
		if t := strings.TrimSpace(*upd.Title); t != "" {
			fields["title"] = t
		}
	}
	if upd.Content != nil {
		if c := strings.TrimSpace(*upd.Content); c != "" {
			fields["content"] = c
		}
	}
	if len(fields) == 0 {
		return nil, ErrNoUpdateFields
	}

	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	// author_id 不在可更新字段里，所有权在这里一次性校验
	if !trusted && p.AuthorID != actorID {
		return nil, ErrNotAuthor
	}
	if err := s.posts.Update(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *postService) Delete(ctx context.Context, id, actorID string, trusted bool) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !trusted && p.AuthorID != actorID {
		return ErrNotAuthor
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return ErrPostHasDeps
		}
		return err
	}
	return nil
}

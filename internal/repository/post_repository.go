package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/storyblog/internal/model"
)

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	// GetByID 按字面 id 查询
	GetByID(ctx context.Context, id string) (*model.Post, error)
	// GetByPosition 按创建时间倒序的 1 起始位置查询（兼容旧客户端的序号访问）
	GetByPosition(ctx context.Context, pos int) (*model.Post, error)
	ListAll(ctx context.Context) ([]*model.Post, error)
	ListByAuthor(ctx context.Context, authorID string) ([]*model.Post, error)
	Update(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*model.Post, error) {
	var p model.Post
	err := r.db.WithContext(ctx).Preload("Author").Where("id = ?", id).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postRepository) GetByPosition(ctx context.Context, pos int) (*model.Post, error) {
	if pos < 1 {
		pos = 1
	}
	var p model.Post
	err := r.db.WithContext(ctx).Preload("Author").
		Order("created_at DESC").
		Offset(pos - 1).Limit(1).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postRepository) ListAll(ctx context.Context) ([]*model.Post, error) {
	var res []*model.Post
	err := r.db.WithContext(ctx).Preload("Author").Order("created_at DESC").Find(&res).Error
	return res, err
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID string) ([]*model.Post, error) {
	var res []*model.Post
	err := r.db.WithContext(ctx).Preload("Author").
		Where("author_id = ?", authorID).
		Order("created_at DESC").Find(&res).Error
	return res, err
}

func (r *postRepository) Update(ctx context.Context, id string, fields map[string]any) error {
	return r.db.WithContext(ctx).Model(&model.Post{}).Where("id = ?", id).Updates(fields).Error
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Post{}).Error
}

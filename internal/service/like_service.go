package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/d60-Lab/storyblog/internal/cache"
	"github.com/d60-Lab/storyblog/internal/repository"
)

// LikeService 点赞开关与状态查询
type LikeService interface {
	// Toggle 已点赞则取消并返回 false，否则点赞并返回 true。
	// 并发下同一 (user, post) 的重复创建由唯一索引拒绝，
	// 这里将其解释为"已点赞"而非错误。
	Toggle(ctx context.Context, userID, postID string) (bool, error)
	// Status 返回总点赞数；userID 非空时附带该用户是否已点赞
	Status(ctx context.Context, postID, userID string) (int64, bool, error)
}

type likeService struct {
	likes     repository.LikeRepository
	counts    *cache.LikeCountCache
	refresher *CountRefresher
}

func NewLikeService(likes repository.LikeRepository, counts *cache.LikeCountCache, refresher *CountRefresher) LikeService {
	return &likeService{likes: likes, counts: counts, refresher: refresher}
}

func (s *likeService) Toggle(ctx context.Context, userID, postID string) (bool, error) {
	exists, err := s.likes.Exists(ctx, userID, postID)
	if err != nil {
		return false, err
	}

	var liked bool
	if exists {
		if err := s.likes.Delete(ctx, userID, postID); err != nil {
			return false, err
		}
		liked = false
	} else {
		err := s.likes.Create(ctx, userID, postID)
		switch {
		case err == nil:
			liked = true
		case errors.Is(err, gorm.ErrDuplicatedKey):
			// 竞态：另一请求已先写入，结果仍是已点赞
			liked = true
		case errors.Is(err, gorm.ErrForeignKeyViolated):
			return false, ErrPostNotFound
		default:
			return false, err
		}
	}

	s.counts.Invalidate(ctx, postID)
	if s.refresher != nil {
		s.refresher.Enqueue(postID)
	}
	return liked, nil
}

func (s *likeService) Status(ctx context.Context, postID, userID string) (int64, bool, error) {
	count, ok := s.counts.Get(ctx, postID)
	if !ok {
		var err error
		if count, err = s.likes.CountByPost(ctx, postID); err != nil {
			return 0, false, err
		}
		s.counts.Set(ctx, postID, count)
	}

	likedByUser := false
	if userID != "" {
		var err error
		if likedByUser, err = s.likes.Exists(ctx, userID, postID); err != nil {
			return 0, false, err
		}
	}
	return count, likedByUser, nil
}

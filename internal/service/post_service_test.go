package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/storyblog/internal/repository"
)

func newPostService(t *testing.T) (PostService, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	svc := NewPostService(
		repository.NewPostRepository(db),
		repository.NewLikeRepository(db),
		repository.NewCommentRepository(db),
	)
	return svc, db
}

func strPtr(s string) *string { return &s }

func TestPostCreateValidation(t *testing.T) {
	svc, db := newPostService(t)
	ctx := context.Background()
	author := seedUser(t, db, "alice")

	// 空白标题/正文 trim 后拒绝
	_, err := svc.Create(ctx, author.ID, "   ", "body")
	require.ErrorIs(t, err, ErrMissingFields)
	_, err = svc.Create(ctx, author.ID, "title", " \n\t ")
	require.ErrorIs(t, err, ErrMissingFields)

	p, err := svc.Create(ctx, author.ID, "  Hello  ", "  # md body  ")
	require.NoError(t, err)
	require.Equal(t, "Hello", p.Title)
	require.Equal(t, "# md body", p.Content)
	require.Equal(t, author.ID, p.AuthorID)
}

func TestPostUpdateOwnership(t *testing.T) {
	svc, db := newPostService(t)
	ctx := context.Background()
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	p, err := svc.Create(ctx, alice.ID, "Hello", "body")
	require.NoError(t, err)

	// 非作者禁止
	_, err = svc.Update(ctx, p.ID, bob.ID, false, PostUpdate{Title: strPtr("Hacked")})
	require.ErrorIs(t, err, ErrNotAuthor)

	// 服务端密钥信任路径绕过作者校验
	upd, err := svc.Update(ctx, p.ID, "", true, PostUpdate{Title: strPtr("Trusted edit")})
	require.NoError(t, err)
	require.Equal(t, "Trusted edit", upd.Title)

	// 作者本人部分更新：仅标题，正文保持
	upd, err = svc.Update(ctx, p.ID, alice.ID, false, PostUpdate{Title: strPtr("Hacked")})
	require.NoError(t, err)
	require.Equal(t, "Hacked", upd.Title)
	require.Equal(t, "body", upd.Content)
	// AuthorID 不可变
	require.Equal(t, alice.ID, upd.AuthorID)

	// 两个字段都为空白等于没有可更新内容
	_, err = svc.Update(ctx, p.ID, alice.ID, false, PostUpdate{Title: strPtr("  "), Content: strPtr("")})
	require.ErrorIs(t, err, ErrNoUpdateFields)

	_, err = svc.Update(ctx, "no-such-id", alice.ID, false, PostUpdate{Title: strPtr("x")})
	require.ErrorIs(t, err, ErrPostNotFound)
}

func TestPostDeleteOwnership(t *testing.T) {
	svc, db := newPostService(t)
	ctx := context.Background()
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	p, err := svc.Create(ctx, alice.ID, "Hello", "body")
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(ctx, p.ID, bob.ID, false), ErrNotAuthor)
	require.NoError(t, svc.Delete(ctx, p.ID, alice.ID, false))

	_, err = svc.Get(ctx, p.ID)
	require.ErrorIs(t, err, ErrPostNotFound)
	require.ErrorIs(t, svc.Delete(ctx, p.ID, alice.ID, false), ErrPostNotFound)
}

func TestPostListCounts(t *testing.T) {
	svc, db := newPostService(t)
	ctx := context.Background()
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	p, err := svc.Create(ctx, alice.ID, "Hello", "body")
	require.NoError(t, err)

	likes := repository.NewLikeRepository(db)
	require.NoError(t, likes.Create(ctx, alice.ID, p.ID))
	require.NoError(t, likes.Create(ctx, bob.ID, p.ID))

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.EqualValues(t, 2, list[0].LikeCount)
	require.EqualValues(t, 0, list[0].CommentCount)
}

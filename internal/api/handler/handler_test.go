package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/storyblog/config"
	"github.com/d60-Lab/storyblog/internal/api"
	"github.com/d60-Lab/storyblog/internal/api/handler"
	"github.com/d60-Lab/storyblog/internal/cache"
	"github.com/d60-Lab/storyblog/internal/repository"
	"github.com/d60-Lab/storyblog/internal/service"
	"github.com/d60-Lab/storyblog/pkg/database"
)

const testServerKey = "test-server-key"

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{}
	cfg.Server.Mode = "debug"
	cfg.Server.BaseURL = "http://localhost:8080"
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.TokenTTL = time.Hour
	cfg.Copilot.ServerKey = testServerKey

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	counts := cache.NewLikeCountCache(nil, 0)
	authSvc := service.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	postSvc := service.NewPostService(postRepo, likeRepo, commentRepo)
	likeSvc := service.NewLikeService(likeRepo, counts, nil)
	commentSvc := service.NewCommentService(commentRepo, userRepo)

	h := handler.New(cfg, authSvc, postSvc, likeSvc, commentSvc)
	return api.NewRouter(cfg, h, authSvc)
}

type request struct {
	method    string
	path      string
	token     string
	serverKey string
	body      any
}

func do(t *testing.T, r *gin.Engine, req request) (int, map[string]any) {
	t.Helper()
	var rd *bytes.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		require.NoError(t, err)
		rd = bytes.NewReader(payload)
	} else {
		rd = bytes.NewReader(nil)
	}
	httpReq := httptest.NewRequest(req.method, req.path, rd)
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}
	if req.serverKey != "" {
		httpReq.Header.Set("x-copilot-server-key", req.serverKey)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httpReq)

	out := map[string]any{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	}
	return w.Code, out
}

func registerAndLogin(t *testing.T, r *gin.Engine, name, email string) (token, userID string) {
	t.Helper()
	code, body := do(t, r, request{method: http.MethodPost, path: "/api/auth/register",
		body: gin.H{"name": name, "email": email, "password": "secret123"}})
	require.Equal(t, http.StatusCreated, code, "register: %v", body)

	code, body = do(t, r, request{method: http.MethodPost, path: "/api/auth/login",
		body: gin.H{"email": email, "password": "secret123"}})
	require.Equal(t, http.StatusOK, code, "login: %v", body)
	token = body["token"].(string)
	user := body["user"].(map[string]any)
	return token, user["id"].(string)
}

// 完整场景：A 发帖，B 不能改，A 能改，B 点赞两次回到原点
func TestBlogScenario(t *testing.T) {
	r := setupRouter(t)

	tokenA, userA := registerAndLogin(t, r, "Alice", "alice@example.com")
	tokenB, _ := registerAndLogin(t, r, "Bob", "bob@example.com")

	// A 发帖 "Hello"
	code, body := do(t, r, request{method: http.MethodPost, path: "/api/posts", token: tokenA,
		body: gin.H{"title": "Hello", "content": "# First post"}})
	require.Equal(t, http.StatusCreated, code, "%v", body)
	post := body["post"].(map[string]any)
	postID := post["id"].(string)
	require.Equal(t, userA, post["authorId"])

	// 列表恰好一条，标题 Hello，作者为 A
	code, body = do(t, r, request{method: http.MethodGet, path: "/api/posts"})
	require.Equal(t, http.StatusOK, code)
	posts := body["posts"].([]any)
	require.Len(t, posts, 1)
	first := posts[0].(map[string]any)
	require.Equal(t, "Hello", first["title"])
	require.Equal(t, userA, first["authorId"])
	require.EqualValues(t, 0, first["likeCount"])
	require.EqualValues(t, 0, first["commentCount"])

	// B 尝试改 → 403
	code, _ = do(t, r, request{method: http.MethodPut, path: "/api/posts/" + postID, token: tokenB,
		body: gin.H{"title": "Hacked"}})
	require.Equal(t, http.StatusForbidden, code)

	// 匿名 → 401
	code, _ = do(t, r, request{method: http.MethodPut, path: "/api/posts/" + postID,
		body: gin.H{"title": "Hacked"}})
	require.Equal(t, http.StatusUnauthorized, code)

	// A 改 → 200
	code, body = do(t, r, request{method: http.MethodPut, path: "/api/posts/" + postID, token: tokenA,
		body: gin.H{"title": "Hacked"}})
	require.Equal(t, http.StatusOK, code, "%v", body)
	require.Equal(t, "Hacked", body["post"].(map[string]any)["title"])

	// B 点赞 → liked=true, count=1
	code, body = do(t, r, request{method: http.MethodPost, path: "/api/posts/" + postID + "/like", token: tokenB})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, true, body["liked"])

	code, body = do(t, r, request{method: http.MethodGet, path: "/api/posts/" + postID + "/like", token: tokenB})
	require.Equal(t, http.StatusOK, code)
	require.EqualValues(t, 1, body["likeCount"])
	require.Equal(t, true, body["isLikedByCurrentUser"])

	// 再点一次 → liked=false, count=0
	code, body = do(t, r, request{method: http.MethodPost, path: "/api/posts/" + postID + "/like", token: tokenB})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, false, body["liked"])

	code, body = do(t, r, request{method: http.MethodGet, path: "/api/posts/" + postID + "/like"})
	require.Equal(t, http.StatusOK, code)
	require.EqualValues(t, 0, body["likeCount"])
	require.Equal(t, false, body["isLikedByCurrentUser"])
}

func TestPostPositionalLookup(t *testing.T) {
	r := setupRouter(t)
	tokenA, _ := registerAndLogin(t, r, "Alice", "alice@example.com")

	code, body := do(t, r, request{method: http.MethodPost, path: "/api/posts", token: tokenA,
		body: gin.H{"title": "Only post", "content": "body"}})
	require.Equal(t, http.StatusCreated, code)
	postID := body["post"].(map[string]any)["id"].(string)

	// 纯数字按位置序号解析
	code, body = do(t, r, request{method: http.MethodGet, path: "/api/posts/1"})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, postID, body["post"].(map[string]any)["id"])

	code, _ = do(t, r, request{method: http.MethodGet, path: "/api/posts/2"})
	require.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, r, request{method: http.MethodGet, path: "/api/posts/no-such-id"})
	require.Equal(t, http.StatusNotFound, code)
}

func TestServerKeyTrustPath(t *testing.T) {
	r := setupRouter(t)
	tokenA, _ := registerAndLogin(t, r, "Alice", "alice@example.com")

	code, body := do(t, r, request{method: http.MethodPost, path: "/api/posts", token: tokenA,
		body: gin.H{"title": "Hello", "content": "body"}})
	require.Equal(t, http.StatusCreated, code)
	postID := body["post"].(map[string]any)["id"].(string)

	// 错误密钥不开信任路径
	code, _ = do(t, r, request{method: http.MethodPut, path: "/api/posts/" + postID, serverKey: "wrong",
		body: gin.H{"title": "Nope"}})
	require.Equal(t, http.StatusUnauthorized, code)

	// 正确密钥无会话也可改/删
	code, body = do(t, r, request{method: http.MethodPut, path: "/api/posts/" + postID, serverKey: testServerKey,
		body: gin.H{"title": "Service edit"}})
	require.Equal(t, http.StatusOK, code, "%v", body)
	require.Equal(t, "Service edit", body["post"].(map[string]any)["title"])

	code, body = do(t, r, request{method: http.MethodDelete, path: "/api/posts/" + postID, serverKey: testServerKey})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, true, body["success"])

	code, _ = do(t, r, request{method: http.MethodGet, path: "/api/posts/" + postID})
	require.Equal(t, http.StatusNotFound, code)
}

func TestCommentsFlow(t *testing.T) {
	r := setupRouter(t)
	tokenA, _ := registerAndLogin(t, r, "Alice", "alice@example.com")
	tokenB, _ := registerAndLogin(t, r, "Bob", "bob@example.com")

	code, body := do(t, r, request{method: http.MethodPost, path: "/api/posts", token: tokenA,
		body: gin.H{"title": "Hello", "content": "body"}})
	require.Equal(t, http.StatusCreated, code)
	postID := body["post"].(map[string]any)["id"].(string)

	// 匿名 → 401
	code, _ = do(t, r, request{method: http.MethodPost, path: "/api/posts/" + postID + "/comments",
		body: gin.H{"content": "hi"}})
	require.Equal(t, http.StatusUnauthorized, code)

	// 空白内容 → 400 且不落库
	code, _ = do(t, r, request{method: http.MethodPost, path: "/api/posts/" + postID + "/comments", token: tokenB,
		body: gin.H{"content": "   "}})
	require.Equal(t, http.StatusBadRequest, code)

	code, body = do(t, r, request{method: http.MethodPost, path: "/api/posts/" + postID + "/comments", token: tokenB,
		body: gin.H{"content": "nice post"}})
	require.Equal(t, http.StatusCreated, code, "%v", body)
	comment := body["comment"].(map[string]any)
	require.Equal(t, "nice post", comment["content"])
	require.Equal(t, "bob@example.com", comment["user"].(map[string]any)["email"])

	code, body = do(t, r, request{method: http.MethodGet, path: "/api/posts/" + postID + "/comments"})
	require.Equal(t, http.StatusOK, code)
	comments := body["comments"].([]any)
	require.Len(t, comments, 1)

	// 删帖后评论随之消失（级联）
	code, _ = do(t, r, request{method: http.MethodDelete, path: "/api/posts/" + postID, token: tokenA})
	require.Equal(t, http.StatusOK, code)

	code, body = do(t, r, request{method: http.MethodGet, path: "/api/posts/" + postID + "/comments"})
	require.Equal(t, http.StatusOK, code)
	require.Empty(t, body["comments"])
}

func TestMyPostsAndMe(t *testing.T) {
	r := setupRouter(t)
	tokenA, userA := registerAndLogin(t, r, "Alice", "alice@example.com")
	tokenB, _ := registerAndLogin(t, r, "Bob", "bob@example.com")

	code, _ := do(t, r, request{method: http.MethodPost, path: "/api/posts", token: tokenA,
		body: gin.H{"title": "Mine", "content": "body"}})
	require.Equal(t, http.StatusCreated, code)

	code, body := do(t, r, request{method: http.MethodGet, path: "/api/posts/mine", token: tokenA})
	require.Equal(t, http.StatusOK, code)
	require.Len(t, body["posts"].([]any), 1)

	code, body = do(t, r, request{method: http.MethodGet, path: "/api/posts/mine", token: tokenB})
	require.Equal(t, http.StatusOK, code)
	require.Empty(t, body["posts"])

	code, body = do(t, r, request{method: http.MethodGet, path: "/api/auth/me", token: tokenA})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, userA, body["user"].(map[string]any)["id"])

	code, _ = do(t, r, request{method: http.MethodGet, path: "/api/auth/me"})
	require.Equal(t, http.StatusUnauthorized, code)
}

func TestRegisterDuplicateEmailConflict(t *testing.T) {
	r := setupRouter(t)
	registerAndLogin(t, r, "Alice", "alice@example.com")

	code, _ := do(t, r, request{method: http.MethodPost, path: "/api/auth/register",
		body: gin.H{"name": "Copy", "email": "alice@example.com", "password": "secret123"}})
	require.Equal(t, http.StatusConflict, code)
}

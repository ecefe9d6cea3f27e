package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/storyblog/internal/service"
)

const (
	authContextKey = "auth_context"
	trustedKey     = "trusted_caller"

	// ServerKeyHeader 受信内部调用方携带的共享密钥头
	ServerKeyHeader = "x-copilot-server-key"

	SessionCookie = "session_token"
)

// AuthContext 每个请求解析一次的显式身份，不存在任何进程级共享状态
type AuthContext struct {
	UserID string
	Email  string
	Name   string
}

// AuthResolver 从 Authorization Bearer 或会话 cookie 解析身份，
// 解析失败视为匿名请求，是否拒绝由各 handler 决定
func AuthResolver(auth service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ""
		if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
			token = strings.TrimPrefix(h, "Bearer ")
		} else if v, err := c.Cookie(SessionCookie); err == nil {
			token = v
		}
		if token != "" {
			if claims, err := auth.ParseToken(token); err == nil {
				c.Set(authContextKey, &AuthContext{
					UserID: claims.UserID,
					Email:  claims.Email,
					Name:   claims.Name,
				})
			}
		}
		c.Next()
	}
}

// ServerKeyCheck 校验共享密钥头；密钥未配置时信任路径关闭
func ServerKeyCheck(expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if expected != "" && c.GetHeader(ServerKeyHeader) == expected {
			c.Set(trustedKey, true)
		}
		c.Next()
	}
}

// CurrentUser 取出请求身份；第二个返回值为是否已认证
func CurrentUser(c *gin.Context) (*AuthContext, bool) {
	v, ok := c.Get(authContextKey)
	if !ok {
		return nil, false
	}
	ac, ok := v.(*AuthContext)
	return ac, ok
}

// IsTrusted 请求是否携带了有效的服务端密钥
func IsTrusted(c *gin.Context) bool {
	return c.GetBool(trustedKey)
}

package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Leon-Chun/twitter-fullstack-2020/internal/model"
	"github.com/Leon-Chun/twitter-fullstack-2020/pkg/auth"
)

const (
	ctxUser      = "current_user"
	ctxClaims    = "session_claims"
	ctxRequestID = "request_id"
)

// CurrentUser 认证中间件写入的登录用户
func CurrentUser(c *gin.Context) (*model.User, bool) {
	v, ok := c.Get(ctxUser)
	if !ok {
		return nil, false
	}
	u, ok := v.(*model.User)
	return u, ok && u != nil
}

// Identity 未登录时返回零值
func Identity(c *gin.Context) model.Identity {
	if u, ok := CurrentUser(c); ok {
		return u.Identity()
	}
	return model.Identity{}
}

// Claims 当前会话令牌
func Claims(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(ctxClaims)
	if !ok {
		return nil, false
	}
	cl, ok := v.(*auth.Claims)
	return cl, ok
}

// RequestID 当前请求 ID
func RequestID(c *gin.Context) string {
	return c.GetString(ctxRequestID)
}

// IsAPI JSON 接口统一挂在 /api 下
func IsAPI(c *gin.Context) bool {
	return strings.HasPrefix(c.Request.URL.Path, "/api/")
}

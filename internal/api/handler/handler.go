package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Leon-Chun/twitter-fullstack-2020/internal/api/middleware"
	"github.com/Leon-Chun/twitter-fullstack-2020/internal/apperr"
	"github.com/Leon-Chun/twitter-fullstack-2020/internal/service"
	"github.com/Leon-Chun/twitter-fullstack-2020/internal/web"
	"github.com/Leon-Chun/twitter-fullstack-2020/pkg/auth"
)

// SessionCookie 会话 cookie 设置
type SessionCookie struct {
	Name   string
	Secure bool
}

// Deps Handler 依赖
type Deps struct {
	Users     service.UserService
	Tweets    service.TweetService
	Relations service.RelationshipService
	Sessions  service.SessionStore
	Tokens    *auth.JWTService
	Cookie    SessionCookie
}

// Handler 所有路由处理器
type Handler struct {
	userService  service.UserService
	tweetService service.TweetService
	relService   service.RelationshipService
	sessions     service.SessionStore
	tokens       *auth.JWTService
	cookie       SessionCookie
}

func New(d Deps) *Handler {
	if d.Sessions == nil {
		d.Sessions = service.NewSessionStore(nil)
	}
	if d.Cookie.Name == "" {
		d.Cookie.Name = "session"
	}
	return &Handler{
		userService:  d.Users,
		tweetService: d.Tweets,
		relService:   d.Relations,
		sessions:     d.Sessions,
		tokens:       d.Tokens,
		cookie:       d.Cookie,
	}
}

var errBadID = apperr.NotFound("page doesn't exist")

// render 渲染页面，附带当前用户与 flash
func (h *Handler) render(c *gin.Context, name, title string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Title"] = title
	data["Viewer"] = middleware.Identity(c)
	data["Flash"] = web.PopFlash(c)
	c.HTML(http.StatusOK, name, data)
}

// fail 交给 ErrorHandler 统一输出
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// redirectBack 回到来源页；Referer 缺失或跨站时跳到 fallback
func redirectBack(c *gin.Context, fallback string) {
	target := fallback
	if ref := c.Request.Referer(); ref != "" {
		if u, err := url.Parse(ref); err == nil && (u.Host == "" || u.Host == c.Request.Host) && strings.HasPrefix(u.Path, "/") {
			target = u.RequestURI()
		}
	}
	c.Redirect(http.StatusFound, target)
}

func paramID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errBadID
	}
	return uint(id), nil
}

func queryInt(c *gin.Context, name string) int {
	n, _ := strconv.Atoi(c.Query(name))
	return n
}

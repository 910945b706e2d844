// Package api 组装 gin 引擎：全局中间件、页面路由与 JSON 接口。
package api

import (
	"net/http"
	"sync"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "github.com/Leon-Chun/twitter-fullstack-2020/docs"
	"github.com/Leon-Chun/twitter-fullstack-2020/internal/api/handler"
	"github.com/Leon-Chun/twitter-fullstack-2020/internal/api/middleware"
	"github.com/Leon-Chun/twitter-fullstack-2020/internal/service"
	"github.com/Leon-Chun/twitter-fullstack-2020/internal/web"
)

// RouterConfig 路由与全局中间件配置
type RouterConfig struct {
	Mode        string
	Sentry      bool
	Tracing     bool
	ServiceName string
	RateRPS     float64
	RateBurst   int
	Auth        middleware.AuthConfig
}

var registerValidators sync.Once

// NewRouter 构建 gin 引擎
func NewRouter(h *handler.Handler, cfg RouterConfig) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	registerValidators.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("notblank", validators.NotBlank)
		}
	})

	r := gin.New()
	r.SetHTMLTemplate(web.MustTemplates())

	r.Use(middleware.RequestIDMiddleware(), middleware.AccessLog(), gin.Recovery())
	if cfg.Sentry {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	if cfg.Tracing {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(gzip.Gzip(gzip.DefaultCompression), middleware.ErrorHandler())

	r.NoRoute(func(c *gin.Context) {
		middleware.Abort(c, http.StatusNotFound, "page doesn't exist")
	})

	limiter := middleware.NewIPRateLimiter(cfg.RateRPS, cfg.RateBurst).Middleware()

	r.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/signin") })
	r.GET("/health", h.Health)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/signup", h.SignUpPage)
	r.POST("/signup", limiter, h.SignUp)
	r.GET("/signin", h.SignInPage)
	r.POST("/signin", limiter, h.SignIn)

	authed := r.Group("/", middleware.Auth(cfg.Auth))
	{
		authed.GET("/logout", h.Logout)
		authed.GET("/settings", h.SettingsPage)
		authed.PUT("/settings", h.PutSettings)

		users := authed.Group("/users/:id")
		users.GET("/tweets", h.UserPage(service.TabTweets))
		users.GET("/replies", h.UserPage(service.TabReplies))
		users.GET("/likes", h.UserPage(service.TabLikes))
		users.GET("/followings", h.UserPage(service.TabFollowings))
		users.GET("/followers", h.UserPage(service.TabFollowers))
		users.PUT("/setup_profile", h.PutProfile)

		authed.GET("/tweets", h.Tweets)
		authed.POST("/tweets", h.PostTweet)
		authed.GET("/tweets/:id", h.Tweet)
		authed.POST("/tweets/:id/like", h.Like)
		authed.POST("/tweets/:id/unlike", h.Unlike)
		authed.POST("/tweets/:id/replies", h.Reply)

		authed.POST("/followships", h.Follow)
		authed.DELETE("/followships/:id", h.Unfollow)
	}

	api := r.Group("/api", middleware.Auth(cfg.Auth))
	{
		api.GET("/users/:id", h.GetUserInfo)
		api.POST("/users/:id", h.PostUserInfo)
	}
	return r
}

// HTTPHandler 在路由匹配前处理表单的 _method 覆盖
func HTTPHandler(r *gin.Engine) http.Handler {
	return middleware.MethodOverride(r)
}

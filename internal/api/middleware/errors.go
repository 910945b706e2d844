package middleware

import (
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Leon-Chun/twitter-fullstack-2020/internal/apperr"
	"github.com/Leon-Chun/twitter-fullstack-2020/internal/web"
	"github.com/Leon-Chun/twitter-fullstack-2020/pkg/logger"
	"github.com/Leon-Chun/twitter-fullstack-2020/pkg/response"
)

// ErrorHandler 把 handler 通过 c.Error 上报的错误统一渲染：/api 下返回 JSON，其余渲染 error 页面
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		ae := apperr.From(err)

		fields := []zap.Field{
			zap.String("kind", ae.Kind.String()),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", RequestID(c)),
			zap.Error(err),
		}
		if ae.Kind == apperr.KindInternal {
			logger.Error("request failed", fields...)
			if hub := sentrygin.GetHubFromContext(c); hub != nil {
				hub.CaptureException(err)
			}
		} else {
			logger.Warn("request rejected", fields...)
		}

		if c.Writer.Written() {
			return
		}
		Abort(c, ae.Kind.HTTPStatus(), ae.Message)
	}
}

// Abort 按请求类型写出错误响应
func Abort(c *gin.Context, status int, message string) {
	if IsAPI(c) {
		response.Error(c, status, message)
		return
	}
	c.HTML(status, "error", gin.H{
		"Title":   "Error",
		"Viewer":  Identity(c),
		"Flash":   web.Flash{},
		"Status":  status,
		"Message": message,
	})
	c.Abort()
}

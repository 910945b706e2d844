package handler

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Leon-Chun/twitter-fullstack-2020/internal/api/middleware"
	"github.com/Leon-Chun/twitter-fullstack-2020/internal/apperr"
	"github.com/Leon-Chun/twitter-fullstack-2020/internal/service"
	"github.com/Leon-Chun/twitter-fullstack-2020/internal/web"
	"github.com/Leon-Chun/twitter-fullstack-2020/pkg/logger"
)

type signInForm struct {
	Account  string `form:"account" binding:"required,notblank"`
	Password string `form:"password" binding:"required"`
}

// SignUpPage 注册页
func (h *Handler) SignUpPage(c *gin.Context) {
	h.render(c, "signup", "Sign up", gin.H{"Account": "", "Name": "", "Email": ""})
}

// SignUp 注册，成功后跳转登录页
func (h *Handler) SignUp(c *gin.Context) {
	in := service.SignUpInput{
		Account:       c.PostForm("account"),
		Name:          c.PostForm("name"),
		Email:         c.PostForm("email"),
		Password:      c.PostForm("password"),
		CheckPassword: c.PostForm("checkPassword"),
	}
	if _, err := h.userService.SignUp(c.Request.Context(), in); err != nil {
		fail(c, err)
		return
	}
	web.FlashSuccess(c, "account registered")
	c.Redirect(http.StatusFound, "/signin")
}

// SignInPage 登录页
func (h *Handler) SignInPage(c *gin.Context) {
	h.render(c, "signin", "Sign in", nil)
}

// SignIn 校验账号密码并签发会话 cookie；失败时 flash 并回到登录页
func (h *Handler) SignIn(c *gin.Context) {
	var form signInForm
	if err := c.ShouldBind(&form); err != nil {
		web.FlashError(c, service.ErrInvalidCredentials.Message)
		c.Redirect(http.StatusFound, "/signin")
		return
	}
	user, err := h.userService.Authenticate(c.Request.Context(), form.Account, form.Password)
	if err != nil {
		if !apperr.Is(err, apperr.KindUnauthorized) {
			fail(c, err)
			return
		}
		web.FlashError(c, apperr.From(err).Message)
		c.Redirect(http.StatusFound, "/signin")
		return
	}

	token, _, err := h.tokens.Issue(user.ID, user.Role)
	if err != nil {
		fail(c, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, token, int(h.tokens.TTL().Seconds()), "/", "", h.cookie.Secure, true)
	web.FlashSuccess(c, "signed in")
	c.Redirect(http.StatusFound, "/tweets")
}

// Logout 撤销令牌并清除 cookie
func (h *Handler) Logout(c *gin.Context) {
	if claims, ok := middleware.Claims(c); ok && claims.ExpiresAt != nil {
		if err := h.sessions.Revoke(c.Request.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
			logger.Warn("revoke session failed", zap.String("jti", claims.ID), zap.Error(err))
		}
	}
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
	web.FlashSuccess(c, "signed out")
	c.Redirect(http.StatusFound, "/signin")
}

// SettingsPage 账号设置页
func (h *Handler) SettingsPage(c *gin.Context) {
	user, err := h.userService.GetByID(c.Request.Context(), middleware.Identity(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	h.render(c, "settings", "Settings", gin.H{"User": user})
}

// PutSettings 修改账号、名称、邮箱与密码
func (h *Handler) PutSettings(c *gin.Context) {
	in := service.SettingsInput{
		Account:       c.PostForm("account"),
		Name:          c.PostForm("name"),
		Email:         c.PostForm("email"),
		Password:      c.PostForm("password"),
		CheckPassword: c.PostForm("checkPassword"),
	}
	if _, err := h.userService.UpdateSettings(c.Request.Context(), middleware.Identity(c), in); err != nil {
		fail(c, err)
		return
	}
	web.FlashSuccess(c, "settings updated")
	c.Redirect(http.StatusFound, "/settings")
}

// UserPage 用户主页的各个标签页
func (h *Handler) UserPage(tab service.Tab) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c, "id")
		if err != nil {
			fail(c, err)
			return
		}
		page, err := h.userService.UserPage(c.Request.Context(), middleware.Identity(c), id, tab, queryInt(c, "page"), queryInt(c, "page_size"))
		if err != nil {
			fail(c, err)
			return
		}
		h.render(c, "user", page.Profile.User.Name, gin.H{"Page": page})
	}
}

// PutProfile 修改个人资料，成功后回到来源页
func (h *Handler) PutProfile(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	in, err := profileInput(c)
	if err != nil {
		fail(c, err)
		return
	}
	if _, err := h.userService.UpdateProfile(c.Request.Context(), middleware.Identity(c), id, in); err != nil {
		fail(c, err)
		return
	}
	web.FlashSuccess(c, "profile updated")
	redirectBack(c, "/users/"+c.Param("id")+"/tweets")
}

// profileInput 读取 multipart 表单；avatar/cover 各取第一个文件
func profileInput(c *gin.Context) (service.ProfileInput, error) {
	in := service.ProfileInput{
		Name:         c.PostForm("name"),
		Introduction: c.PostForm("introduction"),
	}
	var err error
	if in.Avatar, err = formFile(c, "avatar"); err != nil {
		return in, err
	}
	if in.Cover, err = formFile(c, "cover"); err != nil {
		return in, err
	}
	return in, nil
}

// formFile 字段缺失时返回 nil
func formFile(c *gin.Context, field string) (*multipart.FileHeader, error) {
	f, err := c.FormFile(field)
	switch {
	case err == nil:
		return f, nil
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return nil, nil
	default:
		return nil, apperr.Invalid("invalid upload")
	}
}

package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Leon-Chun/twitter-fullstack-2020/internal/api/middleware"
	"github.com/Leon-Chun/twitter-fullstack-2020/pkg/response"
)

// GetUserInfo 读取自己的资料
// @Summary 读取用户资料（仅本人）
// @Tags 用户
// @Produce json
// @Security SessionCookie
// @Param id path int true "用户ID"
// @Success 200 {object} response.Response{data=model.User}
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/users/{id} [get]
func (h *Handler) GetUserInfo(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	user, err := h.userService.GetUserInfo(c.Request.Context(), middleware.Identity(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, user)
}

// PostUserInfo 修改自己的资料
// @Summary 修改用户资料（仅本人）
// @Tags 用户
// @Accept mpfd
// @Produce json
// @Security SessionCookie
// @Param id path int true "用户ID"
// @Param name formData string true "名称，不超过 50 字"
// @Param introduction formData string false "自我介绍，不超过 160 字"
// @Param avatar formData file false "头像"
// @Param cover formData file false "封面"
// @Success 200 {object} response.Response{data=model.User}
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/users/{id} [post]
func (h *Handler) PostUserInfo(c *gin.Context) {
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
	user, err := h.userService.UpdateProfile(c.Request.Context(), middleware.Identity(c), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "profile updated", user)
}

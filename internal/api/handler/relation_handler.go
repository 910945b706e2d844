package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Leon-Chun/twitter-fullstack-2020/internal/api/middleware"
	"github.com/Leon-Chun/twitter-fullstack-2020/internal/apperr"
	"github.com/Leon-Chun/twitter-fullstack-2020/internal/web"
)

type followForm struct {
	ID string `form:"id" binding:"required,notblank"`
}

// Follow 关注表单中 id 指定的用户
func (h *Handler) Follow(c *gin.Context) {
	var form followForm
	if err := c.ShouldBind(&form); err != nil {
		fail(c, apperr.Invalid("user id is required"))
		return
	}
	toID, err := strconv.ParseUint(form.ID, 10, 64)
	if err != nil {
		fail(c, apperr.Invalid("user id is invalid"))
		return
	}
	if err := h.relService.Follow(c.Request.Context(), middleware.Identity(c).ID, uint(toID)); err != nil {
		fail(c, err)
		return
	}
	web.FlashSuccess(c, "followed")
	redirectBack(c, "/tweets")
}

// Unfollow 取消关注 :id
func (h *Handler) Unfollow(c *gin.Context) {
	toID, err := paramID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.relService.Unfollow(c.Request.Context(), middleware.Identity(c).ID, toID); err != nil {
		fail(c, err)
		return
	}
	web.FlashSuccess(c, "unfollowed")
	redirectBack(c, "/tweets")
}

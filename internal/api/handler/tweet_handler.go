package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Leon-Chun/twitter-fullstack-2020/internal/api/middleware"
	"github.com/Leon-Chun/twitter-fullstack-2020/internal/web"
)

// Tweets 首页：全部推文与推荐关注
func (h *Handler) Tweets(c *gin.Context) {
	feed, err := h.tweetService.Feed(c.Request.Context(), middleware.Identity(c))
	if err != nil {
		fail(c, err)
		return
	}
	h.render(c, "tweets", "Home", gin.H{"Tweets": feed.Tweets, "Users": feed.Users})
}

// PostTweet 发推
func (h *Handler) PostTweet(c *gin.Context) {
	if _, err := h.tweetService.Post(c.Request.Context(), middleware.Identity(c), c.PostForm("description")); err != nil {
		fail(c, err)
		return
	}
	web.FlashSuccess(c, "tweet posted")
	redirectBack(c, "/tweets")
}

// Tweet 推文详情
func (h *Handler) Tweet(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	page, err := h.tweetService.Detail(c.Request.Context(), middleware.Identity(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	h.render(c, "tweet", "Tweet", gin.H{"Tweet": page.Tweet, "Users": page.Users})
}

// Like 点赞
func (h *Handler) Like(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.tweetService.Like(c.Request.Context(), middleware.Identity(c), id); err != nil {
		fail(c, err)
		return
	}
	redirectBack(c, "/tweets")
}

// Unlike 取消点赞
func (h *Handler) Unlike(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.tweetService.Unlike(c.Request.Context(), middleware.Identity(c), id); err != nil {
		fail(c, err)
		return
	}
	redirectBack(c, "/tweets")
}

// Reply 回复推文
func (h *Handler) Reply(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	if _, err := h.tweetService.Reply(c.Request.Context(), middleware.Identity(c), id, c.PostForm("comment")); err != nil {
		fail(c, err)
		return
	}
	redirectBack(c, "/tweets/"+c.Param("id"))
}

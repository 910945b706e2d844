package service

import (
	"github.com/Leon-Chun/twitter-fullstack-2020/internal/model"
	"github.com/Leon-Chun/twitter-fullstack-2020/internal/repository"
)

// TweetView 推文及当前用户视角下的统计
type TweetView struct {
	*model.Tweet
	IsLiked    bool  `json:"isLiked"`
	LikeCount  int64 `json:"likeCount"`
	ReplyCount int64 `json:"replyCount"`
}

// UserCard 推荐侧栏条目
type UserCard struct {
	repository.UserRank
	IsFollowed    bool `json:"isFollowed"`
	IsCurrentUser bool `json:"isCurrentUser"`
}

// UserItem 关注/粉丝列表条目
type UserItem struct {
	*model.User
	IsFollowed    bool `json:"isFollowed"`
	IsCurrentUser bool `json:"isCurrentUser"`
}

// FeedPage 首页
type FeedPage struct {
	Tweets []TweetView `json:"tweets"`
	Users  []UserCard  `json:"users"`
}

// TweetPage 推文详情页
type TweetPage struct {
	Tweet TweetView  `json:"tweet"`
	Users []UserCard `json:"users"`
}

// Profile 用户主页头部
type Profile struct {
	User           *model.User `json:"user"`
	TweetCount     int64       `json:"tweetCount"`
	FollowerCount  int64       `json:"followerCount"`
	FollowingCount int64       `json:"followingCount"`
	IsFollowed     bool        `json:"isFollowed"`
	IsCurrentUser  bool        `json:"isCurrentUser"`
}

type Tab string

const (
	TabTweets     Tab = "tweets"
	TabReplies    Tab = "replies"
	TabLikes      Tab = "likes"
	TabFollowings Tab = "followings"
	TabFollowers  Tab = "followers"
)

// UserPage 用户主页；按 Tab 只填充其中一个列表
type UserPage struct {
	Profile  Profile        `json:"profile"`
	Tab      Tab            `json:"tab"`
	Tweets   []TweetView    `json:"tweets,omitempty"`
	Replies  []*model.Reply `json:"replies,omitempty"`
	Users    []UserItem     `json:"users,omitempty"`
	Sidebar  []UserCard     `json:"sidebar"`
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
}

// pagination 规范化分页参数
func pagination(page, pageSize int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize, (page - 1) * pageSize
}

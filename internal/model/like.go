package model

import "time"

// Like 点赞；(user_id, tweet_id) 唯一
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"UserId" gorm:"not null;uniqueIndex:idx_like_pair"`
	TweetID   uint      `json:"TweetId" gorm:"not null;uniqueIndex:idx_like_pair;index:idx_like_tweet"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Like) TableName() string { return "likes" }

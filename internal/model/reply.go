package model

import "time"

// Reply 回复
type Reply struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"UserId" gorm:"index:idx_reply_user;not null"`
	TweetID   uint      `json:"TweetId" gorm:"index:idx_reply_tweet;not null"`
	Comment   string    `json:"comment" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time `json:"updatedAt"`

	User  User   `json:"User" gorm:"foreignKey:UserID"`
	Tweet *Tweet `json:"Tweet,omitempty" gorm:"foreignKey:TweetID"`
}

func (Reply) TableName() string { return "replies" }

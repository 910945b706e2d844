package model

import "time"

// Tweet 推文
type Tweet struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"UserId" gorm:"index:idx_tweet_user;not null"`
	Description string    `json:"description" gorm:"type:varchar(140);not null"`
	CreatedAt   time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt   time.Time `json:"updatedAt"`

	User    User    `json:"User" gorm:"foreignKey:UserID"`
	Replies []Reply `json:"Replies,omitempty"`
	Likes   []Like  `json:"Likes,omitempty"`
}

func (Tweet) TableName() string { return "tweets" }

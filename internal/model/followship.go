package model

import (
	"time"
)

// Followship 关注关系（Follower 关注 Followee）
type Followship struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	FollowerID uint `json:"followerId" gorm:"not null;index:idx_followship_follower;uniqueIndex:idx_followship_pair"`
	FolloweeID uint `json:"followeeId" gorm:"not null;index:idx_followship_followee;uniqueIndex:idx_followship_pair"`
	// 复合唯一键，避免重复关注
	// idx_followship_pair = (follower_id, followee_id)
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Followship) TableName() string { return "followships" }

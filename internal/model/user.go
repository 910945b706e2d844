package model

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User 用户
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Account      string    `json:"account" gorm:"type:varchar(255);uniqueIndex;not null"`
	Email        string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Password     string    `json:"-" gorm:"type:varchar(255);not null"`
	Name         string    `json:"name" gorm:"type:varchar(50)"`
	Introduction string    `json:"introduction" gorm:"type:varchar(160)"`
	Avatar       string    `json:"avatar"`
	Cover        string    `json:"cover"`
	Role         string    `json:"role" gorm:"type:varchar(16);not null;default:user;index"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// Identity 已登录用户身份，由认证中间件解析后显式传入各 service
type Identity struct {
	ID      uint
	Account string
	Role    string
}

func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Account: u.Account, Role: u.Role}
}

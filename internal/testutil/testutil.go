// Package testutil 为各包测试提供内存数据库与 Redis。
package testutil

import (
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Leon-Chun/twitter-fullstack-2020/internal/model"
	"github.com/Leon-Chun/twitter-fullstack-2020/pkg/database"
)

// NewDB 打开已迁移的 sqlite 内存库，测试结束时关闭
func NewDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	db, err := database.Open("sqlite", ":memory:")
	require.NoError(tb, err)
	require.NoError(tb, database.Migrate(db))
	tb.Cleanup(func() { _ = database.Close(db) })
	return db
}

// NewRedis 启动 miniredis 并返回客户端
func NewRedis(tb testing.TB) (*miniredis.Miniredis, *redis.Client) {
	tb.Helper()
	mr := miniredis.RunT(tb)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	tb.Cleanup(func() { _ = client.Close() })
	return mr, client
}

// Password 种子用户的明文密码
const Password = "12345678"

// CreateUser 直接写库创建用户，密码为 Password
func CreateUser(tb testing.TB, db *gorm.DB, account string) *model.User {
	tb.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	require.NoError(tb, err)
	u := &model.User{
		Account:  account,
		Email:    fmt.Sprintf("%s@example.com", account),
		Password: string(hash),
		Name:     account,
		Role:     model.RoleUser,
	}
	require.NoError(tb, db.Create(u).Error)
	return u
}

// CreateTweet 直接写库创建推文
func CreateTweet(tb testing.TB, db *gorm.DB, userID uint, description string) *model.Tweet {
	tb.Helper()
	t := &model.Tweet{UserID: userID, Description: description}
	require.NoError(tb, db.Create(t).Error)
	return t
}

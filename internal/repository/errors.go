package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// translate 把 gorm 错误收敛为仓储层哨兵错误
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}

// publicUser 预加载用户时排除密码列
func publicUser(db *gorm.DB) *gorm.DB {
	return db.Omit("password")
}

type tweetCount struct {
	TweetID uint
	Cnt     int64
}

// countByTweet 按 tweet_id 分组计数；ids 为空时统计全部
func countByTweet(db *gorm.DB, m any, ids []uint) (map[uint]int64, error) {
	q := db.Model(m).Select("tweet_id, COUNT(*) AS cnt").Group("tweet_id")
	if len(ids) > 0 {
		q = q.Where("tweet_id IN ?", ids)
	}
	var rows []tweetCount
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	res := make(map[uint]int64, len(rows))
	for _, r := range rows {
		res[r.TweetID] = r.Cnt
	}
	return res, nil
}

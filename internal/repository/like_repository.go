package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Leon-Chun/twitter-fullstack-2020/internal/model"
)

type LikeRepository interface {
	// Create 重复点赞返回 ErrDuplicate
	Create(ctx context.Context, userID, tweetID uint) (*model.Like, error)
	Find(ctx context.Context, userID, tweetID uint) (*model.Like, error)
	Delete(ctx context.Context, like *model.Like) error
	// CountByTweets 每条推文的点赞数；ids 为空时统计全部
	CountByTweets(ctx context.Context, tweetIDs []uint) (map[uint]int64, error)
	// LikedTweetIDs 用户在 tweetIDs 范围内点过赞的推文；ids 为空时返回全部
	LikedTweetIDs(ctx context.Context, userID uint, tweetIDs []uint) (map[uint]bool, error)
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository { return &likeRepository{db: db} }

func (r *likeRepository) Create(ctx context.Context, userID, tweetID uint) (*model.Like, error) {
	l := &model.Like{UserID: userID, TweetID: tweetID}
	if err := r.db.WithContext(ctx).Create(l).Error; err != nil {
		return nil, translate(err)
	}
	return l, nil
}

func (r *likeRepository) Find(ctx context.Context, userID, tweetID uint) (*model.Like, error) {
	var l model.Like
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND tweet_id = ?", userID, tweetID).
		First(&l).Error
	if err != nil {
		return nil, translate(err)
	}
	return &l, nil
}

func (r *likeRepository) Delete(ctx context.Context, like *model.Like) error {
	return r.db.WithContext(ctx).Delete(like).Error
}

func (r *likeRepository) CountByTweets(ctx context.Context, tweetIDs []uint) (map[uint]int64, error) {
	return countByTweet(r.db.WithContext(ctx), &model.Like{}, tweetIDs)
}

func (r *likeRepository) LikedTweetIDs(ctx context.Context, userID uint, tweetIDs []uint) (map[uint]bool, error) {
	q := r.db.WithContext(ctx).Model(&model.Like{}).Where("user_id = ?", userID)
	if len(tweetIDs) > 0 {
		q = q.Where("tweet_id IN ?", tweetIDs)
	}
	var ids []uint
	if err := q.Pluck("tweet_id", &ids).Error; err != nil {
		return nil, err
	}
	res := make(map[uint]bool, len(ids))
	for _, id := range ids {
		res[id] = true
	}
	return res, nil
}

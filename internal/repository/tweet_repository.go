package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Leon-Chun/twitter-fullstack-2020/internal/model"
)

type TweetRepository interface {
	Create(ctx context.Context, tweet *model.Tweet) error
	Exists(ctx context.Context, id uint) (bool, error)
	// GetDetail 带作者、回复（新到旧，含回复者）与点赞
	GetDetail(ctx context.Context, id uint) (*model.Tweet, error)
	// ListAll 全部推文（含作者），新到旧
	ListAll(ctx context.Context) ([]*model.Tweet, error)
	ListByUser(ctx context.Context, userID uint, offset, limit int) ([]*model.Tweet, error)
	// ListLikedByUser 用户点过赞的推文，按点赞时间新到旧
	ListLikedByUser(ctx context.Context, userID uint, offset, limit int) ([]*model.Tweet, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
}

type tweetRepository struct {
	db *gorm.DB
}

func NewTweetRepository(db *gorm.DB) TweetRepository { return &tweetRepository{db: db} }

func (r *tweetRepository) Create(ctx context.Context, tweet *model.Tweet) error {
	return translate(r.db.WithContext(ctx).Create(tweet).Error)
}

func (r *tweetRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).Model(&model.Tweet{}).Where("id = ?", id).Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *tweetRepository) GetDetail(ctx context.Context, id uint) (*model.Tweet, error) {
	var t model.Tweet
	err := r.db.WithContext(ctx).
		Preload("User", publicUser).
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Order("replies.created_at DESC, replies.id DESC")
		}).
		Preload("Replies.User", publicUser).
		Preload("Likes").
		First(&t, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *tweetRepository) ListAll(ctx context.Context) ([]*model.Tweet, error) {
	var res []*model.Tweet
	err := r.db.WithContext(ctx).
		Preload("User", publicUser).
		Order("created_at DESC, id DESC").
		Find(&res).Error
	return res, err
}

func (r *tweetRepository) ListByUser(ctx context.Context, userID uint, offset, limit int) ([]*model.Tweet, error) {
	var res []*model.Tweet
	err := r.db.WithContext(ctx).
		Preload("User", publicUser).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, err
}

func (r *tweetRepository) ListLikedByUser(ctx context.Context, userID uint, offset, limit int) ([]*model.Tweet, error) {
	var res []*model.Tweet
	err := r.db.WithContext(ctx).
		Select("tweets.*").
		Preload("User", publicUser).
		Joins("JOIN likes ON likes.tweet_id = tweets.id").
		Where("likes.user_id = ?", userID).
		Order("likes.created_at DESC, likes.id DESC").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, err
}

func (r *tweetRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Tweet{}).Where("user_id = ?", userID).Count(&cnt).Error
	return cnt, err
}

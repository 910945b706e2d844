package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Leon-Chun/twitter-fullstack-2020/internal/model"
)

type ReplyRepository interface {
	Create(ctx context.Context, reply *model.Reply) error
	// ListByUser 用户的回复（新到旧），带被回复推文及其作者
	ListByUser(ctx context.Context, userID uint, offset, limit int) ([]*model.Reply, error)
	CountByTweets(ctx context.Context, tweetIDs []uint) (map[uint]int64, error)
}

type replyRepository struct {
	db *gorm.DB
}

func NewReplyRepository(db *gorm.DB) ReplyRepository { return &replyRepository{db: db} }

func (r *replyRepository) Create(ctx context.Context, reply *model.Reply) error {
	return translate(r.db.WithContext(ctx).Create(reply).Error)
}

func (r *replyRepository) ListByUser(ctx context.Context, userID uint, offset, limit int) ([]*model.Reply, error) {
	var res []*model.Reply
	err := r.db.WithContext(ctx).
		Preload("User", publicUser).
		Preload("Tweet").
		Preload("Tweet.User", publicUser).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, err
}

func (r *replyRepository) CountByTweets(ctx context.Context, tweetIDs []uint) (map[uint]int64, error) {
	return countByTweet(r.db.WithContext(ctx), &model.Reply{}, tweetIDs)
}

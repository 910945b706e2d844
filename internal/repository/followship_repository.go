package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Leon-Chun/twitter-fullstack-2020/internal/model"
)

type FollowshipRepository interface {
	// Create 重复关注返回 ErrDuplicate
	Create(ctx context.Context, followerID, followeeID uint) error
	// Delete 返回是否真的删除了关系
	Delete(ctx context.Context, followerID, followeeID uint) (bool, error)
	Exists(ctx context.Context, followerID, followeeID uint) (bool, error)
	ListFollowings(ctx context.Context, followerID uint, offset, limit int) ([]*model.Followship, error)
	ListFollowers(ctx context.Context, followeeID uint, offset, limit int) ([]*model.Followship, error)
	// FollowedAmong followerID 关注了 candidates 中的哪些人
	FollowedAmong(ctx context.Context, followerID uint, candidates []uint) (map[uint]bool, error)
	CountFollowers(ctx context.Context, userID uint) (int64, error)
	CountFollowings(ctx context.Context, userID uint) (int64, error)
}

type followshipRepository struct {
	db *gorm.DB
}

func NewFollowshipRepository(db *gorm.DB) FollowshipRepository {
	return &followshipRepository{db: db}
}

func (r *followshipRepository) Create(ctx context.Context, followerID, followeeID uint) error {
	f := &model.Followship{FollowerID: followerID, FolloweeID: followeeID}
	return translate(r.db.WithContext(ctx).Create(f).Error)
}

func (r *followshipRepository) Delete(ctx context.Context, followerID, followeeID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&model.Followship{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *followshipRepository) Exists(ctx context.Context, followerID, followeeID uint) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Followship{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *followshipRepository) ListFollowings(ctx context.Context, followerID uint, offset, limit int) ([]*model.Followship, error) {
	var res []*model.Followship
	err := r.db.WithContext(ctx).
		Where("follower_id = ?", followerID).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, err
}

func (r *followshipRepository) ListFollowers(ctx context.Context, followeeID uint, offset, limit int) ([]*model.Followship, error) {
	var res []*model.Followship
	err := r.db.WithContext(ctx).
		Where("followee_id = ?", followeeID).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, err
}

func (r *followshipRepository) FollowedAmong(ctx context.Context, followerID uint, candidates []uint) (map[uint]bool, error) {
	res := make(map[uint]bool, len(candidates))
	if len(candidates) == 0 {
		return res, nil
	}
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&model.Followship{}).
		Where("follower_id = ? AND followee_id IN ?", followerID, candidates).
		Pluck("followee_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		res[id] = true
	}
	return res, nil
}

func (r *followshipRepository) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Followship{}).Where("followee_id = ?", userID).Count(&cnt).Error
	return cnt, err
}

func (r *followshipRepository) CountFollowings(ctx context.Context, userID uint) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Followship{}).Where("follower_id = ?", userID).Count(&cnt).Error
	return cnt, err
}

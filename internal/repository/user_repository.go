package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Leon-Chun/twitter-fullstack-2020/internal/model"
)

// UserRank 推荐侧栏所需的用户快照
type UserRank struct {
	ID            uint   `json:"id"`
	Account       string `json:"account"`
	Name          string `json:"name"`
	Avatar        string `json:"avatar"`
	FollowerCount int64  `json:"followerCount"`
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uint) (*model.User, error)
	GetByAccount(ctx context.Context, account string) (*model.User, error)
	// ExistsByAccount / ExistsByEmail 忽略 excludeID 对应的用户（0 表示不排除）
	ExistsByAccount(ctx context.Context, account string, excludeID uint) (bool, error)
	ExistsByEmail(ctx context.Context, email string, excludeID uint) (bool, error)
	Updates(ctx context.Context, user *model.User, fields map[string]any) error
	ListByIDs(ctx context.Context, ids []uint) ([]*model.User, error)
	TopByFollowers(ctx context.Context, role string, limit int) ([]UserRank, error)
	Count(ctx context.Context) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepository{db: db} }

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *userRepository) GetByAccount(ctx context.Context, account string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("account = ?", account).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *userRepository) ExistsByAccount(ctx context.Context, account string, excludeID uint) (bool, error) {
	return r.exists(ctx, "account", account, excludeID)
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string, excludeID uint) (bool, error) {
	return r.exists(ctx, "email", email, excludeID)
}

func (r *userRepository) exists(ctx context.Context, column, value string, excludeID uint) (bool, error) {
	var cnt int64
	q := r.db.WithContext(ctx).Model(&model.User{}).Where(fmt.Sprintf("%s = ?", column), value)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *userRepository) Updates(ctx context.Context, user *model.User, fields map[string]any) error {
	return translate(r.db.WithContext(ctx).Model(user).Updates(fields).Error)
}

// ListByIDs 按传入顺序返回，不存在的 ID 被跳过
func (r *userRepository) ListByIDs(ctx context.Context, ids []uint) ([]*model.User, error) {
	if len(ids) == 0 {
		return []*model.User{}, nil
	}
	var users []*model.User
	if err := r.db.WithContext(ctx).Omit("password").Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]*model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	res := make([]*model.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			res = append(res, u)
		}
	}
	return res, nil
}

// TopByFollowers 按粉丝数降序、ID 升序取前 limit 个
func (r *userRepository) TopByFollowers(ctx context.Context, role string, limit int) ([]UserRank, error) {
	var rows []UserRank
	err := r.db.WithContext(ctx).
		Table("users").
		Select("users.id, users.account, users.name, users.avatar, COUNT(followships.id) AS follower_count").
		Joins("LEFT JOIN followships ON followships.followee_id = users.id").
		Where("users.role = ?", role).
		Group("users.id, users.account, users.name, users.avatar").
		Order("follower_count DESC, users.id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Count(&cnt).Error
	return cnt, err
}

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Leon-Chun/twitter-fullstack-2020/internal/apperr"
	"github.com/Leon-Chun/twitter-fullstack-2020/internal/model"
	"github.com/Leon-Chun/twitter-fullstack-2020/internal/repository"
)

var (
	ErrFollowSelf       = apperr.Invalid("cannot follow self")
	ErrUserNotFound     = apperr.NotFound("user doesn't exist")
	ErrAlreadyFollowing = apperr.Conflict("you are already following this user")
	ErrNotFollowing     = apperr.NotFound("you are not following this user")
)

// RelationshipService 关系链服务
type RelationshipService interface {
	Follow(ctx context.Context, fromUserID, toUserID uint) error
	Unfollow(ctx context.Context, fromUserID, toUserID uint) error
	ListFollowing(ctx context.Context, userID uint, page, pageSize int) ([]uint, error)
	ListFollowers(ctx context.Context, userID uint, page, pageSize int) ([]uint, error)
}

type relationshipService struct {
	users      repository.UserRepository
	followRepo repository.FollowshipRepository
	ranking    RankingNotifier
}

func NewRelationshipService(users repository.UserRepository, followRepo repository.FollowshipRepository, ranking RankingNotifier) RelationshipService {
	return &relationshipService{users: users, followRepo: followRepo, ranking: ranking}
}

func (s *relationshipService) Follow(ctx context.Context, fromUserID, toUserID uint) error {
	if fromUserID == toUserID {
		return ErrFollowSelf
	}
	target, err := s.users.GetByID(ctx, toUserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("load followee: %w", err)
	}
	if target.Role != model.RoleUser {
		return ErrUserNotFound
	}

	exists, err := s.followRepo.Exists(ctx, fromUserID, toUserID)
	if err != nil {
		return fmt.Errorf("check followship: %w", err)
	}
	if exists {
		return ErrAlreadyFollowing
	}
	if err := s.followRepo.Create(ctx, fromUserID, toUserID); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrAlreadyFollowing
		}
		return fmt.Errorf("create followship: %w", err)
	}
	s.notify(ctx)
	return nil
}

func (s *relationshipService) Unfollow(ctx context.Context, fromUserID, toUserID uint) error {
	deleted, err := s.followRepo.Delete(ctx, fromUserID, toUserID)
	if err != nil {
		return fmt.Errorf("delete followship: %w", err)
	}
	if !deleted {
		return ErrNotFollowing
	}
	s.notify(ctx)
	return nil
}

func (s *relationshipService) ListFollowing(ctx context.Context, userID uint, page, pageSize int) ([]uint, error) {
	_, pageSize, offset := pagination(page, pageSize)
	items, err := s.followRepo.ListFollowings(ctx, userID, offset, pageSize)
	if err != nil {
		return nil, err
	}
	res := make([]uint, len(items))
	for i, it := range items {
		res[i] = it.FolloweeID
	}
	return res, nil
}

func (s *relationshipService) ListFollowers(ctx context.Context, userID uint, page, pageSize int) ([]uint, error) {
	_, pageSize, offset := pagination(page, pageSize)
	items, err := s.followRepo.ListFollowers(ctx, userID, offset, pageSize)
	if err != nil {
		return nil, err
	}
	res := make([]uint, len(items))
	for i, it := range items {
		res[i] = it.FollowerID
	}
	return res, nil
}

func (s *relationshipService) notify(ctx context.Context) {
	if s.ranking != nil {
		s.ranking.Changed(ctx)
	}
}

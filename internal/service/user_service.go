package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/Leon-Chun/twitter-fullstack-2020/internal/apperr"
	"github.com/Leon-Chun/twitter-fullstack-2020/internal/model"
	"github.com/Leon-Chun/twitter-fullstack-2020/internal/repository"
	"github.com/Leon-Chun/twitter-fullstack-2020/internal/upload"
)

var (
	ErrInvalidCredentials = apperr.Unauthorized("account or password is incorrect")
	ErrAccountTaken       = apperr.Conflict(msgAccountTaken)
	ErrEmailTaken         = apperr.Conflict(msgEmailTaken)
	ErrEditOthers         = apperr.Forbidden("you can't edit other users' data")
	ErrUnknownTab         = apperr.NotFound("page doesn't exist")
)

// UserService 用户生命周期与个人主页
type UserService interface {
	SignUp(ctx context.Context, in SignUpInput) (*model.User, error)
	Authenticate(ctx context.Context, account, password string) (*model.User, error)
	GetByID(ctx context.Context, id uint) (*model.User, error)
	// GetUserInfo 只能读取自己的资料
	GetUserInfo(ctx context.Context, viewer model.Identity, id uint) (*model.User, error)
	// UpdateProfile 只能修改自己的资料；校验通过后才上传图片
	UpdateProfile(ctx context.Context, viewer model.Identity, id uint, in ProfileInput) (*model.User, error)
	UpdateSettings(ctx context.Context, viewer model.Identity, in SettingsInput) (*model.User, error)
	UserPage(ctx context.Context, viewer model.Identity, id uint, tab Tab, page, pageSize int) (*UserPage, error)
}

// UserDeps UserService 依赖
type UserDeps struct {
	Users     repository.UserRepository
	Tweets    repository.TweetRepository
	Likes     repository.LikeRepository
	Replies   repository.ReplyRepository
	Follows   repository.FollowshipRepository
	Relations RelationshipService
	Rec       *Recommender
	Ranking   RankingNotifier
	Uploader  upload.Uploader
	HashCost  int
}

type userService struct {
	UserDeps
}

func NewUserService(deps UserDeps) UserService {
	if deps.HashCost == 0 {
		deps.HashCost = bcrypt.DefaultCost
	}
	if deps.Uploader == nil {
		deps.Uploader = upload.Disabled{}
	}
	if deps.Ranking == nil {
		deps.Ranking = deps.Rec
	}
	return &userService{UserDeps: deps}
}

func (s *userService) SignUp(ctx context.Context, in SignUpInput) (*model.User, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, in.Account, in.Email, 0); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.HashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &model.User{
		Account:  in.Account,
		Name:     in.Name,
		Email:    in.Email,
		Password: string(hash),
		Role:     model.RoleUser,
	}
	if err := s.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, s.duplicateCause(ctx, in.Account, in.Email, 0)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.Ranking.Changed(ctx)
	return user, nil
}

func (s *userService) checkUnique(ctx context.Context, account, email string, self uint) error {
	taken, err := s.Users.ExistsByAccount(ctx, account, self)
	if err != nil {
		return fmt.Errorf("check account: %w", err)
	}
	if taken {
		return ErrAccountTaken
	}
	taken, err = s.Users.ExistsByEmail(ctx, email, self)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if taken {
		return ErrEmailTaken
	}
	return nil
}

// duplicateCause 唯一索引冲突时重新检查是哪一列被占用
func (s *userService) duplicateCause(ctx context.Context, account, email string, self uint) error {
	if err := s.checkUnique(ctx, account, email, self); err != nil {
		return err
	}
	return ErrAccountTaken
}

func (s *userService) Authenticate(ctx context.Context, account, password string) (*model.User, error) {
	account = strings.TrimSpace(account)
	if account == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.Users.GetByAccount(ctx, account)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) GetUserInfo(ctx context.Context, viewer model.Identity, id uint) (*model.User, error) {
	if viewer.ID != id {
		return nil, ErrEditOthers
	}
	return s.GetByID(ctx, id)
}

func (s *userService) UpdateProfile(ctx context.Context, viewer model.Identity, id uint, in ProfileInput) (*model.User, error) {
	if viewer.ID != id {
		return nil, ErrEditOthers
	}
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	avatar, cover := user.Avatar, user.Cover
	if in.Avatar != nil {
		url, err := s.Uploader.Upload(ctx, in.Avatar)
		if err != nil {
			return nil, fmt.Errorf("upload avatar: %w", err)
		}
		if url != "" {
			avatar = url
		}
	}
	if in.Cover != nil {
		url, err := s.Uploader.Upload(ctx, in.Cover)
		if err != nil {
			return nil, fmt.Errorf("upload cover: %w", err)
		}
		if url != "" {
			cover = url
		}
	}

	fields := map[string]any{
		"name":         in.Name,
		"introduction": in.Introduction,
		"avatar":       avatar,
		"cover":        cover,
	}
	if err := s.Users.Updates(ctx, user, fields); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	user.Name, user.Introduction, user.Avatar, user.Cover = in.Name, in.Introduction, avatar, cover
	s.Ranking.Changed(ctx)
	return user, nil
}

func (s *userService) UpdateSettings(ctx context.Context, viewer model.Identity, in SettingsInput) (*model.User, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	user, err := s.GetByID(ctx, viewer.ID)
	if err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, in.Account, in.Email, user.ID); err != nil {
		return nil, err
	}

	fields := map[string]any{
		"account": in.Account,
		"name":    in.Name,
		"email":   in.Email,
	}
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.HashCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		fields["password"] = string(hash)
	}
	if err := s.Users.Updates(ctx, user, fields); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, s.duplicateCause(ctx, in.Account, in.Email, user.ID)
		}
		return nil, fmt.Errorf("update settings: %w", err)
	}
	user.Account, user.Name, user.Email = in.Account, in.Name, in.Email
	s.Ranking.Changed(ctx)
	return user, nil
}

func (s *userService) UserPage(ctx context.Context, viewer model.Identity, id uint, tab Tab, page, pageSize int) (*UserPage, error) {
	switch tab {
	case TabTweets, TabReplies, TabLikes, TabFollowings, TabFollowers:
	default:
		return nil, ErrUnknownTab
	}
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	page, pageSize, offset := pagination(page, pageSize)

	out := &UserPage{
		Profile:  Profile{User: user, IsCurrentUser: user.ID == viewer.ID},
		Tab:      tab,
		Page:     page,
		PageSize: pageSize,
	}
	p := &out.Profile

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { p.TweetCount, err = s.Tweets.CountByUser(gctx, id); return })
	g.Go(func() (err error) { p.FollowerCount, err = s.Follows.CountFollowers(gctx, id); return })
	g.Go(func() (err error) { p.FollowingCount, err = s.Follows.CountFollowings(gctx, id); return })
	g.Go(func() (err error) { p.IsFollowed, err = s.Follows.Exists(gctx, viewer.ID, id); return })
	g.Go(func() (err error) { out.Sidebar, err = s.Rec.TopUsers(gctx, viewer); return })
	g.Go(func() error { return s.fillTab(gctx, viewer, out, id, offset) })
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load user page: %w", err)
	}
	return out, nil
}

func (s *userService) fillTab(ctx context.Context, viewer model.Identity, out *UserPage, id uint, offset int) error {
	limit := out.PageSize
	switch out.Tab {
	case TabTweets, TabLikes:
		var (
			tweets []*model.Tweet
			err    error
		)
		if out.Tab == TabTweets {
			tweets, err = s.Tweets.ListByUser(ctx, id, offset, limit)
		} else {
			tweets, err = s.Tweets.ListLikedByUser(ctx, id, offset, limit)
		}
		if err != nil {
			return err
		}
		out.Tweets, err = enrichTweets(ctx, s.Likes, s.Replies, viewer.ID, tweets)
		return err
	case TabReplies:
		replies, err := s.Replies.ListByUser(ctx, id, offset, limit)
		if err != nil {
			return err
		}
		out.Replies = replies
		return nil
	default:
		var (
			ids []uint
			err error
		)
		if out.Tab == TabFollowings {
			ids, err = s.Relations.ListFollowing(ctx, id, out.Page, out.PageSize)
		} else {
			ids, err = s.Relations.ListFollowers(ctx, id, out.Page, out.PageSize)
		}
		if err != nil {
			return err
		}
		out.Users, err = s.userItems(ctx, viewer, ids)
		return err
	}
}

func (s *userService) userItems(ctx context.Context, viewer model.Identity, ids []uint) ([]UserItem, error) {
	users, err := s.Users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	followed, err := s.Follows.FollowedAmong(ctx, viewer.ID, ids)
	if err != nil {
		return nil, err
	}
	items := make([]UserItem, len(users))
	for i, u := range users {
		items[i] = UserItem{User: u, IsFollowed: followed[u.ID], IsCurrentUser: u.ID == viewer.ID}
	}
	return items, nil
}

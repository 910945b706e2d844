package service

import (
	"context"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Leon-Chun/twitter-fullstack-2020/internal/apperr"
	"github.com/Leon-Chun/twitter-fullstack-2020/internal/model"
	"github.com/Leon-Chun/twitter-fullstack-2020/internal/repository"
	"github.com/Leon-Chun/twitter-fullstack-2020/internal/testutil"
)

func signUpInput(account string) SignUpInput {
	return SignUpInput{
		Account:       account,
		Name:          account,
		Email:         account + "@example.com",
		Password:      "secret",
		CheckPassword: "secret",
	}
}

func TestUserService_SignUp(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	u, err := e.userSvc.SignUp(ctx, signUpInput("user1"))
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, u.Role)
	assert.NotEqual(t, "secret", u.Password)

	_, err = e.userSvc.SignUp(ctx, signUpInput("user1"))
	assert.ErrorIs(t, err, ErrAccountTaken)

	in := signUpInput("user2")
	in.Email = "user1@example.com"
	_, err = e.userSvc.SignUp(ctx, in)
	assert.ErrorIs(t, err, ErrEmailTaken)

	got, err := e.userSvc.Authenticate(ctx, "user1", "secret")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestUserService_SignUpMismatchCreatesNothing(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	in := signUpInput("user1")
	in.CheckPassword = "other"
	_, err := e.userSvc.SignUp(ctx, in)
	assert.True(t, apperr.Is(err, apperr.KindInvalid))

	n, err := e.users.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUserService_Authenticate(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	testutil.CreateUser(t, e.db, "user1")

	_, err := e.userSvc.Authenticate(ctx, "user1", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = e.userSvc.Authenticate(ctx, "ghost", testutil.Password)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = e.userSvc.Authenticate(ctx, "user1", testutil.Password)
	assert.NoError(t, err)
}

func TestUserService_GetUserInfo(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	a := testutil.CreateUser(t, e.db, "user1")
	b := testutil.CreateUser(t, e.db, "user2")

	_, err := e.userSvc.GetUserInfo(ctx, identity(a), b.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	ghost := model.Identity{ID: 999, Account: "ghost", Role: model.RoleUser}
	_, err = e.userSvc.GetUserInfo(ctx, ghost, 999)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	got, err := e.userSvc.GetUserInfo(ctx, identity(a), a.ID)
	require.NoError(t, err)
	assert.Equal(t, "user1", got.Account)
}

func TestUserService_UpdateProfile(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	a := testutil.CreateUser(t, e.db, "user1")
	b := testutil.CreateUser(t, e.db, "user2")
	avatar := &multipart.FileHeader{Filename: "a.png"}

	_, err := e.userSvc.UpdateProfile(ctx, identity(a), b.ID, ProfileInput{Name: "x", Avatar: avatar})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = e.userSvc.UpdateProfile(ctx, identity(a), a.ID, ProfileInput{Name: strings.Repeat("n", 51), Avatar: avatar})
	assert.True(t, apperr.Is(err, apperr.KindInvalid))
	assert.Zero(t, e.uploader.calls, "nothing is uploaded before validation passes")

	e.uploader.url = "https://img.example.com/a.png"
	got, err := e.userSvc.UpdateProfile(ctx, identity(a), a.ID, ProfileInput{Name: "Alice", Introduction: "hi", Avatar: avatar})
	require.NoError(t, err)
	assert.Equal(t, 1, e.uploader.calls)
	assert.Equal(t, "https://img.example.com/a.png", got.Avatar)

	e.uploader.url = ""
	got, err = e.userSvc.UpdateProfile(ctx, identity(a), a.ID, ProfileInput{Name: "Alice", Avatar: avatar})
	require.NoError(t, err)
	assert.Equal(t, "https://img.example.com/a.png", got.Avatar, "empty upload result keeps the old url")

	stored, err := e.users.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", stored.Name)
	assert.Empty(t, stored.Introduction)
}

func TestUserService_UpdateSettings(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	a := testutil.CreateUser(t, e.db, "user1")
	testutil.CreateUser(t, e.db, "user2")

	_, err := e.userSvc.UpdateSettings(ctx, identity(a), SettingsInput{Account: "user2", Name: "A", Email: "new@example.com"})
	assert.ErrorIs(t, err, ErrAccountTaken)

	_, err = e.userSvc.UpdateSettings(ctx, identity(a), SettingsInput{Account: "alice", Name: "A", Email: "alice@example.com"})
	require.NoError(t, err)
	_, err = e.userSvc.Authenticate(ctx, "alice", testutil.Password)
	require.NoError(t, err, "blank password keeps the old one")

	_, err = e.userSvc.UpdateSettings(ctx, identity(a), SettingsInput{
		Account: "alice", Name: "A", Email: "alice@example.com", Password: "newpass", CheckPassword: "newpass",
	})
	require.NoError(t, err)
	_, err = e.userSvc.Authenticate(ctx, "alice", "newpass")
	assert.NoError(t, err)
}

func TestUserService_SignUpTrimsFields(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	u, err := e.userSvc.SignUp(ctx, SignUpInput{
		Account: " bob ", Name: " Bob ", Email: " bob@example.com ", Password: "pw", CheckPassword: "pw",
	})
	require.NoError(t, err)
	assert.Equal(t, "bob", u.Account)
	assert.Equal(t, "Bob", u.Name)
	assert.Equal(t, "bob@example.com", u.Email)

	for _, account := range []string{"bob", " bob "} {
		got, err := e.userSvc.Authenticate(ctx, account, "pw")
		require.NoError(t, err, account)
		assert.Equal(t, u.ID, got.ID)
	}

	_, err = e.userSvc.SignUp(ctx, signUpInput("bob"))
	assert.ErrorIs(t, err, ErrAccountTaken)
}

func TestUserService_UpdateSettingsTrimsFields(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	a := testutil.CreateUser(t, e.db, "user1")

	got, err := e.userSvc.UpdateSettings(ctx, identity(a), SettingsInput{Account: "  alice", Name: "A ", Email: "alice@example.com\t"})
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Account)
	assert.Equal(t, "alice@example.com", got.Email)

	_, err = e.userSvc.Authenticate(ctx, "alice", testutil.Password)
	assert.NoError(t, err)
}

// staleEmailCheck 前 misses 次 ExistsByEmail 返回 false，模拟并发注册抢先写入
type staleEmailCheck struct {
	repository.UserRepository
	misses int
}

func (r *staleEmailCheck) ExistsByEmail(ctx context.Context, email string, excludeID uint) (bool, error) {
	if r.misses > 0 {
		r.misses--
		return false, nil
	}
	return r.UserRepository.ExistsByEmail(ctx, email, excludeID)
}

func TestUserService_DuplicateIndexReportsEmail(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	testutil.CreateUser(t, e.db, "user1")
	b := testutil.CreateUser(t, e.db, "user2")

	svc := NewUserService(UserDeps{
		Users:     &staleEmailCheck{UserRepository: e.users, misses: 1},
		Relations: e.relSvc,
		Rec:       e.rec,
		HashCost:  bcrypt.MinCost,
	})
	in := signUpInput("user3")
	in.Email = "user1@example.com"
	_, err := svc.SignUp(ctx, in)
	assert.ErrorIs(t, err, ErrEmailTaken)

	svc = NewUserService(UserDeps{
		Users:     &staleEmailCheck{UserRepository: e.users, misses: 1},
		Relations: e.relSvc,
		Rec:       e.rec,
		HashCost:  bcrypt.MinCost,
	})
	_, err = svc.UpdateSettings(ctx, identity(b), SettingsInput{Account: "user2", Name: "B", Email: "user1@example.com"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	n, err := e.users.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestUserService_UserPage(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	a := testutil.CreateUser(t, e.db, "user1")
	b := testutil.CreateUser(t, e.db, "user2")
	c := testutil.CreateUser(t, e.db, "user3")
	tw := testutil.CreateTweet(t, e.db, a.ID, "mine")
	other := testutil.CreateTweet(t, e.db, b.ID, "theirs")

	require.NoError(t, e.relSvc.Follow(ctx, b.ID, a.ID))
	require.NoError(t, e.relSvc.Follow(ctx, c.ID, a.ID))
	require.NoError(t, e.relSvc.Follow(ctx, a.ID, c.ID))
	require.NoError(t, e.tweetSvc.Like(ctx, identity(a), other.ID))
	_, err := e.tweetSvc.Reply(ctx, identity(a), other.ID, "hey")
	require.NoError(t, err)

	page, err := e.userSvc.UserPage(ctx, identity(b), a.ID, TabTweets, 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Profile.TweetCount)
	assert.EqualValues(t, 2, page.Profile.FollowerCount)
	assert.EqualValues(t, 1, page.Profile.FollowingCount)
	assert.True(t, page.Profile.IsFollowed)
	assert.False(t, page.Profile.IsCurrentUser)
	require.Len(t, page.Tweets, 1)
	assert.Equal(t, tw.ID, page.Tweets[0].ID)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.PageSize)

	page, err = e.userSvc.UserPage(ctx, identity(a), a.ID, TabLikes, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Tweets, 1)
	assert.Equal(t, other.ID, page.Tweets[0].ID)
	assert.True(t, page.Tweets[0].IsLiked)

	page, err = e.userSvc.UserPage(ctx, identity(a), a.ID, TabReplies, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Replies, 1)
	assert.Equal(t, "hey", page.Replies[0].Comment)

	page, err = e.userSvc.UserPage(ctx, identity(a), a.ID, TabFollowers, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Users, 2)
	followed := map[uint]bool{}
	for _, it := range page.Users {
		followed[it.ID] = it.IsFollowed
	}
	assert.Equal(t, map[uint]bool{b.ID: false, c.ID: true}, followed)

	page, err = e.userSvc.UserPage(ctx, identity(a), a.ID, TabFollowings, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Users, 1)
	assert.Equal(t, c.ID, page.Users[0].ID)

	_, err = e.userSvc.UserPage(ctx, identity(a), a.ID, Tab("bogus"), 1, 10)
	assert.ErrorIs(t, err, ErrUnknownTab)
	_, err = e.userSvc.UserPage(ctx, identity(a), 999, TabTweets, 1, 10)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

package service

import (
	"context"
	"mime/multipart"
	"testing"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Leon-Chun/twitter-fullstack-2020/internal/model"
	"github.com/Leon-Chun/twitter-fullstack-2020/internal/repository"
	"github.com/Leon-Chun/twitter-fullstack-2020/internal/testutil"
	"github.com/Leon-Chun/twitter-fullstack-2020/internal/upload"
)

type testEnv struct {
	db       *gorm.DB
	cache    *redis.Client
	users    repository.UserRepository
	tweets   repository.TweetRepository
	likes    repository.LikeRepository
	replies  repository.ReplyRepository
	follows  repository.FollowshipRepository
	rec      *Recommender
	tweetSvc TweetService
	relSvc   RelationshipService
	userSvc  UserService
	uploader *fakeUploader
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)
	_, cache := testutil.NewRedis(t)

	e := &testEnv{
		db:       db,
		cache:    cache,
		users:    repository.NewUserRepository(db),
		tweets:   repository.NewTweetRepository(db),
		likes:    repository.NewLikeRepository(db),
		replies:  repository.NewReplyRepository(db),
		follows:  repository.NewFollowshipRepository(db),
		uploader: &fakeUploader{},
	}
	e.rec = NewRecommender(e.users, e.follows, cache, 0)
	e.tweetSvc = NewTweetService(e.tweets, e.likes, e.replies, e.rec)
	e.relSvc = NewRelationshipService(e.users, e.follows, e.rec)
	e.userSvc = NewUserService(UserDeps{
		Users:     e.users,
		Tweets:    e.tweets,
		Likes:     e.likes,
		Replies:   e.replies,
		Follows:   e.follows,
		Relations: e.relSvc,
		Rec:       e.rec,
		Uploader:  e.uploader,
		HashCost:  bcrypt.MinCost,
	})
	return e
}

func identity(u *model.User) model.Identity { return u.Identity() }

type fakeUploader struct {
	calls int
	url   string
	err   error
}

func (f *fakeUploader) Upload(context.Context, *multipart.FileHeader) (string, error) {
	f.calls++
	return f.url, f.err
}

var _ upload.Uploader = (*fakeUploader)(nil)

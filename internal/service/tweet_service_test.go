package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Leon-Chun/twitter-fullstack-2020/internal/apperr"
	"github.com/Leon-Chun/twitter-fullstack-2020/internal/testutil"
)

func TestTweetService_LikeUnlike(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	a := testutil.CreateUser(t, e.db, "user1")
	b := testutil.CreateUser(t, e.db, "user2")
	tw := testutil.CreateTweet(t, e.db, a.ID, "hello")

	require.NoError(t, e.tweetSvc.Like(ctx, identity(b), tw.ID))

	page, err := e.tweetSvc.Detail(ctx, identity(b), tw.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Tweet.LikeCount)
	assert.True(t, page.Tweet.IsLiked)

	page, err = e.tweetSvc.Detail(ctx, identity(a), tw.ID)
	require.NoError(t, err)
	assert.False(t, page.Tweet.IsLiked)

	err = e.tweetSvc.Like(ctx, identity(b), tw.ID)
	assert.ErrorIs(t, err, ErrAlreadyLiked)
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	require.NoError(t, e.tweetSvc.Unlike(ctx, identity(b), tw.ID))
	page, err = e.tweetSvc.Detail(ctx, identity(b), tw.ID)
	require.NoError(t, err)
	assert.Zero(t, page.Tweet.LikeCount)
	assert.False(t, page.Tweet.IsLiked)
}

func TestTweetService_UnlikeNeverLiked(t *testing.T) {
	e := newTestEnv(t)
	a := testutil.CreateUser(t, e.db, "user1")
	tw := testutil.CreateTweet(t, e.db, a.ID, "hello")

	err := e.tweetSvc.Unlike(context.Background(), identity(a), tw.ID)
	assert.ErrorIs(t, err, ErrNotLiked)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestTweetService_LikeMissingTweet(t *testing.T) {
	e := newTestEnv(t)
	a := testutil.CreateUser(t, e.db, "user1")

	err := e.tweetSvc.Like(context.Background(), identity(a), 404)
	assert.ErrorIs(t, err, ErrTweetNotFound)
}

func TestTweetService_Post(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	a := testutil.CreateUser(t, e.db, "user1")

	tw, err := e.tweetSvc.Post(ctx, identity(a), strings.Repeat("字", 140))
	require.NoError(t, err)
	assert.NotZero(t, tw.ID)
	assert.Equal(t, a.ID, tw.UserID)

	_, err = e.tweetSvc.Post(ctx, identity(a), strings.Repeat("a", 141))
	assert.True(t, apperr.Is(err, apperr.KindInvalid))

	_, err = e.tweetSvc.Post(ctx, identity(a), "   ")
	assert.True(t, apperr.Is(err, apperr.KindInvalid))

	n, err := e.tweets.CountByUser(ctx, a.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestTweetService_Reply(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	a := testutil.CreateUser(t, e.db, "user1")
	b := testutil.CreateUser(t, e.db, "user2")
	tw := testutil.CreateTweet(t, e.db, a.ID, "hello")

	_, err := e.tweetSvc.Reply(ctx, identity(b), tw.ID, "  ")
	assert.True(t, apperr.Is(err, apperr.KindInvalid))

	_, err = e.tweetSvc.Reply(ctx, identity(b), 999, "hi")
	assert.ErrorIs(t, err, ErrTweetNotFound)

	_, err = e.tweetSvc.Reply(ctx, identity(b), tw.ID, "nice")
	require.NoError(t, err)

	page, err := e.tweetSvc.Detail(ctx, identity(b), tw.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Tweet.ReplyCount)
	require.Len(t, page.Tweet.Replies, 1)
	assert.Equal(t, "user2", page.Tweet.Replies[0].User.Account)
}

func TestTweetService_Feed(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	a := testutil.CreateUser(t, e.db, "user1")
	b := testutil.CreateUser(t, e.db, "user2")
	first := testutil.CreateTweet(t, e.db, a.ID, "first")
	second := testutil.CreateTweet(t, e.db, b.ID, "second")

	require.NoError(t, e.tweetSvc.Like(ctx, identity(a), second.ID))
	_, err := e.tweetSvc.Reply(ctx, identity(a), first.ID, "self reply")
	require.NoError(t, err)

	feed, err := e.tweetSvc.Feed(ctx, identity(a))
	require.NoError(t, err)
	require.Len(t, feed.Tweets, 2)
	assert.Equal(t, second.ID, feed.Tweets[0].ID, "newest first")
	assert.True(t, feed.Tweets[0].IsLiked)
	assert.EqualValues(t, 1, feed.Tweets[0].LikeCount)
	assert.False(t, feed.Tweets[1].IsLiked)
	assert.EqualValues(t, 1, feed.Tweets[1].ReplyCount)
	assert.Empty(t, feed.Tweets[0].User.Password)
	assert.Len(t, feed.Users, 2)
}

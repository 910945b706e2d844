package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Leon-Chun/twitter-fullstack-2020/internal/apperr"
	"github.com/Leon-Chun/twitter-fullstack-2020/internal/model"
	"github.com/Leon-Chun/twitter-fullstack-2020/internal/repository"
)

var (
	ErrTweetNotFound = apperr.NotFound("tweet doesn't exist")
	ErrAlreadyLiked  = apperr.Conflict("you have already liked this tweet")
	ErrNotLiked      = apperr.NotFound("you haven't liked this tweet")
)

// TweetService 推文服务
type TweetService interface {
	Feed(ctx context.Context, viewer model.Identity) (*FeedPage, error)
	Post(ctx context.Context, viewer model.Identity, description string) (*model.Tweet, error)
	Detail(ctx context.Context, viewer model.Identity, tweetID uint) (*TweetPage, error)
	Like(ctx context.Context, viewer model.Identity, tweetID uint) error
	Unlike(ctx context.Context, viewer model.Identity, tweetID uint) error
	Reply(ctx context.Context, viewer model.Identity, tweetID uint, comment string) (*model.Reply, error)
}

type tweetService struct {
	tweets  repository.TweetRepository
	likes   repository.LikeRepository
	replies repository.ReplyRepository
	rec     *Recommender
}

func NewTweetService(tweets repository.TweetRepository, likes repository.LikeRepository, replies repository.ReplyRepository, rec *Recommender) TweetService {
	return &tweetService{tweets: tweets, likes: likes, replies: replies, rec: rec}
}

func (s *tweetService) Feed(ctx context.Context, viewer model.Identity) (*FeedPage, error) {
	var (
		tweets      []*model.Tweet
		likeCounts  map[uint]int64
		replyCounts map[uint]int64
		liked       map[uint]bool
		users       []UserCard
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { tweets, err = s.tweets.ListAll(gctx); return })
	g.Go(func() (err error) { likeCounts, err = s.likes.CountByTweets(gctx, nil); return })
	g.Go(func() (err error) { replyCounts, err = s.replies.CountByTweets(gctx, nil); return })
	g.Go(func() (err error) { liked, err = s.likes.LikedTweetIDs(gctx, viewer.ID, nil); return })
	g.Go(func() (err error) { users, err = s.rec.TopUsers(gctx, viewer); return })
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load feed: %w", err)
	}

	views := make([]TweetView, len(tweets))
	for i, t := range tweets {
		views[i] = TweetView{
			Tweet:      t,
			IsLiked:    liked[t.ID],
			LikeCount:  likeCounts[t.ID],
			ReplyCount: replyCounts[t.ID],
		}
	}
	return &FeedPage{Tweets: views, Users: users}, nil
}

func (s *tweetService) Post(ctx context.Context, viewer model.Identity, description string) (*model.Tweet, error) {
	if err := ValidateDescription(description); err != nil {
		return nil, err
	}
	t := &model.Tweet{UserID: viewer.ID, Description: description}
	if err := s.tweets.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create tweet: %w", err)
	}
	if t.ID == 0 {
		return nil, apperr.Internal(errors.New("tweet was not created"))
	}
	return t, nil
}

func (s *tweetService) Detail(ctx context.Context, viewer model.Identity, tweetID uint) (*TweetPage, error) {
	var (
		tweet *model.Tweet
		users []UserCard
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { tweet, err = s.tweets.GetDetail(gctx, tweetID); return })
	g.Go(func() (err error) { users, err = s.rec.TopUsers(gctx, viewer); return })
	if err := g.Wait(); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTweetNotFound
		}
		return nil, fmt.Errorf("load tweet: %w", err)
	}

	view := TweetView{
		Tweet:      tweet,
		LikeCount:  int64(len(tweet.Likes)),
		ReplyCount: int64(len(tweet.Replies)),
	}
	for _, l := range tweet.Likes {
		if l.UserID == viewer.ID {
			view.IsLiked = true
			break
		}
	}
	return &TweetPage{Tweet: view, Users: users}, nil
}

func (s *tweetService) Like(ctx context.Context, viewer model.Identity, tweetID uint) error {
	if err := s.mustExist(ctx, tweetID); err != nil {
		return err
	}
	_, err := s.likes.Find(ctx, viewer.ID, tweetID)
	switch {
	case err == nil:
		return ErrAlreadyLiked
	case !errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("find like: %w", err)
	}
	if _, err := s.likes.Create(ctx, viewer.ID, tweetID); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrAlreadyLiked
		}
		return fmt.Errorf("create like: %w", err)
	}
	return nil
}

func (s *tweetService) Unlike(ctx context.Context, viewer model.Identity, tweetID uint) error {
	like, err := s.likes.Find(ctx, viewer.ID, tweetID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotLiked
		}
		return fmt.Errorf("find like: %w", err)
	}
	if err := s.likes.Delete(ctx, like); err != nil {
		return fmt.Errorf("delete like: %w", err)
	}
	return nil
}

func (s *tweetService) Reply(ctx context.Context, viewer model.Identity, tweetID uint, comment string) (*model.Reply, error) {
	if err := s.mustExist(ctx, tweetID); err != nil {
		return nil, err
	}
	if err := ValidateComment(comment); err != nil {
		return nil, err
	}
	r := &model.Reply{UserID: viewer.ID, TweetID: tweetID, Comment: comment}
	if err := s.replies.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("create reply: %w", err)
	}
	return r, nil
}

func (s *tweetService) mustExist(ctx context.Context, tweetID uint) error {
	ok, err := s.tweets.Exists(ctx, tweetID)
	if err != nil {
		return fmt.Errorf("check tweet: %w", err)
	}
	if !ok {
		return ErrTweetNotFound
	}
	return nil
}

// enrichTweets 为一组推文补充点赞/回复数与当前用户是否点赞
func enrichTweets(ctx context.Context, likes repository.LikeRepository, replies repository.ReplyRepository, viewerID uint, tweets []*model.Tweet) ([]TweetView, error) {
	if len(tweets) == 0 {
		return []TweetView{}, nil
	}
	ids := make([]uint, len(tweets))
	for i, t := range tweets {
		ids[i] = t.ID
	}

	var (
		likeCounts  map[uint]int64
		replyCounts map[uint]int64
		liked       map[uint]bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { likeCounts, err = likes.CountByTweets(gctx, ids); return })
	g.Go(func() (err error) { replyCounts, err = replies.CountByTweets(gctx, ids); return })
	g.Go(func() (err error) { liked, err = likes.LikedTweetIDs(gctx, viewerID, ids); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	views := make([]TweetView, len(tweets))
	for i, t := range tweets {
		views[i] = TweetView{Tweet: t, IsLiked: liked[t.ID], LikeCount: likeCounts[t.ID], ReplyCount: replyCounts[t.ID]}
	}
	return views, nil
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Leon-Chun/twitter-fullstack-2020/internal/model"
	"github.com/Leon-Chun/twitter-fullstack-2020/internal/repository"
	"github.com/Leon-Chun/twitter-fullstack-2020/pkg/logger"
)

const defaultTopUsers = 10

// RankingNotifier 关注关系或用户资料变化时通知推荐缓存
type RankingNotifier interface {
	Changed(ctx context.Context)
}

// Recommender "推荐关注"侧栏：粉丝数前 N 的普通用户。
// 排名与观看者无关，可整体缓存在 Redis；IsFollowed/IsCurrentUser 按观看者实时计算。
type Recommender struct {
	users   repository.UserRepository
	follows repository.FollowshipRepository
	cache   *redis.Client
	ttl     time.Duration
	limit   int

	cacheHits atomic.Int64
	dbLoads   atomic.Int64
}

// NewRecommender cache 为 nil 时每次都查库
func NewRecommender(users repository.UserRepository, follows repository.FollowshipRepository, cache *redis.Client, ttl time.Duration) *Recommender {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Recommender{users: users, follows: follows, cache: cache, ttl: ttl, limit: defaultTopUsers}
}

func (r *Recommender) key() string {
	return fmt.Sprintf("recommend:top:%d", r.limit)
}

// TopUsers 返回观看者视角下的推荐列表
func (r *Recommender) TopUsers(ctx context.Context, viewer model.Identity) ([]UserCard, error) {
	rank, err := r.ranking(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, len(rank))
	for i, u := range rank {
		ids[i] = u.ID
	}
	followed, err := r.follows.FollowedAmong(ctx, viewer.ID, ids)
	if err != nil {
		return nil, fmt.Errorf("load followings: %w", err)
	}

	cards := make([]UserCard, len(rank))
	for i, u := range rank {
		cards[i] = UserCard{
			UserRank:      u,
			IsFollowed:    followed[u.ID],
			IsCurrentUser: u.ID == viewer.ID,
		}
	}
	return cards, nil
}

func (r *Recommender) ranking(ctx context.Context) ([]repository.UserRank, error) {
	if r.cache != nil {
		if data, err := r.cache.Get(ctx, r.key()).Bytes(); err == nil {
			var out []repository.UserRank
			if uErr := json.Unmarshal(data, &out); uErr == nil {
				r.cacheHits.Add(1)
				return out, nil
			}
		} else if err != redis.Nil {
			logger.Warn("ranking cache read failed", zap.Error(err))
		}
	}
	return r.load(ctx)
}

func (r *Recommender) load(ctx context.Context) ([]repository.UserRank, error) {
	r.dbLoads.Add(1)
	rows, err := r.users.TopByFollowers(ctx, model.RoleUser, r.limit)
	if err != nil {
		return nil, fmt.Errorf("load ranking: %w", err)
	}
	if rows == nil {
		rows = []repository.UserRank{}
	}
	if r.cache != nil {
		if payload, err := json.Marshal(rows); err == nil {
			if err := r.cache.Set(ctx, r.key(), payload, r.ttl).Err(); err != nil {
				logger.Warn("ranking cache write failed", zap.Error(err))
			}
		}
	}
	return rows, nil
}

// Refresh 从库重算并回填缓存
func (r *Recommender) Refresh(ctx context.Context) error {
	_, err := r.load(ctx)
	return err
}

// Invalidate 删除缓存的排名
func (r *Recommender) Invalidate(ctx context.Context) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Del(ctx, r.key()).Err(); err != nil {
		logger.Warn("ranking cache invalidate failed", zap.Error(err))
	}
}

// Changed 同步失效缓存
func (r *Recommender) Changed(ctx context.Context) { r.Invalidate(ctx) }

// RecommenderCounters 缓存命中与回源次数
type RecommenderCounters struct {
	CacheHits int64
	DBLoads   int64
}

func (r *Recommender) Counters() RecommenderCounters {
	return RecommenderCounters{CacheHits: r.cacheHits.Load(), DBLoads: r.dbLoads.Load()}
}

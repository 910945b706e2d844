// Command rankbench 测量"推荐关注"排名的读取延迟（有无 Redis 缓存）以及关注后异步刷新的落地延迟。
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Leon-Chun/twitter-fullstack-2020/config"
	"github.com/Leon-Chun/twitter-fullstack-2020/internal/model"
	"github.com/Leon-Chun/twitter-fullstack-2020/internal/repository"
	"github.com/Leon-Chun/twitter-fullstack-2020/internal/service"
	"github.com/Leon-Chun/twitter-fullstack-2020/pkg/database"
)

func main() {
	users := flag.Int("users", 2000, "number of users to create")
	edges := flag.Int("follows", 20000, "number of random followships")
	reads := flag.Int("reads", 3000, "sidebar reads per scenario")
	follows := flag.Int("live-follows", 500, "follow operations measured through the refresher")
	flag.Parse()

	cfg := must(config.Load())
	db := must(database.Open(cfg.Database.Driver, cfg.Database.DSN))
	mustDo(database.Migrate(db))
	defer database.Close(db)

	ctx := context.Background()
	ids := seedGraph(db, *users, *edges)
	fmt.Printf("graph ready: %d users, %d followships\n", len(ids), *edges)

	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowshipRepository(db)

	var client *redis.Client
	if cfg.Redis.Addr != "" {
		client = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer client.Close()
		mustDo(client.Ping(ctx).Err())
	}

	noCache := service.NewRecommender(userRepo, followRepo, nil, time.Minute)
	report("No cache", runReads(ctx, noCache, ids, *reads), noCache.Counters())

	if client == nil {
		fmt.Println("redis.addr not set, skipping cached scenarios")
		return
	}

	cached := service.NewRecommender(userRepo, followRepo, client, 10*time.Minute)
	cached.Invalidate(ctx)
	report("Redis cache", runReads(ctx, cached, ids, *reads), cached.Counters())

	// 关注写入 + 异步预热：测量投递到刷新完成的耗时
	refresher := service.NewRankingRefresher(cached, 1024)
	stop := refresher.Start(2)
	relSvc := service.NewRelationshipService(userRepo, followRepo, refresher)

	landed := make([]time.Duration, 0, *follows)
	quit := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case d := <-refresher.Metrics():
				landed = append(landed, d)
			case <-quit:
				return
			}
		}
	}()

	rnd := rand.New(rand.NewSource(7))
	writes := make([]time.Duration, 0, *follows)
	for i := 0; i < *follows; i++ {
		from, to := ids[rnd.Intn(len(ids))], ids[rnd.Intn(len(ids))]
		start := time.Now()
		if err := relSvc.Follow(ctx, from, to); err != nil {
			continue
		}
		writes = append(writes, time.Since(start))
	}
	// 等待队列清空后最后一次刷新落地
	for deadline := time.Now().Add(5 * time.Second); refresher.QueueLen() > 0 && time.Now().Before(deadline); {
		time.Sleep(10 * time.Millisecond)
	}
	time.Sleep(100 * time.Millisecond)
	close(quit)
	<-done
	_ = stop(ctx)

	fmt.Printf("%-16s n=%d avg=%v p95=%v p99=%v\n", "Follow write", len(writes), avg(writes), pct(writes, 0.95), pct(writes, 0.99))
	fmt.Printf("%-16s n=%d avg=%v p95=%v p99=%v (batched refreshes)\n", "Refresh landed", len(landed), avg(landed), pct(landed, 0.95), pct(landed, 0.99))
}

func seedGraph(db *gorm.DB, n, edges int) []uint {
	hash := must(bcrypt.GenerateFromPassword([]byte("bench"), bcrypt.MinCost))
	stamp := time.Now().UnixNano()

	users := make([]model.User, n)
	for i := range users {
		account := fmt.Sprintf("bench_%d_%d", stamp, i)
		users[i] = model.User{Account: account, Email: account + "@example.com", Name: account, Password: string(hash), Role: model.RoleUser}
	}
	mustDo(db.CreateInBatches(&users, 500).Error)

	ids := make([]uint, n)
	for i, u := range users {
		ids[i] = u.ID
	}

	rnd := rand.New(rand.NewSource(42))
	seen := make(map[[2]uint]bool, edges)
	rows := make([]model.Followship, 0, edges)
	for len(rows) < edges && len(seen) < n*(n-1) {
		// 幂律分布：少数用户拥有大部分粉丝
		to := ids[int(math.Pow(rnd.Float64(), 3)*float64(n))]
		from := ids[rnd.Intn(n)]
		key := [2]uint{from, to}
		if from == to || seen[key] {
			continue
		}
		seen[key] = true
		rows = append(rows, model.Followship{FollowerID: from, FolloweeID: to})
	}
	mustDo(db.CreateInBatches(&rows, 1000).Error)
	return ids
}

func runReads(ctx context.Context, rec *service.Recommender, ids []uint, n int) []time.Duration {
	rnd := rand.New(rand.NewSource(1))
	out := make([]time.Duration, 0, n)
	for i := 0; i < n; i++ {
		viewer := model.Identity{ID: ids[rnd.Intn(len(ids))], Role: model.RoleUser}
		start := time.Now()
		if _, err := rec.TopUsers(ctx, viewer); err != nil {
			panic(err)
		}
		out = append(out, time.Since(start))
	}
	return out
}

func report(name string, ds []time.Duration, c service.RecommenderCounters) {
	fmt.Printf("%-16s avg=%v p95=%v p99=%v cache_hits=%d db_loads=%d\n",
		name, avg(ds), pct(ds, 0.95), pct(ds, 0.99), c.CacheHits, c.DBLoads)
}

func avg(vs []time.Duration) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range vs {
		sum += v
	}
	return sum / time.Duration(len(vs))
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), vs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(math.Ceil(p*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func mustDo(err error) {
	if err != nil {
		panic(err)
	}
}

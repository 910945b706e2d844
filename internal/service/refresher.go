package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Leon-Chun/twitter-fullstack-2020/pkg/logger"
)

// RankingRefresher 关系变化后同步失效排名缓存，并异步预热，避免下一个请求回源
type RankingRefresher struct {
	rec       *Recommender
	ch        chan time.Time
	metricsCh chan time.Duration
}

func NewRankingRefresher(rec *Recommender, queueSize int) *RankingRefresher {
	if queueSize <= 0 {
		queueSize = 1024
	}
	return &RankingRefresher{rec: rec, ch: make(chan time.Time, queueSize), metricsCh: make(chan time.Duration, 1024)}
}

// Start 启动 workers 个协程消费刷新任务；返回停止函数，停止时等待进行中的刷新完成（受 ctx 限制）
func (r *RankingRefresher) Start(workers int) func(context.Context) error {
	if workers <= 0 {
		workers = 1
	}
	stopCh := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case enqAt := <-r.ch:
					// 同一批变化只需要重算一次
					r.drain()
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					if err := r.rec.Refresh(ctx); err != nil {
						logger.Warn("ranking refresh failed", zap.Error(err))
					}
					cancel()
					select {
					case r.metricsCh <- time.Since(enqAt):
					default:
					}
				case <-stopCh:
					return
				}
			}
		}()
	}
	var once sync.Once
	return func(ctx context.Context) error {
		once.Do(func() { close(stopCh) })
		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (r *RankingRefresher) drain() {
	for {
		select {
		case <-r.ch:
		default:
			return
		}
	}
}

// Enqueue 非阻塞投递，队列满时丢弃
func (r *RankingRefresher) Enqueue() {
	select {
	case r.ch <- time.Now():
	default:
		logger.Warn("ranking refresh queue full, drop")
	}
}

// Changed 实现 RankingNotifier
func (r *RankingRefresher) Changed(ctx context.Context) {
	r.rec.Invalidate(ctx)
	r.Enqueue()
}

// Metrics 每次刷新完成后发送一次从投递到完成的耗时
func (r *RankingRefresher) Metrics() <-chan time.Duration { return r.metricsCh }

// QueueLen 当前队列长度（采样值）
func (r *RankingRefresher) QueueLen() int { return len(r.ch) }

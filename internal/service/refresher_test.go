package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Leon-Chun/twitter-fullstack-2020/internal/testutil"
)

func TestRankingRefresher_WarmsCache(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	testutil.CreateUser(t, e.db, "user1")

	r := NewRankingRefresher(e.rec, 8)
	stop := r.Start(1)
	defer func() { _ = stop(ctx) }()

	r.Changed(ctx)
	select {
	case d := <-r.Metrics():
		assert.GreaterOrEqual(t, d, time.Duration(0))
	case <-time.After(2 * time.Second):
		t.Fatal("refresh did not complete")
	}

	n, err := e.cache.Exists(ctx, e.rec.key()).Result()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestRankingRefresher_DropsWhenFull(t *testing.T) {
	e := newTestEnv(t)
	r := NewRankingRefresher(e.rec, 2)

	for i := 0; i < 5; i++ {
		r.Enqueue()
	}
	assert.Equal(t, 2, r.QueueLen())
}

func TestRankingRefresher_StopWaitsForWorkers(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	testutil.CreateUser(t, e.db, "user1")

	r := NewRankingRefresher(e.rec, 8)
	stop := r.Start(2)
	r.Changed(ctx)
	<-r.Metrics()

	stopCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	require.NoError(t, stop(stopCtx))
	// 重复调用安全
	require.NoError(t, stop(stopCtx))
}

func TestRankingRefresher_NoWorkAfterStop(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	r := NewRankingRefresher(e.rec, 8)
	stop := r.Start(2)
	require.NoError(t, stop(ctx))

	r.Enqueue()
	select {
	case <-r.Metrics():
		t.Fatal("worker still running after stop returned")
	case <-time.After(100 * time.Millisecond):
	}
	assert.Equal(t, 1, r.QueueLen())
}

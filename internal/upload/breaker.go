package upload

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/Leon-Chun/twitter-fullstack-2020/internal/apperr"
	"github.com/Leon-Chun/twitter-fullstack-2020/pkg/logger"
)

// BreakerUploader 连续失败后熔断，图床不可用时快速失败
type BreakerUploader struct {
	next Uploader
	cb   *gobreaker.CircuitBreaker
}

// BreakerSettings 熔断参数；零值使用默认（连续 5 次失败，30s 后半开）
type BreakerSettings struct {
	MaxFailures uint32
	OpenTimeout time.Duration
}

func NewBreakerUploader(next Uploader, s BreakerSettings) *BreakerUploader {
	if s.MaxFailures == 0 {
		s.MaxFailures = 5
	}
	if s.OpenTimeout <= 0 {
		s.OpenTimeout = 30 * time.Second
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "image-upload",
		Timeout: s.OpenTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= s.MaxFailures
		},
		// 用户侧错误（非图片等）不计入失败
		IsSuccessful: func(err error) bool {
			return err == nil || apperr.Is(err, apperr.KindInvalid)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return &BreakerUploader{next: next, cb: cb}
}

func (b *BreakerUploader) Upload(ctx context.Context, file *multipart.FileHeader) (string, error) {
	v, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Upload(ctx, file)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("image host unavailable: %w", err)
		}
		return "", err
	}
	return v.(string), nil
}

// State 当前熔断状态
func (b *BreakerUploader) State() gobreaker.State { return b.cb.State() }

package service

import (
	"context"
	"sync"
	"time"

	"edu_quiz_backend/internal/config"
	"edu_quiz_backend/internal/model"
	"edu_quiz_backend/pkg/logger"
	"edu_quiz_backend/pkg/monitoring"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ExpirationSweeper 周期性扫描进行中的尝试，把超过截止时间的终结为 time_expired。
// 客户端到期即断开时由它兜底，保证终态最终一定落下。
type ExpirationSweeper struct {
	attempts AttemptStore
	service  *AttemptService

	mu        sync.Mutex
	interval  time.Duration
	batchSize int
	limiter   *rate.Limiter

	cancel context.CancelFunc
	done   chan struct{}
}

func NewExpirationSweeper(attempts AttemptStore, service *AttemptService, cfg config.SweeperConfig) *ExpirationSweeper {
	return &ExpirationSweeper{
		attempts:  attempts,
		service:   service,
		interval:  time.Duration(cfg.IntervalSeconds) * time.Second,
		batchSize: cfg.BatchSize,
		limiter:   newSweepLimiter(cfg.ThrottleMillis),
	}
}

func newSweepLimiter(throttleMillis int) *rate.Limiter {
	if throttleMillis <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Duration(throttleMillis)*time.Millisecond), 1)
}

// Start 启动后台循环，重复调用无效果
func (s *ExpirationSweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.loop(ctx)
	logger.Log.Info("expiration sweeper started",
		zap.Duration("interval", s.interval),
		zap.Int("batchSize", s.batchSize))
}

// Stop 停止循环并等待当前一轮扫描结束
func (s *ExpirationSweeper) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	logger.Log.Info("expiration sweeper stopped")
}

// Retune 配置热更新时调整节奏，下一轮生效
func (s *ExpirationSweeper) Retune(cfg config.SweeperConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interval = time.Duration(cfg.IntervalSeconds) * time.Second
	s.batchSize = cfg.BatchSize
	s.limiter = newSweepLimiter(cfg.ThrottleMillis)
	logger.Log.Info("expiration sweeper retuned",
		zap.Duration("interval", s.interval),
		zap.Int("batchSize", s.batchSize))
}

func (s *ExpirationSweeper) loop(ctx context.Context) {
	defer close(s.done)
	for {
		s.mu.Lock()
		interval := s.interval
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
		if err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
			logger.Log.Error("sweep pass failed", zap.Error(err))
		}
	}
}

// RunOnce 执行一轮完整扫描。单个尝试失败只计数并跳过，不中断整轮。
func (s *ExpirationSweeper) RunOnce(ctx context.Context) error {
	start := time.Now()
	defer func() {
		monitoring.SweepDuration.Observe(time.Since(start).Seconds())
	}()

	s.mu.Lock()
	batchSize := s.batchSize
	limiter := s.limiter
	s.mu.Unlock()

	offset := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		batch, err := s.attempts.PageInProgress(offset, batchSize)
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}

		// 被终结的行会离开进行中集合，偏移量只按跳过的行数前进
		kept := 0
		for i := range batch {
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
			expired, err := s.sweepOne(&batch[i])
			if err != nil {
				monitoring.SweepErrorCounter.Inc()
				logger.Log.Warn("sweep skipped attempt",
					zap.Uint("attemptId", batch[i].ID),
					zap.Error(err))
				kept++
				continue
			}
			if expired {
				monitoring.SweepExpiredCounter.Inc()
			} else {
				kept++
			}
		}
		offset += kept
	}
}

func (s *ExpirationSweeper) sweepOne(attempt *model.QuizAttempt) (bool, error) {
	// 每条都要重读截止时间：取批次和终结之间测验配置可能已变
	return s.service.ExpireIfPastDeadline(attempt)
}

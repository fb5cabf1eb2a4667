package service

import (
	"context"
	"fmt"
	"time"

	"edu_quiz_backend/internal/repository"
	"edu_quiz_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const activityDebounce = time.Minute

// ActivityTracker 刷新用户最近活跃时间。
// 用 Redis SETNX 做去抖，窗口内重复请求不打库。
type ActivityTracker struct {
	Users *repository.UserRepository
	RDB   *redis.Client
}

func NewActivityTracker(users *repository.UserRepository, rdb *redis.Client) *ActivityTracker {
	return &ActivityTracker{Users: users, RDB: rdb}
}

func (t *ActivityTracker) Touch(userID uint) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		if t.RDB != nil {
			key := fmt.Sprintf("activity:seen:%d", userID)
			ok, err := t.RDB.SetNX(ctx, key, 1, activityDebounce).Result()
			if err == nil && !ok {
				return
			}
		}
		if err := t.Users.UpdateLastSeen(userID); err != nil {
			logger.Log.Debug("last seen update failed",
				zap.Uint("userId", userID),
				zap.Error(err))
		}
	}()
}

package repository

import (
	"context"
	"encoding/json"

	"edu_quiz_backend/internal/model"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// 通知投递队列的 Redis key，下游投递服务从此队列消费
const notificationQueueKey = "notifications:queue"

type NotificationRepository struct {
	DB    *gorm.DB
	Redis *redis.Client
}

func NewNotificationRepository(db *gorm.DB, rdb *redis.Client) *NotificationRepository {
	return &NotificationRepository{DB: db, Redis: rdb}
}

// Enqueue 落库并推入投递队列
func (r *NotificationRepository) Enqueue(n *model.Notification) error {
	if err := r.DB.Create(n).Error; err != nil {
		return err
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return r.Redis.LPush(context.Background(), notificationQueueKey, payload).Err()
}

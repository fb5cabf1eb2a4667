package service

import (
	"edu_quiz_backend/internal/model"
	"edu_quiz_backend/internal/repository"
	"edu_quiz_backend/pkg/logger"

	"go.uber.org/zap"
)

// NotificationService 把生命周期事件投递给学生。
// 通知属于尽力而为，失败只记录，绝不影响答题主流程。
type NotificationService struct {
	Repo *repository.NotificationRepository
}

func NewNotificationService(repo *repository.NotificationRepository) *NotificationService {
	return &NotificationService{Repo: repo}
}

func (s *NotificationService) Notify(userID uint, title, message string, category model.NotificationCategory) {
	notification := &model.Notification{
		UserID:   userID,
		Title:    title,
		Message:  message,
		Category: category,
	}
	if err := s.Repo.Enqueue(notification); err != nil {
		logger.Log.Warn("notification delivery failed",
			zap.Uint("userId", userID),
			zap.String("category", string(category)),
			zap.Error(err))
	}
}

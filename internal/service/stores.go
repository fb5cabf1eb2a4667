package service

import (
	"time"

	"edu_quiz_backend/internal/model"
)

// 服务层只依赖窄接口；gorm 仓库实现它们，测试用内存假实现。

type AttemptStore interface {
	Create(attempt *model.QuizAttempt) error
	FindByID(id uint) (*model.QuizAttempt, error)
	FindByIDAndUser(id, userID uint) (*model.QuizAttempt, error)
	ListByUserAndQuiz(userID, quizID uint) ([]model.QuizAttempt, error)
	CountFinishedByUserAndQuiz(userID, quizID uint) (int64, error)
	MaxAttemptNumber(userID, quizID uint) (int, error)
	FindInProgressByUser(userID uint) (*model.QuizAttempt, error)
	PageInProgress(offset, limit int) ([]model.QuizAttempt, error)
	PageSubmittedByQuiz(quizID uint, page, limit int) ([]model.QuizAttempt, int64, error)
	FinalizeIfInProgress(attemptID uint, status model.AttemptStatus, submittedAt time.Time, timeSpentSeconds int) (bool, error)
	UpdateAnswersIfInProgress(attemptID uint, answers model.AnswerMap, scores model.ScoreMap, totalScore int) (bool, error)
}

// CatalogStore 测验目录的只读视图
type CatalogStore interface {
	FindByID(id uint) (*model.Quiz, error)
	FindQuizTree(quizID uint) ([]model.QuizSection, error)
	FindQuestionByID(id uint) (*model.Question, error)
}

type UserStore interface {
	FindByID(id uint) (*model.User, error)
}

type EnrollmentStore interface {
	IsEnrolled(courseID, userID uint) (bool, error)
	CourseOwnerID(courseID uint) (uint, error)
}

// ProgressSink 模块完成度回写，提交/到期终结时触发
type ProgressSink interface {
	MarkModuleComplete(userID, moduleID uint) error
}

// Notifier 尽力而为的通知投递；实现不得向调用方传播失败
type Notifier interface {
	Notify(userID uint, title, message string, category model.NotificationCategory)
}

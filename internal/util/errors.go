package util

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrQuizNotFound     = errors.New("quiz not found")
	ErrQuestionNotFound = errors.New("question not found")
	// 归属校验失败与不存在返回同一错误，避免泄露资源存在性
	ErrAttemptNotFound = errors.New("attempt not found")

	ErrAttemptNotActive      = errors.New("attempt is not in progress")
	ErrAttemptAlreadyClosed  = errors.New("attempt already submitted")
	ErrQuizClosed            = errors.New("quiz is closed")
	ErrQuizNotYetAvailable   = errors.New("quiz not yet available")
	ErrQuizDeadlinePassed    = errors.New("quiz deadline has passed")
	ErrAttemptLimitReached   = errors.New("attempt limit reached")
	ErrNotEnrolled           = errors.New("user not enrolled in course")
	ErrActiveAttemptExists   = errors.New("another attempt is still in progress")
	ErrNoScoringStrategy     = errors.New("no scoring strategy registered for question type")
	ErrAttemptExpired        = errors.New("attempt time expired")
	ErrConcurrentStateChange = errors.New("attempt state changed concurrently")
)

// ErrorKind 错误类别，控制器据此映射稳定的 HTTP 状态
type ErrorKind int

const (
	KindInfrastructure ErrorKind = iota
	KindNotFound
	KindIllegalState
	KindIneligible
	KindConflict
	KindConfiguration
)

func KindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrQuizNotFound),
		errors.Is(err, ErrQuestionNotFound),
		errors.Is(err, ErrAttemptNotFound):
		return KindNotFound
	case errors.Is(err, ErrAttemptNotActive),
		errors.Is(err, ErrAttemptAlreadyClosed),
		errors.Is(err, ErrConcurrentStateChange):
		return KindIllegalState
	case errors.Is(err, ErrQuizClosed),
		errors.Is(err, ErrQuizNotYetAvailable),
		errors.Is(err, ErrQuizDeadlinePassed),
		errors.Is(err, ErrAttemptLimitReached),
		errors.Is(err, ErrNotEnrolled),
		errors.Is(err, ErrAttemptExpired):
		return KindIneligible
	case errors.Is(err, ErrActiveAttemptExists):
		return KindConflict
	case errors.Is(err, ErrNoScoringStrategy):
		return KindConfiguration
	default:
		return KindInfrastructure
	}
}

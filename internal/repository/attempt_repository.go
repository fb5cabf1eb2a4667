package repository

import (
	"time"

	"edu_quiz_backend/internal/model"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) Create(attempt *model.QuizAttempt) error {
	return r.DB.Create(attempt).Error
}

func (r *AttemptRepository) FindByID(id uint) (*model.QuizAttempt, error) {
	var a model.QuizAttempt
	if err := r.DB.First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AttemptRepository) FindByIDAndUser(id, userID uint) (*model.QuizAttempt, error) {
	var a model.QuizAttempt
	if err := r.DB.Where("id = ? AND user_id = ?", id, userID).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// ListByUserAndQuiz 学生视角的历史尝试列表，按尝试序号排序
func (r *AttemptRepository) ListByUserAndQuiz(userID, quizID uint) ([]model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	err := r.DB.Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Order("attempt_number ASC").Find(&attempts).Error
	return attempts, err
}

// CountFinishedByUserAndQuiz 统计已终结的尝试（不含 in_progress，可能是掉线残留）
func (r *AttemptRepository) CountFinishedByUserAndQuiz(userID, quizID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.QuizAttempt{}).
		Where("user_id = ? AND quiz_id = ? AND status IN ?", userID, quizID,
			[]model.AttemptStatus{model.AttemptSubmitted, model.AttemptTimeExpired, model.AttemptGraded}).
		Count(&count).Error
	return count, err
}

func (r *AttemptRepository) MaxAttemptNumber(userID, quizID uint) (int, error) {
	var max *int
	err := r.DB.Model(&model.QuizAttempt{}).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Select("MAX(attempt_number)").Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

// FindInProgressByUser 跨测验查找用户当前进行中的尝试；全局唯一活跃尝试不变式依赖此查询
func (r *AttemptRepository) FindInProgressByUser(userID uint) (*model.QuizAttempt, error) {
	var a model.QuizAttempt
	err := r.DB.Where("user_id = ? AND status = ?", userID, model.AttemptInProgress).First(&a).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// PageInProgress 供清扫任务分页扫描进行中的尝试，按ID稳定排序
func (r *AttemptRepository) PageInProgress(offset, limit int) ([]model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	err := r.DB.Where("status = ?", model.AttemptInProgress).
		Order("id ASC").Offset(offset).Limit(limit).Find(&attempts).Error
	return attempts, err
}

// PageSubmittedByQuiz 教师端分页查看某测验的已提交尝试
func (r *AttemptRepository) PageSubmittedByQuiz(quizID uint, page, limit int) ([]model.QuizAttempt, int64, error) {
	query := r.DB.Model(&model.QuizAttempt{}).
		Where("quiz_id = ? AND status IN ?", quizID,
			[]model.AttemptStatus{model.AttemptSubmitted, model.AttemptTimeExpired, model.AttemptGraded})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var attempts []model.QuizAttempt
	err := query.Order("submitted_at DESC").
		Offset((page - 1) * limit).Limit(limit).Find(&attempts).Error
	return attempts, total, err
}

// FinalizeIfInProgress 条件更新：仅当尝试仍为 in_progress 时写终态。
// 返回是否真正写入；并发下第二个写入者会得到 false。
func (r *AttemptRepository) FinalizeIfInProgress(attemptID uint, status model.AttemptStatus, submittedAt time.Time, timeSpentSeconds int) (bool, error) {
	res := r.DB.Model(&model.QuizAttempt{}).
		Where("id = ? AND status = ?", attemptID, model.AttemptInProgress).
		Updates(map[string]interface{}{
			"status":             status,
			"submitted_at":       submittedAt,
			"time_spent_seconds": timeSpentSeconds,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// UpdateAnswersIfInProgress 条件更新答题数据，终态后写入直接失败
func (r *AttemptRepository) UpdateAnswersIfInProgress(attemptID uint, answers model.AnswerMap, scores model.ScoreMap, totalScore int) (bool, error) {
	res := r.DB.Model(&model.QuizAttempt{}).
		Where("id = ? AND status = ?", attemptID, model.AttemptInProgress).
		Updates(map[string]interface{}{
			"answers":     answers,
			"scores":      scores,
			"total_score": totalScore,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

package repository

import (
	"time"

	"edu_quiz_backend/internal/model"

	"gorm.io/gorm"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// MarkModuleComplete 幂等写入模块完成记录
func (r *ProgressRepository) MarkModuleComplete(userID, moduleID uint) error {
	var existing model.UserProgress
	err := r.DB.Where("user_id = ? AND module_id = ?", userID, moduleID).First(&existing).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return err
	}
	now := time.Now()
	if existing.ID == 0 {
		return r.DB.Create(&model.UserProgress{
			UserID:      userID,
			ModuleID:    moduleID,
			Completed:   true,
			CompletedAt: &now,
		}).Error
	}
	if existing.Completed {
		return nil
	}
	existing.Completed = true
	existing.CompletedAt = &now
	return r.DB.Save(&existing).Error
}

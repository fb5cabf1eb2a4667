package repository

import (
	"edu_quiz_backend/internal/model"

	"gorm.io/gorm"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

func (r *QuizRepository) FindByID(id uint) (*model.Quiz, error) {
	var quiz model.Quiz
	if err := r.DB.Preload("Assessment").First(&quiz, id).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

// FindQuizTree 加载完整内容树：分节 -> 分组/题目 -> 选项，按自然顺序排序
func (r *QuizRepository) FindQuizTree(quizID uint) ([]model.QuizSection, error) {
	var sections []model.QuizSection
	err := r.DB.Where("quiz_id = ?", quizID).
		Order("display_order ASC").
		Preload("Groups", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		Preload("Groups.Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		Preload("Groups.Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Where("group_id IS NULL").Order("display_order ASC")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		Find(&sections).Error
	return sections, err
}

func (r *QuizRepository) FindQuestionByID(id uint) (*model.Question, error) {
	var q model.Question
	if err := r.DB.Preload("Options", func(db *gorm.DB) *gorm.DB {
		return db.Order("display_order ASC")
	}).First(&q, id).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

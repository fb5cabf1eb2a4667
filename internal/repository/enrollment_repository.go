package repository

import (
	"edu_quiz_backend/internal/model"

	"gorm.io/gorm"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

func (r *EnrollmentRepository) IsEnrolled(courseID, userID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.CourseEnrollment{}).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *EnrollmentRepository) CourseOwnerID(courseID uint) (uint, error) {
	var course model.Course
	if err := r.DB.Select("teacher_id").First(&course, courseID).Error; err != nil {
		return 0, err
	}
	return course.TeacherID, nil
}

package model

import "time"

// 课程目录模型。本服务只读：课程/模块的管理由目录服务负责。

// swagger:model Course
type Course struct {
	BaseModel
	Title     string `gorm:"size:200;not null" json:"title"`
	TeacherID uint   `gorm:"index;type:bigint unsigned" json:"teacherId"`
	IsClosed  bool   `gorm:"default:false" json:"isClosed"`
}

func (Course) TableName() string {
	return "courses"
}

// swagger:model CourseEnrollment
type CourseEnrollment struct {
	BaseModel
	CourseID   uint      `gorm:"uniqueIndex:idx_course_user;type:bigint unsigned" json:"courseId"`
	UserID     uint      `gorm:"uniqueIndex:idx_course_user;type:bigint unsigned" json:"userId"`
	EnrolledAt time.Time `json:"enrolledAt"`
}

func (CourseEnrollment) TableName() string {
	return "course_enrollments"
}

// swagger:model LearningModule
type LearningModule struct {
	BaseModel
	CourseID uint   `gorm:"index;type:bigint unsigned" json:"courseId"`
	Title    string `gorm:"size:200;not null" json:"title"`
	Order    int    `gorm:"column:display_order" json:"order"`
}

func (LearningModule) TableName() string {
	return "learning_modules"
}

// UserProgress 记录学生对模块的完成状态，测验提交后由进度服务写入
// swagger:model UserProgress
type UserProgress struct {
	BaseModel
	UserID      uint       `gorm:"uniqueIndex:idx_user_module;type:bigint unsigned" json:"userId"`
	ModuleID    uint       `gorm:"uniqueIndex:idx_user_module;type:bigint unsigned" json:"moduleId"`
	Completed   bool       `gorm:"default:false" json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

func (UserProgress) TableName() string {
	return "user_progress"
}

package model

import "time"

// 测验目录模型。本服务只读测验定义；出题/编辑属于内容创作服务。

// swagger:model Quiz
type Quiz struct {
	BaseModel
	CourseID uint   `gorm:"index;type:bigint unsigned" json:"courseId"`
	ModuleID uint   `gorm:"index;type:bigint unsigned" json:"moduleId"`
	Title    string `gorm:"size:200;not null" json:"title"`
	IsClosed bool   `gorm:"default:false" json:"isClosed"`

	// 计时与次数限制：空值表示不限
	DurationMinutes *int `json:"durationMinutes,omitempty"`
	MaxAttempts     *int `json:"maxAttempts,omitempty"`

	ShuffleQuestions       bool `gorm:"default:false" json:"shuffleQuestions"`
	ShuffleAnswers         bool `gorm:"default:false" json:"shuffleAnswers"`
	ShowScoreImmediately   bool `gorm:"default:false" json:"showScoreImmediately"`
	ShowAnswersAfterSubmit bool `gorm:"default:false" json:"showAnswersAfterSubmit"`

	PassingScore  *int `json:"passingScore,omitempty"`
	QuestionCount int  `json:"questionCount"`

	AvailableFrom *time.Time `json:"availableFrom,omitempty"`

	// 关联考核（可选）；截止时间取自考核
	AssessmentID *uint       `gorm:"type:bigint unsigned" json:"assessmentId,omitempty"`
	Assessment   *Assessment `gorm:"foreignKey:AssessmentID" json:"assessment,omitempty"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// DueDate 返回关联考核的截止时间，未关联时为 nil
func (q *Quiz) DueDate() *time.Time {
	if q.Assessment == nil {
		return nil
	}
	return q.Assessment.DueDate
}

// swagger:model Assessment
type Assessment struct {
	BaseModel
	CourseID uint       `gorm:"index;type:bigint unsigned" json:"courseId"`
	Title    string     `gorm:"size:200;not null" json:"title"`
	DueDate  *time.Time `json:"dueDate,omitempty"`
}

func (Assessment) TableName() string {
	return "assessments"
}

// swagger:model QuizSection
type QuizSection struct {
	BaseModel
	QuizID uint   `gorm:"index;type:bigint unsigned" json:"quizId"`
	Title  string `gorm:"size:200" json:"title"`
	Order  int    `gorm:"column:display_order" json:"order"`

	Groups    []QuestionGroup `gorm:"foreignKey:SectionID" json:"groups,omitempty"`
	Questions []Question      `gorm:"foreignKey:SectionID" json:"questions,omitempty"`
}

func (QuizSection) TableName() string {
	return "quiz_sections"
}

// swagger:model QuestionGroup
type QuestionGroup struct {
	BaseModel
	SectionID uint   `gorm:"index;type:bigint unsigned" json:"sectionId"`
	Title     string `gorm:"size:200" json:"title"`
	Order     int    `gorm:"column:display_order" json:"order"`

	Questions []Question `gorm:"foreignKey:GroupID" json:"questions,omitempty"`
}

func (QuestionGroup) TableName() string {
	return "question_groups"
}

package model

import "encoding/json"

type QuestionType string

const (
	SingleChoice QuestionType = "single_choice"
	MultiChoice  QuestionType = "multi_choice"
	TrueFalse    QuestionType = "true_false"
	FillBlank    QuestionType = "fill_blank"
	Matching     QuestionType = "matching"
	Ordering     QuestionType = "ordering"
)

// swagger:model Question
type Question struct {
	BaseModel
	QuizID    uint         `gorm:"index;type:bigint unsigned" json:"quizId"`
	SectionID uint         `gorm:"index;type:bigint unsigned" json:"sectionId"`
	GroupID   *uint        `gorm:"type:bigint unsigned" json:"groupId,omitempty"`
	Type      QuestionType `gorm:"size:20;not null" json:"type"`
	Content   string       `gorm:"type:text" json:"content"`
	Points    int          `json:"points"`
	Order     int          `gorm:"column:display_order" json:"order"`

	// 选择类题目使用 Options；结构化题目（填空/匹配/排序）把答案存在 CorrectAnswer
	Options       []AnswerOption  `gorm:"foreignKey:QuestionID" json:"options,omitempty"`
	CorrectAnswer json.RawMessage `gorm:"type:json" json:"-"`
}

func (Question) TableName() string {
	return "questions"
}

// swagger:model AnswerOption
type AnswerOption struct {
	BaseModel
	QuestionID uint   `gorm:"index;type:bigint unsigned" json:"questionId"`
	Text       string `gorm:"type:text" json:"text"`
	IsCorrect  bool   `gorm:"default:false" json:"-"`
	Order      int    `gorm:"column:display_order" json:"order"`
}

func (AnswerOption) TableName() string {
	return "answer_options"
}

package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

type AttemptStatus string

const (
	AttemptInProgress  AttemptStatus = "in_progress"
	AttemptSubmitted   AttemptStatus = "submitted"
	AttemptTimeExpired AttemptStatus = "time_expired"
	AttemptGraded      AttemptStatus = "graded"
)

// IsTerminal 判断状态是否终态；终态后尝试不可再修改
func (s AttemptStatus) IsTerminal() bool {
	return s == AttemptSubmitted || s == AttemptTimeExpired || s == AttemptGraded
}

// AnswerMap 题目ID -> 学生原始作答，整体序列化进 JSON 列
type AnswerMap map[uint]json.RawMessage

func (m AnswerMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	return string(b), err
}

func (m *AnswerMap) Scan(value interface{}) error {
	return scanJSONMap(value, m)
}

// ScoreMap 题目ID -> 当前得分
type ScoreMap map[uint]int

func (m ScoreMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	return string(b), err
}

func (m *ScoreMap) Scan(value interface{}) error {
	return scanJSONMap(value, m)
}

func scanJSONMap(value, dest interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return errors.New("unsupported column type for json map")
	}
}

// swagger:model QuizAttempt
type QuizAttempt struct {
	BaseModel
	QuizID uint `gorm:"uniqueIndex:idx_quiz_user_number;type:bigint unsigned" json:"quizId"`
	UserID uint `gorm:"uniqueIndex:idx_quiz_user_number;index:idx_user_status;type:bigint unsigned" json:"userId"`

	// 同一 (user, quiz) 下从 1 递增
	AttemptNumber int `gorm:"uniqueIndex:idx_quiz_user_number" json:"attemptNumber"`

	Status    AttemptStatus `gorm:"size:20;default:'in_progress';index:idx_user_status" json:"status"`
	StartedAt time.Time     `json:"startedAt"`

	// 终态时写入一次；自动过期时取截止时间而非当前时间
	SubmittedAt      *time.Time `json:"submittedAt,omitempty"`
	TimeSpentSeconds int        `json:"timeSpentSeconds"`

	TotalScore int       `json:"totalScore"`
	Answers    AnswerMap `gorm:"type:json" json:"answers"`
	Scores     ScoreMap  `gorm:"type:json" json:"-"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

// Deadline 依据测验时长计算截止时间；测验不限时则返回 nil
func (a *QuizAttempt) Deadline(quiz *Quiz) *time.Time {
	if quiz == nil || quiz.DurationMinutes == nil {
		return nil
	}
	d := a.StartedAt.Add(time.Duration(*quiz.DurationMinutes) * time.Minute)
	return &d
}

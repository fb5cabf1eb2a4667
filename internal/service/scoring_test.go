package service

import (
	"encoding/json"
	"testing"

	"edu_quiz_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func choiceQuestion(t model.QuestionType, points int) *model.Question {
	return &model.Question{
		BaseModel: model.BaseModel{ID: 1},
		Type:      t,
		Points:    points,
		Options: []model.AnswerOption{
			{BaseModel: model.BaseModel{ID: 11}, Text: "A", IsCorrect: true},
			{BaseModel: model.BaseModel{ID: 12}, Text: "B"},
			{BaseModel: model.BaseModel{ID: 13}, Text: "C", IsCorrect: true},
		},
	}
}

func TestScoreSingleChoice(t *testing.T) {
	q := &model.Question{
		Type:   model.SingleChoice,
		Points: 5,
		Options: []model.AnswerOption{
			{BaseModel: model.BaseModel{ID: 11}, IsCorrect: true},
			{BaseModel: model.BaseModel{ID: 12}},
		},
	}

	tests := []struct {
		name   string
		answer string
		want   int
	}{
		{"correct option", `{"selectedOptionId":11}`, 5},
		{"wrong option", `{"selectedOptionId":12}`, 0},
		{"unknown option", `{"selectedOptionId":99}`, 0},
		{"malformed payload", `"not an object"`, 0},
	}
	registry := NewScoringRegistry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := registry.Score(q, json.RawMessage(tt.answer))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// 多选严格匹配：多选、漏选、错选都是 0 分
func TestScoreMultiChoice(t *testing.T) {
	q := choiceQuestion(model.MultiChoice, 10)

	tests := []struct {
		name   string
		answer string
		want   int
	}{
		{"exact match", `{"selectedOptionIds":[11,13]}`, 10},
		{"exact match reordered", `{"selectedOptionIds":[13,11]}`, 10},
		{"missing one", `{"selectedOptionIds":[11]}`, 0},
		{"extra wrong", `{"selectedOptionIds":[11,12,13]}`, 0},
		{"duplicate padding", `{"selectedOptionIds":[11,11]}`, 0},
		{"empty selection", `{"selectedOptionIds":[]}`, 0},
	}
	registry := NewScoringRegistry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := registry.Score(q, json.RawMessage(tt.answer))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScoreTrueFalse(t *testing.T) {
	q := &model.Question{
		Type:   model.TrueFalse,
		Points: 2,
		Options: []model.AnswerOption{
			{BaseModel: model.BaseModel{ID: 21}, Text: "True", IsCorrect: true},
			{BaseModel: model.BaseModel{ID: 22}, Text: "False"},
		},
	}
	registry := NewScoringRegistry()

	got, err := registry.Score(q, json.RawMessage(`{"selectedOptionId":21}`))
	require.NoError(t, err)
	assert.Equal(t, 2, got)

	got, err = registry.Score(q, json.RawMessage(`{"selectedOptionId":22}`))
	require.NoError(t, err)
	assert.Equal(t, 0, got)
}

func TestScoreFillBlank(t *testing.T) {
	q := &model.Question{
		Type:          model.FillBlank,
		Points:        4,
		CorrectAnswer: json.RawMessage(`{"blanks":{"b1":["malloc","calloc"],"b2":["free"]}}`),
	}

	tests := []struct {
		name   string
		answer string
		want   int
	}{
		{"all blanks exact", `{"blanks":{"b1":"malloc","b2":"free"}}`, 4},
		{"alternate accepted", `{"blanks":{"b1":"calloc","b2":"free"}}`, 4},
		{"case and spacing normalized", `{"blanks":{"b1":"  MALLOC ","b2":"Free"}}`, 4},
		{"one blank wrong", `{"blanks":{"b1":"malloc","b2":"delete"}}`, 0},
		{"blank missing", `{"blanks":{"b1":"malloc"}}`, 0},
	}
	registry := NewScoringRegistry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := registry.Score(q, json.RawMessage(tt.answer))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScoreMatching(t *testing.T) {
	q := &model.Question{
		Type:          model.Matching,
		Points:        6,
		CorrectAnswer: json.RawMessage(`{"pairs":{"stack":"LIFO","queue":"FIFO"}}`),
	}

	tests := []struct {
		name   string
		answer string
		want   int
	}{
		{"all pairs right", `{"pairs":{"stack":"LIFO","queue":"FIFO"}}`, 6},
		{"one pair swapped", `{"pairs":{"stack":"FIFO","queue":"LIFO"}}`, 0},
		{"pair missing", `{"pairs":{"stack":"LIFO"}}`, 0},
	}
	registry := NewScoringRegistry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := registry.Score(q, json.RawMessage(tt.answer))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScoreOrdering(t *testing.T) {
	q := &model.Question{
		Type:          model.Ordering,
		Points:        3,
		CorrectAnswer: json.RawMessage(`{"order":["compile","link","run"]}`),
	}

	tests := []struct {
		name   string
		answer string
		want   int
	}{
		{"exact order", `{"order":["compile","link","run"]}`, 3},
		{"wrong order", `{"order":["link","compile","run"]}`, 0},
		{"short list", `{"order":["compile","link"]}`, 0},
	}
	registry := NewScoringRegistry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := registry.Score(q, json.RawMessage(tt.answer))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegistryCoversAllQuestionTypes(t *testing.T) {
	assert.NoError(t, NewScoringRegistry().Validate())
}

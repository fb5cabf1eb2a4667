package service

import (
	"fmt"
	"testing"

	"edu_quiz_backend/internal/model"

	"github.com/stretchr/testify/assert"
)

func manyOptions(n int) []model.AnswerOption {
	opts := make([]model.AnswerOption, n)
	for i := range opts {
		opts[i] = model.AnswerOption{BaseModel: model.BaseModel{ID: uint(i + 1)}}
	}
	return opts
}

func optionIDs(opts []model.AnswerOption) []uint {
	ids := make([]uint, len(opts))
	for i, o := range opts {
		ids[i] = o.ID
	}
	return ids
}

// 同一 (attempt, question) 反复洗牌必须得到同一顺序：断线重连不换卷
func TestShuffleOptionsDeterministic(t *testing.T) {
	q := &model.Question{
		BaseModel: model.BaseModel{ID: 5},
		Type:      model.SingleChoice,
		Options:   manyOptions(8),
	}

	first := ShuffleOptions(42, q)
	for i := 0; i < 10; i++ {
		assert.Equal(t, optionIDs(first), optionIDs(ShuffleOptions(42, q)))
	}
}

func TestShuffleOptionsVariesAcrossAttempts(t *testing.T) {
	q := &model.Question{
		BaseModel: model.BaseModel{ID: 5},
		Type:      model.SingleChoice,
		Options:   manyOptions(8),
	}

	distinct := map[string]bool{}
	for attempt := uint(1); attempt <= 20; attempt++ {
		distinct[fmt.Sprint(optionIDs(ShuffleOptions(attempt, q)))] = true
	}
	// 8! 种排列里 20 次全部相同的概率可以忽略
	assert.Greater(t, len(distinct), 1)
}

func TestShuffleOptionsPreservesSet(t *testing.T) {
	q := &model.Question{
		BaseModel: model.BaseModel{ID: 9},
		Type:      model.MultiChoice,
		Options:   manyOptions(6),
	}

	shuffled := ShuffleOptions(7, q)
	assert.ElementsMatch(t, optionIDs(q.Options), optionIDs(shuffled))
}

// 判断/填空/匹配/排序题的选项不参与乱序
func TestShuffleOptionsSkipsIneligibleTypes(t *testing.T) {
	for _, typ := range []model.QuestionType{model.TrueFalse, model.FillBlank, model.Matching, model.Ordering} {
		q := &model.Question{
			BaseModel: model.BaseModel{ID: 3},
			Type:      typ,
			Options:   manyOptions(4),
		}
		assert.Equal(t, optionIDs(q.Options), optionIDs(ShuffleOptions(42, q)), string(typ))
	}
}

func TestOptionShuffleEligibility(t *testing.T) {
	assert.True(t, OptionShuffleEligible(model.SingleChoice))
	assert.True(t, OptionShuffleEligible(model.MultiChoice))
	assert.False(t, OptionShuffleEligible(model.TrueFalse))
	assert.False(t, OptionShuffleEligible(model.FillBlank))
	assert.False(t, OptionShuffleEligible(model.Matching))
	assert.False(t, OptionShuffleEligible(model.Ordering))
}

func TestShuffleQuestionsDeterministic(t *testing.T) {
	questions := make([]model.Question, 10)
	for i := range questions {
		questions[i] = model.Question{BaseModel: model.BaseModel{ID: uint(i + 100)}}
	}

	first := ShuffleQuestions(1, 2, questions)
	second := ShuffleQuestions(1, 2, questions)
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}

	// 原切片不被就地修改
	for i := range questions {
		assert.Equal(t, uint(i+100), questions[i].ID)
	}
}

// 题目乱序与题组乱序在同一节内使用不同的种子作用域
func TestShuffleGroupsIndependentOfQuestions(t *testing.T) {
	groups := make([]model.QuestionGroup, 12)
	questions := make([]model.Question, 12)
	for i := range groups {
		groups[i] = model.QuestionGroup{BaseModel: model.BaseModel{ID: uint(i + 1)}}
		questions[i] = model.Question{BaseModel: model.BaseModel{ID: uint(i + 1)}}
	}

	gPerm := ShuffleGroups(42, 3, groups)
	qPerm := ShuffleQuestions(42, 3, questions)

	same := true
	for i := range gPerm {
		if gPerm[i].ID != qPerm[i].ID {
			same = false
			break
		}
	}
	assert.False(t, same)
}

func TestShuffleSingleElementNoop(t *testing.T) {
	one := []model.Question{{BaseModel: model.BaseModel{ID: 1}}}
	assert.Equal(t, one, ShuffleQuestions(9, 9, one))
}

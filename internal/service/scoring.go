package service

import (
	"encoding/json"
	"strings"

	"edu_quiz_backend/internal/model"
	"edu_quiz_backend/internal/util"
)

// ScoringFunc 纯函数：题目 + 学生作答 -> 得分。作答不合法时得 0 分，不报错。
type ScoringFunc func(q *model.Question, answer json.RawMessage) int

// ScoringRegistry 按题型分发评分策略。题型集合封闭，注册表在启动时校验完整。
type ScoringRegistry struct {
	strategies map[model.QuestionType]ScoringFunc
}

func NewScoringRegistry() *ScoringRegistry {
	return &ScoringRegistry{
		strategies: map[model.QuestionType]ScoringFunc{
			model.SingleChoice: scoreSingleChoice,
			model.MultiChoice:  scoreMultiChoice,
			model.TrueFalse:    scoreSingleChoice,
			model.FillBlank:    scoreFillBlank,
			model.Matching:     scoreMatching,
			model.Ordering:     scoreOrdering,
		},
	}
}

// AllQuestionTypes 引擎支持的全部题型
var AllQuestionTypes = []model.QuestionType{
	model.SingleChoice,
	model.MultiChoice,
	model.TrueFalse,
	model.FillBlank,
	model.Matching,
	model.Ordering,
}

// Validate 启动时快速失败：任何题型缺少策略即配置错误
func (r *ScoringRegistry) Validate() error {
	for _, t := range AllQuestionTypes {
		if _, ok := r.strategies[t]; !ok {
			return util.ErrNoScoringStrategy
		}
	}
	return nil
}

func (r *ScoringRegistry) Score(q *model.Question, answer json.RawMessage) (int, error) {
	strategy, ok := r.strategies[q.Type]
	if !ok {
		return 0, util.ErrNoScoringStrategy
	}
	return strategy(q, answer), nil
}

// 作答载荷。选择类引用选项ID；结构化题型与 Question.CorrectAnswer 同构。

type ChoiceAnswer struct {
	SelectedOptionID uint `json:"selectedOptionId"`
}

type MultiChoiceAnswer struct {
	SelectedOptionIDs []uint `json:"selectedOptionIds"`
}

type FillBlankAnswer struct {
	Blanks map[string]string `json:"blanks"`
}

type FillBlankKey struct {
	// 每空允许多个可接受答案
	Blanks map[string][]string `json:"blanks"`
}

type MatchingAnswer struct {
	Pairs map[string]string `json:"pairs"`
}

type OrderingAnswer struct {
	Order []string `json:"order"`
}

func scoreSingleChoice(q *model.Question, answer json.RawMessage) int {
	var a ChoiceAnswer
	if err := json.Unmarshal(answer, &a); err != nil {
		return 0
	}
	for _, opt := range q.Options {
		if opt.ID == a.SelectedOptionID && opt.IsCorrect {
			return q.Points
		}
	}
	return 0
}

// scoreMultiChoice 严格匹配：所选集合与正确集合完全一致才得分
func scoreMultiChoice(q *model.Question, answer json.RawMessage) int {
	var a MultiChoiceAnswer
	if err := json.Unmarshal(answer, &a); err != nil {
		return 0
	}
	correct := make(map[uint]bool)
	for _, opt := range q.Options {
		if opt.IsCorrect {
			correct[opt.ID] = true
		}
	}
	if len(correct) == 0 || len(a.SelectedOptionIDs) != len(correct) {
		return 0
	}
	seen := make(map[uint]bool, len(a.SelectedOptionIDs))
	for _, id := range a.SelectedOptionIDs {
		if seen[id] || !correct[id] {
			return 0
		}
		seen[id] = true
	}
	return q.Points
}

func scoreFillBlank(q *model.Question, answer json.RawMessage) int {
	var a FillBlankAnswer
	if err := json.Unmarshal(answer, &a); err != nil {
		return 0
	}
	var key FillBlankKey
	if err := json.Unmarshal(q.CorrectAnswer, &key); err != nil || len(key.Blanks) == 0 {
		return 0
	}
	for blank, accepted := range key.Blanks {
		given, ok := a.Blanks[blank]
		if !ok {
			return 0
		}
		matched := false
		for _, want := range accepted {
			if normalizeText(given) == normalizeText(want) {
				matched = true
				break
			}
		}
		if !matched {
			return 0
		}
	}
	return q.Points
}

func scoreMatching(q *model.Question, answer json.RawMessage) int {
	var a MatchingAnswer
	if err := json.Unmarshal(answer, &a); err != nil {
		return 0
	}
	var key MatchingAnswer
	if err := json.Unmarshal(q.CorrectAnswer, &key); err != nil || len(key.Pairs) == 0 {
		return 0
	}
	if len(a.Pairs) != len(key.Pairs) {
		return 0
	}
	for left, right := range key.Pairs {
		if a.Pairs[left] != right {
			return 0
		}
	}
	return q.Points
}

func scoreOrdering(q *model.Question, answer json.RawMessage) int {
	var a OrderingAnswer
	if err := json.Unmarshal(answer, &a); err != nil {
		return 0
	}
	var key OrderingAnswer
	if err := json.Unmarshal(q.CorrectAnswer, &key); err != nil || len(key.Order) == 0 {
		return 0
	}
	if len(a.Order) != len(key.Order) {
		return 0
	}
	for i, item := range key.Order {
		if a.Order[i] != item {
			return 0
		}
	}
	return q.Points
}

// 比对去除首尾空格后的结果（忽略大小写）
func normalizeText(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

package service

import (
	"fmt"
	"math/rand"

	"edu_quiz_backend/internal/model"

	"github.com/zeebo/xxh3"
)

// 乱序不落库：排列是 (attemptId, questionId) 的纯函数，
// 断线重连后重放同一种子必然得到同一顺序。

func shuffleSeed(attemptID, scopeID uint) int64 {
	return int64(xxh3.HashString(fmt.Sprintf("%d:%d", attemptID, scopeID)))
}

// shufflePerm 返回长度 n 的确定性排列
func shufflePerm(attemptID, scopeID uint, n int) []int {
	return rand.New(rand.NewSource(shuffleSeed(attemptID, scopeID))).Perm(n)
}

// OptionShuffleEligible 选项乱序只对普通选择题生效。
// 判断/填空没有可乱序的选项语义，匹配与排序题乱序会破坏题意。
func OptionShuffleEligible(t model.QuestionType) bool {
	return t == model.SingleChoice || t == model.MultiChoice
}

// ShuffleOptions 按 (attemptId, questionId) 种子重排选项；不合法题型原样返回
func ShuffleOptions(attemptID uint, q *model.Question) []model.AnswerOption {
	if !OptionShuffleEligible(q.Type) || len(q.Options) < 2 {
		return q.Options
	}
	perm := shufflePerm(attemptID, q.ID, len(q.Options))
	shuffled := make([]model.AnswerOption, len(q.Options))
	for i, j := range perm {
		shuffled[i] = q.Options[j]
	}
	return shuffled
}

// ShuffleQuestions 重排一节/一组内的题目，种子以分节（或分组）为作用域
func ShuffleQuestions(attemptID, scopeID uint, questions []model.Question) []model.Question {
	if len(questions) < 2 {
		return questions
	}
	perm := shufflePerm(attemptID, scopeID, len(questions))
	shuffled := make([]model.Question, len(questions))
	for i, j := range perm {
		shuffled[i] = questions[j]
	}
	return shuffled
}

// ShuffleGroups 重排分节内的题组
func ShuffleGroups(attemptID, sectionID uint, groups []model.QuestionGroup) []model.QuestionGroup {
	if len(groups) < 2 {
		return groups
	}
	// 与该节题目乱序错开种子作用域
	const groupScope = 1 << 16
	perm := shufflePerm(attemptID, sectionID+groupScope, len(groups))
	shuffled := make([]model.QuestionGroup, len(groups))
	for i, j := range perm {
		shuffled[i] = groups[j]
	}
	return shuffled
}

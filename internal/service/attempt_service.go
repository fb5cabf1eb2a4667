package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"edu_quiz_backend/internal/model"
	"edu_quiz_backend/internal/util"
	"edu_quiz_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AttemptService 管理一次答题的完整生命周期：
// 开始、续答、改答、提交、教师强制提交，以及到期自动终结。
type AttemptService struct {
	Attempts    AttemptStore
	Catalog     CatalogStore
	Users       UserStore
	Enrollments EnrollmentStore
	Progress    ProgressSink
	Notifier    Notifier
	Scoring     *ScoringRegistry

	// 测试中可替换以固定时钟
	now func() time.Time
}

func NewAttemptService(attempts AttemptStore, catalog CatalogStore, users UserStore, enrollments EnrollmentStore, progress ProgressSink, notifier Notifier, scoring *ScoringRegistry) (*AttemptService, error) {
	// 策略缺失属于配置缺陷，启动即失败而非等到请求时
	if err := scoring.Validate(); err != nil {
		return nil, err
	}
	return &AttemptService{
		Attempts:    attempts,
		Catalog:     catalog,
		Users:       users,
		Enrollments: enrollments,
		Progress:    progress,
		Notifier:    notifier,
		Scoring:     scoring,
		now:         time.Now,
	}, nil
}

// 学生视角的渲染视图。续答时只回填 answered 与原始作答，绝不带分数。

type OptionView struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

type QuestionView struct {
	ID       uint               `json:"id"`
	Type     model.QuestionType `json:"type"`
	Content  string             `json:"content"`
	Points   int                `json:"points"`
	Options  []OptionView       `json:"options,omitempty"`
	Answered bool               `json:"answered"`
	Answer   json.RawMessage    `json:"answer,omitempty"`
}

type GroupView struct {
	ID        uint           `json:"id"`
	Title     string         `json:"title"`
	Questions []QuestionView `json:"questions"`
}

type SectionView struct {
	ID        uint           `json:"id"`
	Title     string         `json:"title"`
	Groups    []GroupView    `json:"groups,omitempty"`
	Questions []QuestionView `json:"questions,omitempty"`
}

type AttemptView struct {
	AttemptID        uint          `json:"attemptId"`
	QuizID           uint          `json:"quizId"`
	AttemptNumber    int           `json:"attemptNumber"`
	StartedAt        time.Time     `json:"startedAt"`
	RemainingSeconds *int          `json:"remainingSeconds,omitempty"`
	Sections         []SectionView `json:"sections"`
}

// QuestionReview 提交后逐题回顾，仅在 showAnswersAfterSubmit 开启时返回
type QuestionReview struct {
	QuestionID      uint            `json:"questionId"`
	SubmittedAnswer json.RawMessage `json:"submittedAnswer,omitempty"`
	CorrectAnswer   json.RawMessage `json:"correctAnswer,omitempty"`
	Correct         bool            `json:"correct"`
}

type Result struct {
	AttemptID        uint       `json:"attemptId"`
	SubmittedAt      *time.Time `json:"submittedAt"`
	TimeSpentSeconds int        `json:"timeSpentSeconds"`

	// showScoreImmediately 开启时返回
	TotalScore *int         `json:"totalScore,omitempty"`
	Scores     map[uint]int `json:"scores,omitempty"`
	Percentage *float64     `json:"percentage,omitempty"`
	Passed     *bool        `json:"passed,omitempty"`

	// showAnswersAfterSubmit 开启时返回
	Review []QuestionReview `json:"review,omitempty"`
}

// Start 开始一次新尝试。前置校验按序执行，每条失败各有明确的拒绝原因。
func (s *AttemptService) Start(quizID, userID uint) (*AttemptView, error) {
	now := s.now()

	quiz, err := s.Catalog.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	if quiz.IsClosed {
		return nil, util.ErrQuizClosed
	}
	if quiz.AvailableFrom != nil && now.Before(*quiz.AvailableFrom) {
		return nil, util.ErrQuizNotYetAvailable
	}
	// 关联考核的测验带硬截止时间，同时要求选课资格
	if due := quiz.DueDate(); due != nil {
		if now.After(*due) {
			return nil, util.ErrQuizDeadlinePassed
		}
		enrolled, err := s.Enrollments.IsEnrolled(quiz.CourseID, userID)
		if err != nil {
			return nil, err
		}
		if !enrolled {
			return nil, util.ErrNotEnrolled
		}
	}

	if _, err := s.Users.FindByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}

	// 全局并发护栏：同一用户全系统同时只允许一个进行中的尝试。
	// 残留的过期会话就地终结后放行，仍然存活的则拒绝。
	active, err := s.Attempts.FindInProgressByUser(userID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		expired, err := s.ExpireIfPastDeadline(active)
		if err != nil {
			return nil, err
		}
		if !expired {
			return nil, util.ErrActiveAttemptExists
		}
	}

	if quiz.MaxAttempts != nil {
		count, err := s.Attempts.CountFinishedByUserAndQuiz(userID, quizID)
		if err != nil {
			return nil, err
		}
		if count >= int64(*quiz.MaxAttempts) {
			return nil, util.ErrAttemptLimitReached
		}
	}

	maxNumber, err := s.Attempts.MaxAttemptNumber(userID, quizID)
	if err != nil {
		return nil, err
	}

	attempt := &model.QuizAttempt{
		QuizID:        quizID,
		UserID:        userID,
		AttemptNumber: maxNumber + 1,
		Status:        model.AttemptInProgress,
		StartedAt:     now,
		Answers:       model.AnswerMap{},
		Scores:        model.ScoreMap{},
	}
	if err := s.Attempts.Create(attempt); err != nil {
		return nil, err
	}

	return s.buildView(attempt, quiz, false)
}

// Resume 续答：重算同一乱序并回填已作答内容；到期则就地终结并报告
func (s *AttemptService) Resume(attemptID, userID uint) (*AttemptView, error) {
	attempt, err := s.loadOwnAttempt(attemptID, userID)
	if err != nil {
		return nil, err
	}
	if attempt.Status != model.AttemptInProgress {
		return nil, util.ErrAttemptNotActive
	}

	quiz, err := s.Catalog.FindByID(attempt.QuizID)
	if err != nil {
		return nil, err
	}
	if deadline := attempt.Deadline(quiz); deadline != nil && !s.now().Before(*deadline) {
		if _, err := s.expireAttempt(attempt, quiz, *deadline); err != nil {
			return nil, err
		}
		return nil, util.ErrAttemptExpired
	}

	return s.buildView(attempt, quiz, true)
}

// UpdateAnswer 纯覆盖写：无条件用新作答的得分替换旧值，不保留历史最高分。
// 只返回该题得分，不返回总分。
func (s *AttemptService) UpdateAnswer(attemptID, userID, questionID uint, answer json.RawMessage) (int, error) {
	attempt, err := s.loadOwnAttempt(attemptID, userID)
	if err != nil {
		return 0, err
	}
	if attempt.Status != model.AttemptInProgress {
		return 0, util.ErrAttemptNotActive
	}

	question, err := s.Catalog.FindQuestionByID(questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, util.ErrQuestionNotFound
		}
		return 0, err
	}
	if question.QuizID != attempt.QuizID {
		return 0, util.ErrQuestionNotFound
	}

	score, err := s.Scoring.Score(question, answer)
	if err != nil {
		return 0, err
	}

	answers := make(model.AnswerMap, len(attempt.Answers)+1)
	for k, v := range attempt.Answers {
		answers[k] = v
	}
	scores := make(model.ScoreMap, len(attempt.Scores)+1)
	for k, v := range attempt.Scores {
		scores[k] = v
	}
	answers[questionID] = answer
	scores[questionID] = score

	// 总分永远由逐题得分重新求和，不做增量累加
	total := 0
	for _, v := range scores {
		total += v
	}

	ok, err := s.Attempts.UpdateAnswersIfInProgress(attempt.ID, answers, scores, total)
	if err != nil {
		return 0, err
	}
	if !ok {
		// 写入前瞬间被提交或被清扫终结
		return 0, util.ErrAttemptNotActive
	}
	return score, nil
}

// Submit 学生主动提交
func (s *AttemptService) Submit(attemptID, userID uint) (*Result, error) {
	attempt, err := s.loadOwnAttempt(attemptID, userID)
	if err != nil {
		return nil, err
	}
	return s.finalize(attempt, model.AttemptSubmitted, s.now(),
		"Quiz submitted", "Your quiz attempt has been submitted.", model.NotificationQuizSubmitted)
}

// ForceSubmit 教师代为终结。归属校验换成课程教师授权，其余与 Submit 一致。
func (s *AttemptService) ForceSubmit(attemptID, teacherID uint) (*Result, error) {
	attempt, err := s.Attempts.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}

	quiz, err := s.Catalog.FindByID(attempt.QuizID)
	if err != nil {
		return nil, err
	}
	ownerID, err := s.Enrollments.CourseOwnerID(quiz.CourseID)
	if err != nil {
		return nil, err
	}
	if ownerID != teacherID {
		// 与不存在同样回应，不泄露尝试是否存在
		return nil, util.ErrAttemptNotFound
	}

	return s.finalize(attempt, model.AttemptSubmitted, s.now(),
		"Quiz closed by teacher", "Your quiz attempt was submitted by the teacher.", model.NotificationQuizForceClosed)
}

// ExpireIfPastDeadline 若尝试已过截止时间则就地终结，供开始护栏与清扫任务复用。
// 返回是否真正发生了终结。
func (s *AttemptService) ExpireIfPastDeadline(attempt *model.QuizAttempt) (bool, error) {
	quiz, err := s.Catalog.FindByID(attempt.QuizID)
	if err != nil {
		return false, err
	}
	deadline := attempt.Deadline(quiz)
	if deadline == nil || s.now().Before(*deadline) {
		return false, nil
	}
	return s.expireAttempt(attempt, quiz, *deadline)
}

// AttemptSummary 历史尝试概要。分数只在终态且测验允许即时出分时给出。
type AttemptSummary struct {
	AttemptID        uint                `json:"attemptId"`
	AttemptNumber    int                 `json:"attemptNumber"`
	Status           model.AttemptStatus `json:"status"`
	StartedAt        time.Time           `json:"startedAt"`
	SubmittedAt      *time.Time          `json:"submittedAt,omitempty"`
	TimeSpentSeconds int                 `json:"timeSpentSeconds"`
	TotalScore       *int                `json:"totalScore,omitempty"`
}

// ListMine 学生查看自己在某测验下的全部尝试
func (s *AttemptService) ListMine(quizID, userID uint) ([]AttemptSummary, error) {
	quiz, err := s.Catalog.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}

	attempts, err := s.Attempts.ListByUserAndQuiz(userID, quizID)
	if err != nil {
		return nil, err
	}

	summaries := make([]AttemptSummary, 0, len(attempts))
	for i := range attempts {
		a := &attempts[i]
		summary := AttemptSummary{
			AttemptID:        a.ID,
			AttemptNumber:    a.AttemptNumber,
			Status:           a.Status,
			StartedAt:        a.StartedAt,
			SubmittedAt:      a.SubmittedAt,
			TimeSpentSeconds: a.TimeSpentSeconds,
		}
		if a.Status.IsTerminal() && quiz.ShowScoreImmediately {
			total := a.TotalScore
			summary.TotalScore = &total
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// ListSubmitted 教师端分页查看某测验的已提交尝试
func (s *AttemptService) ListSubmitted(quizID, teacherID uint, page, limit int) ([]model.QuizAttempt, int64, error) {
	quiz, err := s.Catalog.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, util.ErrQuizNotFound
		}
		return nil, 0, err
	}
	ownerID, err := s.Enrollments.CourseOwnerID(quiz.CourseID)
	if err != nil {
		return nil, 0, err
	}
	if ownerID != teacherID {
		return nil, 0, util.ErrQuizNotFound
	}
	return s.Attempts.PageSubmittedByQuiz(quizID, page, limit)
}

// loadOwnAttempt 归属与存在合并校验，二者失败同样回 not found
func (s *AttemptService) loadOwnAttempt(attemptID, userID uint) (*model.QuizAttempt, error) {
	attempt, err := s.Attempts.FindByIDAndUser(attemptID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}
	return attempt, nil
}

// finalize 统一的终结路径：条件写终态 -> 模块完成度 -> 尽力通知 -> 构造结果视图
func (s *AttemptService) finalize(attempt *model.QuizAttempt, status model.AttemptStatus, submittedAt time.Time, title, message string, category model.NotificationCategory) (*Result, error) {
	if attempt.Status.IsTerminal() {
		return nil, util.ErrAttemptAlreadyClosed
	}
	if attempt.Status != model.AttemptInProgress {
		return nil, util.ErrAttemptNotActive
	}

	quiz, err := s.Catalog.FindByID(attempt.QuizID)
	if err != nil {
		return nil, err
	}

	timeSpent := int(submittedAt.Sub(attempt.StartedAt).Seconds())
	ok, err := s.Attempts.FinalizeIfInProgress(attempt.ID, status, submittedAt, timeSpent)
	if err != nil {
		return nil, err
	}
	if !ok {
		// 竞争写：另一条路径（清扫或客户端）抢先终结
		return nil, util.ErrAttemptAlreadyClosed
	}

	attempt.Status = status
	attempt.SubmittedAt = &submittedAt
	attempt.TimeSpentSeconds = timeSpent

	// 终态已落库，完成度回写失败不回滚提交，记录后继续
	if err := s.Progress.MarkModuleComplete(attempt.UserID, quiz.ModuleID); err != nil {
		logger.Log.Error("module completion failed",
			zap.Uint("attemptId", attempt.ID),
			zap.Uint("moduleId", quiz.ModuleID),
			zap.Error(err))
	}

	s.Notifier.Notify(attempt.UserID, title, message, category)

	return s.buildResult(attempt, quiz)
}

// expireAttempt 到期终结：submittedAt 取截止时间而非当前时间，
// 因此 timeSpent 恰为配置时长。
func (s *AttemptService) expireAttempt(attempt *model.QuizAttempt, quiz *model.Quiz, deadline time.Time) (bool, error) {
	timeSpent := int(deadline.Sub(attempt.StartedAt).Seconds())
	ok, err := s.Attempts.FinalizeIfInProgress(attempt.ID, model.AttemptTimeExpired, deadline, timeSpent)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	attempt.Status = model.AttemptTimeExpired
	attempt.SubmittedAt = &deadline
	attempt.TimeSpentSeconds = timeSpent

	if err := s.Progress.MarkModuleComplete(attempt.UserID, quiz.ModuleID); err != nil {
		logger.Log.Error("module completion failed",
			zap.Uint("attemptId", attempt.ID),
			zap.Uint("moduleId", quiz.ModuleID),
			zap.Error(err))
	}

	s.Notifier.Notify(attempt.UserID, "Quiz time expired",
		fmt.Sprintf("Time ran out on %q and your attempt was submitted automatically.", quiz.Title),
		model.NotificationQuizTimeExpired)

	return true, nil
}

// buildView 渲染学生视图；overlayAnswers 控制是否回填已有作答（续答场景）
func (s *AttemptService) buildView(attempt *model.QuizAttempt, quiz *model.Quiz, overlayAnswers bool) (*AttemptView, error) {
	sections, err := s.Catalog.FindQuizTree(attempt.QuizID)
	if err != nil {
		return nil, err
	}

	view := &AttemptView{
		AttemptID:     attempt.ID,
		QuizID:        attempt.QuizID,
		AttemptNumber: attempt.AttemptNumber,
		StartedAt:     attempt.StartedAt,
	}
	if deadline := attempt.Deadline(quiz); deadline != nil {
		remaining := int(deadline.Sub(s.now()).Seconds())
		if remaining < 0 {
			remaining = 0
		}
		view.RemainingSeconds = &remaining
	}

	for _, section := range sections {
		sv := SectionView{ID: section.ID, Title: section.Title}

		groups := section.Groups
		if quiz.ShuffleQuestions {
			groups = ShuffleGroups(attempt.ID, section.ID, groups)
		}
		for _, group := range groups {
			gv := GroupView{ID: group.ID, Title: group.Title}
			questions := group.Questions
			if quiz.ShuffleQuestions {
				questions = ShuffleQuestions(attempt.ID, group.ID, questions)
			}
			for i := range questions {
				gv.Questions = append(gv.Questions, s.buildQuestionView(attempt, quiz, &questions[i], overlayAnswers))
			}
			sv.Groups = append(sv.Groups, gv)
		}

		questions := section.Questions
		if quiz.ShuffleQuestions {
			questions = ShuffleQuestions(attempt.ID, section.ID, questions)
		}
		for i := range questions {
			sv.Questions = append(sv.Questions, s.buildQuestionView(attempt, quiz, &questions[i], overlayAnswers))
		}

		view.Sections = append(view.Sections, sv)
	}
	return view, nil
}

func (s *AttemptService) buildQuestionView(attempt *model.QuizAttempt, quiz *model.Quiz, q *model.Question, overlayAnswers bool) QuestionView {
	qv := QuestionView{
		ID:      q.ID,
		Type:    q.Type,
		Content: q.Content,
		Points:  q.Points,
	}

	options := q.Options
	if quiz.ShuffleAnswers {
		options = ShuffleOptions(attempt.ID, q)
	}
	for _, opt := range options {
		qv.Options = append(qv.Options, OptionView{ID: opt.ID, Text: opt.Text})
	}

	if overlayAnswers {
		if raw, ok := attempt.Answers[q.ID]; ok {
			qv.Answered = true
			qv.Answer = raw
		}
	}
	return qv
}

// buildResult 结果视图完全由两个测验开关决定，与状态无关。
// 注意：percentage 是答对题数占比，而 passed 比较的是按分值加权的总分，
// 两者口径不同，这里保留既有行为。
func (s *AttemptService) buildResult(attempt *model.QuizAttempt, quiz *model.Quiz) (*Result, error) {
	result := &Result{
		AttemptID:        attempt.ID,
		SubmittedAt:      attempt.SubmittedAt,
		TimeSpentSeconds: attempt.TimeSpentSeconds,
	}

	if quiz.ShowScoreImmediately {
		total := attempt.TotalScore
		result.TotalScore = &total

		scores := make(map[uint]int, len(attempt.Scores))
		correct := 0
		for id, score := range attempt.Scores {
			scores[id] = score
			if score > 0 {
				correct++
			}
		}
		result.Scores = scores

		percentage := 0.0
		if quiz.QuestionCount > 0 {
			percentage = float64(correct) / float64(quiz.QuestionCount) * 100
		}
		result.Percentage = &percentage

		passed := quiz.PassingScore != nil && total >= *quiz.PassingScore
		result.Passed = &passed
	}

	if quiz.ShowAnswersAfterSubmit {
		sections, err := s.Catalog.FindQuizTree(attempt.QuizID)
		if err != nil {
			return nil, err
		}
		for _, section := range sections {
			for _, group := range section.Groups {
				for i := range group.Questions {
					result.Review = append(result.Review, buildReview(attempt, &group.Questions[i]))
				}
			}
			for i := range section.Questions {
				result.Review = append(result.Review, buildReview(attempt, &section.Questions[i]))
			}
		}
	}

	return result, nil
}

func buildReview(attempt *model.QuizAttempt, q *model.Question) QuestionReview {
	review := QuestionReview{
		QuestionID: q.ID,
		Correct:    attempt.Scores[q.ID] > 0,
	}
	if raw, ok := attempt.Answers[q.ID]; ok {
		review.SubmittedAnswer = raw
	}
	review.CorrectAnswer = correctAnswerPayload(q)
	return review
}

// correctAnswerPayload 选择类题目从选项推导正确答案，结构化题目透传存储载荷
func correctAnswerPayload(q *model.Question) json.RawMessage {
	switch q.Type {
	case model.SingleChoice, model.MultiChoice, model.TrueFalse:
		var ids []uint
		for _, opt := range q.Options {
			if opt.IsCorrect {
				ids = append(ids, opt.ID)
			}
		}
		payload, _ := json.Marshal(map[string][]uint{"correctOptionIds": ids})
		return payload
	default:
		return q.CorrectAnswer
	}
}

package service

import (
	"errors"
	"sort"
	"sync"
	"time"

	"edu_quiz_backend/internal/model"

	"gorm.io/gorm"
)

// 内存假实现，行为对齐 gorm 仓库：未命中返回 gorm.ErrRecordNotFound，
// 条件写只在状态仍为进行中时生效。

type memAttemptStore struct {
	mu       sync.Mutex
	nextID   uint
	attempts map[uint]*model.QuizAttempt

	failFinalize bool
}

func newMemAttemptStore() *memAttemptStore {
	return &memAttemptStore{attempts: make(map[uint]*model.QuizAttempt)}
}

func (s *memAttemptStore) Create(attempt *model.QuizAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	attempt.ID = s.nextID
	clone := *attempt
	s.attempts[attempt.ID] = &clone
	return nil
}

func (s *memAttemptStore) FindByID(id uint) (*model.QuizAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attempts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *a
	return &clone, nil
}

func (s *memAttemptStore) FindByIDAndUser(id, userID uint) (*model.QuizAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attempts[id]
	if !ok || a.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *a
	return &clone, nil
}

func (s *memAttemptStore) ListByUserAndQuiz(userID, quizID uint) ([]model.QuizAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var attempts []model.QuizAttempt
	for _, a := range s.attempts {
		if a.UserID == userID && a.QuizID == quizID {
			attempts = append(attempts, *a)
		}
	}
	sort.Slice(attempts, func(i, j int) bool { return attempts[i].AttemptNumber < attempts[j].AttemptNumber })
	return attempts, nil
}

func (s *memAttemptStore) CountFinishedByUserAndQuiz(userID, quizID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, a := range s.attempts {
		if a.UserID == userID && a.QuizID == quizID && a.Status.IsTerminal() {
			count++
		}
	}
	return count, nil
}

func (s *memAttemptStore) MaxAttemptNumber(userID, quizID uint) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	max := 0
	for _, a := range s.attempts {
		if a.UserID == userID && a.QuizID == quizID && a.AttemptNumber > max {
			max = a.AttemptNumber
		}
	}
	return max, nil
}

func (s *memAttemptStore) FindInProgressByUser(userID uint) (*model.QuizAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.attempts {
		if a.UserID == userID && a.Status == model.AttemptInProgress {
			clone := *a
			return &clone, nil
		}
	}
	return nil, nil
}

func (s *memAttemptStore) PageInProgress(offset, limit int) ([]model.QuizAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []uint
	for id, a := range s.attempts {
		if a.Status == model.AttemptInProgress {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if offset >= len(ids) {
		return nil, nil
	}
	end := offset + limit
	if end > len(ids) {
		end = len(ids)
	}
	var page []model.QuizAttempt
	for _, id := range ids[offset:end] {
		page = append(page, *s.attempts[id])
	}
	return page, nil
}

func (s *memAttemptStore) PageSubmittedByQuiz(quizID uint, page, limit int) ([]model.QuizAttempt, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []model.QuizAttempt
	for _, a := range s.attempts {
		if a.QuizID == quizID && a.Status.IsTerminal() {
			all = append(all, *a)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := int64(len(all))
	start := (page - 1) * limit
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (s *memAttemptStore) FinalizeIfInProgress(attemptID uint, status model.AttemptStatus, submittedAt time.Time, timeSpentSeconds int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFinalize {
		return false, errors.New("storage write failed")
	}
	a, ok := s.attempts[attemptID]
	if !ok || a.Status != model.AttemptInProgress {
		return false, nil
	}
	a.Status = status
	at := submittedAt
	a.SubmittedAt = &at
	a.TimeSpentSeconds = timeSpentSeconds
	return true, nil
}

func (s *memAttemptStore) UpdateAnswersIfInProgress(attemptID uint, answers model.AnswerMap, scores model.ScoreMap, totalScore int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attempts[attemptID]
	if !ok || a.Status != model.AttemptInProgress {
		return false, nil
	}
	a.Answers = answers
	a.Scores = scores
	a.TotalScore = totalScore
	return true, nil
}

type memCatalog struct {
	quizzes   map[uint]*model.Quiz
	trees     map[uint][]model.QuizSection
	questions map[uint]*model.Question
}

func newMemCatalog() *memCatalog {
	return &memCatalog{
		quizzes:   make(map[uint]*model.Quiz),
		trees:     make(map[uint][]model.QuizSection),
		questions: make(map[uint]*model.Question),
	}
}

func (c *memCatalog) FindByID(id uint) (*model.Quiz, error) {
	q, ok := c.quizzes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return q, nil
}

func (c *memCatalog) FindQuizTree(quizID uint) ([]model.QuizSection, error) {
	return c.trees[quizID], nil
}

func (c *memCatalog) FindQuestionByID(id uint) (*model.Question, error) {
	q, ok := c.questions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return q, nil
}

type memUsers struct {
	users map[uint]*model.User
}

func (s *memUsers) FindByID(id uint) (*model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

type memEnrollments struct {
	enrolled map[[2]uint]bool // (courseID, userID)
	owners   map[uint]uint    // courseID -> teacherID
}

func (s *memEnrollments) IsEnrolled(courseID, userID uint) (bool, error) {
	return s.enrolled[[2]uint{courseID, userID}], nil
}

func (s *memEnrollments) CourseOwnerID(courseID uint) (uint, error) {
	owner, ok := s.owners[courseID]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	return owner, nil
}

type memProgress struct {
	completed map[[2]uint]int // (userID, moduleID) -> 次数
	fail      bool
}

func newMemProgress() *memProgress {
	return &memProgress{completed: make(map[[2]uint]int)}
}

func (s *memProgress) MarkModuleComplete(userID, moduleID uint) error {
	if s.fail {
		return errors.New("progress write failed")
	}
	s.completed[[2]uint{userID, moduleID}]++
	return nil
}

type sentNotification struct {
	userID   uint
	category model.NotificationCategory
}

type memNotifier struct {
	sent []sentNotification
}

func (s *memNotifier) Notify(userID uint, title, message string, category model.NotificationCategory) {
	s.sent = append(s.sent, sentNotification{userID: userID, category: category})
}

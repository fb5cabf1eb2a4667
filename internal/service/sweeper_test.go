package service

import (
	"context"
	"testing"
	"time"

	"edu_quiz_backend/internal/config"
	"edu_quiz_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSweeper(f *fixture, batchSize int) *ExpirationSweeper {
	return NewExpirationSweeper(f.attempts, f.svc, config.SweeperConfig{
		IntervalSeconds: 60,
		BatchSize:       batchSize,
	})
}

func startAttemptAt(t *testing.T, f *fixture, userID uint, at time.Time) uint {
	t.Helper()
	f.now = at
	view, err := f.svc.Start(testQuizID, userID)
	require.NoError(t, err)
	return view.AttemptID
}

func enrollStudent(f *fixture, userID uint) {
	f.svc.Users.(*memUsers).users[userID] = &model.User{
		BaseModel: model.BaseModel{ID: userID},
		Role:      model.Student,
	}
	f.svc.Enrollments.(*memEnrollments).enrolled[[2]uint{testCourseID, userID}] = true
}

func TestSweepExpiresOverdueAttempts(t *testing.T) {
	f := newFixture(t)
	started := f.now
	id := startAttemptAt(t, f, testStudentID, started)

	// 30 分钟时长的测验在 T+45 被扫到
	f.now = started.Add(45 * time.Minute)
	require.NoError(t, newTestSweeper(f, 200).RunOnce(context.Background()))

	stored, err := f.attempts.FindByID(id)
	require.NoError(t, err)
	assert.Equal(t, model.AttemptTimeExpired, stored.Status)
	require.NotNil(t, stored.SubmittedAt)
	// submittedAt 与用时都按截止时间计，不按清扫发现时间
	assert.True(t, stored.SubmittedAt.Equal(started.Add(30*time.Minute)))
	assert.Equal(t, 30*60, stored.TimeSpentSeconds)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, model.NotificationQuizTimeExpired, f.notifier.sent[0].category)
}

func TestSweepLeavesLiveAttemptsAlone(t *testing.T) {
	f := newFixture(t)
	started := f.now
	id := startAttemptAt(t, f, testStudentID, started)

	f.now = started.Add(10 * time.Minute)
	require.NoError(t, newTestSweeper(f, 200).RunOnce(context.Background()))

	stored, err := f.attempts.FindByID(id)
	require.NoError(t, err)
	assert.Equal(t, model.AttemptInProgress, stored.Status)
	assert.Empty(t, f.notifier.sent)
}

func TestSweepRerunIsNoop(t *testing.T) {
	f := newFixture(t)
	started := f.now
	startAttemptAt(t, f, testStudentID, started)

	f.now = started.Add(time.Hour)
	sweeper := newTestSweeper(f, 200)
	require.NoError(t, sweeper.RunOnce(context.Background()))
	require.NoError(t, sweeper.RunOnce(context.Background()))

	assert.Len(t, f.notifier.sent, 1)
}

// 小批次分页也要扫完全部过期尝试
func TestSweepPaginatesInSmallBatches(t *testing.T) {
	f := newFixture(t)
	started := f.now

	users := []uint{testStudentID, 31, 32, 33, 34}
	for _, u := range users[1:] {
		enrollStudent(f, u)
	}
	var ids []uint
	for _, u := range users {
		ids = append(ids, startAttemptAt(t, f, u, started))
	}

	f.now = started.Add(time.Hour)
	require.NoError(t, newTestSweeper(f, 2).RunOnce(context.Background()))

	for _, id := range ids {
		stored, err := f.attempts.FindByID(id)
		require.NoError(t, err)
		assert.Equal(t, model.AttemptTimeExpired, stored.Status)
	}
}

// 单条失败只跳过，不中断整轮
func TestSweepIsolatesPerAttemptFailures(t *testing.T) {
	f := newFixture(t)
	started := f.now

	enrollStudent(f, 31)
	startAttemptAt(t, f, testStudentID, started)
	startAttemptAt(t, f, 31, started)

	f.now = started.Add(time.Hour)
	f.attempts.failFinalize = true
	require.NoError(t, newTestSweeper(f, 200).RunOnce(context.Background()))
	assert.Empty(t, f.notifier.sent)

	// 故障恢复后下一轮补扫成功
	f.attempts.failFinalize = false
	require.NoError(t, newTestSweeper(f, 200).RunOnce(context.Background()))
	assert.Len(t, f.notifier.sent, 2)
}

func TestSweepHonorsContextCancellation(t *testing.T) {
	f := newFixture(t)
	startAttemptAt(t, f, testStudentID, f.now)
	f.now = f.now.Add(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, newTestSweeper(f, 200).RunOnce(ctx))
}

func TestSweepStartStop(t *testing.T) {
	f := newFixture(t)
	sweeper := NewExpirationSweeper(f.attempts, f.svc, config.SweeperConfig{
		IntervalSeconds: 3600,
		BatchSize:       10,
	})

	sweeper.Start()
	sweeper.Start() // 幂等
	sweeper.Stop()
	sweeper.Stop() // 已停止时安全
}

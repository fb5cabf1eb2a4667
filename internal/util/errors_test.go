package util

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorKind
	}{
		{ErrQuizNotFound, KindNotFound},
		{ErrAttemptNotFound, KindNotFound},
		{ErrAttemptNotActive, KindIllegalState},
		{ErrAttemptAlreadyClosed, KindIllegalState},
		{ErrQuizClosed, KindIneligible},
		{ErrAttemptLimitReached, KindIneligible},
		{ErrNotEnrolled, KindIneligible},
		{ErrAttemptExpired, KindIneligible},
		{ErrActiveAttemptExists, KindConflict},
		{ErrNoScoringStrategy, KindConfiguration},
		{errors.New("connection refused"), KindInfrastructure},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, KindOf(tt.err), tt.err.Error())
	}
}

// 包装后的错误仍能归类
func TestKindOfWrapped(t *testing.T) {
	wrapped := fmt.Errorf("starting attempt: %w", ErrQuizClosed)
	assert.Equal(t, KindIneligible, KindOf(wrapped))
}

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestSaga_CompensatesCompletedStepsInReverse(t *testing.T) {
	var log []string
	step := func(name string, fail bool) sagaStep {
		return sagaStep{
			name: name,
			run: func(context.Context) error {
				log = append(log, "run "+name)
				if fail {
					return errors.New("boom")
				}
				return nil
			},
			compensate: func(context.Context) error {
				log = append(log, "undo "+name)
				return nil
			},
		}
	}

	s := newSaga("test", zap.NewNop(), step("a", false), step("b", false), step("c", true), step("d", false))
	err := s.Run(context.Background())

	assert.EqualError(t, err, "c: boom")
	assert.Equal(t, []string{"run a", "run b", "run c", "undo b", "undo a"}, log)
}

func TestSaga_CompensationErrorsDoNotStopRollback(t *testing.T) {
	undone := false
	s := newSaga("test", zap.NewNop(),
		sagaStep{
			name:       "first",
			run:        func(context.Context) error { return nil },
			compensate: func(context.Context) error { undone = true; return nil },
		},
		sagaStep{
			name:       "second",
			run:        func(context.Context) error { return nil },
			compensate: func(context.Context) error { return errors.New("undo failed") },
		},
		sagaStep{
			name: "third",
			run:  func(context.Context) error { return errors.New("boom") },
		},
	)

	assert.Error(t, s.Run(context.Background()))
	assert.True(t, undone)
}

func TestSaga_AllStepsSucceed(t *testing.T) {
	calls := 0
	s := newSaga("test", zap.NewNop(), sagaStep{
		name:       "only",
		run:        func(context.Context) error { calls++; return nil },
		compensate: func(context.Context) error { t.Fatal("compensated a successful saga"); return nil },
	})

	assert.NoError(t, s.Run(context.Background()))
	assert.Equal(t, 1, calls)
}

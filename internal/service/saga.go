package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// sagaStep is one forward action of a multi-entity write and the action that undoes it
type sagaStep struct {
	name       string
	run        func(ctx context.Context) error
	compensate func(ctx context.Context) error
}

// saga runs steps in order. When a step fails, the completed steps are
// compensated in reverse order and the step's error is returned.
type saga struct {
	name   string
	steps  []sagaStep
	logger *zap.Logger
}

func newSaga(name string, logger *zap.Logger, steps ...sagaStep) *saga {
	return &saga{name: name, steps: steps, logger: logger}
}

func (s *saga) Run(ctx context.Context) error {
	for i, step := range s.steps {
		if err := step.run(ctx); err != nil {
			s.rollback(ctx, i-1)
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}
	return nil
}

func (s *saga) rollback(ctx context.Context, from int) {
	for i := from; i >= 0; i-- {
		step := s.steps[i]
		if step.compensate == nil {
			continue
		}
		if err := step.compensate(ctx); err != nil {
			s.logger.Warn("Saga compensation failed",
				zap.String("saga", s.name),
				zap.String("step", step.name),
				zap.Error(err))
		}
	}
}

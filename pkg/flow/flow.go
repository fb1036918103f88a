package flow

import (
	"context"
	"fmt"

	"mediops/pkg/logger"
)

// Step is one unit of a flow. Execute performs the work; Compensate, when
// set, undoes it if a later step fails. Compensations run in reverse order
// of the executed steps.
type Step struct {
	Name       string
	Execute    func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

func NewStep(name string, execute func(ctx context.Context) error) *Step {
	return &Step{
		Name:    name,
		Execute: execute,
	}
}

func (s *Step) WithCompensation(compensate func(ctx context.Context) error) *Step {
	s.Compensate = compensate
	return s
}

// Engine runs a sequence of steps with compensation on failure.
type Engine struct {
	log *logger.Logger
}

func NewEngine(log *logger.Logger) *Engine {
	return &Engine{log: log}
}

// Run executes steps in order. On failure it compensates the already
// completed steps in reverse order and returns the original error.
// Compensation failures are logged, never retried; the first error wins.
func (e *Engine) Run(ctx context.Context, name string, steps []*Step) error {
	completed := make([]*Step, 0, len(steps))

	for _, step := range steps {
		if err := step.Execute(ctx); err != nil {
			e.compensate(ctx, name, completed)
			return fmt.Errorf("%s step failed: %w", step.Name, err)
		}
		completed = append(completed, step)
	}

	return nil
}

func (e *Engine) compensate(ctx context.Context, flowName string, completed []*Step) {
	for i := len(completed) - 1; i >= 0; i-- {
		step := completed[i]
		if step.Compensate == nil {
			continue
		}

		if err := step.Compensate(ctx); err != nil {
			e.log.Error("Compensation failed",
				"flow", flowName,
				"step", step.Name,
				"error", err,
			)
		} else {
			e.log.Info("Compensated step",
				"flow", flowName,
				"step", step.Name,
			)
		}
	}
}

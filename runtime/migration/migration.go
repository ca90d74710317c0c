// Package migration runs schema migrations between the install and
// enable phases of bootstrap, so plugin tables exist before any
// handler can touch them.
package migration

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Strategy is one pluggable migration step.
type Strategy interface {
	Name() string
	Migrate(ctx context.Context) error
}

// EntStrategy adapts the generated ent client's migration function.
type EntStrategy struct {
	migrateFn func(context.Context) error
}

func NewEntStrategy(migrateFn func(context.Context) error) *EntStrategy {
	return &EntStrategy{migrateFn: migrateFn}
}

func (s *EntStrategy) Name() string { return "ent" }

func (s *EntStrategy) Migrate(ctx context.Context) error {
	if s == nil || s.migrateFn == nil {
		return nil
	}
	return s.migrateFn(ctx)
}

// Runner executes strategies in order, stopping at the first failure.
type Runner struct {
	strategies []Strategy
	logger     *zap.Logger
}

func NewRunner(logger *zap.Logger, strategies ...Strategy) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{strategies: strategies, logger: logger}
}

// Run applies every strategy. A failed step aborts the rest; earlier
// steps are not rolled back, each strategy must be idempotent.
func (r *Runner) Run(ctx context.Context) error {
	if r == nil {
		return nil
	}
	for _, s := range r.strategies {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.logger.Info("running migration", zap.String("strategy", s.Name()))
		if err := s.Migrate(ctx); err != nil {
			return fmt.Errorf("migration %q failed: %w", s.Name(), err)
		}
	}
	return nil
}

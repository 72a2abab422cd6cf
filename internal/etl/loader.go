package etl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vvka-141/dwhetl/internal/db"
	"github.com/vvka-141/dwhetl/pkg/dwh"
)

// stepRunner executes steps one at a time outside any transaction, so each
// statement commits on its own.
type stepRunner struct {
	conn   dwh.DBConnection
	logger dwh.Logger
	now    func() time.Time
}

func newStepRunner(conn dwh.DBConnection, logger dwh.Logger) stepRunner {
	if conn == nil {
		panic("conn cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return stepRunner{conn: conn, logger: logger, now: time.Now}
}

// run executes steps in order and stops at the first failure. Results of the
// steps that completed are returned alongside the error.
func (r stepRunner) run(ctx context.Context, steps []Step) ([]dwh.StepResult, error) {
	results := make([]dwh.StepResult, 0, len(steps))
	for _, step := range steps {
		r.logger.Info("Running %s", step.Name)
		r.logger.Verbose("%s", step.SQL)

		start := r.now()
		tag, err := r.conn.Exec(ctx, step.SQL)
		elapsed := r.now().Sub(start)
		if err != nil {
			return results, stepError(step, err)
		}

		r.logger.Info("=== DONE IN: %.2f sec", elapsed.Seconds())
		results = append(results, dwh.StepResult{
			Name:         step.Name,
			Table:        step.Table,
			RowsAffected: tag.RowsAffected(),
			Duration:     elapsed,
		})
	}
	return results, nil
}

func stepError(step Step, err error) error {
	err = db.ClassifyError(err)
	if !errors.Is(err, dwh.ErrExecutionFailed) {
		err = fmt.Errorf("%w: %w", dwh.ErrExecutionFailed, err)
	}
	return fmt.Errorf("step %q (%s) failed: %w", step.Name, step.Table, err)
}

// BulkLoader copies the S3 sources into the staging tables.
type BulkLoader struct {
	runner stepRunner
}

// NewBulkLoader creates a BulkLoader. Panics if conn or logger is nil.
func NewBulkLoader(conn dwh.DBConnection, logger dwh.Logger) *BulkLoader {
	return &BulkLoader{runner: newStepRunner(conn, logger)}
}

// Load runs the staging steps of plan. Every COPY is committed before the next
// begins; a failure aborts the remaining steps.
func (l *BulkLoader) Load(ctx context.Context, plan *Plan) ([]dwh.StepResult, error) {
	return l.runner.run(ctx, plan.StepsIn(PhaseStaging))
}

// TransformLoader fills the analytics tables from the staging tables.
type TransformLoader struct {
	runner stepRunner
}

// NewTransformLoader creates a TransformLoader. Panics if conn or logger is nil.
func NewTransformLoader(conn dwh.DBConnection, logger dwh.Logger) *TransformLoader {
	return &TransformLoader{runner: newStepRunner(conn, logger)}
}

// Load runs the transform steps of plan in order. If step N fails, steps
// before it stay committed and steps after it never run.
func (l *TransformLoader) Load(ctx context.Context, plan *Plan) ([]dwh.StepResult, error) {
	return l.runner.run(ctx, plan.StepsIn(PhaseTransform))
}

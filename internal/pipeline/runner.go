// Package pipeline orchestrates the curation lifecycle stages.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Stage is one lifecycle step with a name for logs and results.
type Stage struct {
	Name string
	Run  func(ctx context.Context) error
}

// StageResult records one stage's outcome.
type StageResult struct {
	Name     string
	Duration time.Duration
	Err      error
}

// Runner executes stages strictly in order. A stage failure is captured and
// the next stage still runs: each stage recovers from its own persisted
// state, so one bad pass must not block the rest of the lifecycle.
type Runner struct {
	stages []Stage
}

// NewRunner creates a runner over the given stages.
func NewRunner(stages ...Stage) *Runner {
	return &Runner{stages: stages}
}

// Run executes every stage and returns one result per stage, in order.
// Context cancellation stops the sequence; remaining stages are not started.
func (r *Runner) Run(ctx context.Context) []StageResult {
	runID := uuid.NewString()
	results := make([]StageResult, 0, len(r.stages))

	for _, stage := range r.stages {
		if ctx.Err() != nil {
			zap.L().Warn("pipeline interrupted",
				zap.String("run_id", runID),
				zap.String("stage", stage.Name),
			)
			break
		}

		log := zap.L().With(zap.String("run_id", runID), zap.String("stage", stage.Name))
		log.Info("stage starting")

		start := time.Now()
		err := stage.Run(ctx)
		duration := time.Since(start)

		if err != nil {
			log.Error("stage failed", zap.Duration("duration", duration), zap.Error(err))
		} else {
			log.Info("stage complete", zap.Duration("duration", duration))
		}

		results = append(results, StageResult{Name: stage.Name, Duration: duration, Err: err})
	}

	return results
}

// Failed reports whether any captured result carries an error.
func Failed(results []StageResult) bool {
	for _, r := range results {
		if r.Err != nil {
			return true
		}
	}
	return false
}

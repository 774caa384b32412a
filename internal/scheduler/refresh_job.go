package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/brvalue/fleuriet/internal/modules/analysis"
)

// refreshTimeout bounds a full scheduled analysis pass. A run covers
// every registered company plus paced market data fetches, so this is
// deliberately generous.
const refreshTimeout = 2 * time.Hour

// AnalysisRunner runs a full analysis pass over the registered universe.
type AnalysisRunner interface {
	Run(ctx context.Context) (*analysis.Result, error)
}

// RefreshJob triggers a scheduled full analysis run.
type RefreshJob struct {
	runner AnalysisRunner
	log    zerolog.Logger
}

// NewRefreshJob creates a refresh job wrapping the analysis service.
func NewRefreshJob(runner AnalysisRunner, log zerolog.Logger) *RefreshJob {
	return &RefreshJob{
		runner: runner,
		log:    log.With().Str("job", "analysis_refresh").Logger(),
	}
}

// Name returns the job identifier used in scheduler logs
func (j *RefreshJob) Name() string {
	return "analysis_refresh"
}

// Run executes one full analysis pass
func (j *RefreshJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	result, err := j.runner.Run(ctx)
	if err != nil {
		return err
	}

	j.log.Info().
		Str("run_id", result.RunID).
		Str("status", result.Status).
		Int("companies", len(result.Companies)).
		Int("failures", len(result.Failures)).
		Msg("Scheduled analysis run finished")

	return nil
}

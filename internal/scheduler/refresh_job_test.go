package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brvalue/fleuriet/internal/modules/analysis"
)

type stubRunner struct {
	result *analysis.Result
	err    error
	calls  int
}

func (s *stubRunner) Run(ctx context.Context) (*analysis.Result, error) {
	s.calls++
	return s.result, s.err
}

func TestRefreshJobRunsAnalysis(t *testing.T) {
	runner := &stubRunner{result: &analysis.Result{
		RunID:  "run-1",
		Status: analysis.StatusCompleted,
	}}
	job := NewRefreshJob(runner, zerolog.Nop())

	require.NoError(t, job.Run())
	assert.Equal(t, 1, runner.calls)
	assert.Equal(t, "analysis_refresh", job.Name())
}

func TestRefreshJobPropagatesError(t *testing.T) {
	runner := &stubRunner{err: errors.New("universe unavailable")}
	job := NewRefreshJob(runner, zerolog.Nop())

	err := job.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "universe unavailable")
}

func TestSchedulerRunNow(t *testing.T) {
	runner := &stubRunner{result: &analysis.Result{Status: analysis.StatusEmpty}}
	sched := New(zerolog.Nop())

	require.NoError(t, sched.RunNow(NewRefreshJob(runner, zerolog.Nop())))
	assert.Equal(t, 1, runner.calls)
}

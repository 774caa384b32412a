package scheduler

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namedJob struct {
	name  string
	err   error
	calls int
}

func (j *namedJob) Run() error {
	j.calls++
	return j.err
}

func (j *namedJob) Name() string { return j.name }

func TestAddJobRejectsBadSchedule(t *testing.T) {
	sched := New(zerolog.Nop())
	err := sched.AddJob("not a schedule", &namedJob{name: "refresh"})
	require.Error(t, err)
}

func TestAddJobAcceptsDescriptorAndSecondsSyntax(t *testing.T) {
	sched := New(zerolog.Nop())
	assert.NoError(t, sched.AddJob("@daily", &namedJob{name: "daily"}))
	assert.NoError(t, sched.AddJob("0 0 6 * * MON-FRI", &namedJob{name: "weekday"}))
}

func TestRunJobSwallowsJobError(t *testing.T) {
	sched := New(zerolog.Nop())
	job := &namedJob{name: "flaky", err: errors.New("boom")}

	// A failing job is logged, not propagated, so one bad run cannot
	// take the dispatcher down.
	sched.runJob(job)
	assert.Equal(t, 1, job.calls)
}

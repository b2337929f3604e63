package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJobStatus(t *testing.T) {
	tests := []struct {
		in   string
		want JobStatus
	}{
		{"pending", JobPending},
		{"in progress", JobInProgress},
		{"InProgress", JobInProgress},
		{"started", JobInProgress},
		{"done", JobDone},
		{"Completed", JobDone},
		{"delivered", JobDone},
		{"", JobPending},
		{"whatever", JobPending},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseJobStatus(tt.in), "input %q", tt.in)
	}
}

func TestServiceJobLifecycle(t *testing.T) {
	ctx := context.Background()
	jobs := NewServiceJobService(newTestStore(t), NewIDGenerator(), testLogger)

	job, err := jobs.Create(ctx, "Rahul", "Laptop", "no display", "Amit", "", dec("500"))
	require.NoError(t, err)
	assert.Equal(t, JobPending, job.Status)

	require.NoError(t, jobs.UpdateStatus(ctx, job.ID, JobInProgress))
	require.NoError(t, jobs.UpdateCost(ctx, job.ID, dec("750")))

	got, err := jobs.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, JobInProgress, got.Status)
	assert.True(t, got.Cost.Equal(dec("750")))
	assert.Equal(t, "Laptop", got.Device)
}

func TestServiceJobNotFound(t *testing.T) {
	ctx := context.Background()
	jobs := NewServiceJobService(newTestStore(t), NewIDGenerator(), testLogger)

	_, err := jobs.Get(ctx, "JOB-missing")
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, jobs.UpdateStatus(ctx, "JOB-missing", JobDone), ErrNotFound)
	require.ErrorIs(t, jobs.UpdateCost(ctx, "JOB-missing", dec("1")), ErrNotFound)
}

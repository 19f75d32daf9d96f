package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcilerRunOnceUsesCutoff(t *testing.T) {
	sweeper := &fakeSweeper{n: 3}
	r := NewReconciler(sweeper, nil, 6*time.Hour, nil)

	now := time.Date(2025, 1, 2, 12, 0, 0, 0, time.UTC)
	n, err := r.RunOnce(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, now.Add(-6*time.Hour), sweeper.cutoff)
}

func TestReconcilerRunOncePropagatesError(t *testing.T) {
	r := NewReconciler(&fakeSweeper{err: errors.New("locked")}, nil, time.Hour, nil)
	_, err := r.RunOnce(context.Background(), time.Now())
	assert.Error(t, err)
}

type recordingScheduler struct {
	started bool
	stopped bool
}

func (s *recordingScheduler) Start(_ context.Context, job func(time.Time)) error {
	s.started = true
	job(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	return nil
}

func (s *recordingScheduler) Stop(context.Context) error {
	s.stopped = true
	return nil
}

func TestReconcilerStartDrivesSweep(t *testing.T) {
	sweeper := &fakeSweeper{}
	driver := &recordingScheduler{}
	r := NewReconciler(sweeper, driver, time.Hour, nil)

	require.NoError(t, r.Start(context.Background()))
	require.NoError(t, r.Stop(context.Background()))

	assert.True(t, driver.started)
	assert.True(t, driver.stopped)
	assert.Equal(t, time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC), sweeper.cutoff)
}

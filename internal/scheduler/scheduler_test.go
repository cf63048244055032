package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/mandi/internal/config"
	"github.com/mamadbah2/mandi/internal/domain/models"
	"github.com/mamadbah2/mandi/internal/service/pricing"
)

type countingJobs struct {
	refreshes  int
	snapshots  []time.Time
	broadcasts int
	err        error
}

func (j *countingJobs) Refresh(ctx context.Context) (pricing.RefreshResult, error) {
	j.refreshes++
	_, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return pricing.RefreshResult{}, errors.New("job context without deadline")
	}
	return pricing.RefreshResult{Updated: 1}, j.err
}

func (j *countingJobs) PublishDailySnapshot(_ context.Context, now time.Time) (models.DailySnapshot, error) {
	j.snapshots = append(j.snapshots, now)
	return models.DailySnapshot{}, j.err
}

func (j *countingJobs) BroadcastAlerts(context.Context) (int, error) {
	j.broadcasts++
	return 0, j.err
}

func testConfig() config.SchedulerConfig {
	return config.SchedulerConfig{
		PriceRefreshCron: "0 6 * * *",
		SnapshotCron:     "0 20 * * *",
		AlertCron:        "0 8 * * *",
		Timezone:         "Asia/Kolkata",
	}
}

func TestStartRegistersJobs(t *testing.T) {
	jobs := &countingJobs{}
	s, err := NewScheduler(testConfig(), Jobs{Pricing: jobs, Reporting: jobs, Alerts: jobs}, nil)
	require.NoError(t, err)

	require.NoError(t, s.Start())
	defer s.Stop()
	assert.Len(t, s.cron.Entries(), 3)
}

func TestStartSkipsAlertsWithoutBroadcaster(t *testing.T) {
	jobs := &countingJobs{}
	s, err := NewScheduler(testConfig(), Jobs{Pricing: jobs, Reporting: jobs}, nil)
	require.NoError(t, err)

	require.NoError(t, s.Start())
	defer s.Stop()
	assert.Len(t, s.cron.Entries(), 2)
}

func TestStartRejectsBadSpec(t *testing.T) {
	cfg := testConfig()
	cfg.SnapshotCron = "every evening"
	jobs := &countingJobs{}
	s, err := NewScheduler(cfg, Jobs{Pricing: jobs, Reporting: jobs}, nil)
	require.NoError(t, err)

	assert.ErrorContains(t, s.Start(), "schedule daily snapshot")
}

func TestNewSchedulerRejectsUnknownTimezone(t *testing.T) {
	cfg := testConfig()
	cfg.Timezone = "Nowhere/City"

	_, err := NewScheduler(cfg, Jobs{}, nil)
	assert.Error(t, err)
}

func TestJobsRunAndSwallowErrors(t *testing.T) {
	jobs := &countingJobs{err: errors.New("sink down")}
	s, err := NewScheduler(testConfig(), Jobs{Pricing: jobs, Reporting: jobs, Alerts: jobs}, nil)
	require.NoError(t, err)
	fixed := time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	s.refreshPrices()
	s.publishSnapshot()
	s.broadcastAlerts()

	assert.Equal(t, 1, jobs.refreshes)
	assert.Equal(t, []time.Time{fixed}, jobs.snapshots)
	assert.Equal(t, 1, jobs.broadcasts)
}

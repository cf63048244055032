package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/mandi/internal/config"
	"github.com/mamadbah2/mandi/internal/domain/models"
	"github.com/mamadbah2/mandi/internal/service/pricing"
	"github.com/mamadbah2/mandi/internal/service/whatsapp"
)

const jobTimeout = 2 * time.Minute

// PriceRefresher advances the current prices.
type PriceRefresher interface {
	Refresh(ctx context.Context) (pricing.RefreshResult, error)
}

// SnapshotPublisher archives the daily market picture.
type SnapshotPublisher interface {
	PublishDailySnapshot(ctx context.Context, now time.Time) (models.DailySnapshot, error)
}

// AlertBroadcaster pushes recommendation alerts to farmers.
type AlertBroadcaster interface {
	BroadcastAlerts(ctx context.Context) (int, error)
}

// Jobs groups the services the scheduler drives. Alerts may be nil.
type Jobs struct {
	Pricing   PriceRefresher
	Reporting SnapshotPublisher
	Alerts    AlertBroadcaster
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron   *cron.Cron
	cfg    config.SchedulerConfig
	jobs   Jobs
	now    func() time.Time
	logger *zap.Logger
}

// NewScheduler creates a new scheduler instance running in the configured timezone.
func NewScheduler(cfg config.SchedulerConfig, jobs Jobs, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		cfg:    cfg,
		jobs:   jobs,
		now:    func() time.Time { return time.Now().In(loc) },
		logger: logger,
	}, nil
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler")

	entries := []struct {
		name string
		spec string
		run  func()
	}{
		{"price refresh", s.cfg.PriceRefreshCron, s.refreshPrices},
		{"daily snapshot", s.cfg.SnapshotCron, s.publishSnapshot},
	}
	if s.jobs.Alerts != nil {
		entries = append(entries, struct {
			name string
			spec string
			run  func()
		}{"alert broadcast", s.cfg.AlertCron, s.broadcastAlerts})
	}

	for _, e := range entries {
		if _, err := s.cron.AddFunc(e.spec, e.run); err != nil {
			return fmt.Errorf("schedule %s %q: %w", e.name, e.spec, err)
		}
		s.logger.Info("job scheduled", zap.String("job", e.name), zap.String("spec", e.spec))
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) refreshPrices() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	result, err := s.jobs.Pricing.Refresh(ctx)
	if err != nil {
		s.logger.Error("price refresh failed", zap.Error(err))
		return
	}
	s.logger.Info("prices refreshed", zap.Int("updated", result.Updated), zap.Int("history_appended", result.HistoryAppended))
}

func (s *Scheduler) publishSnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if _, err := s.jobs.Reporting.PublishDailySnapshot(ctx, s.now()); err != nil {
		s.logger.Error("failed to publish daily snapshot", zap.Error(err))
	}
}

func (s *Scheduler) broadcastAlerts() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	sent, err := s.jobs.Alerts.BroadcastAlerts(ctx)
	switch {
	case errors.Is(err, whatsapp.ErrMessagingDisabled):
		s.logger.Debug("alert broadcast skipped, messaging disabled")
	case err != nil:
		s.logger.Error("alert broadcast failed", zap.Error(err), zap.Int("sent", sent))
	}
}

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/verlyx/hub/internal/clock"
	notificationdomain "github.com/verlyx/hub/internal/notification/domain"
	obsmetrics "github.com/verlyx/hub/internal/observability/metrics"
	"github.com/verlyx/hub/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	JobExpirePaymentLinks = "expire_payment_links"
	JobOverdueTasks       = "overdue_task_reminders"

	lockKeyPrefix = "scheduler:"
)

var ErrInvalidConfig = errors.New("scheduler: invalid config")

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Clock         clock.Clock
	Locker        ratelimit.Locker           `optional:"true"`
	Notifications notificationdomain.Service `optional:"true"`
	Metrics       *obsmetrics.Metrics        `optional:"true"`
	Config        Config                     `optional:"true"`
}

// Scheduler runs periodic maintenance over payment links and tasks. When a
// Locker is present every job takes a lease first so only one instance works
// a job at a time.
type Scheduler struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	clock         clock.Clock
	locker        ratelimit.Locker
	notifications notificationdomain.Service
	metrics       *obsmetrics.Metrics
	cfg           Config
}

type job struct {
	name string
	run  func(ctx context.Context, run *jobRun) error
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.GenID == nil || p.Clock == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		db:            p.DB,
		log:           p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		genID:         p.GenID,
		clock:         p.Clock,
		locker:        p.Locker,
		notifications: p.Notifications,
		metrics:       p.Metrics,
		cfg:           p.Config.withDefaults(),
	}, nil
}

func (s *Scheduler) jobs() []job {
	return []job{
		{name: JobExpirePaymentLinks, run: s.ExpirePaymentLinksJob},
		{name: JobOverdueTasks, run: s.OverdueTaskRemindersJob},
	}
}

// RunOnce executes every enabled job once. Job errors are joined so one
// failing job does not starve the others.
func (s *Scheduler) RunOnce(parent context.Context) error {
	var err error
	for _, j := range s.jobs() {
		if !s.isJobEnabled(j.name) {
			continue
		}
		err = errors.Join(err, s.runJob(parent, j.name, j.run))
	}
	return err
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) runJob(parent context.Context, name string, fn func(ctx context.Context, run *jobRun) error) error {
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	release, acquired, err := s.acquire(ctx, name)
	if err != nil {
		s.metrics.RecordSchedulerJob(ctx, name, "lock_error", 0)
		return fmt.Errorf("%s: lock: %w", name, err)
	}
	if !acquired {
		s.log.Debug("scheduler.job.skipped", zap.String("job", name), zap.String("reason", "locked"))
		s.metrics.RecordSchedulerJob(ctx, name, "skipped", 0)
		return nil
	}
	defer release()

	run := s.startRun(name)
	err = fn(ctx, run)

	switch {
	case err == nil:
		s.finishRun(ctx, run, outcomeOK, nil)
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		// A timed-out batch is picked up again on the next tick.
		s.finishRun(ctx, run, outcomeTimeout, err)
		return nil
	default:
		s.finishRun(ctx, run, outcomeError, err)
		return fmt.Errorf("%s: %w", name, err)
	}
}

func (s *Scheduler) acquire(ctx context.Context, name string) (func(), bool, error) {
	if s.locker == nil {
		return func() {}, true, nil
	}
	key := lockKeyPrefix + name
	token, ok, err := s.locker.TryLock(ctx, key, s.cfg.JobTimeout+5*time.Second)
	if err != nil || !ok {
		return nil, false, err
	}
	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.locker.Release(releaseCtx, key, token); err != nil {
			s.log.Warn("scheduler lock release failed", zap.String("job", name), zap.Error(err))
		}
	}, true, nil
}

func (s *Scheduler) isJobEnabled(name string) bool {
	if len(s.cfg.EnabledJobs) == 0 {
		return true
	}
	for _, enabled := range s.cfg.EnabledJobs {
		if strings.EqualFold(strings.TrimSpace(enabled), name) {
			return true
		}
	}
	return false
}

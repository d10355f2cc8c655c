package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/todo/domain"
	appLogger "github.com/fastygo/todo/pkg/logger"
	"github.com/fastygo/todo/usecase"
)

// DueTaskSource is the read-only query the reminder runs.
type DueTaskSource interface {
	DueOn(ctx context.Context, date time.Time) ([]domain.Task, error)
}

// ReminderConfig sets the daily fire time.
type ReminderConfig struct {
	Hour     int
	Minute   int
	Location *time.Location
	// Timeout bounds one check, including the webhook call.
	Timeout time.Duration
}

// Reminder sends a digest of tasks due tomorrow once a day.
type Reminder struct {
	tasks    DueTaskSource
	notifier usecase.Notifier
	logger   *zap.Logger
	cron     *cron.Cron
	cfg      ReminderConfig
	now      func() time.Time
}

func NewReminder(tasks DueTaskSource, notifier usecase.Notifier, logger *zap.Logger, cfg ReminderConfig) (*Reminder, error) {
	if cfg.Hour < 0 || cfg.Hour > 23 || cfg.Minute < 0 || cfg.Minute > 59 {
		return nil, fmt.Errorf("invalid reminder time %02d:%02d", cfg.Hour, cfg.Minute)
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Reminder{
		tasks:    tasks,
		notifier: notifier,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
	cronLog := appLogger.Cron(r.logger)
	r.cron = cron.New(
		cron.WithLocation(cfg.Location),
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)

	if _, err := r.cron.AddFunc(r.Spec(), r.run); err != nil {
		return nil, err
	}
	return r, nil
}

// Spec is the five-field cron expression for the configured time.
func (r *Reminder) Spec() string {
	return fmt.Sprintf("%d %d * * *", r.cfg.Minute, r.cfg.Hour)
}

// Start launches the cron scheduler.
func (r *Reminder) Start() {
	if r == nil || r.cron == nil {
		return
	}
	r.cron.Start()
	r.logger.Info("due-date reminder started",
		zap.String("time", fmt.Sprintf("%02d:%02d", r.cfg.Hour, r.cfg.Minute)),
		zap.String("location", r.cfg.Location.String()),
		zap.Bool("notifier_enabled", r.notifier != nil && r.notifier.Enabled()))
}

// Stop gracefully stops the scheduler.
func (r *Reminder) Stop(ctx context.Context) {
	if r == nil || r.cron == nil {
		return
	}
	stopCtx := r.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	r.logger.Info("due-date reminder stopped")
}

// CheckDueTomorrow queries incomplete tasks due tomorrow and sends a digest
// when there are any. Failures are logged and never returned.
func (r *Reminder) CheckDueTomorrow(ctx context.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("due-tomorrow check panicked", zap.Any("panic", rec))
		}
	}()

	if r.notifier == nil || !r.notifier.Enabled() {
		r.logger.Debug("skipping due-tomorrow check (notifications disabled)")
		return
	}

	tomorrow := r.Tomorrow()
	tasks, err := r.tasks.DueOn(ctx, tomorrow)
	if err != nil {
		r.logger.Error("due-tomorrow query failed", zap.Error(err))
		return
	}

	r.logger.Info("due-tomorrow check", zap.String("date", tomorrow.Format(domain.DateLayout)), zap.Int("tasks", len(tasks)))
	if len(tasks) == 0 {
		return
	}
	r.notifier.SendDueTomorrowDigest(ctx, tasks)
}

// Tomorrow is the calendar day after today in the reminder's location.
func (r *Reminder) Tomorrow() time.Time {
	today := domain.DateOf(r.now().In(r.cfg.Location))
	return today.AddDate(0, 0, 1)
}

func (r *Reminder) run() {
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.Timeout)
	defer cancel()
	r.CheckDueTomorrow(ctx)
}

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	appLogger "github.com/fastygo/todo/pkg/logger"
)

// SessionPurger deletes expired sessions from stores without native TTLs.
type SessionPurger interface {
	Purge(ctx context.Context) (int, error)
}

// SessionSweeper runs a SessionPurger on a fixed interval.
type SessionSweeper struct {
	purger   SessionPurger
	interval time.Duration
	logger   *zap.Logger
	cron     *cron.Cron
}

// NewSessionSweeper schedules a purge every interval (at least one second).
func NewSessionSweeper(purger SessionPurger, interval time.Duration, logger *zap.Logger) (*SessionSweeper, error) {
	if interval < time.Second {
		interval = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &SessionSweeper{
		purger:   purger,
		interval: interval,
		logger:   logger,
		cron:     cron.New(cron.WithLogger(appLogger.Cron(logger))),
	}

	schedule := fmt.Sprintf("@every %ds", int(interval.Seconds()))
	if _, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), interval)
		defer cancel()
		s.Sweep(ctx)
	}); err != nil {
		return nil, fmt.Errorf("schedule session sweep %q: %w", schedule, err)
	}
	return s, nil
}

// Sweep purges once and logs the outcome.
func (s *SessionSweeper) Sweep(ctx context.Context) {
	removed, err := s.purger.Purge(ctx)
	if err != nil {
		s.logger.Error("session purge failed", zap.Error(err))
		return
	}
	if removed > 0 {
		s.logger.Info("expired sessions purged", zap.Int("removed", removed))
	}
}

func (s *SessionSweeper) Start() {
	s.cron.Start()
}

func (s *SessionSweeper) Stop(ctx context.Context) {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
}
